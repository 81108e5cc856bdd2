package id

import (
	"errors"
	"strings"
	"testing"

	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/vocab"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(a), a)
	}
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if a != strings.ToLower(a) {
		t.Fatalf("expected lowercase id, got %q", a)
	}
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short ref", "id:abc123", "id:abc123"},
		{"short ref uppercased", "ID:ABC123", "id:abc123"},
		{"bare hex", "deadbeef", "id:deadbeef"},
		{"bare hex mixed case", "DeadBeef", "id:deadbeef"},
		{"internal iri prefix stripped", vocab.IDPrefix + "abc123", "id:abc123"},
		{"single hex char", "a", "id:a"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalise(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("Normalise(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalise_AbsoluteIRIBypassesHexGate(t *testing.T) {
	got, err := Normalise("http://example.com/things/not-hex")
	if err != nil {
		t.Fatal(err)
	}
	if got != "<http://example.com/things/not-hex>" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalise_RejectsNonHex(t *testing.T) {
	for _, in := range []string{"not-hex!", "xyz", "", strings.Repeat("a", 65)} {
		if _, err := Normalise(in); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("Normalise(%q): expected validation error, got %v", in, err)
		}
	}
}

// Round-trip property: the short form and the internal IRI form of the same
// hex id normalise identically.
func TestNormalise_RoundTrip(t *testing.T) {
	for _, h := range []string{"a", "0f", "deadbeef", strings.Repeat("9b", 32)} {
		short, err := Normalise("id:" + h)
		if err != nil {
			t.Fatal(err)
		}
		iri, err := Normalise(vocab.IDPrefix + h)
		if err != nil {
			t.Fatal(err)
		}
		if short != iri {
			t.Fatalf("round trip mismatch for %q: %q vs %q", h, short, iri)
		}
	}
}

func TestUUIDRef(t *testing.T) {
	ref, err := UUIDRef("ABCdef123")
	if err != nil {
		t.Fatal(err)
	}
	if ref != "id:ABCdef123" {
		t.Fatalf("got %q", ref)
	}
	if _, err := UUIDRef("nope"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHubRef(t *testing.T) {
	if got := HubRef("some type"); got != "hub:some+type" {
		t.Fatalf("got %q", got)
	}
}

func TestSafe(t *testing.T) {
	if _, err := Safe("has spaces"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, err := Safe("hub:isbn")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hub:isbn" {
		t.Fatalf("qname should pass through, got %q", got)
	}
	got, err = Safe("http://example.com/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != "<http://example.com/x>" {
		t.Fatalf("got %q", got)
	}
}

func TestShortenExpand(t *testing.T) {
	if got := Shorten(vocab.IDPrefix + "abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := Shorten("<" + vocab.IDPrefix + "abc>"); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := Shorten("abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}

	iri := Expand("id:abc")
	if iri.String() != vocab.IDPrefix+"abc" {
		t.Fatalf("got %q", iri.String())
	}
	iri = Expand("<http://example.com/x>")
	if iri.String() != "http://example.com/x" {
		t.Fatalf("got %q", iri.String())
	}
}
