package agreement

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/offer"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/store/storetest"
	"github.com/clearrights/repository/vocab"
)

var storedOffer = []byte(vocab.TurtlePrefixes + `
id:0ffe1 a odrl:Offer ;
    dcterm:title "An offer" ;
    odrl:permission id:be01 ;
    odrl:target id:a1 ;
    odrl:target id:5e1a .
id:be01 odrl:duty id:be02 .
id:be02 odrl:constraint id:be03 .
id:be03 odrl:payAmount opex:paymentValue .
id:5e1a a op:AssetSelector ;
    op:fromSet id:5e7a .
`)

// offerStore scripts the persisted offer: its retrieval, its target
// listing and the set membership probes validation runs against it.
type offerStore struct {
	*storetest.Repo
	offerExists bool
	targets     []map[string]storetest.Binding
	members     map[string]bool
}

func newOfferStore() *offerStore {
	os := &offerStore{
		Repo:        storetest.New("repo1"),
		offerExists: true,
		targets: []map[string]storetest.Binding{
			{
				"target": storetest.URI(vocab.IDPrefix + "5e1a"),
				"type":   storetest.URI(vocab.ResolveString(vocab.AssetSelectorClass)),
				"set_id": storetest.URI(vocab.IDPrefix + "5e7a"),
			},
			{
				"target": storetest.URI(vocab.IDPrefix + "a1"),
				"type":   storetest.URI(vocab.ResolveString(vocab.AssetClass)),
			},
		},
		members: map[string]bool{"id:5e7a op:hasElement id:b1": true},
	}
	os.Repo.QueryFn = func(query, accept string) ([]byte, error) {
		if accept == store.AcceptTurtle {
			return storedOffer, nil
		}
		if strings.Contains(query, "ASK") {
			if strings.Contains(query, "op:hasElement") {
				for probe, present := range os.members {
					if strings.Contains(query, probe) {
						return storetest.AskResult(present), nil
					}
				}
				return storetest.AskResult(false), nil
			}
			return storetest.AskResult(os.offerExists), nil
		}
		return storetest.SelectResult(os.targets...), nil
	}
	return os
}

func accept(t *testing.T, os *offerStore, req Request) (string, []string, error) {
	t.Helper()
	return New(context.Background(), slog.Default(), os.Repo, offer.NewKind(), NewKind(), req)
}

func TestNewAcceptsOffer(t *testing.T) {
	os := newOfferStore()

	agreementID, covered, err := accept(t, os, Request{
		OfferID:      "0ffe1",
		Organisation: "org1",
		OnBehalfOf:   "agent1",
		AssetIDs:     []string{"b1"},
		Metadata:     map[string]string{"payAmount": "10.00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(agreementID) {
		t.Fatalf("expected a fresh hex id, got %q", agreementID)
	}
	if !reflect.DeepEqual(covered, []string{"5e1a", "a1"}) {
		t.Fatalf("covered %v", covered)
	}

	stores := os.CallsOf("store")
	if len(stores) != 1 {
		t.Fatalf("got %d store calls", len(stores))
	}
	body := stores[0].Body

	if !strings.Contains(body, vocab.ResolveString(vocab.AgreementClass)) {
		t.Fatalf("agreement type missing:\n%s", body)
	}
	if strings.Contains(body, vocab.ResolveString(vocab.OfferClass)) {
		t.Fatalf("offer type should be relabelled:\n%s", body)
	}
	if !strings.Contains(body, vocab.IDPrefix+agreementID) {
		t.Fatalf("agreement should use the returned id:\n%s", body)
	}
	if !strings.Contains(body, vocab.ResolveString(vocab.References)) || !strings.Contains(body, vocab.IDPrefix+"0ffe1") {
		t.Fatalf("reference to the accepted offer missing:\n%s", body)
	}
	if !strings.Contains(body, vocab.ResolveString(vocab.DateAccepted)) {
		t.Fatalf("acceptance date missing:\n%s", body)
	}
	for _, target := range []string{vocab.IDPrefix + "a1", vocab.IDPrefix + "5e1a"} {
		if !strings.Contains(body, target) {
			t.Fatalf("covered target %s missing:\n%s", target, body)
		}
	}
	if !strings.Contains(body, vocab.ResolveString(vocab.Assignee)) ||
		!strings.Contains(body, "org1") || !strings.Contains(body, "agent1") {
		t.Fatalf("assignee party missing:\n%s", body)
	}
	if !strings.Contains(body, "10.00") {
		t.Fatalf("agreed payment missing:\n%s", body)
	}
}

func TestNewMissingOffer(t *testing.T) {
	os := newOfferStore()
	os.offerExists = false

	_, _, err := accept(t, os, Request{OfferID: "0ffe1", Organisation: "org1"})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("got %v", err)
	}
}

func TestNewNothingCovered(t *testing.T) {
	os := newOfferStore()
	os.targets = []map[string]storetest.Binding{{
		"target": storetest.URI(vocab.IDPrefix + "odd1"),
		"type":   storetest.URI("http://example.com/Strange"),
	}}

	_, _, err := accept(t, os, Request{OfferID: "0ffe1", Organisation: "org1"})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "selected any asset") {
		t.Fatalf("got %v", err)
	}
	if stores := os.CallsOf("store"); len(stores) != 0 {
		t.Fatalf("nothing should be stored, got %v", stores)
	}
}

func TestNewUncoveredRequestRejected(t *testing.T) {
	os := newOfferStore()
	_, _, err := accept(t, os, Request{
		OfferID:      "0ffe1",
		Organisation: "org1",
		AssetIDs:     []string{"dead"},
	})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "not covered") {
		t.Fatalf("got %v", err)
	}
}

func TestNewUnknownMetadataRejected(t *testing.T) {
	os := newOfferStore()
	_, _, err := accept(t, os, Request{
		OfferID:      "0ffe1",
		Organisation: "org1",
		AssetIDs:     []string{"b1"},
		Metadata:     map[string]string{"colour": "blue"},
	})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if stores := os.CallsOf("store"); len(stores) != 0 {
		t.Fatalf("nothing should be stored, got %v", stores)
	}
}
