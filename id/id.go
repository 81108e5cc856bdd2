// Package id canonicalizes the identifier forms the repository accepts.
//
// External callers hand us identifiers as absolute IRIs, as internal-id
// IRIs (http://openpermissions.org/ns/id/<hex>), as short references
// ("id:<hex>") or as bare hex. Every form is normalised into exactly one of
// two canonical shapes usable inside SPARQL queries: a bracketed absolute
// IRI ("<http://...>") or a prefixed short id ("id:<hex>").
package id

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/knakk/rdf"

	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/vocab"
)

var (
	// entityIDPattern is the UUID-hex shape internal ids must have.
	entityIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{1,64}$`)

	// shortRefPattern matches an already-normalised short reference.
	shortRefPattern = regexp.MustCompile(`^id:[0-9a-f]{1,64}$`)

	safePattern  = regexp.MustCompile(`^[a-zA-Z0-9_.#+@:/%\-]+$`)
	qnamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+:[a-zA-Z0-9_.#+@%\-]+$`)
)

// New returns a fresh random 128-bit identifier as 32 lowercase hex chars.
// Collisions are treated as negligible.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// UUIDRef builds a short reference from an opaque external id. The value
// must match the strict hex pattern; anything else is rejected. This is a
// hard validation gate, not a pass-through.
func UUIDRef(s string) (string, error) {
	if !entityIDPattern.MatchString(s) {
		return "", errs.Validationf("%q is not a valid uuid", s)
	}
	return "id:" + s, nil
}

// HubRef builds a hub-namespace reference from an external identifier type
// or value, url-quoting it first.
func HubRef(s string) string {
	return "hub:" + url.QueryEscape(s)
}

// Normalise canonicalizes an identifier per the policy-entity rule shared
// by assets, sets, offers, agreements and parties:
//
//   - absolute IRIs are bracketed verbatim, bypassing the UUID-shape check;
//   - a known internal-id IRI prefix is stripped and the rest lower-cased;
//   - anything that is not already a short reference goes through the
//     strict hex gate of UUIDRef.
func Normalise(raw string) (string, error) {
	if strings.HasPrefix(raw, vocab.IDPrefix) {
		raw = strings.TrimPrefix(raw, vocab.IDPrefix)
	} else if strings.HasPrefix(raw, "http://") {
		return "<" + raw + ">", nil
	}
	raw = strings.ToLower(raw)
	if shortRefPattern.MatchString(raw) {
		return raw, nil
	}
	return UUIDRef(raw)
}

// Safe ensures an id of any entity kind is usable inside a SPARQL query.
// Values that already look like a qname reference pass through; everything
// else is normalised.
func Safe(raw string) (string, error) {
	if !safePattern.MatchString(raw) {
		return "", errs.Validationf("not a valid id %q", raw)
	}
	if strings.HasPrefix(raw, "http://") {
		return "<" + raw + ">", nil
	}
	if !qnamePattern.MatchString(raw) {
		return Normalise(raw)
	}
	return raw, nil
}

// Shorten reduces an IRI (or any slash-separated reference) to its short
// trailing id segment.
func Shorten(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// Expand resolves a normalised identifier into an rdf.IRI term.
func Expand(normalised string) rdf.IRI {
	if strings.HasPrefix(normalised, "<") && strings.HasSuffix(normalised, ">") {
		return vocab.MustIRI(strings.TrimSuffix(strings.TrimPrefix(normalised, "<"), ">"))
	}
	return vocab.Resolve(normalised)
}

// ExpandRaw normalises then expands, for identifiers from untrusted input.
func ExpandRaw(raw string) (rdf.IRI, error) {
	n, err := Normalise(raw)
	if err != nil {
		return rdf.IRI{}, err
	}
	return Expand(n), nil
}
