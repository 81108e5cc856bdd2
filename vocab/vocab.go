// Package vocab holds the RDF vocabulary the repository speaks: namespace
// prefixes, the ODRL/OP class and predicate qnames, and helpers to resolve
// qnames into IRIs. It is inert configuration data shared by every
// subsystem; nothing in here performs I/O.
package vocab

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/knakk/rdf"
)

// Prefixes maps namespace prefixes to their IRIs. The table is added to
// SPARQL queries, turtle payloads and the JSON-LD context.
var Prefixes = map[string]string{
	"xsd":    "http://www.w3.org/2001/XMLSchema#",
	"rdf":    "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"owl":    "http://www.w3.org/2002/07/owl#",
	"id":     "http://openpermissions.org/ns/id/",
	"odrl":   "http://www.w3.org/ns/odrl/2/",
	"op":     "http://openpermissions.org/ns/op/1.1/",
	"dc":     "http://purl.org/dc/elements/1.1/",
	"dcterm": "http://purl.org/dc/terms/",
	"opex":   "http://openpermissions.org/ns/opex/1.0/",
	"hub":    "http://openpermissions.org/ns/hub/",
}

// IDPrefix is the base IRI of internal entity identifiers.
const IDPrefix = "http://openpermissions.org/ns/id/"

// Entity classes.
const (
	AssetClass         = "op:Asset"
	SetClass           = "op:Set"
	IDClass            = "op:Id"
	PartyClass         = "op:Party"
	AssetSelectorClass = "op:AssetSelector"
	PolicyClass        = "op:Policy"
	OfferClass         = "odrl:Offer"
	AgreementClass     = "odrl:Agreement"
)

// Policy structure predicates.
const (
	Permission = "odrl:permission"
	Prohibition = "odrl:prohibition"
	Duty       = "odrl:duty"
	Constraint = "odrl:constraint"
	Assigner   = "odrl:assigner"
	Assignee   = "odrl:assignee"
	Target     = "odrl:target"
	OdrlValue  = "odrl:value"
)

// Selector, set and asset predicates.
const (
	FromSet          = "op:fromSet"
	SelectorCount    = "op:count"
	SelectRequired   = "op:selectRequired"
	HasElement       = "op:hasElement"
	Expires          = "op:expires"
	AlsoIdentifiedBy = "op:alsoIdentifiedBy"
	SourceIDType     = "op:id_type"
	SourceIDValue    = "op:value"
	Provider         = "op:provider"
	OnBehalfOf       = "op:onBehalfOf"
)

// Dublin Core predicates.
const (
	Modified     = "dcterm:modified"
	Title        = "dcterm:title"
	DateAccepted = "dcterm:dateAccepted"
	References   = "dcterm:references"
)

// RDFType is the rdf:type predicate IRI.
var RDFType = MustIRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")

// SPARQLPrefixes is the PREFIX preamble prepended to every SPARQL query.
var SPARQLPrefixes = buildPreamble("PREFIX %s: <%s>")

// TurtlePrefixes is the @prefix preamble prepended to turtle payloads.
var TurtlePrefixes = buildPreamble("@prefix %s: <%s> .")

func buildPreamble(format string) string {
	keys := make([]string, 0, len(Prefixes))
	for k := range Prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, format+"\n", k, Prefixes[k])
	}
	return b.String()
}

// JSONLDContext is the context used when rendering entities as JSON-LD.
func JSONLDContext() map[string]any {
	ctx := make(map[string]any, len(Prefixes)+8)
	for k, v := range Prefixes {
		ctx[k] = v
	}
	ctx["@vocab"] = Prefixes["odrl"]
	ctx["@language"] = "en"
	for _, k := range []string{"op:alsoIdentifiedBy", "duty", "prohibition", "permission", "constraint", "target"} {
		ctx[k] = map[string]any{"@container": "@set", "@type": "@id"}
	}
	return ctx
}

var qnamePattern = regexp.MustCompile(`^([A-Za-z0-9_-]+):(.*)$`)

// ResolveString expands a qname into its full IRI string. Inputs that are
// already absolute IRIs, or whose prefix is unknown, pass through verbatim.
func ResolveString(qname string) string {
	m := qnamePattern.FindStringSubmatch(qname)
	if m == nil {
		return qname
	}
	ns, ok := Prefixes[m[1]]
	if !ok {
		return qname
	}
	return ns + m[2]
}

// Resolve expands a qname into an rdf.IRI term usable to construct triples.
func Resolve(qname string) rdf.IRI {
	return MustIRI(ResolveString(qname))
}

// MustIRI builds an rdf.IRI and panics on an invalid value. Use only for
// vocabulary constants and other values under program control.
func MustIRI(s string) rdf.IRI {
	iri, err := rdf.NewIRI(s)
	if err != nil {
		panic(fmt.Sprintf("vocab: invalid IRI %q: %v", s, err))
	}
	return iri
}
