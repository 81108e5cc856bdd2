package graph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"

	"github.com/clearrights/repository/errs"
)

// Serialization formats understood by Decode and Encode.
const (
	FormatXML      = "xml"
	FormatTurtle   = "turtle"
	FormatJSONLD   = "json-ld"
	FormatNTriples = "ntriples"
)

// FormatFromContentType maps an HTTP content type onto a codec format.
func FormatFromContentType(contentType string) (string, error) {
	switch contentType {
	case "application/xml", "application/rdf+xml":
		return FormatXML, nil
	case "text/turtle", "application/x-turtle", "text/rdf+n3":
		return FormatTurtle, nil
	case "application/ld+json":
		return FormatJSONLD, nil
	case "application/n-triples":
		return FormatNTriples, nil
	}
	return "", errs.Validationf("unsupported content type %q", contentType)
}

// ContentTypeFromFormat is the inverse mapping, for store payloads.
func ContentTypeFromFormat(format string) string {
	switch format {
	case FormatXML:
		return "application/xml"
	case FormatJSONLD:
		return "application/ld+json"
	case FormatNTriples:
		return "application/n-triples"
	default:
		return "text/turtle"
	}
}

// Decode parses serialized RDF into a graph. Parse failures of any kind are
// validation errors carrying the parser's message, never raw parser errors.
func Decode(data []byte, format string) (*Graph, error) {
	var knakkFormat rdf.Format
	switch format {
	case FormatXML:
		knakkFormat = rdf.RDFXML
	case FormatTurtle:
		knakkFormat = rdf.Turtle
	case FormatNTriples:
		knakkFormat = rdf.NTriples
	case FormatJSONLD:
		return decodeJSONLD(data)
	default:
		return nil, errs.Validationf("unsupported serialisation format %q", format)
	}

	dec := rdf.NewTripleDecoder(bytes.NewReader(data), knakkFormat)
	triples, err := dec.DecodeAll()
	if err != nil {
		return nil, errs.Validationf("unable to parse data: %v", err)
	}
	return FromTriples(triples), nil
}

// decodeJSONLD parses a JSON-LD document, honouring an optional top-level
// @graph/@context wrapper, by converting through N-Quads.
func decodeJSONLD(data []byte) (*Graph, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Validationf("unable to parse data: %v", err)
	}
	if m, ok := doc.(map[string]any); ok {
		if g, ok := m["@graph"]; ok {
			doc = map[string]any{"@context": m["@context"], "@graph": g}
		}
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	nquads, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, errs.Validationf("unable to parse data: %v", err)
	}
	s, ok := nquads.(string)
	if !ok {
		return nil, errs.Validationf("unable to parse data: unexpected JSON-LD conversion result %T", nquads)
	}
	return Decode([]byte(s), FormatNTriples)
}

// Encode serializes a graph. Only turtle and n-triples are supported as
// output formats; use EncodeJSONLD for JSON-LD documents.
func Encode(g *Graph, format string) ([]byte, error) {
	var knakkFormat rdf.Format
	switch format {
	case FormatTurtle:
		knakkFormat = rdf.Turtle
	case FormatNTriples:
		knakkFormat = rdf.NTriples
	default:
		return nil, fmt.Errorf("graph: unsupported encode format %q", format)
	}

	var buf bytes.Buffer
	enc := rdf.NewTripleEncoder(&buf, knakkFormat)
	for _, t := range g.triples {
		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("graph: encode: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("graph: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSONLD renders a graph as a JSON-LD document compacted against the
// given context.
func EncodeJSONLD(g *Graph, context map[string]any) (any, error) {
	if g.Len() == 0 {
		return nil, nil
	}
	nt, err := Encode(g, FormatNTriples)
	if err != nil {
		return nil, err
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	doc, err := proc.FromRDF(string(nt), opts)
	if err != nil {
		return nil, fmt.Errorf("graph: to JSON-LD: %w", err)
	}
	compacted, err := proc.Compact(doc, map[string]any{"@context": context}, opts)
	if err != nil {
		return nil, fmt.Errorf("graph: compact JSON-LD: %w", err)
	}
	return compacted, nil
}
