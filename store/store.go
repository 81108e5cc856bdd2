// Package store defines the persistence interface of the repository: a
// remote SPARQL endpoint holding one RDF dataset per repository. The
// concrete backend lives in store/blazegraph; storetest provides an
// in-memory stub for tests.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/knakk/rdf"
	"github.com/knakk/sparql"
)

// Accept values for query results.
const (
	AcceptSPARQLJSON = "application/sparql-results+json"
	AcceptRDFXML     = "application/rdf+xml"
	AcceptTurtle     = "text/turtle"
	AcceptCSV        = "text/csv"
	AcceptNTriples   = "text/plain"
)

// Repository is a handle on one repository's triple dataset.
//
// Query runs a read query (SELECT, ASK or CONSTRUCT) and returns the raw
// response body in the requested representation. Update runs a SPARQL
// update. Store ingests a serialized RDF payload.
type Repository interface {
	// ID returns the repository identifier the handle is bound to.
	ID() string

	Query(ctx context.Context, query, accept string) ([]byte, error)
	Update(ctx context.Context, update string) error
	Store(ctx context.Context, payload []byte, contentType string) error
}

// Opener resolves repository ids into handles.
type Opener interface {
	Open(repositoryID string) Repository
}

// Ask runs an ASK query and decodes the boolean result.
func Ask(ctx context.Context, repo Repository, query string) (bool, error) {
	body, err := repo.Query(ctx, query, AcceptSPARQLJSON)
	if err != nil {
		return false, err
	}
	var res struct {
		Boolean bool `json:"boolean"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return false, fmt.Errorf("store: decode ask result: %w", err)
	}
	return res.Boolean, nil
}

// Select runs a SELECT query and returns one binding map per solution.
func Select(ctx context.Context, repo Repository, query string) ([]map[string]rdf.Term, error) {
	body, err := repo.Query(ctx, query, AcceptSPARQLJSON)
	if err != nil {
		return nil, err
	}
	res, err := sparql.ParseJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("store: decode select result: %w", err)
	}
	return res.Solutions(), nil
}
