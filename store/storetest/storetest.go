// Package storetest provides an in-memory store.Repository stub for unit
// tests. Responses are scripted per call through QueryFn, UpdateFn and
// StoreFn; every call is recorded for assertions.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/clearrights/repository/store"
)

// Call records one invocation of the stub.
type Call struct {
	Op          string // "query", "update" or "store"
	Body        string // the query, update or payload
	ContentType string // accept header or payload content type
}

// Repo is a scripted store.Repository.
type Repo struct {
	RepositoryID string

	QueryFn  func(query, accept string) ([]byte, error)
	UpdateFn func(update string) error
	StoreFn  func(payload []byte, contentType string) error

	mu    sync.Mutex
	calls []Call
}

var _ store.Repository = (*Repo)(nil)

// New creates a stub whose queries answer ASK false and empty SELECT
// results until scripted otherwise.
func New(repositoryID string) *Repo {
	return &Repo{RepositoryID: repositoryID}
}

func (r *Repo) ID() string { return r.RepositoryID }

func (r *Repo) Query(_ context.Context, query, accept string) ([]byte, error) {
	r.record(Call{Op: "query", Body: query, ContentType: accept})
	if r.QueryFn != nil {
		return r.QueryFn(query, accept)
	}
	if strings.Contains(query, "ASK") {
		return AskResult(false), nil
	}
	return SelectResult(), nil
}

func (r *Repo) Update(_ context.Context, update string) error {
	r.record(Call{Op: "update", Body: update})
	if r.UpdateFn != nil {
		return r.UpdateFn(update)
	}
	return nil
}

func (r *Repo) Store(_ context.Context, payload []byte, contentType string) error {
	r.record(Call{Op: "store", Body: string(payload), ContentType: contentType})
	if r.StoreFn != nil {
		return r.StoreFn(payload, contentType)
	}
	return nil
}

func (r *Repo) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a copy of the recorded calls.
func (r *Repo) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsOf returns the recorded calls of one operation.
func (r *Repo) CallsOf(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// AskResult builds a SPARQL JSON ASK response body.
func AskResult(v bool) []byte {
	return []byte(fmt.Sprintf(`{"head": {}, "boolean": %t}`, v))
}

// Binding is one variable binding of a scripted SELECT solution.
type Binding struct {
	Type  string // "uri", "literal" or "bnode"
	Value string
	Lang  string
	DType string
}

// URI is a shorthand for an IRI binding.
func URI(v string) Binding { return Binding{Type: "uri", Value: v} }

// Literal is a shorthand for a plain literal binding.
func Literal(v string) Binding { return Binding{Type: "literal", Value: v} }

// TypedLiteral is a shorthand for a datatyped literal binding.
func TypedLiteral(v, dtype string) Binding {
	return Binding{Type: "literal", Value: v, DType: dtype}
}

// SelectResult builds a SPARQL JSON SELECT response body from solution
// rows, each a map of variable name to binding.
func SelectResult(rows ...map[string]Binding) []byte {
	type binding struct {
		Type     string `json:"type"`
		Value    string `json:"value"`
		Lang     string `json:"xml:lang,omitempty"`
		Datatype string `json:"datatype,omitempty"`
	}

	vars := map[string]bool{}
	bindings := make([]map[string]binding, 0, len(rows))
	for _, row := range rows {
		b := make(map[string]binding, len(row))
		for name, v := range row {
			vars[name] = true
			b[name] = binding{Type: v.Type, Value: v.Value, Lang: v.Lang, Datatype: v.DType}
		}
		bindings = append(bindings, b)
	}

	varNames := make([]string, 0, len(vars))
	for v := range vars {
		varNames = append(varNames, v)
	}

	doc := map[string]any{
		"head":    map[string]any{"vars": varNames},
		"results": map[string]any{"bindings": bindings},
	}
	out, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return out
}
