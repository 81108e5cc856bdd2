// Package graph provides the in-memory RDF graph the policy engine works
// on: triple storage with set semantics, lookups, property replacement, a
// structural-schema walker and the deep-copy/rewrite used when offers are
// created and transformed into agreements.
package graph

import (
	"github.com/knakk/rdf"

	"github.com/clearrights/repository/vocab"
)

// Graph is an in-memory set of RDF triples. The zero value is not usable;
// call New.
type Graph struct {
	triples []rdf.Triple
	keys    map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{keys: make(map[string]struct{})}
}

// FromTriples creates a graph from decoded triples, deduplicating.
func FromTriples(ts []rdf.Triple) *Graph {
	g := New()
	for _, t := range ts {
		g.Add(t)
	}
	return g
}

func key(t rdf.Term) string {
	return t.Serialize(rdf.NTriples)
}

func tripleKey(t rdf.Triple) string {
	return key(t.Subj) + " " + key(t.Pred) + " " + key(t.Obj)
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns a copy of the triple slice.
func (g *Graph) Triples() []rdf.Triple {
	out := make([]rdf.Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Add inserts a triple; duplicates are ignored.
func (g *Graph) Add(t rdf.Triple) {
	k := tripleKey(t)
	if _, ok := g.keys[k]; ok {
		return
	}
	g.keys[k] = struct{}{}
	g.triples = append(g.triples, t)
}

// AddTriple inserts a triple from its terms.
func (g *Graph) AddTriple(s rdf.Subject, p rdf.Predicate, o rdf.Object) {
	g.Add(rdf.Triple{Subj: s, Pred: p, Obj: o})
}

// Remove deletes the exact triple if present.
func (g *Graph) Remove(s rdf.Subject, p rdf.Predicate, o rdf.Object) {
	k := tripleKey(rdf.Triple{Subj: s, Pred: p, Obj: o})
	if _, ok := g.keys[k]; !ok {
		return
	}
	delete(g.keys, k)
	for i, t := range g.triples {
		if tripleKey(t) == k {
			g.triples = append(g.triples[:i], g.triples[i+1:]...)
			break
		}
	}
}

// Has reports whether the exact triple is present.
func (g *Graph) Has(s rdf.Subject, p rdf.Predicate, o rdf.Object) bool {
	_, ok := g.keys[tripleKey(rdf.Triple{Subj: s, Pred: p, Obj: o})]
	return ok
}

// Objects returns all objects of triples with the given subject and
// predicate, in insertion order.
func (g *Graph) Objects(s rdf.Subject, p rdf.Predicate) []rdf.Object {
	var out []rdf.Object
	sk, pk := key(s), key(p)
	for _, t := range g.triples {
		if key(t.Subj) == sk && key(t.Pred) == pk {
			out = append(out, t.Obj)
		}
	}
	return out
}

// Subjects returns all subjects of triples with the given predicate and
// object, in insertion order.
func (g *Graph) Subjects(p rdf.Predicate, o rdf.Object) []rdf.Subject {
	var out []rdf.Subject
	pk, ok := key(p), key(o)
	for _, t := range g.triples {
		if key(t.Pred) == pk && key(t.Obj) == ok {
			out = append(out, t.Subj)
		}
	}
	return out
}

// SubjectsOfType returns the subjects declared with rdf:type class.
func (g *Graph) SubjectsOfType(class rdf.IRI) []rdf.Subject {
	return g.Subjects(vocab.RDFType, class)
}

// SetProperty replaces every (s, p, *) triple with the given values.
func (g *Graph) SetProperty(s rdf.Subject, p rdf.Predicate, values ...rdf.Object) {
	g.RemoveProperty(s, p)
	for _, v := range values {
		g.AddTriple(s, p, v)
	}
}

// RemoveProperty deletes every triple with the given subject and predicate.
func (g *Graph) RemoveProperty(s rdf.Subject, p rdf.Predicate) {
	for _, o := range g.Objects(s, p) {
		g.Remove(s, p, o)
	}
}

// Walk returns the root plus every subject reachable from it through the
// structural schema, deduplicated. Only IRI and blank-node objects are
// followed.
func (g *Graph) Walk(root rdf.Subject, nodes []vocab.Node) []rdf.Term {
	seen := map[string]struct{}{key(root): {}}
	out := []rdf.Term{root}
	g.walk(root, nodes, seen, &out)
	return out
}

func (g *Graph) walk(s rdf.Subject, nodes []vocab.Node, seen map[string]struct{}, out *[]rdf.Term) {
	for _, n := range nodes {
		for _, o := range g.Objects(s, vocab.Resolve(n.Predicate)) {
			next, ok := o.(rdf.Subject)
			if !ok {
				continue
			}
			if o.Type() != rdf.TermIRI && o.Type() != rdf.TermBlank {
				continue
			}
			if _, dup := seen[key(o)]; dup {
				continue
			}
			seen[key(o)] = struct{}{}
			*out = append(*out, o)
			if len(n.Children) > 0 {
				g.walk(next, n.Children, seen, out)
			}
		}
	}
}
