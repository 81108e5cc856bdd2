package graph

import (
	"github.com/knakk/rdf"

	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/vocab"
)

// Copy deep-copies g, assigning a fresh random identifier to every term in
// replace. Subjects and objects equal to a replaced term are substituted;
// predicates are never rewritten; untouched triples are carried over
// unchanged. The result shares nothing with the selected node set of g.
func Copy(g *Graph, replace []rdf.Term) *Graph {
	mapping := make(map[string]rdf.IRI, len(replace))
	for _, t := range replace {
		mapping[key(t)] = vocab.MustIRI(vocab.IDPrefix + id.New())
	}

	ng := New()
	for _, t := range g.triples {
		s, o := t.Subj, t.Obj
		if fresh, ok := mapping[key(s)]; ok {
			s = fresh
		}
		if fresh, ok := mapping[key(o)]; ok {
			o = fresh
		}
		ng.AddTriple(s, t.Pred, o)
	}
	return ng
}
