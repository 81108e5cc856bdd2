package graph

import (
	"strings"
	"testing"

	"github.com/knakk/rdf"

	"github.com/clearrights/repository/vocab"
)

// A copied policy shares no node identifiers with the nodes selected for
// replacement, and replaced identifiers are rewritten consistently across
// subject and object positions.
func TestCopyDisjointAndConsistent(t *testing.T) {
	g := New()
	root := iri(t, vocab.IDPrefix+"aaa111")
	perm := iri(t, vocab.IDPrefix+"bbb222")
	target := iri(t, "http://example.com/asset")

	g.AddTriple(root, vocab.RDFType, vocab.Resolve(vocab.OfferClass))
	g.AddTriple(root, vocab.Resolve(vocab.Permission), perm)
	g.AddTriple(perm, vocab.Resolve(vocab.Target), target)

	replaced := g.Walk(root, vocab.PolicyStruct)
	ng := Copy(g, replaced)

	if ng.Len() != g.Len() {
		t.Fatalf("copy changed triple count: %d != %d", ng.Len(), g.Len())
	}

	old := make(map[string]bool, len(replaced))
	for _, term := range replaced {
		old[term.String()] = true
	}

	var freshRoot rdf.Subject
	for _, tr := range ng.Triples() {
		if old[tr.Subj.String()] {
			t.Fatalf("copy kept old subject %v", tr.Subj)
		}
		if o, ok := tr.Obj.(rdf.IRI); ok && old[o.String()] && o.String() != target.String() {
			t.Fatalf("copy kept old object %v", o)
		}
		if !strings.HasPrefix(tr.Subj.String(), vocab.IDPrefix) {
			t.Fatalf("fresh subject %v outside the id namespace", tr.Subj)
		}
		if tr.Pred.String() == vocab.RDFType.String() {
			freshRoot = tr.Subj
		}
	}
	if freshRoot == nil {
		t.Fatal("type triple missing from copy")
	}

	// the permission edge must connect the fresh root to the fresh node
	perms := ng.Objects(freshRoot, vocab.Resolve(vocab.Permission))
	if len(perms) != 1 {
		t.Fatalf("expected one permission edge, got %v", perms)
	}
	targets := ng.Objects(perms[0].(rdf.Subject), vocab.Resolve(vocab.Target))
	if len(targets) != 1 || targets[0].String() != target.String() {
		t.Fatalf("external target was rewritten: %v", targets)
	}
}

func TestCopyLeavesUnreplacedTriplesAlone(t *testing.T) {
	g := New()
	s := iri(t, "http://example.com/s")
	p := iri(t, "http://example.com/p")
	o := iri(t, "http://example.com/o")
	g.AddTriple(s, p, o)

	ng := Copy(g, nil)
	if !ng.Has(s, p, o) {
		t.Fatal("triple outside the replacement set was altered")
	}
}
