package party

import (
	"testing"

	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/vocab"
)

func TestNew(t *testing.T) {
	g := graph.New()
	partyID, err := New(g, "hub-org-1", "agent-9")
	if err != nil {
		t.Fatal(err)
	}
	if len(partyID) != 32 {
		t.Fatalf("unexpected id %q", partyID)
	}

	node := vocab.MustIRI(vocab.IDPrefix + partyID)
	if !g.Has(node, vocab.RDFType, vocab.Resolve(vocab.PartyClass)) {
		t.Fatal("party type triple missing")
	}
	providers := g.Objects(node, vocab.Resolve(vocab.Provider))
	if len(providers) != 1 || providers[0].String() != "hub-org-1" {
		t.Fatalf("got providers %v", providers)
	}
	agents := g.Objects(node, vocab.Resolve(vocab.OnBehalfOf))
	if len(agents) != 1 || agents[0].String() != "agent-9" {
		t.Fatalf("got onBehalfOf %v", agents)
	}
}

func TestNewWithoutOnBehalfOf(t *testing.T) {
	g := graph.New()
	partyID, err := New(g, "hub-org-1", "")
	if err != nil {
		t.Fatal(err)
	}
	node := vocab.MustIRI(vocab.IDPrefix + partyID)
	if got := g.Objects(node, vocab.Resolve(vocab.OnBehalfOf)); len(got) != 0 {
		t.Fatalf("unexpected onBehalfOf %v", got)
	}
}
