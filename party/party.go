// Package party creates the party nodes recorded as policy assigners and
// assignees. Parties are always minted inside the in-memory graph of the
// offer or agreement being built, never written on their own.
package party

import (
	"github.com/knakk/rdf"

	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/vocab"
)

// New adds a party node to the graph and returns its short id. The
// provider is the hub organisation the party represents; onBehalfOf, when
// set, records who the provider acted for.
func New(g *graph.Graph, provider, onBehalfOf string) (string, error) {
	partyID := id.New()
	node := vocab.MustIRI(vocab.IDPrefix + partyID)
	g.AddTriple(node, vocab.RDFType, vocab.Resolve(vocab.PartyClass))

	if provider != "" {
		lit, err := rdf.NewLiteral(provider)
		if err != nil {
			return "", err
		}
		g.AddTriple(node, vocab.Resolve(vocab.Provider), lit)
	}
	if onBehalfOf != "" {
		lit, err := rdf.NewLiteral(onBehalfOf)
		if err != nil {
			return "", err
		}
		g.AddTriple(node, vocab.Resolve(vocab.OnBehalfOf), lit)
	}
	return partyID, nil
}
