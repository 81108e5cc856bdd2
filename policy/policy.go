// Package policy implements the behaviour shared by offers and
// agreements: target enumeration, validation of requested assets against a
// policy's targets and selectors, in-graph metadata writes, and the bulk
// lookup of policies covering a list of assets.
package policy

import (
	"context"
	"strconv"

	"github.com/knakk/rdf"

	"github.com/clearrights/repository/entity"
	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// Target is one odrl:target of a policy: either a plain asset or an asset
// selector drawing from a set.
type Target struct {
	// ID is the short target id.
	ID string

	// Type is the full IRI of the target's class.
	Type string

	// SetID is the set an asset selector draws from; empty for assets.
	SetID string

	// MaxItems caps how many set elements a selector grants; defaults
	// to 1.
	MaxItems int

	// SelRequired marks selectors whose matched elements, rather than
	// the selector itself, count as covered.
	SelRequired bool
}

// Targets returns the policy's targets with their selector attributes.
func Targets(ctx context.Context, repo store.Repository, policyID string) ([]Target, error) {
	nid, err := id.Normalise(policyID)
	if err != nil {
		return nil, err
	}
	query := vocab.SPARQLPrefixes + entity.Expand(targetsQuery, map[string]string{"id": nid})
	solutions, err := store.Select(ctx, repo, query)
	if err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(solutions))
	for _, s := range solutions {
		target := Target{MaxItems: 1}
		if term, ok := s["target"]; ok {
			target.ID = id.Shorten(term.String())
		}
		if term, ok := s["type"]; ok {
			target.Type = term.String()
		}
		if term, ok := s["set_id"]; ok {
			target.SetID = term.String()
		}
		if term, ok := s["max_items"]; ok && term.String() != "" {
			n, err := strconv.Atoi(term.String())
			if err != nil {
				return nil, errs.Repositoryf("unexpected op:count value %q on target %s", term.String(), target.ID)
			}
			target.MaxItems = n
		}
		if term, ok := s["sel_required"]; ok {
			v, err := strconv.ParseBool(term.String())
			target.SelRequired = err == nil && v
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// ApplyMetadata writes recognized metadata values onto the constraint
// nodes of an in-memory policy graph. The key determines which constraint
// is touched; unknown keys are a validation error.
func ApplyMetadata(g *graph.Graph, root rdf.Subject, metadata map[string]string) error {
	for key, value := range metadata {
		discriminator, ok := vocab.MetadataAttrs[key]
		if !ok {
			return errs.Validationf("invalid metadata provided %s", key)
		}

		lit := rdf.NewTypedLiteral(value, vocab.Resolve("xsd:string"))
		for _, node := range constraintNodes(g, root) {
			if len(g.Objects(node, vocab.Resolve(discriminator))) == 0 {
				continue
			}
			g.SetProperty(node, vocab.Resolve(vocab.OdrlValue), lit)
		}
	}
	return nil
}

// constraintNodes walks the duty-constraint chains from the policy root,
// deduplicating nodes reachable through more than one chain.
func constraintNodes(g *graph.Graph, root rdf.Subject) []rdf.Subject {
	var out []rdf.Subject
	seen := map[string]struct{}{}
	for _, chain := range vocab.DutyConstraintChains {
		frontier := []rdf.Subject{root}
		for _, pred := range chain {
			var next []rdf.Subject
			for _, s := range frontier {
				for _, o := range g.Objects(s, vocab.Resolve(pred)) {
					if subj, ok := o.(rdf.Subject); ok {
						next = append(next, subj)
					}
				}
			}
			frontier = next
		}
		for _, s := range frontier {
			key := s.Serialize(rdf.NTriples)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// FindRoot returns the first subject of the given class in the graph and
// how many such subjects exist.
func FindRoot(g *graph.Graph, class string) (rdf.Subject, int) {
	subjects := g.SubjectsOfType(vocab.Resolve(class))
	if len(subjects) == 0 {
		return nil, 0
	}
	return subjects[0], len(subjects)
}

// SetExpiry writes the expiry timestamp attribute of a policy.
func SetExpiry(ctx context.Context, repo store.Repository, k *entity.Kind, policyID, expiryDate string) error {
	return k.SetAttr(ctx, repo, policyID, vocab.Expires,
		[]entity.Value{entity.Literal(expiryDate, "xsd:dateTime")}, nil, true)
}

// Expired reports whether the policy expires before the given timestamp.
func Expired(ctx context.Context, repo store.Repository, k *entity.Kind, policyID, timestamp string) (bool, error) {
	return k.MatchAttr(ctx, repo, policyID, vocab.Expires, "", entity.TimeRange("o", "", timestamp)...)
}
