// Package entity implements the generic persistence model every repository
// entity builds on: existence checks, attribute reads and updates through
// SPARQL property paths, timestamped listing, subgraph retrieval and the
// deep copy that rewrites internal identifiers. Concrete kinds (assets,
// sets, parties, offers, agreements) configure a Kind value and attach
// store hooks for their extra behaviour.
package entity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/knakk/rdf"

	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// Hook runs before or after an entity payload is written to the store. The
// graph is the decoded payload. A hook may return entity ids describing
// what was stored; Store hands back the last non-nil result.
type Hook func(ctx context.Context, repo store.Repository, g *graph.Graph) ([]string, error)

// Kind describes one entity kind and how the generic operations apply to
// it. Kind values are static configuration assembled by the concrete
// entity packages.
type Kind struct {
	Name  string
	Class string

	// IDName is the projection variable for list queries.
	IDName string

	// StructSelect, when set, is the SPARQL subquery binding ?s to every
	// subject belonging to the entity; it has an {id} placeholder. Kinds
	// without internal structure leave it empty.
	StructSelect string

	// CopyNodes is the structural schema walked to find the nodes that
	// get fresh identifiers when the entity is copied.
	CopyNodes []vocab.Node

	// SelectorViaTarget additionally rewrites odrl:target objects typed
	// op:AssetSelector during a copy; selectors belong to the policy even
	// though targets are normally shared references.
	SelectorViaTarget bool

	// ListExtraIDs and ListExtraQuery extend list queries with extra
	// projections; {id_name} in the query is replaced by IDName.
	ListExtraIDs   string
	ListExtraQuery string

	BeforeStore []Hook
	OnStore     []Hook
}

func (k *Kind) idName() string {
	if k.IDName == "" {
		return "id"
	}
	return k.IDName
}

// Exists reports whether an entity of this kind exists, optionally
// constrained by extra SPARQL clauses.
func (k *Kind) Exists(ctx context.Context, repo store.Repository, entityID string, filters ...string) (bool, error) {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return false, err
	}
	query := vocab.SPARQLPrefixes + Expand(checkExistsQuery, map[string]string{
		"id":      nid,
		"class":   k.Class,
		"filters": Filter(filters...),
	})
	return store.Ask(ctx, repo, query)
}

// MatchAttr reports whether the entity has the predicate with the given
// value. An empty value matches any object; filters constrain the match.
func (k *Kind) MatchAttr(ctx context.Context, repo store.Repository, entityID, predicate, value string, filters ...string) (bool, error) {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return false, err
	}
	if value == "" {
		value = "?o"
	}
	query := vocab.SPARQLPrefixes + Expand(matchAttrQuery, map[string]string{
		"id":        nid,
		"predicate": predicate,
		"value":     value,
		"filter":    Filter(filters...),
	})
	return store.Ask(ctx, repo, query)
}

// GetAttr returns the values of one predicate of the entity. A positive
// pageSize paginates ordered by value.
func (k *Kind) GetAttr(ctx context.Context, repo store.Repository, entityID, predicate string, filters []string, page, pageSize int) ([]rdf.Term, error) {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return nil, err
	}
	pagination := ""
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		pagination = fmt.Sprintf("ORDER BY ?o\nOFFSET %d\nLIMIT %d\n", (page-1)*pageSize, pageSize)
	}
	query := vocab.SPARQLPrefixes + Expand(getAttrQuery, map[string]string{
		"id":         nid,
		"predicate":  predicate,
		"filter":     Filter(filters...),
		"pagination": pagination,
	})
	solutions, err := store.Select(ctx, repo, query)
	if err != nil {
		return nil, err
	}
	out := make([]rdf.Term, 0, len(solutions))
	for _, s := range solutions {
		if term, ok := s["o"]; ok {
			out = append(out, term)
		}
	}
	return out, nil
}

// whereForPath builds the WHERE clause navigating a predicate path down to
// the subject holding the final step, and returns that final step.
func whereForPath(nid, predicate string, filters []string) (where, last string) {
	steps := splitPath(predicate)
	last = steps[len(steps)-1]
	if len(steps) > 1 {
		where = nid + " " + strings.Join(steps[:len(steps)-1], "/") + " ?s .\n" + strings.Join(filters, "\n") + "\n"
	} else {
		where = "BIND (" + nid + " AS ?s)\n"
	}
	return where, last
}

// AppendAttr adds values to an attribute reached through a predicate path,
// leaving existing values in place.
func (k *Kind) AppendAttr(ctx context.Context, repo store.Repository, entityID, predicate string, values []Value, filters []string, updateModified bool) error {
	return k.appendAttr(ctx, repo, entityID, predicate, values, filters, "", updateModified)
}

func (k *Kind) appendAttr(ctx context.Context, repo store.Repository, entityID, predicate string, values []Value, filters []string, prequery string, updateModified bool) error {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return err
	}
	query := vocab.SPARQLPrefixes + prequery

	if len(values) > 0 {
		where, last := whereForPath(nid, predicate, filters)
		where += valuesClause("?to", values)
		query += Expand(insertWhereQuery, map[string]string{
			"triples": "?s " + last + " ?to .",
			"where":   where,
		})
	}

	if updateModified {
		if trimmed := strings.TrimSpace(query); trimmed != "" && !strings.HasSuffix(trimmed, ";") {
			query += ";"
		}
		query += Expand(insertTimestampsQuery, map[string]string{"id": nid})
	}
	return repo.Update(ctx, query)
}

// SetAttr replaces the values of an attribute reached through a predicate
// path. Filters constrain which subjects along the path are touched.
func (k *Kind) SetAttr(ctx context.Context, repo store.Repository, entityID, predicate string, values []Value, filters []string, updateModified bool) error {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return err
	}
	where, last := whereForPath(nid, predicate, filters)
	prequery := Expand(deleteTriplesWhereQuery, map[string]string{
		"where": where + "BIND(" + last + " AS ?p) .\n?s " + last + " ?o .",
	}) + ";"
	return k.appendAttr(ctx, repo, entityID, predicate, values, filters, prequery, updateModified)
}

// RemoveAttr deletes the given values of an attribute reached through a
// predicate path. Values absent from the store are ignored.
func (k *Kind) RemoveAttr(ctx context.Context, repo store.Repository, entityID, predicate string, values []Value, filters []string, updateModified bool) error {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return err
	}
	where, last := whereForPath(nid, predicate, filters)
	if len(values) > 0 {
		where += valuesClause("?o", values)
	}
	query := Expand(deleteTriplesWhereQuery, map[string]string{
		"where": where + "BIND(" + last + " AS ?p) .\n?s " + last + " ?o .",
	})
	if updateModified {
		query += ";" + Expand(insertTimestampsQuery, map[string]string{"id": nid})
	}
	return repo.Update(ctx, vocab.SPARQLPrefixes+query)
}

// StampHook returns an on-store hook that timestamps every stored entity
// of the kind and reports their ids.
func StampHook(k *Kind) Hook {
	return func(ctx context.Context, repo store.Repository, g *graph.Graph) ([]string, error) {
		subjects := g.SubjectsOfType(vocab.Resolve(k.Class))
		ids := make([]string, 0, len(subjects))
		for _, s := range subjects {
			ids = append(ids, id.Shorten(s.String()))
		}
		if err := k.InsertTimestamps(ctx, repo, ids); err != nil {
			return nil, err
		}
		return ids, nil
	}
}

// InsertTimestamps stamps the entities with a fresh modification time.
func (k *Kind) InsertTimestamps(ctx context.Context, repo store.Repository, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, 0, len(ids))
	for _, entityID := range ids {
		nid, err := id.Normalise(entityID)
		if err != nil {
			return err
		}
		parts = append(parts, Expand(insertTimestampsQuery, map[string]string{"id": nid}))
	}
	return repo.Update(ctx, vocab.SPARQLPrefixes+strings.Join(parts, ";\n"))
}

// ListPaged returns entities of the kind ordered by last modification,
// with the kind's extra projections. Page numbering starts at 1.
func (k *Kind) ListPaged(ctx context.Context, repo store.Repository, filters []string, page, pageSize int) ([]map[string]rdf.Term, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	query := vocab.SPARQLPrefixes + Expand(listByTimeQuery, map[string]string{
		"id_name":         k.idName(),
		"class":           k.Class,
		"filter":          Filter(filters...),
		"extra_query_ids": k.ListExtraIDs,
		"extra_query":     strings.ReplaceAll(k.ListExtraQuery, "{id_name}", k.idName()),
		"page_size":       strconv.Itoa(pageSize),
		"offset":          strconv.Itoa((page - 1) * pageSize),
	})
	return store.Select(ctx, repo, query)
}

// Retrieve reconstructs the entity's subgraph from the store.
func (k *Kind) Retrieve(ctx context.Context, repo store.Repository, entityID string) (*graph.Graph, error) {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return nil, err
	}
	structQuery := bindStructQuery
	if k.StructSelect != "" {
		structQuery = k.StructSelect
	}
	query := vocab.SPARQLPrefixes + Expand(getQuery, map[string]string{
		"id":     nid,
		"class":  k.Class,
		"struct": Expand(structQuery, map[string]string{"id": nid}),
	})
	body, err := repo.Query(ctx, query, store.AcceptTurtle)
	if err != nil {
		return nil, err
	}
	return graph.Decode(body, graph.FormatTurtle)
}

// CopyGraph deep-copies the entity's graph, assigning fresh identifiers to
// the root and every node of the kind's structural schema.
func (k *Kind) CopyGraph(g *graph.Graph, entityID string) (*graph.Graph, error) {
	root, err := id.ExpandRaw(entityID)
	if err != nil {
		return nil, err
	}
	replace := []rdf.Term{root}
	if len(k.CopyNodes) > 0 {
		replace = g.Walk(root, k.CopyNodes)
	}
	if k.SelectorViaTarget {
		replace = append(replace, selectorTargets(g, replace)...)
	}
	return graph.Copy(g, replace), nil
}

// selectorTargets finds odrl:target objects of the given nodes that are
// typed op:AssetSelector and not already scheduled for replacement.
func selectorTargets(g *graph.Graph, nodes []rdf.Term) []rdf.Term {
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		seen[n.Serialize(rdf.NTriples)] = struct{}{}
	}
	targetPred := vocab.Resolve(vocab.Target)
	selectorClass := vocab.Resolve(vocab.AssetSelectorClass)

	var out []rdf.Term
	for _, n := range nodes {
		subj, ok := n.(rdf.Subject)
		if !ok {
			continue
		}
		for _, o := range g.Objects(subj, targetPred) {
			key := o.Serialize(rdf.NTriples)
			if _, dup := seen[key]; dup {
				continue
			}
			target, ok := o.(rdf.Subject)
			if !ok || !g.Has(target, vocab.RDFType, selectorClass) {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, o)
		}
	}
	return out
}

// RetrieveCopy retrieves the entity and returns a copy with all internal
// identifiers replaced.
func (k *Kind) RetrieveCopy(ctx context.Context, repo store.Repository, entityID string) (*graph.Graph, error) {
	g, err := k.Retrieve(ctx, repo, entityID)
	if err != nil {
		return nil, err
	}
	return k.CopyGraph(g, entityID)
}

// Store validates a serialized payload, runs the kind's before-store
// hooks, writes the payload as turtle and runs the on-store hooks. The
// result of the last on-store hook is returned.
func (k *Kind) Store(ctx context.Context, repo store.Repository, payload []byte, format string) ([]string, error) {
	g, err := graph.Decode(payload, format)
	if err != nil {
		return nil, err
	}
	return k.StoreGraph(ctx, repo, g)
}

// StoreGraph writes an already decoded graph through the hook pipeline.
func (k *Kind) StoreGraph(ctx context.Context, repo store.Repository, g *graph.Graph) ([]string, error) {
	for _, hook := range k.BeforeStore {
		if _, err := hook(ctx, repo, g); err != nil {
			return nil, err
		}
	}

	payload, err := graph.Encode(g, graph.FormatTurtle)
	if err != nil {
		return nil, err
	}
	if err := repo.Store(ctx, payload, "application/x-turtle"); err != nil {
		return nil, err
	}

	var result []string
	for _, hook := range k.OnStore {
		res, err := hook(ctx, repo, g)
		if err != nil {
			return nil, err
		}
		if res != nil {
			result = res
		}
	}
	return result, nil
}
