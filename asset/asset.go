// Package asset implements the asset entity kind: creative works carrying
// external source identifiers. Assets are onboarded in bulk; storing a
// payload first prunes older copies of the same works, then stamps and
// indexes the new ones.
package asset

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/knakk/rdf"

	"github.com/clearrights/repository/entity"
	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/index"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// HubKeyType marks a source id holding a repository entity reference
// instead of an external identifier.
const HubKeyType = "hub_key"

// SourceID is an external identifier of an asset.
type SourceID struct {
	Type  string
	Value string
}

// NewKind builds the asset entity kind. The notifier receives detached
// change and delete notifications when asset payloads are stored.
func NewKind(notifier index.Notifier, logger *slog.Logger) *entity.Kind {
	k := &entity.Kind{
		Name:           "asset",
		Class:          vocab.AssetClass,
		IDName:         listIDName,
		StructSelect:   structSelect,
		CopyNodes:      vocab.AssetStruct,
		ListExtraIDs:   listExtraIDs,
		ListExtraQuery: listExtraQuery,
	}
	k.BeforeStore = []entity.Hook{pruneHook(notifier, logger)}
	k.OnStore = []entity.Hook{stampAndNotifyHook(k, notifier, logger)}
	return k
}

// EntityIDs returns the short ids of every asset declared in the graph.
func EntityIDs(g *graph.Graph) []string {
	subjects := g.SubjectsOfType(vocab.Resolve(vocab.AssetClass))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, id.Shorten(s.String()))
	}
	return out
}

// SourceIDs extracts the source ids attached to one asset in the graph.
func SourceIDs(g *graph.Graph, entityID string) ([]SourceID, error) {
	root, err := id.ExpandRaw(entityID)
	if err != nil {
		return nil, err
	}
	var out []SourceID
	for _, node := range g.Objects(root, vocab.Resolve(vocab.AlsoIdentifiedBy)) {
		subj, ok := node.(rdf.Subject)
		if !ok {
			continue
		}
		types := g.Objects(subj, vocab.Resolve(vocab.SourceIDType))
		values := g.Objects(subj, vocab.Resolve(vocab.SourceIDValue))
		if len(types) == 0 || len(values) == 0 {
			continue
		}
		out = append(out, SourceID{
			Type:  id.Shorten(types[0].String()),
			Value: values[0].String(),
		})
	}
	return out, nil
}

// AddIDs attaches source ids to an existing asset and bumps its
// modification time. Entries missing a type or value are rejected before
// anything is written.
func AddIDs(ctx context.Context, repo store.Repository, k *entity.Kind, entityID string, ids []SourceID) error {
	var problems []string
	for i, sid := range ids {
		if sid.Type == "" {
			problems = append(problems, "missing source_id_type for entry:"+strconv.Itoa(i+1))
		}
		if sid.Value == "" {
			problems = append(problems, "missing source_id for entry:"+strconv.Itoa(i+1))
		}
	}
	if len(problems) > 0 {
		return errs.Validationf("%s", strings.Join(problems, "; "))
	}
	if len(ids) == 0 {
		return nil
	}

	nid, err := id.Normalise(entityID)
	if err != nil {
		return err
	}
	var triples strings.Builder
	for _, sid := range ids {
		triples.WriteString(entity.Expand(appendAlsoIdentifiedQuery, map[string]string{
			"entity_id":       nid,
			"source_id_type":  id.HubRef(sid.Type),
			"source_id_value": entity.QuoteString(sid.Value),
			"bnode":           id.New(),
		}))
	}
	query := vocab.SPARQLPrefixes + entity.Expand(insertDataQuery, map[string]string{"triples": triples.String()})
	if err := repo.Update(ctx, query); err != nil {
		return err
	}
	return k.InsertTimestamps(ctx, repo, []string{entityID})
}

// AlsoIdentifiedBy returns the source ids stored for an asset.
func AlsoIdentifiedBy(ctx context.Context, repo store.Repository, entityID string) ([]SourceID, error) {
	nid, err := id.Normalise(entityID)
	if err != nil {
		return nil, err
	}
	query := vocab.SPARQLPrefixes + entity.Expand(getAlsoIdentifiedQuery, map[string]string{"entity_id": nid})
	solutions, err := store.Select(ctx, repo, query)
	if err != nil {
		return nil, err
	}
	out := make([]SourceID, 0, len(solutions))
	for _, s := range solutions {
		sid := SourceID{}
		if t, ok := s["source_id_type"]; ok {
			sid.Type = id.Shorten(t.String())
		}
		if v, ok := s["source_id"]; ok {
			sid.Value = v.String()
		}
		out = append(out, sid)
	}
	return out, nil
}

// SubselectIDList builds the subquery resolving a mixed list of hub keys
// and source ids into entity bindings, for the bulk policy lookup.
func SubselectIDList(ids []SourceID, idname string) (string, error) {
	if len(ids) == 0 {
		return "", errs.Validationf("invalid asset list")
	}

	var hubKeys, others []SourceID
	for _, sid := range ids {
		if sid.Type == HubKeyType {
			hubKeys = append(hubKeys, sid)
		} else {
			others = append(others, sid)
		}
	}

	var subqueries []string
	if len(hubKeys) > 0 {
		rows := make([]string, 0, len(hubKeys))
		for _, hk := range hubKeys {
			nid, err := id.Normalise(hk.Value)
			if err != nil {
				return "", err
			}
			rows = append(rows, "("+nid+")")
		}
		subqueries = append(subqueries, "{\n"+entity.Expand(selectByEntityIDQuery, map[string]string{
			"idname": idname,
			"idlist": strings.Join(rows, "\n"),
		})+"}\n")
	}
	if len(others) > 0 {
		rows := make([]string, 0, len(others))
		for _, sid := range others {
			rows = append(rows, "("+id.HubRef(sid.Type)+" "+entity.QuoteString(url.QueryEscape(sid.Value))+")")
		}
		subqueries = append(subqueries, "{\n"+entity.Expand(selectBySourceIDQuery, map[string]string{
			"idname": idname,
			"idlist": strings.Join(rows, "\n"),
		})+"}\n")
	}
	return "{\n" + strings.Join(subqueries, " UNION ") + "}\n", nil
}

// pruneHook deletes previously stored copies of the incoming assets, both
// from the store and (detached) from the index.
func pruneHook(notifier index.Notifier, logger *slog.Logger) entity.Hook {
	return func(ctx context.Context, repo store.Repository, g *graph.Graph) ([]string, error) {
		for _, entityID := range EntityIDs(g) {
			ids, err := SourceIDs(g, entityID)
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				continue
			}

			types := make([]string, len(ids))
			values := make([]string, len(ids))
			for i, sid := range ids {
				types[i] = sid.Type
				values[i] = sid.Value
			}
			repoID := repo.ID()
			index.Detach(logger, "index delete", func(ctx context.Context) error {
				return notifier.DeleteAssets(ctx, repoID, types, values)
			})

			if err := Prune(ctx, repo, ids); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// stampAndNotifyHook timestamps the stored assets and pings the index.
func stampAndNotifyHook(k *entity.Kind, notifier index.Notifier, logger *slog.Logger) entity.Hook {
	return func(ctx context.Context, repo store.Repository, g *graph.Graph) ([]string, error) {
		entityIDs := EntityIDs(g)
		if err := k.InsertTimestamps(ctx, repo, entityIDs); err != nil {
			return nil, err
		}
		repoID := repo.ID()
		index.Detach(logger, "index notify", func(ctx context.Context) error {
			return notifier.NotifyChange(ctx, repoID)
		})
		return entityIDs, nil
	}
}

// Prune removes assets matching the given source ids, dropping id nodes
// that no other entity shares.
func Prune(ctx context.Context, repo store.Repository, ids []SourceID) error {
	validated := make([]SourceID, 0, len(ids))
	for _, sid := range ids {
		if sid.Type == "" || sid.Value == "" {
			return errs.Validationf("source id entry missing type or value")
		}
		if sid.Type == HubKeyType {
			validated = append(validated, SourceID{Type: sid.Type, Value: id.Shorten(sid.Value)})
		} else {
			validated = append(validated, SourceID{
				Type:  url.QueryEscape(sid.Type),
				Value: url.QueryEscape(sid.Value),
			})
		}
	}

	entities, err := matchingEntities(ctx, repo, validated)
	if err != nil {
		return err
	}
	for _, entityRef := range entities {
		attached, err := entitySourceIDs(ctx, repo, entityRef)
		if err != nil {
			return err
		}
		for _, sid := range attached {
			count, err := countOtherUsers(ctx, repo, sid, entityRef)
			if err != nil {
				return err
			}
			if count == 0 {
				if err := deleteIDTriples(ctx, repo, sid); err != nil {
					return err
				}
			}
		}
		if err := deleteEntity(ctx, repo, entityRef); err != nil {
			return err
		}
	}
	return nil
}

func matchingEntities(ctx context.Context, repo store.Repository, ids []SourceID) ([]string, error) {
	rows := make([]string, 0, len(ids))
	for _, sid := range ids {
		rows = append(rows, "("+entity.QuoteString(sid.Value)+" "+id.HubRef(sid.Type)+")")
	}
	query := vocab.SPARQLPrefixes + entity.Expand(findEntitiesQuery, map[string]string{
		"id_filter": strings.Join(rows, "\n"),
	})
	solutions, err := store.Select(ctx, repo, query)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(solutions))
	for _, s := range solutions {
		if term, ok := s["s"]; ok {
			out = append(out, term.String())
		}
	}
	return out, nil
}

func entitySourceIDs(ctx context.Context, repo store.Repository, entityRef string) ([]SourceID, error) {
	nid, err := id.Normalise(entityRef)
	if err != nil {
		return nil, err
	}
	query := vocab.SPARQLPrefixes + entity.Expand(findEntitySourceIDsQuery, map[string]string{"entity_id": nid})
	solutions, err := store.Select(ctx, repo, query)
	if err != nil {
		return nil, err
	}
	out := make([]SourceID, 0, len(solutions))
	for _, s := range solutions {
		sid := SourceID{}
		if t, ok := s["idtype"]; ok {
			sid.Type = id.Shorten(t.String())
		}
		if v, ok := s["id"]; ok {
			sid.Value = v.String()
		}
		out = append(out, sid)
	}
	return out, nil
}

func countOtherUsers(ctx context.Context, repo store.Repository, sid SourceID, entityRef string) (int, error) {
	nid, err := id.Normalise(entityRef)
	if err != nil {
		return 0, err
	}
	query := vocab.SPARQLPrefixes + entity.Expand(countOtherUsersQuery, map[string]string{
		"source_id":      entity.QuoteString(sid.Value),
		"source_id_type": id.HubRef(sid.Type),
		"entity_id":      nid,
	})
	solutions, err := store.Select(ctx, repo, query)
	if err != nil {
		return 0, err
	}
	if len(solutions) == 0 {
		return 0, nil
	}
	count, ok := solutions[0]["count"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(count.String())
	if err != nil {
		return 0, errs.Repositoryf("unexpected count %q", count.String())
	}
	return n, nil
}

func deleteIDTriples(ctx context.Context, repo store.Repository, sid SourceID) error {
	query := vocab.SPARQLPrefixes + entity.Expand(deleteIDTriplesQuery, map[string]string{
		"source_id":      entity.QuoteString(sid.Value),
		"source_id_type": id.HubRef(sid.Type),
	})
	return repo.Update(ctx, query)
}

func deleteEntity(ctx context.Context, repo store.Repository, entityRef string) error {
	nid, err := id.Normalise(entityRef)
	if err != nil {
		return err
	}
	query := vocab.SPARQLPrefixes + entity.Expand(deleteEntityQuery, map[string]string{"entity_id": nid})
	return repo.Update(ctx, query)
}
