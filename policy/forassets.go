package policy

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/url"
	"strings"

	"github.com/clearrights/repository/asset"
	"github.com/clearrights/repository/entity"
	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// AssetPolicies holds the policies covering one selected asset.
type AssetPolicies struct {
	EntityID     string `json:"entity_id"`
	SourceID     string `json:"source_id"`
	SourceIDType string `json:"source_id_type"`

	// Policies are the covering policies rendered as JSON-LD documents,
	// keyed under the policy kind's plural name ("offers", "agreements")
	// by the API layer.
	Policies []any `json:"-"`
}

// ForAssets returns, per requested source id, the policies of the kind's
// class covering that asset, with each policy embedded as JSON-LD. The
// store groups results as CSV; each row carries pipe-separated entity and
// policy id lists.
func ForAssets(ctx context.Context, logger *slog.Logger, repo store.Repository, k *entity.Kind, ids []asset.SourceID) ([]AssetPolicies, error) {
	if len(ids) == 0 {
		logger.Warn("bulk policy query with no data")
		return []AssetPolicies{}, nil
	}

	subquery, err := asset.SubselectIDList(ids, "entity")
	if err != nil {
		return nil, err
	}
	query := vocab.SPARQLPrefixes + entity.Expand(policiesForAssetsQuery, map[string]string{
		"idname":      "entity",
		"subquery":    subquery,
		"policy_type": k.Class,
	})
	body, err := repo.Query(ctx, query, store.AcceptCSV)
	if err != nil {
		return nil, err
	}
	return process(ctx, repo, k, body)
}

func process(ctx context.Context, repo store.Repository, k *entity.Kind, csvBody []byte) ([]AssetPolicies, error) {
	rows, err := parseRows(csvBody)
	if err != nil {
		return nil, err
	}

	// fetch each distinct policy once
	docs := make(map[string]any)
	for _, row := range rows {
		for _, pid := range row.policyIDs {
			if _, ok := docs[pid]; ok {
				continue
			}
			g, err := k.Retrieve(ctx, repo, pid)
			if err != nil {
				return nil, err
			}
			doc, err := graph.EncodeJSONLD(g, vocab.JSONLDContext())
			if err != nil {
				return nil, err
			}
			docs[pid] = doc
		}
	}

	out := make([]AssetPolicies, 0, len(rows))
	for _, row := range rows {
		ap := row.AssetPolicies
		for _, pid := range row.policyIDs {
			ap.Policies = append(ap.Policies, docs[pid])
		}
		out = append(out, ap)
	}
	return out, nil
}

type policyRow struct {
	AssetPolicies
	policyIDs []string
}

func parseRows(csvBody []byte) ([]policyRow, error) {
	reader := csv.NewReader(strings.NewReader(string(csvBody)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errs.Repositoryf("parse bulk policy result: %v", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	bundleCol, ok1 := col["entity_id_bundle"]
	idsCol, ok2 := col["ids"]
	policiesCol, ok3 := col["policies"]
	if !ok1 || !ok2 || !ok3 {
		return nil, errs.Repositoryf("bulk policy result missing expected columns: %v", records[0])
	}

	rows := make([]policyRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := policyRow{}

		// multiple entity ids can share a source id; report the first
		entityIDs := splitList(rec[idsCol])
		if len(entityIDs) > 0 {
			row.EntityID = id.Shorten(entityIDs[0])
		}

		bundle := rec[bundleCol]
		if sep := strings.Index(bundle, "#"); sep >= 0 {
			row.SourceIDType = unquote(id.Shorten(bundle[:sep]))
			row.SourceID = unquote(bundle[sep+1:])
		}

		for _, pid := range splitList(rec[policiesCol]) {
			row.policyIDs = append(row.policyIDs, id.Shorten(pid))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "|")
}

func unquote(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}
