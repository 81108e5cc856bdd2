package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearrights/repository/asset"
	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/policy"
)

func (a *API) offersForAssets(w http.ResponseWriter, r *http.Request) {
	a.policiesForAssets(w, r, "offers", a.svc.OffersForAssets)
}

func (a *API) agreementsForAssets(w http.ResponseWriter, r *http.Request) {
	a.policiesForAssets(w, r, "agreements", a.svc.AgreementsForAssets)
}

func (a *API) policiesForAssets(w http.ResponseWriter, r *http.Request, key string,
	query func(ctx context.Context, repositoryID string, ids []asset.SourceID) ([]policy.AssetPolicies, error)) {
	var entries []SourceIDEntry
	if err := readJSON(r, &entries); err != nil {
		writeError(w, err)
		return
	}
	if len(entries) == 0 {
		writeError(w, errs.Validationf("invalid asset list"))
		return
	}

	results, err := query(r.Context(), chi.URLParam(r, "repository_id"), sourceIDs(entries))
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]map[string]any, 0, len(results))
	for _, ap := range results {
		rows = append(rows, map[string]any{
			"entity_id":      ap.EntityID,
			"source_id":      ap.SourceID,
			"source_id_type": ap.SourceIDType,
			key:              ap.Policies,
		})
	}
	writeData(w, http.StatusOK, rows)
}
