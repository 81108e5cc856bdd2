package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *API) storeAssets(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ids, err := a.svc.StoreAssets(r.Context(), chi.URLParam(r, "repository_id"), body, contentType(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"entity_ids": ids})
}

func (a *API) listAssets(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	rows, err := a.svc.ListAssets(r.Context(), chi.URLParam(r, "repository_id"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (a *API) assetSourceIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := a.svc.AssetSourceIDs(r.Context(),
		chi.URLParam(r, "repository_id"), chi.URLParam(r, "asset_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries := make([]SourceIDEntry, 0, len(ids))
	for _, sid := range ids {
		entries = append(entries, SourceIDEntry{SourceIDType: sid.Type, SourceID: sid.Value})
	}
	writeData(w, http.StatusOK, entries)
}

func (a *API) addAssetIDs(w http.ResponseWriter, r *http.Request) {
	var entries []SourceIDEntry
	if err := readJSON(r, &entries); err != nil {
		writeError(w, err)
		return
	}
	err := a.svc.AddAssetIDs(r.Context(),
		chi.URLParam(r, "repository_id"), chi.URLParam(r, "asset_id"), sourceIDs(entries))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
