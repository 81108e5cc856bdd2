package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *API) createSet(w http.ResponseWriter, r *http.Request) {
	var req CreateSetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	setID, err := a.svc.CreateSet(r.Context(), chi.URLParam(r, "repository_id"), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": setID})
}

func (a *API) listSets(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	rows, err := a.svc.ListSets(r.Context(), chi.URLParam(r, "repository_id"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (a *API) setElements(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	elements, err := a.svc.SetElements(r.Context(),
		chi.URLParam(r, "repository_id"), chi.URLParam(r, "set_id"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"elements": elements})
}

func (a *API) replaceSetElements(w http.ResponseWriter, r *http.Request) {
	a.updateSetElements(w, r, a.svc.ReplaceSetElements)
}

func (a *API) addSetElements(w http.ResponseWriter, r *http.Request) {
	a.updateSetElements(w, r, a.svc.AddSetElements)
}

func (a *API) removeSetElements(w http.ResponseWriter, r *http.Request) {
	a.updateSetElements(w, r, a.svc.RemoveSetElements)
}

func (a *API) updateSetElements(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, repositoryID, setID string, elementIDs []string) error) {
	var req SetElementsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err := op(r.Context(), chi.URLParam(r, "repository_id"), chi.URLParam(r, "set_id"), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
