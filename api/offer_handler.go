package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearrights/repository/errs"
)

func (a *API) createOffer(w http.ResponseWriter, r *http.Request) {
	provider := r.URL.Query().Get("provider")
	if provider == "" {
		writeError(w, errs.Validationf("provider is required"))
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	offerID, err := a.svc.CreateOffer(r.Context(),
		chi.URLParam(r, "repository_id"), body, contentType(r), provider)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": offerID})
}

func (a *API) listOffers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	rows, err := a.svc.ListOffers(r.Context(), chi.URLParam(r, "repository_id"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (a *API) getOffer(w http.ResponseWriter, r *http.Request) {
	doc, err := a.svc.GetOffer(r.Context(),
		chi.URLParam(r, "repository_id"), chi.URLParam(r, "offer_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, doc)
}

func (a *API) expireOffer(w http.ResponseWriter, r *http.Request) {
	var req ExpireOfferRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err := a.svc.ExpireOffer(r.Context(),
		chi.URLParam(r, "repository_id"), chi.URLParam(r, "offer_id"), req.ExpiryDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
