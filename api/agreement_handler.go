package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearrights/repository/agreement"
	"github.com/clearrights/repository/errs"
)

func (a *API) createAgreement(w http.ResponseWriter, r *http.Request) {
	var req CreateAgreementRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.OfferID == "" {
		writeError(w, errs.Validationf("offer_id is required"))
		return
	}
	if req.Organisation == "" {
		writeError(w, errs.Validationf("party_id is required"))
		return
	}

	receipt, err := a.svc.CreateAgreement(r.Context(), chi.URLParam(r, "repository_id"), agreement.Request{
		OfferID:      req.OfferID,
		Organisation: req.Organisation,
		OnBehalfOf:   req.OnBehalfOf,
		AssetIDs:     req.AssetIDs,
		Metadata:     req.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

func (a *API) listAgreements(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	rows, err := a.svc.ListAgreements(r.Context(), chi.URLParam(r, "repository_id"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

func (a *API) getAgreement(w http.ResponseWriter, r *http.Request) {
	doc, err := a.svc.GetAgreement(r.Context(),
		chi.URLParam(r, "repository_id"), chi.URLParam(r, "agreement_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, doc)
}
