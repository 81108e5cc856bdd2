// Package api exposes the repository service over HTTP. Handlers are
// thin: they parse, delegate to the service and render the JSON
// envelope; all behaviour lives in the model packages.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearrights/repository"
	"github.com/clearrights/repository/middleware"
)

// API wires the repository HTTP handlers together.
type API struct {
	svc    *repository.Service
	logger *slog.Logger
}

// New creates an API serving the given service.
func New(svc *repository.Service, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{svc: svc, logger: logger}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(a.logger))
	r.Use(middleware.Log(a.logger))

	r.Route("/v1/repository", func(r chi.Router) {
		r.Get("/capabilities", a.capabilities)

		r.Route("/repositories/{repository_id}", func(r chi.Router) {
			r.Route("/assets", func(r chi.Router) {
				r.Post("/", a.storeAssets)
				r.Get("/", a.listAssets)
				r.Route("/{asset_id}/ids", func(r chi.Router) {
					r.Get("/", a.assetSourceIDs)
					r.Post("/", a.addAssetIDs)
				})
			})

			r.Route("/sets", func(r chi.Router) {
				r.Post("/", a.createSet)
				r.Get("/", a.listSets)
				r.Route("/{set_id}/elements", func(r chi.Router) {
					r.Get("/", a.setElements)
					r.Put("/", a.replaceSetElements)
					r.Post("/", a.addSetElements)
					r.Delete("/", a.removeSetElements)
				})
			})

			r.Route("/offers", func(r chi.Router) {
				r.Post("/", a.createOffer)
				r.Get("/", a.listOffers)
				r.Get("/{offer_id}", a.getOffer)
				r.Post("/{offer_id}/expire", a.expireOffer)
			})

			r.Route("/agreements", func(r chi.Router) {
				r.Post("/", a.createAgreement)
				r.Get("/", a.listAgreements)
				r.Get("/{agreement_id}", a.getAgreement)
			})

			r.Post("/search/offers", a.offersForAssets)
			r.Post("/search/agreements", a.agreementsForAssets)
		})
	})

	return r
}

func (a *API) capabilities(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, a.svc.Capabilities())
}
