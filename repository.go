// Package repository implements a rights-management repository service:
// ODRL offers and agreements over RDF assets held in a SPARQL triple
// store.
//
// Assets are onboarded with their external source identifiers, grouped
// into sets, and covered by offers. Accepting an offer validates the
// picked assets against the offer's targets and selectors and seals the
// result as an agreement.
//
//	svc, err := repository.NewService(
//	    repository.WithOpener(bg),
//	)
//	offerID, err := svc.CreateOffer(ctx, "repo1", payload, "text/turtle", "hub1")
package repository

// AgreementReceipt describes a stored agreement.
type AgreementReceipt struct {
	ID            string   `json:"id"`
	CoveredAssets []string `json:"covered_assets"`
}

// Capabilities advertises service limits to clients.
type Capabilities struct {
	DefaultPageSize  int      `json:"default_page_size"`
	MaxPageSize      int      `json:"max_page_size"`
	SupportedFormats []string `json:"supported_formats"`
}
