package api

import "github.com/clearrights/repository/asset"

// SourceIDEntry is one external identifier in a request body.
type SourceIDEntry struct {
	SourceIDType string `json:"source_id_type"`
	SourceID     string `json:"source_id"`
}

func sourceIDs(entries []SourceIDEntry) []asset.SourceID {
	out := make([]asset.SourceID, 0, len(entries))
	for _, e := range entries {
		out = append(out, asset.SourceID{Type: e.SourceIDType, Value: e.SourceID})
	}
	return out
}

// CreateSetRequest creates a new set.
type CreateSetRequest struct {
	Title string `json:"title"`
}

// SetElementsRequest carries set member ids.
type SetElementsRequest struct {
	IDs []string `json:"ids"`
}

// ExpireOfferRequest sets an offer's expiry date.
type ExpireOfferRequest struct {
	ExpiryDate string `json:"expiry_date"`
}

// CreateAgreementRequest accepts an offer.
type CreateAgreementRequest struct {
	OfferID      string            `json:"offer_id"`
	Organisation string            `json:"party_id"`
	OnBehalfOf   string            `json:"on_behalf_of,omitempty"`
	AssetIDs     []string          `json:"asset_ids,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
