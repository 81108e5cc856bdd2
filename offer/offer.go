// Package offer implements the offer entity kind: ODRL offers published by
// asset holders. Creating an offer mints fresh identifiers for the whole
// policy structure, so stored offers never share nodes with the submitted
// payload or with each other.
package offer

import (
	"context"
	"time"

	"github.com/clearrights/repository/entity"
	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/party"
	"github.com/clearrights/repository/policy"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// NewKind builds the offer entity kind.
func NewKind() *entity.Kind {
	k := &entity.Kind{
		Name:              "offer",
		Class:             vocab.OfferClass,
		StructSelect:      policy.StructSelect,
		CopyNodes:         vocab.PolicyStruct,
		SelectorViaTarget: true,
		ListExtraIDs:      "?title",
		ListExtraQuery: `
    OPTIONAL { ?{id_name} dcterm:title ?title . }
`,
	}
	k.OnStore = []entity.Hook{entity.StampHook(k)}
	return k
}

// New stores a submitted offer payload under fresh identifiers and returns
// the short id of the stored offer. The payload must contain exactly one
// offer. The provider organisation is recorded as the offer's assigner.
func New(ctx context.Context, repo store.Repository, k *entity.Kind, payload []byte, format, provider string) (string, error) {
	g, err := graph.Decode(payload, format)
	if err != nil {
		return "", err
	}
	root, n := policy.FindRoot(g, k.Class)
	if n != 1 {
		return "", errs.Validationf("Invalid number of offers submitted")
	}

	copied, err := k.CopyGraph(g, root.String())
	if err != nil {
		return "", err
	}
	newRoot, n := policy.FindRoot(copied, k.Class)
	if n != 1 {
		return "", errs.Repositoryf("offer copy has %d roots", n)
	}

	assignerID, err := party.New(copied, provider, "")
	if err != nil {
		return "", err
	}
	assigner, err := id.ExpandRaw(assignerID)
	if err != nil {
		return "", err
	}
	copied.SetProperty(newRoot, vocab.Resolve(vocab.Assigner), assigner)

	if _, err := k.StoreGraph(ctx, repo, copied); err != nil {
		return "", err
	}
	return id.Shorten(newRoot.String()), nil
}

// expiryFormats are the timestamp layouts accepted for offer expiry dates.
var expiryFormats = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseExpiry(expiryDate string) (time.Time, error) {
	for _, layout := range expiryFormats {
		if ts, err := time.Parse(layout, expiryDate); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errs.Validationf("invalid expiry date %q", expiryDate)
}

// Expire marks an offer as expiring at the given date. Offers that have
// already expired cannot be expired again.
func Expire(ctx context.Context, repo store.Repository, k *entity.Kind, offerID, expiryDate string) error {
	ts, err := parseExpiry(expiryDate)
	if err != nil {
		return err
	}

	exists, err := k.Exists(ctx, repo, offerID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NotFoundf("Offer %s does not exist", offerID)
	}

	expired, err := Expired(ctx, repo, k, offerID)
	if err != nil {
		return err
	}
	if expired {
		return errs.Validationf("Already expired")
	}
	return policy.SetExpiry(ctx, repo, k, offerID, ts.UTC().Format(time.RFC3339))
}

// Expired reports whether the offer's expiry date has passed.
func Expired(ctx context.Context, repo store.Repository, k *entity.Kind, offerID string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	return policy.Expired(ctx, repo, k, offerID, now)
}
