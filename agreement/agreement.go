// Package agreement implements the agreement entity kind. An agreement is
// a sealed copy of an offer: accepting an offer copies its policy structure
// under fresh identifiers, pins the covered assets as targets and records
// the accepting party.
package agreement

import (
	"context"
	"log/slog"
	"time"

	"github.com/knakk/rdf"

	"github.com/clearrights/repository/entity"
	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/party"
	"github.com/clearrights/repository/policy"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// NewKind builds the agreement entity kind.
func NewKind() *entity.Kind {
	k := &entity.Kind{
		Name:              "agreement",
		Class:             vocab.AgreementClass,
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

// Request carries everything needed to accept an offer.
type Request struct {
	OfferID string

	// Organisation is the accepting hub organisation, recorded as the
	// agreement's assignee; OnBehalfOf optionally names who it acted for.
	Organisation string
	OnBehalfOf   string

	// AssetIDs are the short ids of the assets the acceptor picked from
	// the offer's selectors. Directly targeted assets are covered whether
	// listed or not.
	AssetIDs []string

	// Metadata holds the agreed constraint values, such as the payment
	// amount.
	Metadata map[string]string
}

// New accepts an offer and stores the resulting agreement. The covered
// assets are validated against the offer as persisted, not against the
// copy. Returns the agreement's short id and the covered asset ids.
func New(ctx context.Context, logger *slog.Logger, repo store.Repository, offerKind, k *entity.Kind, req Request) (string, []string, error) {
	exists, err := offerKind.Exists(ctx, repo, req.OfferID)
	if err != nil {
		return "", nil, err
	}
	if !exists {
		return "", nil, errs.Validationf("Offer %q does not exist", req.OfferID)
	}

	g, err := offerKind.RetrieveCopy(ctx, repo, req.OfferID)
	if err != nil {
		return "", nil, err
	}
	root, n := policy.FindRoot(g, offerKind.Class)
	if n != 1 {
		return "", nil, errs.Repositoryf("offer %s copy has %d roots", req.OfferID, n)
	}

	g.Remove(root, vocab.RDFType, vocab.Resolve(offerKind.Class))
	g.AddTriple(root, vocab.RDFType, vocab.Resolve(k.Class))

	now := time.Now().UTC().Format(time.RFC3339)
	g.SetProperty(root, vocab.Resolve(vocab.DateAccepted),
		rdf.NewTypedLiteral(now, vocab.Resolve("xsd:dateTime")))

	offerRef, err := id.ExpandRaw(req.OfferID)
	if err != nil {
		return "", nil, err
	}
	g.SetProperty(root, vocab.Resolve(vocab.References), offerRef)

	covered, err := policy.ValidateAssets(ctx, logger, repo, req.OfferID, req.AssetIDs, false, true)
	if err != nil {
		return "", nil, err
	}
	if len(covered) == 0 {
		return "", nil, errs.Validationf("You haven't selected any asset")
	}

	targets := make([]rdf.Object, 0, len(covered))
	for _, cid := range covered {
		ref, err := id.ExpandRaw(cid)
		if err != nil {
			return "", nil, err
		}
		targets = append(targets, ref)
	}
	g.SetProperty(root, vocab.Resolve(vocab.Target), targets...)

	if err := policy.ApplyMetadata(g, root, req.Metadata); err != nil {
		return "", nil, err
	}

	assigneeID, err := party.New(g, req.Organisation, req.OnBehalfOf)
	if err != nil {
		return "", nil, err
	}
	assignee, err := id.ExpandRaw(assigneeID)
	if err != nil {
		return "", nil, err
	}
	g.SetProperty(root, vocab.Resolve(vocab.Assignee), assignee)

	if _, err := k.StoreGraph(ctx, repo, g); err != nil {
		return "", nil, err
	}
	return id.Shorten(root.String()), covered, nil
}
