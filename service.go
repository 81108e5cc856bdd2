package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/clearrights/repository/agreement"
	"github.com/clearrights/repository/asset"
	"github.com/clearrights/repository/entity"
	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/graph"
	"github.com/clearrights/repository/id"
	"github.com/clearrights/repository/index"
	"github.com/clearrights/repository/offer"
	"github.com/clearrights/repository/policy"
	"github.com/clearrights/repository/set"
	"github.com/clearrights/repository/store"
	"github.com/clearrights/repository/vocab"
)

// Service is the repository facade. It resolves repository namespaces
// through the store opener and delegates to the entity kinds.
type Service struct {
	opener   store.Opener
	notifier index.Notifier
	logger   *slog.Logger
	config   Config

	assets     *entity.Kind
	sets       *entity.Kind
	offers     *entity.Kind
	agreements *entity.Kind
}

// NewService creates a Service with the given options.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		notifier: index.Nop{},
		logger:   slog.Default(),
		config:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.opener == nil {
		return nil, errors.New("repository: store opener is required")
	}

	s.assets = asset.NewKind(s.notifier, s.logger)
	s.sets = set.Kind
	s.offers = offer.NewKind()
	s.agreements = agreement.NewKind()
	return s, nil
}

// Capabilities reports the service limits.
func (s *Service) Capabilities() Capabilities {
	return Capabilities{
		DefaultPageSize: s.config.DefaultPageSize,
		MaxPageSize:     s.config.MaxPageSize,
		SupportedFormats: []string{
			graph.FormatTurtle, graph.FormatXML, graph.FormatJSONLD, graph.FormatNTriples,
		},
	}
}

func (s *Service) repo(repositoryID string) store.Repository {
	return s.opener.Open(repositoryID)
}

// StoreAssets stores an asset payload and returns the short ids of the
// stored assets. Older copies of the same works are pruned first.
func (s *Service) StoreAssets(ctx context.Context, repositoryID string, payload []byte, contentType string) ([]string, error) {
	format, err := graph.FormatFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	return s.assets.Store(ctx, s.repo(repositoryID), payload, format)
}

// AddAssetIDs attaches source ids to an existing asset.
func (s *Service) AddAssetIDs(ctx context.Context, repositoryID, assetID string, ids []asset.SourceID) error {
	repo := s.repo(repositoryID)
	if err := s.mustExist(ctx, repo, s.assets, assetID); err != nil {
		return err
	}
	return asset.AddIDs(ctx, repo, s.assets, assetID, ids)
}

// AssetSourceIDs returns the source ids stored for an asset.
func (s *Service) AssetSourceIDs(ctx context.Context, repositoryID, assetID string) ([]asset.SourceID, error) {
	repo := s.repo(repositoryID)
	if err := s.mustExist(ctx, repo, s.assets, assetID); err != nil {
		return nil, err
	}
	return asset.AlsoIdentifiedBy(ctx, repo, assetID)
}

// ListAssets returns a page of assets ordered by last modification.
func (s *Service) ListAssets(ctx context.Context, repositoryID string, page, pageSize int) ([]map[string]string, error) {
	return s.list(ctx, repositoryID, s.assets, page, pageSize)
}

// ListOffers returns a page of offers ordered by last modification.
func (s *Service) ListOffers(ctx context.Context, repositoryID string, page, pageSize int) ([]map[string]string, error) {
	return s.list(ctx, repositoryID, s.offers, page, pageSize)
}

// ListAgreements returns a page of agreements ordered by last modification.
func (s *Service) ListAgreements(ctx context.Context, repositoryID string, page, pageSize int) ([]map[string]string, error) {
	return s.list(ctx, repositoryID, s.agreements, page, pageSize)
}

// ListSets returns a page of sets ordered by last modification.
func (s *Service) ListSets(ctx context.Context, repositoryID string, page, pageSize int) ([]map[string]string, error) {
	return s.list(ctx, repositoryID, s.sets, page, pageSize)
}

func (s *Service) list(ctx context.Context, repositoryID string, k *entity.Kind, page, pageSize int) ([]map[string]string, error) {
	solutions, err := k.ListPaged(ctx, s.repo(repositoryID), nil, page, s.config.clampPageSize(pageSize))
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(solutions))
	for _, solution := range solutions {
		row := make(map[string]string, len(solution))
		for name, term := range solution {
			value := term.String()
			if strings.HasPrefix(value, vocab.IDPrefix) {
				value = id.Shorten(value)
			}
			row[name] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CreateOffer stores a submitted offer under fresh identifiers and
// returns its short id.
func (s *Service) CreateOffer(ctx context.Context, repositoryID string, payload []byte, contentType, provider string) (string, error) {
	format, err := graph.FormatFromContentType(contentType)
	if err != nil {
		return "", err
	}
	return offer.New(ctx, s.repo(repositoryID), s.offers, payload, format, provider)
}

// GetOffer returns an offer as a JSON-LD document.
func (s *Service) GetOffer(ctx context.Context, repositoryID, offerID string) (any, error) {
	return s.document(ctx, repositoryID, s.offers, offerID)
}

// GetAgreement returns an agreement as a JSON-LD document.
func (s *Service) GetAgreement(ctx context.Context, repositoryID, agreementID string) (any, error) {
	return s.document(ctx, repositoryID, s.agreements, agreementID)
}

func (s *Service) document(ctx context.Context, repositoryID string, k *entity.Kind, entityID string) (any, error) {
	g, err := k.Retrieve(ctx, s.repo(repositoryID), entityID)
	if err != nil {
		return nil, err
	}
	if g.Len() == 0 {
		return nil, errs.NotFoundf("%s %s not found", k.Name, entityID)
	}
	return graph.EncodeJSONLD(g, vocab.JSONLDContext())
}

// ExpireOffer marks an offer as expiring at the given date.
func (s *Service) ExpireOffer(ctx context.Context, repositoryID, offerID, expiryDate string) error {
	return offer.Expire(ctx, s.repo(repositoryID), s.offers, offerID, expiryDate)
}

// CreateAgreement accepts an offer and stores the resulting agreement.
func (s *Service) CreateAgreement(ctx context.Context, repositoryID string, req agreement.Request) (AgreementReceipt, error) {
	agreementID, covered, err := agreement.New(ctx, s.logger, s.repo(repositoryID), s.offers, s.agreements, req)
	if err != nil {
		return AgreementReceipt{}, err
	}
	return AgreementReceipt{ID: agreementID, CoveredAssets: covered}, nil
}

// OffersForAssets returns, per source id, the offers covering that asset.
func (s *Service) OffersForAssets(ctx context.Context, repositoryID string, ids []asset.SourceID) ([]policy.AssetPolicies, error) {
	return policy.ForAssets(ctx, s.logger, s.repo(repositoryID), s.offers, ids)
}

// AgreementsForAssets returns, per source id, the agreements covering
// that asset.
func (s *Service) AgreementsForAssets(ctx context.Context, repositoryID string, ids []asset.SourceID) ([]policy.AssetPolicies, error) {
	return policy.ForAssets(ctx, s.logger, s.repo(repositoryID), s.agreements, ids)
}

// CreateSet creates an empty set and returns its short id.
func (s *Service) CreateSet(ctx context.Context, repositoryID, title string) (string, error) {
	return set.New(ctx, s.repo(repositoryID), title)
}

// SetElements returns a page of a set's member ids.
func (s *Service) SetElements(ctx context.Context, repositoryID, setID string, page, pageSize int) ([]string, error) {
	repo := s.repo(repositoryID)
	if err := s.mustExist(ctx, repo, s.sets, setID); err != nil {
		return nil, err
	}
	return set.Elements(ctx, repo, setID, page, s.config.clampPageSize(pageSize))
}

// ReplaceSetElements replaces a set's membership.
func (s *Service) ReplaceSetElements(ctx context.Context, repositoryID, setID string, elementIDs []string) error {
	repo := s.repo(repositoryID)
	if err := s.mustExist(ctx, repo, s.sets, setID); err != nil {
		return err
	}
	return set.SetElements(ctx, repo, setID, elementIDs)
}

// AddSetElements adds members to a set.
func (s *Service) AddSetElements(ctx context.Context, repositoryID, setID string, elementIDs []string) error {
	repo := s.repo(repositoryID)
	if err := s.mustExist(ctx, repo, s.sets, setID); err != nil {
		return err
	}
	return set.AppendElements(ctx, repo, setID, elementIDs)
}

// RemoveSetElements removes members from a set.
func (s *Service) RemoveSetElements(ctx context.Context, repositoryID, setID string, elementIDs []string) error {
	repo := s.repo(repositoryID)
	if err := s.mustExist(ctx, repo, s.sets, setID); err != nil {
		return err
	}
	return set.RemoveElements(ctx, repo, setID, elementIDs)
}

func (s *Service) mustExist(ctx context.Context, repo store.Repository, k *entity.Kind, entityID string) error {
	exists, err := k.Exists(ctx, repo, entityID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NotFoundf("%s %s not found", k.Name, entityID)
	}
	return nil
}
