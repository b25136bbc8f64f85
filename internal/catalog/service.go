package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rcs-software/rcs-crm/internal/clients"
)

var ErrUnknownItemType = errors.New("unknown item type")

// Service resolves catalog prices and searches the catalog. All operations
// are pure reads and safe to run concurrently.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	clients clients.Repository
	cache   *SearchCache
}

func NewService(logger *slog.Logger, repo Repository, clientRepo clients.Repository, cache *SearchCache) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		clients: clientRepo,
		cache:   cache,
	}
}

// Lookup resolves a normalized line template for one catalog item priced for
// a specific client. itemID is a product id, or a software id for LOGICIEL.
func (s *Service) Lookup(ctx context.Context, clientID, itemID int64, itemType ItemType) (LineTemplate, error) {
	switch itemType {
	case ItemTypeLogiciel:
		return s.lookupSoftware(ctx, clientID, itemID)

	case ItemTypeMateriel:
		p, err := s.getProduct(ctx, itemID, itemType)
		if err != nil {
			return LineTemplate{}, err
		}
		return templateFor(p, p.UnitPrice, UnitPiece), nil

	case ItemTypeFormation, ItemTypePrestation:
		p, err := s.getProduct(ctx, itemID, itemType)
		if err != nil {
			return LineTemplate{}, err
		}
		return templateFor(p, p.DailyRate, UnitDay), nil

	case ItemTypeAddon:
		p, err := s.getProduct(ctx, itemID, itemType)
		if err != nil {
			return LineTemplate{}, err
		}
		price, err := s.addonUnitPrice(ctx, p, clientID)
		if err != nil {
			return LineTemplate{}, err
		}
		return templateFor(p, price, UnitMonth), nil
	}

	return LineTemplate{}, fmt.Errorf("%w: %q", ErrUnknownItemType, itemType)
}

func (s *Service) lookupSoftware(ctx context.Context, clientID, softwareID int64) (LineTemplate, error) {
	var audience int64
	var software Software

	// Audience history and the software row are independent reads.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		audience, err = s.clients.LatestAudience(gctx, clientID)
		if err != nil {
			return fmt.Errorf("latest audience: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		software, err = s.repo.GetSoftware(gctx, softwareID)
		return err
	})
	if err := g.Wait(); err != nil {
		return LineTemplate{}, err
	}
	if !software.Active {
		return LineTemplate{}, ErrSoftwareNotFound
	}

	line, err := s.ResolveTariff(ctx, software.ID, audience)
	if err != nil {
		return LineTemplate{}, err
	}

	lineID := line.ID
	return LineTemplate{
		ProductID:     &lineID,
		ProductType:   ItemTypeLogiciel,
		SourceType:    SourceTariffGrid,
		Description:   line.Name,
		DescriptionEN: line.Name,
		UnitOfMeasure: UnitMonth,
		UnitPriceHT:   line.MonthlyPrice,
	}, nil
}

func (s *Service) getProduct(ctx context.Context, id int64, want ItemType) (Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.Active || p.Family != want {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func templateFor(p Product, unitPrice float64, unit string) LineTemplate {
	productID := p.ID
	nameEN := p.NameEN
	if nameEN == "" {
		nameEN = p.Name
	}
	return LineTemplate{
		ProductID:     &productID,
		ProductType:   p.Family,
		SourceType:    SourceProduct,
		Description:   p.Name,
		DescriptionEN: nameEN,
		UnitOfMeasure: unit,
		UnitPriceHT:   unitPrice,
	}
}

// Search returns catalog entries matching a fuzzy name/reference term,
// restricted to the families the quote type allows. Results are served from
// the Redis cache when available.
func (s *Service) Search(ctx context.Context, term string, quoteType QuoteType) ([]SearchResult, error) {
	if !quoteType.Valid() {
		return nil, fmt.Errorf("unknown quote type %q", quoteType)
	}

	if cached, ok, err := s.cache.Get(ctx, quoteType, term); err != nil {
		s.logger.Warn("search cache read failed", slog.Any("error", err))
	} else if ok {
		return cached, nil
	}

	families := quoteType.AllowedFamilies()
	var productFamilies []ItemType
	searchSoftwares := false
	for _, f := range families {
		if f == ItemTypeLogiciel {
			searchSoftwares = true
			continue
		}
		productFamilies = append(productFamilies, f)
	}

	results, err := s.repo.SearchProducts(ctx, term, productFamilies)
	if err != nil {
		return nil, err
	}
	if searchSoftwares {
		softwares, err := s.repo.SearchSoftwares(ctx, term)
		if err != nil {
			return nil, err
		}
		results = append(results, softwares...)
	}

	if err := s.cache.Set(ctx, quoteType, term, results); err != nil {
		s.logger.Warn("search cache write failed", slog.Any("error", err))
	}
	return results, nil
}
