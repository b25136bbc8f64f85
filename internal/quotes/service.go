package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcs-software/rcs-crm/internal/catalog"
	"github.com/rcs-software/rcs-crm/internal/clients"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrQuoteLocked rejects edits once a quote has left Brouillon. Persisted
	// totals are immutable after that point; there is no re-quote flow.
	ErrQuoteLocked = errors.New("quote is no longer editable")
)

// TaxResolver resolves the VAT percentage applicable to a client.
type TaxResolver interface {
	ForClient(ctx context.Context, clientID int64) (float64, error)
}

const defaultValidityDays = 30

type Service struct {
	logger   *slog.Logger
	repo     Repository
	clients  clients.Repository
	tax      TaxResolver
	renderer PDFRenderer
	now      func() time.Time
}

func NewService(logger *slog.Logger, repo Repository, clientRepo clients.Repository, tax TaxResolver, renderer PDFRenderer) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		clients:  clientRepo,
		tax:      tax,
		renderer: renderer,
		now:      time.Now,
	}
}

// Create initializes a Brouillon quote and reserves a quote number. The
// sequence bump commits on its own before the quote insert: rolling back a
// conflicting insert must not undo the bump, otherwise a retry would re-issue
// the very number that just collided. Issuance retries once on a
// unique-constraint conflict before surfacing the failure.
func (s *Service) Create(ctx context.Context, req CreateQuoteRequest) (*Quote, error) {
	if !req.QuoteType.Valid() {
		return nil, fmt.Errorf("%w: unknown quote type %q", ErrValidation, req.QuoteType)
	}
	if _, err := s.clients.Get(ctx, req.ClientID); err != nil {
		return nil, fmt.Errorf("verify client: %w", err)
	}

	now := s.now()
	quote := Quote{
		ClientID:     req.ClientID,
		Subject:      req.Subject,
		QuoteType:    req.QuoteType,
		Status:       StatusDraft,
		EmissionDate: now,
		ValidityDate: now.AddDate(0, 0, defaultValidityDays),
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var number string
		number, err = s.repo.NextNumber(ctx, now)
		if err != nil {
			return nil, err
		}
		quote.QuoteNumber = number

		var id int64
		id, err = s.repo.Create(ctx, quote)
		if err == nil {
			quote.ID = id
			break
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return nil, fmt.Errorf("create quote: %w", err)
		}
		if attempt == 0 {
			s.logger.Warn("quote number conflict, retrying",
				slog.String("quote_number", number),
			)
		}
	}
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, quote.ID)
}

// Save fully replaces a draft quote: header fields are updated, all sections
// and items are deleted and rebuilt, and every persisted total is recomputed.
// The whole operation commits or rolls back as one transaction.
func (s *Service) Save(ctx context.Context, id int64, req SaveQuoteRequest) (*Quote, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: status is %s", ErrQuoteLocked, existing.Status)
	}
	if _, err := s.clients.Get(ctx, req.ClientID); err != nil {
		return nil, fmt.Errorf("verify client: %w", err)
	}

	sections, err := buildSections(id, existing.QuoteType, req.Sections)
	if err != nil {
		return nil, err
	}

	taxRate, err := s.tax.ForClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("resolve tax rate: %w", err)
	}
	for i := range sections {
		for j := range sections[i].Items {
			sections[i].Items[j].TVARate = taxRate
		}
	}

	totals := ComputeTotals(sections, req.GlobalDiscountPercent, taxRate)

	emission := req.EmissionDate
	if emission.IsZero() {
		emission = existing.EmissionDate
	}
	validity := req.ValidityDate
	if validity.IsZero() {
		validity = existing.ValidityDate
	}

	header := *existing
	header.ClientID = req.ClientID
	header.Subject = req.Subject
	header.EmissionDate = emission
	header.ValidityDate = validity
	header.GlobalDiscountPercent = req.GlobalDiscountPercent
	header.Notes = req.Notes
	header.Terms = req.Terms
	header.TotalHTBeforeDiscount = totals.TotalHTBeforeDiscount
	header.DiscountAmount = totals.DiscountAmount
	header.TotalHTAfterDiscount = totals.TotalHTAfterDiscount
	header.TotalTVA = totals.TotalTVA
	header.TotalTTC = totals.TotalTTC
	header.TotalMensuelHT = totals.TotalMensuelHT

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, header); err != nil {
			return fmt.Errorf("update quote: %w", err)
		}
		if err := repo.DeleteSections(ctx, id); err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		for _, section := range sections {
			sectionID, err := repo.InsertSection(ctx, section)
			if err != nil {
				return fmt.Errorf("insert section: %w", err)
			}
			for _, item := range section.Items {
				item.SectionID = sectionID
				if _, err := repo.InsertItem(ctx, item); err != nil {
					return fmt.Errorf("insert item: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// buildSections maps the request into the ownership tree and enforces the
// quote type's family constraint on every item.
func buildSections(quoteID int64, quoteType catalog.QuoteType, reqs []SaveSectionRequest) ([]Section, error) {
	sections := make([]Section, 0, len(reqs))
	for i, sectionReq := range reqs {
		section := Section{
			QuoteID:      quoteID,
			Title:        sectionReq.Title,
			TitleEN:      sectionReq.TitleEN,
			DisplayOrder: i + 1,
		}
		for j, itemReq := range sectionReq.Items {
			if !itemReq.ProductType.Valid() {
				return nil, fmt.Errorf("%w: unknown product type %q", ErrValidation, itemReq.ProductType)
			}
			if !quoteType.Allows(itemReq.ProductType) {
				return nil, fmt.Errorf("%w: family %s not allowed on a %s quote", ErrValidation, itemReq.ProductType, quoteType)
			}
			section.Items = append(section.Items, Item{
				ProductID:           itemReq.ProductID,
				ProductType:         itemReq.ProductType,
				SourceType:          itemReq.SourceType,
				Description:         itemReq.Description,
				DescriptionEN:       itemReq.DescriptionEN,
				Quantity:            itemReq.Quantity,
				UnitOfMeasure:       itemReq.UnitOfMeasure,
				UnitPriceHT:         itemReq.UnitPriceHT,
				LineDiscountPercent: itemReq.LineDiscountPercent,
				DisplayOrder:        j + 1,
			})
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Quote, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	return s.repo.List(ctx, req)
}

// Transition moves a quote along Brouillon -> Envoyé -> Accepté/Refusé.
// Terminal states admit no further transitions.
func (s *Service) Transition(ctx context.Context, id int64, next Status) (*Quote, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if !existing.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, existing.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a draft quote with its sections and items. Quotes that have
// been sent are part of the commercial record and cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get quote: %w", err)
	}
	if existing.Status != StatusDraft {
		return fmt.Errorf("%w: status is %s", ErrQuoteLocked, existing.Status)
	}
	return s.repo.Delete(ctx, id)
}
