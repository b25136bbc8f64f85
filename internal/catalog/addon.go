package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// addonUnitPrice computes the unit price of an ADDON product for a client.
// FIXED_AMOUNT add-ons price at the rule value. PERCENTAGE add-ons price at
// a share of their basis: the client's resolved software tariff, or the flat
// price of a basis service. An add-on whose basis cannot be resolved prices
// at 0; the basis tariff may legitimately be archived, so this is a degraded
// result, not an error.
func (s *Service) addonUnitPrice(ctx context.Context, p Product, clientID int64) (float64, error) {
	switch p.AddonRule {
	case AddonRuleFixedAmount:
		return p.AddonValue, nil

	case AddonRulePercentage:
		basis, err := s.addonBasisPrice(ctx, p, clientID)
		if err != nil {
			if errors.Is(err, ErrTariffNotFound) || errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrSoftwareNotFound) {
				s.logger.Warn("addon basis unresolved, pricing at zero",
					slog.Int64("product_id", p.ID),
					slog.Int64("client_id", clientID),
					slog.Any("error", err),
				)
				return 0, nil
			}
			return 0, err
		}
		return basis * (p.AddonValue / 100), nil
	}

	return 0, fmt.Errorf("product %d: unknown addon rule %q", p.ID, p.AddonRule)
}

func (s *Service) addonBasisPrice(ctx context.Context, p Product, clientID int64) (float64, error) {
	switch {
	case p.BasisSoftwareID != nil:
		audience, err := s.clients.LatestAudience(ctx, clientID)
		if err != nil {
			return 0, fmt.Errorf("latest audience: %w", err)
		}
		line, err := s.ResolveTariff(ctx, *p.BasisSoftwareID, audience)
		if err != nil {
			return 0, err
		}
		return line.MonthlyPrice, nil

	case p.BasisServiceID != nil:
		service, err := s.repo.GetProduct(ctx, *p.BasisServiceID)
		if err != nil {
			return 0, err
		}
		return flatPrice(service), nil
	}

	return 0, fmt.Errorf("addon %d has no basis: %w", p.ID, ErrProductNotFound)
}

// flatPrice returns the non-tariff price a product carries: the unit price
// for hardware, the daily rate for training and services.
func flatPrice(p Product) float64 {
	switch p.Family {
	case ItemTypeFormation, ItemTypePrestation:
		return p.DailyRate
	default:
		return p.UnitPrice
	}
}
