package taxes

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rcs-software/rcs-crm/internal/clients"
)

// DefaultVATRate applies when a client's country cannot be resolved or
// carries no active tax rate. The fallback is deliberate and logged, never
// a silent fallthrough.
const DefaultVATRate = 20.0

// Resolver resolves the VAT percentage applicable to a client.
type Resolver struct {
	logger  *slog.Logger
	repo    Repository
	clients clients.Repository
}

func NewResolver(logger *slog.Logger, repo Repository, clientRepo clients.Repository) *Resolver {
	return &Resolver{
		logger:  logger,
		repo:    repo,
		clients: clientRepo,
	}
}

// ForClient resolves client -> country -> active rate. Missing clients,
// missing countries and missing rates all degrade to DefaultVATRate;
// infrastructure failures do not.
func (r *Resolver) ForClient(ctx context.Context, clientID int64) (float64, error) {
	client, err := r.clients.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			r.logger.Warn("vat fallback: client not found",
				slog.Int64("client_id", clientID),
				slog.Float64("rate", DefaultVATRate),
			)
			return DefaultVATRate, nil
		}
		return 0, err
	}
	if client.Country == "" {
		r.logger.Warn("vat fallback: client has no country",
			slog.Int64("client_id", clientID),
			slog.Float64("rate", DefaultVATRate),
		)
		return DefaultVATRate, nil
	}

	rate, err := r.repo.ActiveRate(ctx, client.Country)
	if err != nil {
		if errors.Is(err, ErrNoActiveRate) {
			r.logger.Warn("vat fallback: no active rate for country",
				slog.Int64("client_id", clientID),
				slog.String("country", client.Country),
				slog.Float64("rate", DefaultVATRate),
			)
			return DefaultVATRate, nil
		}
		return 0, err
	}
	return rate.Rate, nil
}
