package taxes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoActiveRate = errors.New("no active tax rate for country")

type Repository interface {
	ActiveRate(ctx context.Context, countryCode string) (TaxRate, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ActiveRate(ctx context.Context, countryCode string) (TaxRate, error) {
	var t TaxRate
	err := r.pool.QueryRow(ctx, `
		SELECT id, country_code, rate, active
		FROM tax_rates
		WHERE country_code = $1 AND active
	`, countryCode).Scan(&t.ID, &t.CountryCode, &t.Rate, &t.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TaxRate{}, ErrNoActiveRate
		}
		return TaxRate{}, err
	}
	return t, nil
}
