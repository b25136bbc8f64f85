package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("client not found")

type Repository interface {
	Get(ctx context.Context, id int64) (Client, error)
	// LatestAudience returns the client's most recent audience figure,
	// latest measurement wave first. Clients without any audience on
	// record price against an audience of 0.
	LatestAudience(ctx context.Context, clientID int64) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	var c Client
	var country pgtype.Text
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, country, created_at
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &country, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	if country.Valid {
		c.Country = country.String
	}
	return c, nil
}

func (r *repository) LatestAudience(ctx context.Context, clientID int64) (int64, error) {
	var value int64
	err := r.pool.QueryRow(ctx, `
		SELECT value
		FROM audiences
		WHERE client_id = $1
		ORDER BY year DESC, wave DESC
		LIMIT 1
	`, clientID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	if value < 0 {
		value = 0
	}
	return value, nil
}
