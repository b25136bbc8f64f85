package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrSoftwareNotFound = errors.New("software not found")
)

type Repository interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetSoftware(ctx context.Context, id int64) (Software, error)
	// ListTariffLines returns the active tariff lines for a software, in no
	// particular order. Bracket selection happens in the resolver.
	ListTariffLines(ctx context.Context, softwareID int64) ([]TariffLine, error)
	SearchProducts(ctx context.Context, term string, families []ItemType) ([]SearchResult, error)
	SearchSoftwares(ctx context.Context, term string) ([]SearchResult, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	var nameEN, addonRule pgtype.Text
	var addonValue pgtype.Float8
	var basisSoftwareID, basisServiceID pgtype.Int8
	err := r.pool.QueryRow(ctx, `
		SELECT id, reference, name, name_en, family, unit_price, daily_rate,
		       addon_rule, addon_value, basis_software_id, basis_service_id, active
		FROM products
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Reference, &p.Name, &nameEN, &p.Family, &p.UnitPrice, &p.DailyRate,
		&addonRule, &addonValue, &basisSoftwareID, &basisServiceID, &p.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	if nameEN.Valid {
		p.NameEN = nameEN.String
	}
	if addonRule.Valid {
		p.AddonRule = AddonRule(addonRule.String)
	}
	if addonValue.Valid {
		p.AddonValue = addonValue.Float64
	}
	if basisSoftwareID.Valid {
		v := basisSoftwareID.Int64
		p.BasisSoftwareID = &v
	}
	if basisServiceID.Valid {
		v := basisServiceID.Int64
		p.BasisServiceID = &v
	}
	return p, nil
}

func (r *repository) GetSoftware(ctx context.Context, id int64) (Software, error) {
	var s Software
	err := r.pool.QueryRow(ctx, `
		SELECT id, reference, name, active
		FROM softwares
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Reference, &s.Name, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Software{}, ErrSoftwareNotFound
		}
		return Software{}, err
	}
	return s, nil
}

func (r *repository) ListTariffLines(ctx context.Context, softwareID int64) ([]TariffLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, software_id, reference, name, audience_min, audience_max, monthly_price, active
		FROM tariff_lines
		WHERE software_id = $1 AND active
	`, softwareID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []TariffLine
	for rows.Next() {
		var l TariffLine
		var min, max pgtype.Int8
		if err := rows.Scan(&l.ID, &l.SoftwareID, &l.Reference, &l.Name, &min, &max, &l.MonthlyPrice, &l.Active); err != nil {
			return nil, err
		}
		if min.Valid {
			v := min.Int64
			l.AudienceMin = &v
		}
		if max.Valid {
			v := max.Int64
			l.AudienceMax = &v
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) SearchProducts(ctx context.Context, term string, families []ItemType) ([]SearchResult, error) {
	if len(families) == 0 {
		return nil, nil
	}

	query := `SELECT id, reference, name, family FROM products WHERE active AND (name ILIKE $1 OR name_en ILIKE $1 OR reference ILIKE $1)`
	args := []interface{}{"%" + term + "%"}
	argCount := 1

	query += ` AND family IN (`
	for i, f := range families {
		argCount++
		if i > 0 {
			query += `, `
		}
		query += `$` + strconv.Itoa(argCount)
		args = append(args, string(f))
	}
	query += `) ORDER BY name LIMIT 50`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.ID, &res.Reference, &res.Name, &res.ProductType); err != nil {
			return nil, err
		}
		res.SourceType = SourceProduct
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *repository) SearchSoftwares(ctx context.Context, term string) ([]SearchResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reference, name
		FROM softwares
		WHERE active AND (name ILIKE $1 OR reference ILIKE $1)
		ORDER BY name
		LIMIT 50
	`, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.ID, &res.Reference, &res.Name); err != nil {
			return nil, err
		}
		res.ProductType = ItemTypeLogiciel
		res.SourceType = SourceTariffGrid
		results = append(results, res)
	}
	return results, rows.Err()
}
