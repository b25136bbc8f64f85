package quotes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcs-software/rcs-crm/internal/platform/db"
)

var (
	ErrNotFound        = errors.New("quote not found")
	ErrDuplicateNumber = errors.New("duplicate quote number")
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	// NextNumber reserves the next quote number for the given day. Issuance
	// is serialized through an upserted per-day sequence row, so concurrent
	// callers can never observe the same value. The bump commits with the
	// statement itself: never call this inside the quote insert transaction,
	// or a rollback would hand the same number to the retry.
	NextNumber(ctx context.Context, day time.Time) (string, error)
	Create(ctx context.Context, q Quote) (int64, error)
	Get(ctx context.Context, id int64) (*Quote, error)
	List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error)
	UpdateHeader(ctx context.Context, q Quote) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	DeleteSections(ctx context.Context, quoteID int64) error
	InsertSection(ctx context.Context, s Section) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

// dayPrefix scopes quote numbers to the calendar day.
func dayPrefix(day time.Time) string {
	return "RCS-" + day.Format("060102")
}

func formatQuoteNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%d", dayPrefix(day), seq)
}

func (r *repository) NextNumber(ctx context.Context, day time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quote_number_sequences (day_prefix, seq)
		VALUES ($1, 1)
		ON CONFLICT (day_prefix)
		DO UPDATE SET seq = quote_number_sequences.seq + 1
		RETURNING seq
	`, dayPrefix(day)).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next quote number: %w", err)
	}
	return formatQuoteNumber(day, seq), nil
}

func (r *repository) Create(ctx context.Context, q Quote) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (
			quote_number, client_id, subject, quote_type, status,
			emission_date, validity_date, global_discount_percentage,
			notes, terms,
			total_ht_before_discount, discount_amount, total_ht_after_discount,
			total_tva, total_ttc, total_mensuel_ht,
			created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
		RETURNING id
	`,
		q.QuoteNumber, q.ClientID, q.Subject, string(q.QuoteType), string(q.Status),
		q.EmissionDate, q.ValidityDate, q.GlobalDiscountPercent,
		q.Notes, q.Terms,
		q.TotalHTBeforeDiscount, q.DiscountAmount, q.TotalHTAfterDiscount,
		q.TotalTVA, q.TotalTTC, q.TotalMensuelHT,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateNumber
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quote, error) {
	var q Quote
	var notes, terms pgtype.Text
	var emission, validity pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT id, quote_number, client_id, subject, quote_type, status,
		       emission_date, validity_date, global_discount_percentage,
		       notes, terms,
		       total_ht_before_discount, discount_amount, total_ht_after_discount,
		       total_tva, total_ttc, total_mensuel_ht,
		       created_at, updated_at
		FROM quotes
		WHERE id = $1
	`, id).Scan(
		&q.ID, &q.QuoteNumber, &q.ClientID, &q.Subject, &q.QuoteType, &q.Status,
		&emission, &validity, &q.GlobalDiscountPercent,
		&notes, &terms,
		&q.TotalHTBeforeDiscount, &q.DiscountAmount, &q.TotalHTAfterDiscount,
		&q.TotalTVA, &q.TotalTTC, &q.TotalMensuelHT,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if emission.Valid {
		q.EmissionDate = emission.Time
	}
	if validity.Valid {
		q.ValidityDate = validity.Time
	}
	if notes.Valid {
		q.Notes = &notes.String
	}
	if terms.Valid {
		q.Terms = &terms.String
	}
	if createdAt.Valid {
		q.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		q.UpdatedAt = updatedAt.Time
	}

	sections, err := r.loadSections(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Sections = sections
	return &q, nil
}

func (r *repository) loadSections(ctx context.Context, quoteID int64) ([]Section, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_id, title, title_en, display_order
		FROM quote_sections
		WHERE quote_id = $1
		ORDER BY display_order, id
	`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var s Section
		var titleEN pgtype.Text
		if err := rows.Scan(&s.ID, &s.QuoteID, &s.Title, &titleEN, &s.DisplayOrder); err != nil {
			return nil, err
		}
		if titleEN.Valid {
			s.TitleEN = titleEN.String
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sections {
		items, err := r.loadItems(ctx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		sections[i].Items = items
	}
	return sections, nil
}

func (r *repository) loadItems(ctx context.Context, sectionID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, section_id, product_id, product_type, source_type,
		       description, description_en, quantity, unit_of_measure,
		       unit_price_ht, line_discount_percentage, tva_rate, display_order
		FROM quote_items
		WHERE section_id = $1
		ORDER BY display_order, id
	`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var productID pgtype.Int8
		var descriptionEN pgtype.Text
		if err := rows.Scan(
			&it.ID, &it.SectionID, &productID, &it.ProductType, &it.SourceType,
			&it.Description, &descriptionEN, &it.Quantity, &it.UnitOfMeasure,
			&it.UnitPriceHT, &it.LineDiscountPercent, &it.TVARate, &it.DisplayOrder,
		); err != nil {
			return nil, err
		}
		if productID.Valid {
			v := productID.Int64
			it.ProductID = &v
		}
		if descriptionEN.Valid {
			it.DescriptionEN = descriptionEN.String
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 0

	if req.Status != nil {
		argPos++
		conditions = append(conditions, "status = $"+strconv.Itoa(argPos))
		args = append(args, string(*req.Status))
	}
	if req.ClientID != nil {
		argPos++
		conditions = append(conditions, "client_id = $"+strconv.Itoa(argPos))
		args = append(args, *req.ClientID)
	}
	if req.DateFrom != nil {
		argPos++
		conditions = append(conditions, "emission_date >= $"+strconv.Itoa(argPos))
		args = append(args, *req.DateFrom)
	}
	if req.DateTo != nil {
		argPos++
		conditions = append(conditions, "emission_date <= $"+strconv.Itoa(argPos))
		args = append(args, *req.DateTo)
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotes "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, quote_number, client_id, subject, quote_type, status,
		       emission_date, validity_date, global_discount_percentage,
		       total_ht_before_discount, discount_amount, total_ht_after_discount,
		       total_tva, total_ttc, total_mensuel_ht
		FROM quotes
		%s
		ORDER BY emission_date DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos+1, argPos+2)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		var emission, validity pgtype.Date
		if err := rows.Scan(
			&q.ID, &q.QuoteNumber, &q.ClientID, &q.Subject, &q.QuoteType, &q.Status,
			&emission, &validity, &q.GlobalDiscountPercent,
			&q.TotalHTBeforeDiscount, &q.DiscountAmount, &q.TotalHTAfterDiscount,
			&q.TotalTVA, &q.TotalTTC, &q.TotalMensuelHT,
		); err != nil {
			return nil, 0, err
		}
		if emission.Valid {
			q.EmissionDate = emission.Time
		}
		if validity.Valid {
			q.ValidityDate = validity.Time
		}
		quotes = append(quotes, q)
	}
	return quotes, total, rows.Err()
}

func (r *repository) UpdateHeader(ctx context.Context, q Quote) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes SET
			client_id = $1, subject = $2,
			emission_date = $3, validity_date = $4,
			global_discount_percentage = $5, notes = $6, terms = $7,
			total_ht_before_discount = $8, discount_amount = $9,
			total_ht_after_discount = $10, total_tva = $11, total_ttc = $12,
			total_mensuel_ht = $13, updated_at = NOW()
		WHERE id = $14
	`,
		q.ClientID, q.Subject,
		q.EmissionDate, q.ValidityDate,
		q.GlobalDiscountPercent, q.Notes, q.Terms,
		q.TotalHTBeforeDiscount, q.DiscountAmount,
		q.TotalHTAfterDiscount, q.TotalTVA, q.TotalTTC,
		q.TotalMensuelHT, q.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes SET status = $1, updated_at = NOW() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSections drops all sections of a quote; quote_items cascade via the
// section foreign key.
func (r *repository) DeleteSections(ctx context.Context, quoteID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quote_sections WHERE quote_id = $1`, quoteID)
	return err
}

func (r *repository) InsertSection(ctx context.Context, s Section) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quote_sections (quote_id, title, title_en, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, s.QuoteID, s.Title, s.TitleEN, s.DisplayOrder).Scan(&id)
	return id, err
}

func (r *repository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quote_items (
			section_id, product_id, product_type, source_type,
			description, description_en, quantity, unit_of_measure,
			unit_price_ht, line_discount_percentage, tva_rate, display_order
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`,
		item.SectionID, item.ProductID, string(item.ProductType), string(item.SourceType),
		item.Description, item.DescriptionEN, item.Quantity, item.UnitOfMeasure,
		item.UnitPriceHT, item.LineDiscountPercent, item.TVARate, item.DisplayOrder,
	).Scan(&id)
	return id, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
