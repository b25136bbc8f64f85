package quotes

import (
	"time"

	"github.com/rcs-software/rcs-crm/internal/catalog"
)

type CreateQuoteRequest struct {
	Subject   string            `json:"subject" validate:"required"`
	ClientID  int64             `json:"client_id" validate:"required,gt=0"`
	QuoteType catalog.QuoteType `json:"quote_type" validate:"required"`
}

type CreateQuoteResponse struct {
	QuoteID     int64  `json:"quote_id"`
	QuoteNumber string `json:"quote_number"`
}

type SaveQuoteRequest struct {
	Subject               string               `json:"subject" validate:"required"`
	ClientID              int64                `json:"client_id" validate:"required,gt=0"`
	EmissionDate          time.Time            `json:"emission_date"`
	ValidityDate          time.Time            `json:"validity_date"`
	GlobalDiscountPercent float64              `json:"global_discount_percentage" validate:"gte=0,lte=100"`
	Notes                 *string              `json:"notes,omitempty"`
	Terms                 *string              `json:"terms,omitempty"`
	Sections              []SaveSectionRequest `json:"sections" validate:"dive"`
}

type SaveSectionRequest struct {
	Title   string            `json:"title" validate:"required"`
	TitleEN string            `json:"title_en"`
	Items   []SaveItemRequest `json:"items" validate:"dive"`
}

type SaveItemRequest struct {
	ProductID           *int64             `json:"product_id"`
	ProductType         catalog.ItemType   `json:"product_type" validate:"required"`
	SourceType          catalog.SourceType `json:"source_type" validate:"required,oneof=product tariff_grid custom"`
	Description         string             `json:"description" validate:"required"`
	DescriptionEN       string             `json:"description_en"`
	Quantity            float64            `json:"quantity" validate:"required,gt=0"`
	UnitOfMeasure       string             `json:"unit_of_measure" validate:"required,oneof=jour mois unité"`
	UnitPriceHT         float64            `json:"unit_price_ht" validate:"gte=0"`
	LineDiscountPercent float64            `json:"line_discount_percentage" validate:"gte=0,lte=100"`
}

type ListQuotesRequest struct {
	Status   *Status    `json:"status,omitempty"`
	ClientID *int64     `json:"client_id,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	Limit    int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int        `json:"offset" validate:"gte=0"`
}
