package quotes

import (
	"time"

	"github.com/rcs-software/rcs-crm/internal/catalog"
)

// Status is the quote lifecycle state. Brouillon -> Envoyé -> Accepté/Refusé;
// the last two are terminal.
type Status string

const (
	StatusDraft    Status = "Brouillon"
	StatusSent     Status = "Envoyé"
	StatusAccepted Status = "Accepté"
	StatusRefused  Status = "Refusé"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRefused
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusSent
	case StatusSent:
		return next == StatusAccepted || next == StatusRefused
	}
	return false
}

// Quote is a commercial proposal: sections of line items plus totals
// computed at save time. Totals are persisted, never recomputed on read.
type Quote struct {
	ID                    int64             `json:"id"`
	QuoteNumber           string            `json:"quote_number"`
	ClientID              int64             `json:"client_id"`
	Subject               string            `json:"subject"`
	QuoteType             catalog.QuoteType `json:"quote_type"`
	Status                Status            `json:"status"`
	EmissionDate          time.Time         `json:"emission_date"`
	ValidityDate          time.Time         `json:"validity_date"`
	GlobalDiscountPercent float64           `json:"global_discount_percentage"`
	Notes                 *string           `json:"notes,omitempty"`
	Terms                 *string           `json:"terms,omitempty"`

	TotalHTBeforeDiscount float64 `json:"total_ht_before_discount"`
	DiscountAmount        float64 `json:"discount_amount"`
	TotalHTAfterDiscount  float64 `json:"total_ht_after_discount"`
	TotalTVA              float64 `json:"total_tva"`
	TotalTTC              float64 `json:"total_ttc"`
	TotalMensuelHT        float64 `json:"total_mensuel_ht"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sections []Section `json:"sections,omitempty"`
}

// Section groups an ordered list of items under a title. Sections belong to
// exactly one quote; deleting the quote cascades.
type Section struct {
	ID           int64  `json:"id"`
	QuoteID      int64  `json:"quote_id"`
	Title        string `json:"title"`
	TitleEN      string `json:"title_en"`
	DisplayOrder int    `json:"display_order"`
	Items        []Item `json:"items"`
}

// Item is one priced line. ProductID is nil for free-text custom lines and
// holds the tariff line id for tariff_grid lines. TVARate is snapshotted at
// save time and never recomputed later.
type Item struct {
	ID                  int64              `json:"id"`
	SectionID           int64              `json:"section_id"`
	ProductID           *int64             `json:"product_id"`
	ProductType         catalog.ItemType   `json:"product_type"`
	SourceType          catalog.SourceType `json:"source_type"`
	Description         string             `json:"description"`
	DescriptionEN       string             `json:"description_en"`
	Quantity            float64            `json:"quantity"`
	UnitOfMeasure       string             `json:"unit_of_measure"`
	UnitPriceHT         float64            `json:"unit_price_ht"`
	LineDiscountPercent float64            `json:"line_discount_percentage"`
	TVARate             float64            `json:"tva_rate"`
	DisplayOrder        int                `json:"display_order"`
}
