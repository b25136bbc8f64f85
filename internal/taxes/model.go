package taxes

// TaxRate is the active VAT percentage for a country. At most one active
// rate exists per country code.
type TaxRate struct {
	ID          int64   `json:"id"`
	CountryCode string  `json:"country_code"`
	Rate        float64 `json:"rate"`
	Active      bool    `json:"active"`
}
