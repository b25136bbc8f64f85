package catalog

// ItemType is the closed set of line item families. Catalog products carry
// one of the four product families; LOGICIEL marks software tariff lines and
// CUSTOM marks free-text lines that never touch the catalog.
type ItemType string

const (
	ItemTypeMateriel   ItemType = "MATERIEL"
	ItemTypeFormation  ItemType = "FORMATION"
	ItemTypePrestation ItemType = "PRESTATION_SERVICE"
	ItemTypeAddon      ItemType = "ADDON"
	ItemTypeLogiciel   ItemType = "LOGICIEL"
	ItemTypeCustom     ItemType = "CUSTOM"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeMateriel, ItemTypeFormation, ItemTypePrestation,
		ItemTypeAddon, ItemTypeLogiciel, ItemTypeCustom:
		return true
	}
	return false
}

// SourceType records where a line item came from.
type SourceType string

const (
	SourceProduct    SourceType = "product"
	SourceTariffGrid SourceType = "tariff_grid"
	SourceCustom     SourceType = "custom"
)

// Units of measure. Monthly lines feed the recurring total, everything else
// is one-off.
const (
	UnitDay   = "jour"
	UnitMonth = "mois"
	UnitPiece = "unité"
)

// AddonRule determines how an add-on derives its unit price.
type AddonRule string

const (
	AddonRuleFixedAmount AddonRule = "FIXED_AMOUNT"
	AddonRulePercentage  AddonRule = "PERCENTAGE"
)

// QuoteType constrains which item families may appear on a quote.
type QuoteType string

const (
	QuoteTypeLicences QuoteType = "LICENCES_ABONNEMENTS"
	QuoteTypeMateriel QuoteType = "MATERIEL_PRESTATIONS"
)

// Valid reports whether qt is a known quote type.
func (qt QuoteType) Valid() bool {
	return qt == QuoteTypeLicences || qt == QuoteTypeMateriel
}

// AllowedFamilies returns the item families a quote of this type may carry.
// CUSTOM lines are always allowed and never searched.
func (qt QuoteType) AllowedFamilies() []ItemType {
	switch qt {
	case QuoteTypeLicences:
		return []ItemType{ItemTypeLogiciel, ItemTypeFormation, ItemTypePrestation, ItemTypeAddon}
	case QuoteTypeMateriel:
		return []ItemType{ItemTypeMateriel, ItemTypeFormation, ItemTypePrestation}
	}
	return nil
}

// Allows reports whether the given family may appear on a quote of this type.
func (qt QuoteType) Allows(t ItemType) bool {
	if t == ItemTypeCustom {
		return true
	}
	for _, f := range qt.AllowedFamilies() {
		if f == t {
			return true
		}
	}
	return false
}

// Product is a catalog entry: hardware, training, service or add-on.
// MATERIEL carries a flat unit price, FORMATION and PRESTATION_SERVICE a
// daily rate. ADDON carries a pricing rule; a PERCENTAGE rule references
// exactly one basis, either a software (priced through its tariff grid) or
// a service product.
type Product struct {
	ID              int64     `json:"id"`
	Reference       string    `json:"reference"`
	Name            string    `json:"name"`
	NameEN          string    `json:"name_en"`
	Family          ItemType  `json:"family"`
	UnitPrice       float64   `json:"unit_price"`
	DailyRate       float64   `json:"daily_rate"`
	AddonRule       AddonRule `json:"addon_rule,omitempty"`
	AddonValue      float64   `json:"addon_value,omitempty"`
	BasisSoftwareID *int64    `json:"basis_software_id,omitempty"`
	BasisServiceID  *int64    `json:"basis_service_id,omitempty"`
	Active          bool      `json:"active"`
}

// Software is a licensable radio software product priced through tariff lines.
type Software struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
}

// TariffLine is an audience-banded monthly price for a software. Nil bounds
// are unbounded on that side; both nil marks the generic catch-all tariff.
type TariffLine struct {
	ID           int64   `json:"id"`
	SoftwareID   int64   `json:"software_id"`
	Reference    string  `json:"reference"`
	Name         string  `json:"name"`
	AudienceMin  *int64  `json:"audience_min"`
	AudienceMax  *int64  `json:"audience_max"`
	MonthlyPrice float64 `json:"monthly_price"`
	Active       bool    `json:"active"`
}

// LineTemplate is the normalized price quote for one line, ready to be added
// to a quote client-side. ProductID holds the catalog product id, or the
// tariff line id for tariff_grid lines.
type LineTemplate struct {
	ProductID     *int64     `json:"product_id"`
	ProductType   ItemType   `json:"product_type"`
	SourceType    SourceType `json:"source_type"`
	Description   string     `json:"description"`
	DescriptionEN string     `json:"description_en"`
	UnitOfMeasure string     `json:"unit_of_measure"`
	UnitPriceHT   float64    `json:"unit_price_ht"`
}

// SearchResult is one catalog search hit.
type SearchResult struct {
	ID          int64      `json:"id"`
	Reference   string     `json:"reference"`
	Name        string     `json:"name"`
	ProductType ItemType   `json:"product_type"`
	SourceType  SourceType `json:"source_type"`
}
