package quotes

import (
	"github.com/rcs-software/rcs-crm/internal/catalog"
)

// Totals holds the six persisted quote figures. The five one-off figures
// follow the discount/tax pipeline; the monthly recurring total is neither
// globally discounted nor taxed here.
type Totals struct {
	TotalHTBeforeDiscount float64
	DiscountAmount        float64
	TotalHTAfterDiscount  float64
	TotalTVA              float64
	TotalTTC              float64
	TotalMensuelHT        float64
}

// ItemTotal computes one line's total before any global discount.
func ItemTotal(quantity, unitPriceHT, discountPercent float64) float64 {
	return quantity * unitPriceHT * (1 - discountPercent/100)
}

// ComputeTotals aggregates all sections into quote totals. Item totals are
// partitioned by unit of measure: monthly lines accumulate into the
// recurring total, everything else into the one-off total. The global
// discount and VAT apply to the one-off total only. Intermediate math runs
// at full precision; the returned figures are rounded to 2 decimals.
func ComputeTotals(sections []Section, globalDiscountPercent, taxRate float64) Totals {
	var oneOff, monthly float64
	for _, section := range sections {
		for _, item := range section.Items {
			total := ItemTotal(item.Quantity, item.UnitPriceHT, item.LineDiscountPercent)
			if item.UnitOfMeasure == catalog.UnitMonth {
				monthly += total
			} else {
				oneOff += total
			}
		}
	}

	discount := oneOff * (globalDiscountPercent / 100)
	afterDiscount := oneOff - discount
	tva := afterDiscount * (taxRate / 100)
	ttc := afterDiscount + tva

	return Totals{
		TotalHTBeforeDiscount: catalog.Round2(oneOff),
		DiscountAmount:        catalog.Round2(discount),
		TotalHTAfterDiscount:  catalog.Round2(afterDiscount),
		TotalTVA:              catalog.Round2(tva),
		TotalTTC:              catalog.Round2(ttc),
		TotalMensuelHT:        catalog.Round2(monthly),
	}
}
