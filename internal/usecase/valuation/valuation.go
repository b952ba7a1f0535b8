// Package valuation holds the unit-price primitives. Pure functions,
// no state: everything else prices units through these two formulas.
package valuation

import "github.com/shopspring/decimal"

// UnitPrice computes nav / totalUnits. When no units are outstanding the
// fallback price applies; it is what bootstraps period 0 before any units
// exist.
func UnitPrice(nav, totalUnits, fallback decimal.Decimal) decimal.Decimal {
	if totalUnits.LessThanOrEqual(decimal.Zero) {
		return fallback
	}
	return nav.Div(totalUnits)
}

// UnitsFromContribution computes amount / unitPrice. A non-positive unit
// price yields zero units rather than a division error.
func UnitsFromContribution(amount, unitPrice decimal.Decimal) decimal.Decimal {
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return amount.Div(unitPrice)
}
