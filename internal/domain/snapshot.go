package domain

import "github.com/shopspring/decimal"

// MonthSnapshot captures the fund at the end of one simulated period.
// Snapshots are immutable once emitted and are indexed by period so the
// dividend engine can find the start-of-year NAV in constant time.
type MonthSnapshot struct {
	Period             int             `json:"period"`
	NAV                decimal.Decimal `json:"nav"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TotalUnits         decimal.Decimal `json:"totalUnits"`
	CashBalance        decimal.Decimal `json:"cashBalance"`
	InvestmentsValue   decimal.Decimal `json:"investmentsValue"`
	LandValue          decimal.Decimal `json:"landValue"`
	ContributionsTotal decimal.Decimal `json:"contributionsTotal"`
	ExpensesTotal      decimal.Decimal `json:"expensesTotal"`
}
