// Package ledger is the single write path for units, NAV and cash.
// Every mutation that changes cash or asset values must be followed by
// RecomputeNAV; it is the synchronization point that keeps the price
// invariant true.
package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/usecase/valuation"
)

// invariantEpsilon bounds the rounding drift tolerated between
// unitPrice * totalUnits and NAV before we treat it as a programming error.
var invariantEpsilon = decimal.New(1, -6)

// IssueUnits converts a cash contribution into units at the given price,
// appends the contribution fact, and moves the cash onto the ledger.
func IssueUnits(st *domain.FundState, memberID uuid.UUID, amount, unitPrice decimal.Decimal) domain.Contribution {
	units := valuation.UnitsFromContribution(amount, unitPrice)

	c := domain.Contribution{
		ID:               uuid.New(),
		MemberID:         memberID,
		Period:           st.CurrentPeriod,
		Amount:           amount,
		UnitsIssued:      units,
		UnitPriceAtIssue: unitPrice,
	}

	st.Contributions = append(st.Contributions, c)
	st.TotalUnits = st.TotalUnits.Add(units)
	st.CashBalance = st.CashBalance.Add(amount)

	return c
}

// RecordInternalTransfer appends a synthetic contribution fact that moves
// units without moving fund cash. Buyback settlements use pairs of these;
// a fund-payout exit uses a single negative one to burn the member's units.
func RecordInternalTransfer(st *domain.FundState, memberID uuid.UUID, units, value, unitPrice decimal.Decimal) domain.Contribution {
	c := domain.Contribution{
		ID:               uuid.New(),
		MemberID:         memberID,
		Period:           st.CurrentPeriod,
		Amount:           value,
		UnitsIssued:      units,
		UnitPriceAtIssue: unitPrice,
		IsInternal:       true,
	}
	st.Contributions = append(st.Contributions, c)
	return c
}

// RecomputeNAV resets NAV from cash plus active asset values, then derives
// the unit price. Must run after every cash or asset mutation.
func RecomputeNAV(st *domain.FundState) {
	st.NAV = st.CashBalance.Add(st.InvestmentsValue()).Add(st.LandValue())
	st.UnitPrice = valuation.UnitPrice(st.NAV, st.TotalUnits, st.Config.InitialUnitPrice)
	assertInvariants(st)
}

// NAVBreakdown is the read-model for the fund's value composition.
type NAVBreakdown struct {
	NAV              decimal.Decimal `json:"nav"`
	CashBalance      decimal.Decimal `json:"cashBalance"`
	InvestmentsValue decimal.Decimal `json:"investmentsValue"`
	LandValue        decimal.Decimal `json:"landValue"`
	TotalUnits       decimal.Decimal `json:"totalUnits"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
}

// Breakdown returns the current NAV composition.
func Breakdown(st *domain.FundState) NAVBreakdown {
	return NAVBreakdown{
		NAV:              st.NAV,
		CashBalance:      st.CashBalance,
		InvestmentsValue: st.InvestmentsValue(),
		LandValue:        st.LandValue(),
		TotalUnits:       st.TotalUnits,
		UnitPrice:        st.UnitPrice,
	}
}

// assertInvariants panics when the ledger math no longer holds. All
// downstream ownership math depends on these, so a violation is a fatal
// programming error rather than a recoverable condition.
func assertInvariants(st *domain.FundState) {
	if st.TotalUnits.IsNegative() {
		panic(fmt.Sprintf("ledger invariant violated: negative total units %s", st.TotalUnits))
	}
	if st.TotalUnits.IsPositive() {
		drift := st.UnitPrice.Mul(st.TotalUnits).Sub(st.NAV).Abs()
		if drift.GreaterThan(invariantEpsilon) {
			panic(fmt.Sprintf("ledger invariant violated: price %s * units %s drifts from nav %s by %s",
				st.UnitPrice, st.TotalUnits, st.NAV, drift))
		}
	}
}
