package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrefund/landbank-backend/internal/domain"
)

func TestIssueUnits_FirstContribution(t *testing.T) {
	st := domain.NewFundState(domain.DefaultFundConfig())
	memberID := uuid.New()

	c := IssueUnits(st, memberID, decimal.NewFromInt(1_000_000), st.UnitPrice)
	RecomputeNAV(st)

	assert.True(t, c.UnitsIssued.Equal(decimal.NewFromInt(1000)), "1,000,000 at price 1000 issues 1000 units")
	assert.False(t, c.IsInternal)
	assert.True(t, st.TotalUnits.Equal(decimal.NewFromInt(1000)))
	assert.True(t, st.NAV.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, st.UnitPrice.Equal(decimal.NewFromInt(1000)))
}

func TestIssueUnits_AtAppreciatedPrice(t *testing.T) {
	st := domain.NewFundState(domain.DefaultFundConfig())
	IssueUnits(st, uuid.New(), decimal.NewFromInt(100_000), st.UnitPrice)
	RecomputeNAV(st)

	// Simulate appreciation: cash grows, units do not.
	st.CashBalance = st.CashBalance.Add(decimal.NewFromInt(20_000))
	RecomputeNAV(st)
	require.True(t, st.UnitPrice.Equal(decimal.NewFromInt(1200)))

	c := IssueUnits(st, uuid.New(), decimal.NewFromInt(60_000), st.UnitPrice)
	RecomputeNAV(st)

	assert.True(t, c.UnitsIssued.Equal(decimal.NewFromInt(50)), "later joiners pay the higher price")
	assert.True(t, st.TotalUnits.Equal(decimal.NewFromInt(150)))
}

func TestRecordInternalTransfer_MovesNoCash(t *testing.T) {
	st := domain.NewFundState(domain.DefaultFundConfig())
	seller := uuid.New()
	buyer := uuid.New()
	IssueUnits(st, seller, decimal.NewFromInt(50_000), st.UnitPrice)
	RecomputeNAV(st)

	cashBefore := st.CashBalance
	units := decimal.NewFromInt(50)
	value := units.Mul(st.UnitPrice)
	RecordInternalTransfer(st, seller, units.Neg(), value.Neg(), st.UnitPrice)
	RecordInternalTransfer(st, buyer, units, value, st.UnitPrice)
	RecomputeNAV(st)

	assert.True(t, st.CashBalance.Equal(cashBefore))
	assert.True(t, st.MemberUnits(seller).Equal(decimal.NewFromInt(0)))
	assert.True(t, st.MemberUnits(buyer).Equal(units))
	assert.True(t, st.TotalUnits.Equal(decimal.NewFromInt(50)), "transfers never change total units")
}

func TestRecomputeNAV_IncludesAssets(t *testing.T) {
	st := domain.NewFundState(domain.DefaultFundConfig())
	IssueUnits(st, uuid.New(), decimal.NewFromInt(500_000), st.UnitPrice)

	st.CashBalance = st.CashBalance.Sub(decimal.NewFromInt(300_000))
	st.Lands = append(st.Lands, domain.Land{
		ID:            uuid.New(),
		Name:          "Karu parcel",
		PurchasePrice: decimal.NewFromInt(200_000),
		CurrentValue:  decimal.NewFromInt(200_000),
		AnnualRate:    decimal.NewFromFloat(0.12),
		Status:        domain.AssetStatusHeld,
	})
	st.Investments = append(st.Investments, domain.InvestmentVehicle{
		ID:           uuid.New(),
		Name:         "Treasury notes",
		Principal:    decimal.NewFromInt(100_000),
		CurrentValue: decimal.NewFromInt(100_000),
		AnnualRate:   decimal.NewFromFloat(0.08),
		Status:       domain.InvestmentStatusActive,
	})
	RecomputeNAV(st)

	assert.True(t, st.NAV.Equal(decimal.NewFromInt(500_000)))

	// Sold land and liquidated vehicles drop out of the valuation.
	st.Lands[0].Status = domain.AssetStatusSold
	st.Investments[0].Status = domain.InvestmentStatusLiquidated
	RecomputeNAV(st)
	assert.True(t, st.NAV.Equal(decimal.NewFromInt(200_000)))
}

func TestAssertInvariants_PanicsOnNegativeUnits(t *testing.T) {
	st := domain.NewFundState(domain.DefaultFundConfig())
	st.TotalUnits = decimal.NewFromInt(-1)

	assert.Panics(t, func() { RecomputeNAV(st) })
}

func TestBreakdown(t *testing.T) {
	st := domain.NewFundState(domain.DefaultFundConfig())
	IssueUnits(st, uuid.New(), decimal.NewFromInt(10_000), st.UnitPrice)
	RecomputeNAV(st)

	b := Breakdown(st)
	assert.True(t, b.NAV.Equal(decimal.NewFromInt(10_000)))
	assert.True(t, b.CashBalance.Equal(decimal.NewFromInt(10_000)))
	assert.True(t, b.TotalUnits.Equal(decimal.NewFromInt(10)))
	assert.True(t, b.UnitPrice.Equal(decimal.NewFromInt(1000)))
	assert.True(t, b.InvestmentsValue.IsZero())
	assert.True(t, b.LandValue.IsZero())
}
