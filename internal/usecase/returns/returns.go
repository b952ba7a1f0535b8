// Package returns implements the per-asset monthly return models.
package returns

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/acrefund/landbank-backend/internal/domain"
)

var twelve = decimal.NewFromInt(12)

// CashInterest is simple monthly interest on the cash balance:
// balance * annualRate / 12. Applied after the period's contributions
// and expense deductions.
func CashInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRate).Div(twelve)
}

// InvestmentReturn is the same simple-interest formula applied to an
// investment vehicle's current value.
func InvestmentReturn(v *domain.InvestmentVehicle) decimal.Decimal {
	return v.CurrentValue.Mul(v.AnnualRate).Div(twelve)
}

// MonthlyEquivalentRate converts an annual compound rate into its monthly
// equivalent: (1+annual)^(1/12) - 1. The fractional root is taken in
// float64; the resulting rate is small and feeds back into decimal math.
func MonthlyEquivalentRate(annualRate decimal.Decimal) decimal.Decimal {
	annual, _ := annualRate.Float64()
	monthly := math.Pow(1+annual, 1.0/12.0) - 1
	return decimal.NewFromFloat(monthly)
}

// LandAppreciation is one month of compound growth on a held parcel.
func LandAppreciation(l *domain.Land) decimal.Decimal {
	return l.CurrentValue.Mul(MonthlyEquivalentRate(l.AnnualRate))
}

// Accrue applies one period of returns to every active investment and held
// land parcel, then adds cash interest. Per-asset accrual has no cross-asset
// dependency within a period, so investments and land run concurrently; the
// caller's NAV recompute is the serialization point after both finish.
//
// Returns the totals accrued per asset class.
func Accrue(ctx context.Context, st *domain.FundState) (investments, land, cash decimal.Decimal, err error) {
	g, _ := errgroup.WithContext(ctx)

	var investmentsTotal, landTotal decimal.Decimal

	g.Go(func() error {
		total := decimal.Zero
		for i := range st.Investments {
			v := &st.Investments[i]
			if v.Status != domain.InvestmentStatusActive {
				continue
			}
			gain := InvestmentReturn(v)
			v.CurrentValue = v.CurrentValue.Add(gain)
			total = total.Add(gain)
		}
		investmentsTotal = total
		return nil
	})

	g.Go(func() error {
		total := decimal.Zero
		for i := range st.Lands {
			l := &st.Lands[i]
			if l.Status != domain.AssetStatusHeld {
				continue
			}
			gain := LandAppreciation(l)
			l.CurrentValue = l.CurrentValue.Add(gain)
			total = total.Add(gain)
		}
		landTotal = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}

	interest := CashInterest(st.CashBalance, st.Config.CashAnnualRate)
	st.CashBalance = st.CashBalance.Add(interest)

	return investmentsTotal, landTotal, interest, nil
}
