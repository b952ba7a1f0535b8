// Package dividend implements the fiscal-year profit distribution.
package dividend

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/usecase/expense"
	"github.com/acrefund/landbank-backend/internal/usecase/ledger"
)

var one = decimal.NewFromInt(1)

// Pay computes and distributes the dividend for the fiscal year ending at
// the current period. The simulation engine invokes it whenever the period
// reaches a positive multiple of twelve; off-cycle calls are permitted and
// simply use whatever start-of-year snapshot exists for period-12.
//
// Logic:
//  1. Apply yearly expenses, then recompute NAV.
//  2. profit = nav - navAtStartOfYear - contributions inside the year.
//     The start-of-year snapshot already reflects the start-month
//     contributions, so the window is exclusive on both ends:
//     startMonth < contribution period < current period.
//  3. Non-positive profit creates no record (yearly expenses stand).
//  4. Split by the dividend rate, allocate pro-rata to active holders,
//     deduct the distributed amount from cash, recompute NAV, and append
//     the immutable record.
func Pay(st *domain.FundState) ([]domain.SimulationEvent, error) {
	_, events := expense.ApplyYearly(st)
	ledger.RecomputeNAV(st)

	period := st.CurrentPeriod
	startMonth := period - 12

	navAtStart := decimal.Zero
	if snap, ok := st.Snapshots[startMonth]; ok {
		navAtStart = snap.NAV
	}

	yearContributions := decimal.Zero
	for i := range st.Contributions {
		c := &st.Contributions[i]
		if c.IsInternal {
			continue
		}
		if c.Period > startMonth && c.Period < period {
			yearContributions = yearContributions.Add(c.Amount)
		}
	}

	profit := st.NAV.Sub(navAtStart).Sub(yearContributions)
	if profit.LessThanOrEqual(decimal.Zero) {
		return events, nil
	}

	rate := st.Config.DividendRate
	distributed := profit.Mul(rate)
	reinvested := profit.Mul(one.Sub(rate))

	shares := proRataShares(distributed, st.TotalUnits, qualifyingHolders(st))

	st.CashBalance = st.CashBalance.Sub(distributed)
	ledger.RecomputeNAV(st)

	record := domain.Dividend{
		ID:                uuid.New(),
		FiscalYear:        period / 12,
		Period:            period,
		TotalProfit:       profit,
		DistributedAmount: distributed,
		ReinvestedAmount:  reinvested,
		Shares:            shares,
	}
	st.Dividends = append(st.Dividends, record)

	events = append(events, domain.NewEvent(
		domain.EventDividendPaid,
		period,
		fmt.Sprintf("fiscal year %d: profit %s, distributed %s across %d members",
			record.FiscalYear, profit, distributed, len(shares)),
		map[string]string{
			"fiscalYear":  fmt.Sprintf("%d", record.FiscalYear),
			"profit":      profit.String(),
			"distributed": distributed.String(),
			"reinvested":  reinvested.String(),
		},
	))

	return events, nil
}
