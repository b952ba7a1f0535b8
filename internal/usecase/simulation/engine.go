// Package simulation implements the monthly state transition that drives
// the fund: contribution collection, expense deduction, return accrual,
// NAV recompute, snapshotting and the fused fiscal-year dividend.
package simulation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/usecase/dividend"
	"github.com/acrefund/landbank-backend/internal/usecase/expense"
	"github.com/acrefund/landbank-backend/internal/usecase/ledger"
	"github.com/acrefund/landbank-backend/internal/usecase/returns"
)

// ContributionGenerator supplies the contribution amount for one member in
// one period. The engine is agnostic to its policy; for reproducible runs
// the implementation must be seeded.
type ContributionGenerator interface {
	Amount(m domain.Member, period int) decimal.Decimal
}

// Engine orchestrates period transitions. It holds no fund state; state
// flows through AdvancePeriod so the store can clone-and-swap.
type Engine struct {
	gen ContributionGenerator
}

// NewEngine creates a simulation engine using the given generator.
func NewEngine(gen ContributionGenerator) *Engine {
	return &Engine{gen: gen}
}

// AdvancePeriod executes exactly one monthly transition on st:
//
//  1. Issue units for every active member's contribution at the pre-step
//     unit price, so all contributions within the period price identically.
//  2. Apply monthly and one-off expenses.
//  3. Accrue cash interest, investment returns and land appreciation.
//     Period 0 skips accrual entirely: the bootstrap period only issues
//     units against initial contributions.
//  4. Recompute NAV and unit price.
//  5. Emit the immutable month snapshot.
//  6. Increment the period counter.
//  7. At positive multiples of twelve, pay the fiscal-year dividend before
//     returning; it is part of the transition, not a separate caller step.
func (e *Engine) AdvancePeriod(ctx context.Context, st *domain.FundState) ([]domain.SimulationEvent, error) {
	period := st.CurrentPeriod
	preStepPrice := st.UnitPrice

	contributionsTotal := decimal.Zero
	for _, m := range st.ActiveMembers() {
		amount := e.gen.Amount(*m, period)
		if amount.IsPositive() {
			ledger.IssueUnits(st, m.ID, amount, preStepPrice)
			contributionsTotal = contributionsTotal.Add(amount)
		}
	}

	expensesTotal, events := expense.ApplyMonthly(st)

	if period > 0 {
		if _, _, _, err := returns.Accrue(ctx, st); err != nil {
			return nil, err
		}
	}

	ledger.RecomputeNAV(st)

	st.Snapshots[period] = domain.MonthSnapshot{
		Period:             period,
		NAV:                st.NAV,
		UnitPrice:          st.UnitPrice,
		TotalUnits:         st.TotalUnits,
		CashBalance:        st.CashBalance,
		InvestmentsValue:   st.InvestmentsValue(),
		LandValue:          st.LandValue(),
		ContributionsTotal: contributionsTotal,
		ExpensesTotal:      expensesTotal,
	}

	st.CurrentPeriod++

	events = append(events, domain.NewEvent(
		domain.EventPeriodAdvanced,
		period,
		fmt.Sprintf("period %d closed: nav %s, unit price %s", period, st.NAV, st.UnitPrice),
		map[string]string{
			"nav":           st.NAV.String(),
			"unitPrice":     st.UnitPrice.String(),
			"contributions": contributionsTotal.String(),
			"expenses":      expensesTotal.String(),
		},
	))

	if st.CurrentPeriod > 0 && st.CurrentPeriod%12 == 0 {
		divEvents, err := dividend.Pay(st)
		if err != nil {
			return nil, err
		}
		events = append(events, divEvents...)
	}

	return events, nil
}

// FastForward advances n periods sequentially. Each step depends on the
// NAV produced by the previous one, so the loop is never parallelized.
func (e *Engine) FastForward(ctx context.Context, st *domain.FundState, n int) ([]domain.SimulationEvent, error) {
	var events []domain.SimulationEvent
	for i := 0; i < n; i++ {
		stepEvents, err := e.AdvancePeriod(ctx, st)
		if err != nil {
			return events, err
		}
		events = append(events, stepEvents...)
	}
	return events, nil
}
