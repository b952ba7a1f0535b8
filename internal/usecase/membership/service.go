// Package membership implements the three member exit protocols.
package membership

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/usecase/ledger"
)

var hundred = decimal.NewFromInt(100)

// Join registers a new member. Members are created active and leave the
// fund exactly once, through one of the exit protocols below.
func Join(st *domain.FundState, m domain.Member) (domain.Member, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.IsActive = true
	m.JoinedAtPeriod = st.CurrentPeriod
	if err := m.Validate(); err != nil {
		return domain.Member{}, err
	}
	st.Members = append(st.Members, m)
	return m, nil
}

// ExitFundPayout settles an exit from fund cash. The member's units are
// burned and total units shrink; the payout is clamped to available
// liquidity, so an illiquid fund still fully exits the member but pays
// less than full value. The clamp shifts the remaining holders' unit
// price when it bites; that behavior is preserved deliberately and pinned
// by tests.
func ExitFundPayout(st *domain.FundState, memberID uuid.UUID, reason string) ([]domain.SimulationEvent, error) {
	m := st.MemberByID(memberID)
	if m == nil {
		return nil, domain.ErrMemberNotFound
	}
	if !m.IsActive {
		return nil, domain.ErrMemberInactive
	}

	units := st.MemberUnits(memberID)
	exitValue := units.Mul(st.UnitPrice)
	payout := exitValue
	if payout.GreaterThan(st.CashBalance) {
		payout = st.CashBalance
	}

	ledger.RecordInternalTransfer(st, memberID, units.Neg(), exitValue.Neg(), st.UnitPrice)
	st.TotalUnits = st.TotalUnits.Sub(units)
	st.CashBalance = st.CashBalance.Sub(payout)
	m.MarkExited(st.CurrentPeriod, domain.ExitMethodFundPayout, reason)
	ledger.RecomputeNAV(st)

	return []domain.SimulationEvent{domain.NewEvent(
		domain.EventMemberExited,
		st.CurrentPeriod,
		fmt.Sprintf("member %s exited via fund payout: %s units, paid %s of %s", m.Name, units, payout, exitValue),
		map[string]string{
			"memberId":  memberID.String(),
			"method":    string(domain.ExitMethodFundPayout),
			"units":     units.String(),
			"exitValue": exitValue.String(),
			"paidOut":   payout.String(),
		},
	)}, nil
}

// ExitPooledBuyback transfers the exiting member's units to one or more
// remaining members according to percentage allocations that must sum to
// exactly 100. Buyers pay the exiting member outside the fund, so total
// units, cash and NAV are all unchanged: a zero-sum internal transfer
// recorded as synthetic contribution facts.
func ExitPooledBuyback(st *domain.FundState, memberID uuid.UUID, allocations map[uuid.UUID]decimal.Decimal, reason string) ([]domain.SimulationEvent, error) {
	m := st.MemberByID(memberID)
	if m == nil {
		return nil, domain.ErrMemberNotFound
	}
	if !m.IsActive {
		return nil, domain.ErrMemberInactive
	}

	if len(allocations) == 0 {
		return nil, domain.ErrAllocationSum
	}
	percentTotal := decimal.Zero
	for buyerID, percent := range allocations {
		if percent.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrAllocationSum
		}
		buyer := st.MemberByID(buyerID)
		if buyer == nil || buyerID == memberID {
			return nil, domain.ErrBuyerNotFound
		}
		if !buyer.IsActive {
			return nil, domain.ErrBuyerInactive
		}
		percentTotal = percentTotal.Add(percent)
	}
	if !percentTotal.Equal(hundred) {
		return nil, domain.ErrAllocationSum
	}

	units := st.MemberUnits(memberID)
	exitValue := units.Mul(st.UnitPrice)

	ledger.RecordInternalTransfer(st, memberID, units.Neg(), exitValue.Neg(), st.UnitPrice)

	counterparties := make(map[string]string, len(allocations)+3)
	for buyerID, percent := range allocations {
		shareUnits := units.Mul(percent).Div(hundred)
		shareValue := exitValue.Mul(percent).Div(hundred)
		ledger.RecordInternalTransfer(st, buyerID, shareUnits, shareValue, st.UnitPrice)
		counterparties[buyerID.String()] = percent.String()
	}

	method := domain.ExitMethodPooledBuyback
	if len(allocations) == 1 {
		method = domain.ExitMethodIndividualBuyback
	}
	m.MarkExited(st.CurrentPeriod, method, reason)
	ledger.RecomputeNAV(st)

	counterparties["memberId"] = memberID.String()
	counterparties["method"] = string(method)
	counterparties["exitValue"] = exitValue.String()

	return []domain.SimulationEvent{domain.NewEvent(
		domain.EventMemberExited,
		st.CurrentPeriod,
		fmt.Sprintf("member %s exited via %s: %s units worth %s transferred to %d buyers",
			m.Name, method, units, exitValue, len(allocations)),
		counterparties,
	)}, nil
}

// ExitIndividualBuyback is the single-buyer special case: one remaining
// member takes 100 percent of the exiting member's units at full value.
func ExitIndividualBuyback(st *domain.FundState, memberID, buyerID uuid.UUID, reason string) ([]domain.SimulationEvent, error) {
	return ExitPooledBuyback(st, memberID, map[uuid.UUID]decimal.Decimal{buyerID: hundred}, reason)
}
