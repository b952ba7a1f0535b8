package expense

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
)

// AddSetting registers a new recurring deduction rule.
func AddSetting(st *domain.FundState, setting domain.ExpenseSetting) (domain.ExpenseSetting, error) {
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	setting.IsActive = true
	if err := setting.Validate(); err != nil {
		return domain.ExpenseSetting{}, err
	}
	st.ExpenseSettings = append(st.ExpenseSettings, setting)
	return setting, nil
}

// DeactivateSetting turns a rule off without deleting its applied records.
func DeactivateSetting(st *domain.FundState, id uuid.UUID) error {
	for i := range st.ExpenseSettings {
		if st.ExpenseSettings[i].ID == id {
			st.ExpenseSettings[i].IsActive = false
			return nil
		}
	}
	return domain.ErrExpenseSettingNotFound
}

// ApplyMonthly deducts all active MONTHLY and ONE_OFF settings from the
// cash balance. Runs immediately after contributions are added, before
// return accrual.
func ApplyMonthly(st *domain.FundState) (decimal.Decimal, []domain.SimulationEvent) {
	return apply(st, domain.OccurrenceMonthly, domain.OccurrenceOneOff)
}

// ApplyYearly deducts all active YEARLY settings. Runs once at the fiscal
// year boundary, before profit is computed.
func ApplyYearly(st *domain.FundState) (decimal.Decimal, []domain.SimulationEvent) {
	return apply(st, domain.OccurrenceYearly)
}

// apply walks the active settings matching the given occurrences.
// An expense larger than the remaining cash is skipped whole, never
// partially applied: insufficient cash defers the expense, it does not
// fail the period. Each applied deduction appends one immutable record,
// and a ONE_OFF setting that fired is deactivated.
func apply(st *domain.FundState, occurrences ...domain.ExpenseOccurrence) (decimal.Decimal, []domain.SimulationEvent) {
	total := decimal.Zero
	var events []domain.SimulationEvent

	for i := range st.ExpenseSettings {
		s := &st.ExpenseSettings[i]
		if !s.IsActive || !matches(s.Occurrence, occurrences) {
			continue
		}

		if s.Amount.GreaterThan(st.CashBalance) {
			events = append(events, domain.NewEvent(
				domain.EventExpenseSkipped,
				st.CurrentPeriod,
				fmt.Sprintf("expense %q deferred: %s exceeds cash %s", s.Name, s.Amount, st.CashBalance),
				map[string]string{"settingId": s.ID.String(), "amount": s.Amount.String()},
			))
			continue
		}

		st.CashBalance = st.CashBalance.Sub(s.Amount)
		st.ExpenseRecords = append(st.ExpenseRecords, domain.ExpenseRecord{
			ID:        uuid.New(),
			SettingID: s.ID,
			Name:      s.Name,
			Category:  s.Category,
			Amount:    s.Amount,
			Period:    st.CurrentPeriod,
		})
		total = total.Add(s.Amount)

		if s.Occurrence == domain.OccurrenceOneOff {
			s.IsActive = false
		}
	}

	return total, events
}

func matches(o domain.ExpenseOccurrence, set []domain.ExpenseOccurrence) bool {
	for _, occ := range set {
		if o == occ {
			return true
		}
	}
	return false
}

// TotalsByCategory aggregates applied deductions per category.
func TotalsByCategory(st *domain.FundState) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for i := range st.ExpenseRecords {
		r := &st.ExpenseRecords[i]
		totals[r.Category] = totals[r.Category].Add(r.Amount)
	}
	return totals
}
