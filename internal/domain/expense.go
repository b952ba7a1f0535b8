package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseOccurrence controls when an expense setting fires.
type ExpenseOccurrence string

const (
	OccurrenceMonthly ExpenseOccurrence = "MONTHLY"
	OccurrenceYearly  ExpenseOccurrence = "YEARLY"
	OccurrenceOneOff  ExpenseOccurrence = "ONE_OFF"
)

// ExpenseSetting is a mutable recurring deduction rule. A ONE_OFF setting
// is deactivated automatically after its single application.
type ExpenseSetting struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Amount     decimal.Decimal   `json:"amount"`
	Occurrence ExpenseOccurrence `json:"occurrence"`
	IsActive   bool              `json:"isActive"`
}

// Validate ensures the expense setting adheres to domain rules.
func (s *ExpenseSetting) Validate() error {
	if s.Name == "" {
		return errors.New("expense name cannot be empty")
	}
	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("expense amount must be positive")
	}
	switch s.Occurrence {
	case OccurrenceMonthly, OccurrenceYearly, OccurrenceOneOff:
	default:
		return errors.New("expense occurrence must be MONTHLY, YEARLY or ONE_OFF")
	}
	return nil
}

// ExpenseRecord is the immutable fact of one applied deduction.
type ExpenseRecord struct {
	ID        uuid.UUID       `json:"id"`
	SettingID uuid.UUID       `json:"settingId"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    int             `json:"period"`
}
