package domain

import "github.com/google/uuid"

// EventType classifies simulation audit events.
type EventType string

const (
	EventPeriodAdvanced     EventType = "PERIOD_ADVANCED"
	EventDividendPaid       EventType = "DIVIDEND_PAID"
	EventExpenseSkipped     EventType = "EXPENSE_SKIPPED"
	EventMemberExited       EventType = "MEMBER_EXITED"
	EventLoanCreated        EventType = "LOAN_CREATED"
	EventLoanPayment        EventType = "LOAN_PAYMENT"
	EventLoanStatusChanged  EventType = "LOAN_STATUS_CHANGED"
	EventLandPurchased      EventType = "LAND_PURCHASED"
	EventLandSold           EventType = "LAND_SOLD"
	EventInvestmentOpened   EventType = "INVESTMENT_OPENED"
	EventInvestmentClosed   EventType = "INVESTMENT_CLOSED"
)

// SimulationEvent is an append-only audit entry emitted by operations.
// Events live outside FundState; the store persists them separately.
type SimulationEvent struct {
	ID      uuid.UUID         `json:"id"`
	Type    EventType         `json:"type"`
	Period  int               `json:"period"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewEvent builds an audit event for the given period.
func NewEvent(t EventType, period int, message string, details map[string]string) SimulationEvent {
	return SimulationEvent{
		ID:      uuid.New(),
		Type:    t,
		Period:  period,
		Message: message,
		Details: details,
	}
}
