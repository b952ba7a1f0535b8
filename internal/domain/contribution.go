package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contribution is an immutable fact recording units issued to a member.
// Only the ledger engine creates contributions; the slice is append-only.
//
// External contributions carry positive amounts of fresh cash. Internal
// contributions (IsInternal) record buyback transfers and exit burns: their
// UnitsIssued may be negative and they never move fund cash by themselves.
type Contribution struct {
	ID               uuid.UUID       `json:"id"`
	MemberID         uuid.UUID       `json:"memberId"`
	Period           int             `json:"period"`
	Amount           decimal.Decimal `json:"amount"`
	UnitsIssued      decimal.Decimal `json:"unitsIssued"`
	UnitPriceAtIssue decimal.Decimal `json:"unitPriceAtIssue"`
	IsInternal       bool            `json:"isInternal"`
}
