package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExitMethod identifies which settlement protocol retired a member.
type ExitMethod string

const (
	ExitMethodFundPayout        ExitMethod = "FUND_PAYOUT"
	ExitMethodPooledBuyback     ExitMethod = "POOLED_BUYBACK"
	ExitMethodIndividualBuyback ExitMethod = "INDIVIDUAL_BUYBACK"
)

// ContributionProfile drives the synthetic contribution generator. It is
// descriptive metadata only; the ledger never reads it.
type ContributionProfile struct {
	Persona    string          `json:"persona"`
	BaseAmount decimal.Decimal `json:"baseAmount"`
	Variance   float64         `json:"variance"` // fraction of BaseAmount, e.g. 0.25
	SkipChance float64         `json:"skipChance"`
}

// Member represents a syndicate member. A member is created active and
// transitions to inactive exactly once, through one exit protocol.
type Member struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	IsActive       bool                `json:"isActive"`
	JoinedAtPeriod int                 `json:"joinedAtPeriod"`
	Profile        ContributionProfile `json:"profile"`
	ExitedAtPeriod *int                `json:"exitedAtPeriod,omitempty"`
	ExitReason     string              `json:"exitReason,omitempty"`
	ExitMethod     *ExitMethod         `json:"exitMethod,omitempty"`
}

// Validate ensures the member adheres to domain rules.
func (m *Member) Validate() error {
	if m.Name == "" {
		return errors.New("member name cannot be empty")
	}
	if m.JoinedAtPeriod < 0 {
		return errors.New("member joined period cannot be negative")
	}
	if !m.IsActive && m.ExitMethod == nil {
		return errors.New("inactive member must carry exit metadata")
	}
	return nil
}

// MarkExited records the one-way transition out of the fund.
func (m *Member) MarkExited(period int, method ExitMethod, reason string) {
	m.IsActive = false
	m.ExitedAtPeriod = &period
	m.ExitMethod = &method
	m.ExitReason = reason
}

func (m Member) clone() Member {
	c := m
	if m.ExitedAtPeriod != nil {
		p := *m.ExitedAtPeriod
		c.ExitedAtPeriod = &p
	}
	if m.ExitMethod != nil {
		em := *m.ExitMethod
		c.ExitMethod = &em
	}
	return c
}
