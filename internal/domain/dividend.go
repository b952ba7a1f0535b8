package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DividendShare is one member's slice of a distributed dividend.
type DividendShare struct {
	MemberID uuid.UUID       `json:"memberId"`
	Units    decimal.Decimal `json:"units"`
	Amount   decimal.Decimal `json:"amount"`
}

// Dividend is the immutable record of one fiscal-year distribution.
// Created exactly once per completed fiscal year with positive profit.
type Dividend struct {
	ID                uuid.UUID       `json:"id"`
	FiscalYear        int             `json:"fiscalYear"`
	Period            int             `json:"period"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	DistributedAmount decimal.Decimal `json:"distributedAmount"`
	ReinvestedAmount  decimal.Decimal `json:"reinvestedAmount"`
	Shares            []DividendShare `json:"shares"`
}

func (d Dividend) clone() Dividend {
	c := d
	c.Shares = append([]DividendShare(nil), d.Shares...)
	return c
}
