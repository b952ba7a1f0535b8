package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus tracks the lifecycle of a loan. PAID, DEFAULTED and CANCELLED
// are terminal.
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusPaid      LoanStatus = "PAID"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
	LoanStatusCancelled LoanStatus = "CANCELLED"
)

// LoanType is the collateral classification, decided once at issuance by
// the loan-to-equity ratio.
type LoanType string

const (
	LoanTypeSecured   LoanType = "SECURED"
	LoanTypeUnsecured LoanType = "UNSECURED"
)

// LoanPayment is an immutable repayment fact.
type LoanPayment struct {
	ID     uuid.UUID       `json:"id"`
	LoanID uuid.UUID       `json:"loanId"`
	Amount decimal.Decimal `json:"amount"`
	Period int             `json:"period"`
}

// Loan is an intra-fund loan issued against member equity. Interest is
// simple and term-weighted, fixed once at issuance.
type Loan struct {
	ID                    uuid.UUID        `json:"id"`
	BorrowerID            uuid.UUID        `json:"borrowerId"`
	Principal             decimal.Decimal  `json:"principal"`
	InterestRate          decimal.Decimal  `json:"interestRate"`
	TermMonths            int              `json:"termMonths"`
	TotalDue              decimal.Decimal  `json:"totalDue"`
	AmountPaid            decimal.Decimal  `json:"amountPaid"`
	Status                LoanStatus       `json:"status"`
	LoanType              LoanType         `json:"loanType"`
	CollateralDescription string           `json:"collateralDescription,omitempty"`
	CollateralValue       *decimal.Decimal `json:"collateralValue,omitempty"`
	IssuedAtPeriod        int              `json:"issuedAtPeriod"`
	Payments              []LoanPayment    `json:"payments"`
}

// Validate ensures the loan adheres to domain rules. Collateral presence
// for secured loans is a boundary policy, enforced by the caller layer.
func (l *Loan) Validate() error {
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return errors.New("loan principal must be positive")
	}
	if l.TermMonths <= 0 {
		return errors.New("loan term must be at least one month")
	}
	if l.InterestRate.IsNegative() {
		return errors.New("loan interest rate cannot be negative")
	}
	switch l.LoanType {
	case LoanTypeSecured, LoanTypeUnsecured:
	default:
		return errors.New("loan type must be SECURED or UNSECURED")
	}
	return nil
}

// Outstanding returns the amount still owed. Over-paid loans report a
// negative outstanding; payments are accepted without clamping.
func (l *Loan) Outstanding() decimal.Decimal {
	return l.TotalDue.Sub(l.AmountPaid)
}

// IsTerminal reports whether the loan reached a final status.
func (l *Loan) IsTerminal() bool {
	return l.Status != LoanStatusActive
}

func (l Loan) clone() Loan {
	c := l
	if l.CollateralValue != nil {
		cv := *l.CollateralValue
		c.CollateralValue = &cv
	}
	c.Payments = append([]LoanPayment(nil), l.Payments...)
	return c
}
