// Package lending issues, classifies and amortizes intra-fund loans
// against member equity. The loan ledger is independent of the unit
// ledger: issuing a loan does not move fund cash by itself.
package lending

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// CreateLoanInput carries the issuance parameters. BorrowerEquity is the
// member's current stake, supplied by the caller; collateral is optional
// for loans that classify as unsecured.
type CreateLoanInput struct {
	BorrowerID            uuid.UUID
	Principal             decimal.Decimal
	BorrowerEquity        decimal.Decimal
	TermMonths            int
	CollateralDescription string
	CollateralValue       *decimal.Decimal
}

// Classify decides the loan type from the loan-to-equity ratio. A ratio at
// or below the collateral threshold is unsecured; above it, secured.
// Non-positive equity forces a ratio of 1, and with the threshold below 1
// that forces a secured classification.
func Classify(principal, borrowerEquity, threshold decimal.Decimal) (domain.LoanType, decimal.Decimal) {
	ratio := one
	if borrowerEquity.IsPositive() {
		ratio = principal.Div(borrowerEquity)
	}
	if ratio.LessThanOrEqual(threshold) {
		return domain.LoanTypeUnsecured, ratio
	}
	return domain.LoanTypeSecured, ratio
}

// CreateLoan issues a loan with status ACTIVE. Interest is simple and
// term-weighted, fixed once at issuance:
//
//	totalDue = principal * (1 + rate * termMonths/12)
//
// A secured loan missing its collateral description is rejected here at
// the boundary; classification itself never inspects collateral.
func CreateLoan(st *domain.FundState, input CreateLoanInput) (domain.Loan, []domain.SimulationEvent, error) {
	borrower := st.MemberByID(input.BorrowerID)
	if borrower == nil {
		return domain.Loan{}, nil, domain.ErrMemberNotFound
	}
	if !borrower.IsActive {
		return domain.Loan{}, nil, domain.ErrMemberInactive
	}

	loanType, _ := Classify(input.Principal, input.BorrowerEquity, st.Config.CollateralThreshold)

	rate := st.Config.UnsecuredRate
	if loanType == domain.LoanTypeSecured {
		rate = st.Config.SecuredRate
		if input.CollateralDescription == "" || input.CollateralValue == nil {
			return domain.Loan{}, nil, domain.ErrCollateralRequired
		}
	}

	term := decimal.NewFromInt(int64(input.TermMonths))
	totalDue := input.Principal.Mul(one.Add(rate.Mul(term.Div(twelve))))

	loan := domain.Loan{
		ID:                    uuid.New(),
		BorrowerID:            input.BorrowerID,
		Principal:             input.Principal,
		InterestRate:          rate,
		TermMonths:            input.TermMonths,
		TotalDue:              totalDue,
		AmountPaid:            decimal.Zero,
		Status:                domain.LoanStatusActive,
		LoanType:              loanType,
		CollateralDescription: input.CollateralDescription,
		CollateralValue:       input.CollateralValue,
		IssuedAtPeriod:        st.CurrentPeriod,
	}
	if err := loan.Validate(); err != nil {
		return domain.Loan{}, nil, err
	}

	st.Loans = append(st.Loans, loan)

	event := domain.NewEvent(
		domain.EventLoanCreated,
		st.CurrentPeriod,
		fmt.Sprintf("loan of %s to %s: %s at %s for %d months, due %s",
			input.Principal, borrower.Name, loanType, rate, input.TermMonths, totalDue),
		map[string]string{
			"loanId":     loan.ID.String(),
			"borrowerId": input.BorrowerID.String(),
			"loanType":   string(loanType),
			"totalDue":   totalDue.String(),
		},
	)

	return loan, []domain.SimulationEvent{event}, nil
}

// RecordPayment applies a repayment. Once the amount paid reaches the
// total due the loan transitions to PAID. Payments beyond the total due
// are accepted without clamping; the surplus simply shows as a negative
// outstanding.
func RecordPayment(st *domain.FundState, loanID uuid.UUID, amount decimal.Decimal) ([]domain.SimulationEvent, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	loan := st.LoanByID(loanID)
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	if loan.IsTerminal() {
		return nil, domain.ErrLoanNotActive
	}

	loan.AmountPaid = loan.AmountPaid.Add(amount)
	loan.Payments = append(loan.Payments, domain.LoanPayment{
		ID:     uuid.New(),
		LoanID: loanID,
		Amount: amount,
		Period: st.CurrentPeriod,
	})
	if loan.AmountPaid.GreaterThanOrEqual(loan.TotalDue) {
		loan.Status = domain.LoanStatusPaid
	}

	return []domain.SimulationEvent{domain.NewEvent(
		domain.EventLoanPayment,
		st.CurrentPeriod,
		fmt.Sprintf("payment of %s on loan %s, outstanding %s", amount, loanID, loan.Outstanding()),
		map[string]string{
			"loanId":      loanID.String(),
			"amount":      amount.String(),
			"outstanding": loan.Outstanding().String(),
			"status":      string(loan.Status),
		},
	)}, nil
}

// MarkDefaulted is an explicit operator transition from ACTIVE.
func MarkDefaulted(st *domain.FundState, loanID uuid.UUID) ([]domain.SimulationEvent, error) {
	return terminate(st, loanID, domain.LoanStatusDefaulted)
}

// CancelLoan is an explicit operator transition from ACTIVE.
func CancelLoan(st *domain.FundState, loanID uuid.UUID) ([]domain.SimulationEvent, error) {
	return terminate(st, loanID, domain.LoanStatusCancelled)
}

func terminate(st *domain.FundState, loanID uuid.UUID, status domain.LoanStatus) ([]domain.SimulationEvent, error) {
	loan := st.LoanByID(loanID)
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	if loan.IsTerminal() {
		return nil, domain.ErrLoanNotActive
	}

	loan.Status = status

	return []domain.SimulationEvent{domain.NewEvent(
		domain.EventLoanStatusChanged,
		st.CurrentPeriod,
		fmt.Sprintf("loan %s marked %s", loanID, status),
		map[string]string{"loanId": loanID.String(), "status": string(status)},
	)}, nil
}

// Summary aggregates the loan ledger for reporting.
type Summary struct {
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	TotalLent        decimal.Decimal `json:"totalLent"`
	TotalRepaid      decimal.Decimal `json:"totalRepaid"`
	ActiveLoans      int             `json:"activeLoans"`
}

// Summarize computes the aggregate loan queries: outstanding over active
// loans, principal lent over non-cancelled loans, repaid over all loans.
func Summarize(st *domain.FundState) Summary {
	s := Summary{
		TotalOutstanding: decimal.Zero,
		TotalLent:        decimal.Zero,
		TotalRepaid:      decimal.Zero,
	}
	for i := range st.Loans {
		l := &st.Loans[i]
		if l.Status == domain.LoanStatusActive {
			s.TotalOutstanding = s.TotalOutstanding.Add(l.Outstanding())
			s.ActiveLoans++
		}
		if l.Status != domain.LoanStatusCancelled {
			s.TotalLent = s.TotalLent.Add(l.Principal)
		}
		s.TotalRepaid = s.TotalRepaid.Add(l.AmountPaid)
	}
	return s
}
