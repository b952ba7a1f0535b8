package lending

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/usecase/membership"
)

func lendingFund(t *testing.T) (*domain.FundState, uuid.UUID) {
	t.Helper()
	st := domain.NewFundState(domain.DefaultFundConfig())
	m, err := membership.Join(st, domain.Member{Name: "Danjuma Bello"})
	require.NoError(t, err)
	return st, m.ID
}

func TestClassify(t *testing.T) {
	threshold := decimal.NewFromFloat(0.5)

	cases := []struct {
		name      string
		principal int64
		equity    int64
		want      domain.LoanType
	}{
		{"well under threshold", 100_000, 1_000_000, domain.LoanTypeUnsecured},
		{"exactly at threshold", 500_000, 1_000_000, domain.LoanTypeUnsecured},
		{"just over threshold", 500_001, 1_000_000, domain.LoanTypeSecured},
		{"zero equity", 100_000, 0, domain.LoanTypeSecured},
		{"negative equity", 100_000, -5, domain.LoanTypeSecured},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ratio := Classify(decimal.NewFromInt(tc.principal), decimal.NewFromInt(tc.equity), threshold)
			assert.Equal(t, tc.want, got)
			if tc.equity <= 0 {
				assert.True(t, ratio.Equal(decimal.NewFromInt(1)), "non-positive equity pins the ratio at 1")
			}
		})
	}
}

func TestCreateLoan_UnsecuredTerms(t *testing.T) {
	st, borrowerID := lendingFund(t)

	loan, events, err := CreateLoan(st, CreateLoanInput{
		BorrowerID:     borrowerID,
		Principal:      decimal.NewFromInt(500_000),
		BorrowerEquity: decimal.NewFromInt(2_000_000),
		TermMonths:     12,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.LoanTypeUnsecured, loan.LoanType)
	assert.True(t, loan.InterestRate.Equal(decimal.NewFromFloat(0.10)))
	// 500,000 * (1 + 0.10 * 12/12) = 550,000.
	assert.True(t, loan.TotalDue.Equal(decimal.NewFromInt(550_000)))
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventLoanCreated, events[0].Type)
	assert.Len(t, st.Loans, 1)
}

func TestCreateLoan_TermWeightedInterest(t *testing.T) {
	st, borrowerID := lendingFund(t)

	loan, _, err := CreateLoan(st, CreateLoanInput{
		BorrowerID:     borrowerID,
		Principal:      decimal.NewFromInt(120_000),
		BorrowerEquity: decimal.NewFromInt(1_000_000),
		TermMonths:     6,
	})
	require.NoError(t, err)

	// 120,000 * (1 + 0.10 * 6/12) = 126,000.
	assert.True(t, loan.TotalDue.Equal(decimal.NewFromInt(126_000)))
}

func TestCreateLoan_SecuredRequiresCollateral(t *testing.T) {
	st, borrowerID := lendingFund(t)
	input := CreateLoanInput{
		BorrowerID:     borrowerID,
		Principal:      decimal.NewFromInt(800_000),
		BorrowerEquity: decimal.NewFromInt(1_000_000),
		TermMonths:     12,
	}

	_, _, err := CreateLoan(st, input)
	assert.ErrorIs(t, err, domain.ErrCollateralRequired)

	// Description without value is still incomplete.
	input.CollateralDescription = "Vehicle, 2021 Hilux"
	_, _, err = CreateLoan(st, input)
	assert.ErrorIs(t, err, domain.ErrCollateralRequired)

	cv := decimal.NewFromInt(900_000)
	input.CollateralValue = &cv
	loan, _, err := CreateLoan(st, input)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanTypeSecured, loan.LoanType)
	assert.True(t, loan.InterestRate.Equal(decimal.NewFromFloat(0.15)))
	// 800,000 * (1 + 0.15) = 920,000.
	assert.True(t, loan.TotalDue.Equal(decimal.NewFromInt(920_000)))
}

func TestCreateLoan_BorrowerChecks(t *testing.T) {
	st, borrowerID := lendingFund(t)

	_, _, err := CreateLoan(st, CreateLoanInput{
		BorrowerID:     uuid.New(),
		Principal:      decimal.NewFromInt(1_000),
		BorrowerEquity: decimal.NewFromInt(100_000),
		TermMonths:     12,
	})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	st.MemberByID(borrowerID).MarkExited(0, domain.ExitMethodFundPayout, "gone")
	_, _, err = CreateLoan(st, CreateLoanInput{
		BorrowerID:     borrowerID,
		Principal:      decimal.NewFromInt(1_000),
		BorrowerEquity: decimal.NewFromInt(100_000),
		TermMonths:     12,
	})
	assert.ErrorIs(t, err, domain.ErrMemberInactive)
}

func TestRecordPayment_Lifecycle(t *testing.T) {
	st, borrowerID := lendingFund(t)
	loan, _, err := CreateLoan(st, CreateLoanInput{
		BorrowerID:     borrowerID,
		Principal:      decimal.NewFromInt(100_000),
		BorrowerEquity: decimal.NewFromInt(1_000_000),
		TermMonths:     12,
	})
	require.NoError(t, err)

	_, err = RecordPayment(st, loan.ID, decimal.NewFromInt(60_000))
	require.NoError(t, err)
	got := st.LoanByID(loan.ID)
	assert.Equal(t, domain.LoanStatusActive, got.Status)
	assert.True(t, got.Outstanding().Equal(decimal.NewFromInt(50_000)))
	assert.Len(t, got.Payments, 1)

	_, err = RecordPayment(st, loan.ID, decimal.NewFromInt(50_000))
	require.NoError(t, err)
	got = st.LoanByID(loan.ID)
	assert.Equal(t, domain.LoanStatusPaid, got.Status)
	assert.True(t, got.Outstanding().IsZero())

	// Terminal loans accept no further payments.
	_, err = RecordPayment(st, loan.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrLoanNotActive)
}

func TestRecordPayment_OverpaymentUnclamped(t *testing.T) {
	st, borrowerID := lendingFund(t)
	loan, _, err := CreateLoan(st, CreateLoanInput{
		BorrowerID:     borrowerID,
		Principal:      decimal.NewFromInt(100_000),
		BorrowerEquity: decimal.NewFromInt(1_000_000),
		TermMonths:     12,
	})
	require.NoError(t, err)

	_, err = RecordPayment(st, loan.ID, decimal.NewFromInt(150_000))
	require.NoError(t, err)

	got := st.LoanByID(loan.ID)
	assert.Equal(t, domain.LoanStatusPaid, got.Status)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(150_000)), "the surplus is kept on the ledger")
	assert.True(t, got.Outstanding().Equal(decimal.NewFromInt(-40_000)))
}

func TestRecordPayment_Validation(t *testing.T) {
	st, _ := lendingFund(t)

	_, err := RecordPayment(st, uuid.New(), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)

	_, err = RecordPayment(st, uuid.New(), decimal.Zero)
	assert.Error(t, err)
}

func TestTerminalTransitions(t *testing.T) {
	st, borrowerID := lendingFund(t)

	newLoan := func() uuid.UUID {
		loan, _, err := CreateLoan(st, CreateLoanInput{
			BorrowerID:     borrowerID,
			Principal:      decimal.NewFromInt(10_000),
			BorrowerEquity: decimal.NewFromInt(1_000_000),
			TermMonths:     12,
		})
		require.NoError(t, err)
		return loan.ID
	}

	defaulted := newLoan()
	_, err := MarkDefaulted(st, defaulted)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusDefaulted, st.LoanByID(defaulted).Status)

	cancelled := newLoan()
	_, err = CancelLoan(st, cancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusCancelled, st.LoanByID(cancelled).Status)

	// Terminal states are final in every direction.
	_, err = CancelLoan(st, defaulted)
	assert.ErrorIs(t, err, domain.ErrLoanNotActive)
	_, err = MarkDefaulted(st, cancelled)
	assert.ErrorIs(t, err, domain.ErrLoanNotActive)
}

func TestSummarize(t *testing.T) {
	st, borrowerID := lendingFund(t)
	equity := decimal.NewFromInt(10_000_000)

	// Active with a part payment.
	active, _, err := CreateLoan(st, CreateLoanInput{
		BorrowerID: borrowerID, Principal: decimal.NewFromInt(100_000), BorrowerEquity: equity, TermMonths: 12,
	})
	require.NoError(t, err)
	_, err = RecordPayment(st, active.ID, decimal.NewFromInt(30_000))
	require.NoError(t, err)

	// Fully paid.
	paid, _, err := CreateLoan(st, CreateLoanInput{
		BorrowerID: borrowerID, Principal: decimal.NewFromInt(50_000), BorrowerEquity: equity, TermMonths: 12,
	})
	require.NoError(t, err)
	_, err = RecordPayment(st, paid.ID, decimal.NewFromInt(55_000))
	require.NoError(t, err)

	// Cancelled before any repayment.
	cancelled, _, err := CreateLoan(st, CreateLoanInput{
		BorrowerID: borrowerID, Principal: decimal.NewFromInt(70_000), BorrowerEquity: equity, TermMonths: 12,
	})
	require.NoError(t, err)
	_, err = CancelLoan(st, cancelled.ID)
	require.NoError(t, err)

	s := Summarize(st)
	assert.Equal(t, 1, s.ActiveLoans)
	// Active loan: due 110,000 minus 30,000 paid.
	assert.True(t, s.TotalOutstanding.Equal(decimal.NewFromInt(80_000)))
	// Cancelled principal never counts as lent.
	assert.True(t, s.TotalLent.Equal(decimal.NewFromInt(150_000)))
	assert.True(t, s.TotalRepaid.Equal(decimal.NewFromInt(85_000)))
}
