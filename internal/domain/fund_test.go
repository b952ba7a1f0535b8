package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFundState_Bootstrap(t *testing.T) {
	cfg := DefaultFundConfig()
	st := NewFundState(cfg)

	assert.Equal(t, 0, st.CurrentPeriod)
	assert.True(t, st.TotalUnits.IsZero())
	assert.True(t, st.NAV.IsZero())
	// Before any units exist the unit price holds the configured initial price.
	assert.True(t, st.UnitPrice.Equal(cfg.InitialUnitPrice))
	assert.NotNil(t, st.Snapshots)
}

func TestFundState_MemberUnitsDerivedFromContributions(t *testing.T) {
	st := NewFundState(DefaultFundConfig())
	memberID := uuid.New()

	st.Contributions = []Contribution{
		{MemberID: memberID, UnitsIssued: decimal.NewFromInt(100)},
		{MemberID: memberID, UnitsIssued: decimal.NewFromInt(50)},
		{MemberID: uuid.New(), UnitsIssued: decimal.NewFromInt(999)},
		// A buyback burn shows up as a negative internal contribution.
		{MemberID: memberID, UnitsIssued: decimal.NewFromInt(-30), IsInternal: true},
	}

	assert.True(t, st.MemberUnits(memberID).Equal(decimal.NewFromInt(120)))
}

func TestFundState_OwnershipPercent(t *testing.T) {
	st := NewFundState(DefaultFundConfig())
	memberID := uuid.New()
	st.TotalUnits = decimal.NewFromInt(400)
	st.Contributions = []Contribution{
		{MemberID: memberID, UnitsIssued: decimal.NewFromInt(100)},
	}

	assert.True(t, st.OwnershipPercent(memberID).Equal(decimal.NewFromFloat(0.25)))

	st.TotalUnits = decimal.Zero
	assert.True(t, st.OwnershipPercent(memberID).IsZero())
}

func TestFundState_OwnershipSumsToOne(t *testing.T) {
	st := NewFundState(DefaultFundConfig())
	holdings := []int64{137, 263, 600}
	total := decimal.Zero
	for i, units := range holdings {
		id := uuid.New()
		st.Members = append(st.Members, Member{ID: id, Name: "Member", IsActive: true})
		st.Contributions = append(st.Contributions, Contribution{
			MemberID:    id,
			UnitsIssued: decimal.NewFromInt(units),
		})
		total = total.Add(decimal.NewFromInt(holdings[i]))
	}
	st.TotalUnits = total

	sum := decimal.Zero
	for _, m := range st.Members {
		sum = sum.Add(st.OwnershipPercent(m.ID))
	}
	drift := sum.Sub(decimal.NewFromInt(1)).Abs()
	assert.True(t, drift.LessThan(decimal.New(1, -9)), "ownership shares must sum to 1, got %s", sum)
}

func TestFundState_CloneIsIndependent(t *testing.T) {
	st := NewFundState(DefaultFundConfig())
	memberID := uuid.New()
	st.Members = []Member{{ID: memberID, Name: "Amara Okafor", IsActive: true}}
	st.Contributions = []Contribution{{MemberID: memberID, UnitsIssued: decimal.NewFromInt(10)}}
	st.Loans = []Loan{{
		ID:        uuid.New(),
		Principal: decimal.NewFromInt(1000),
		TotalDue:  decimal.NewFromInt(1100),
		Status:    LoanStatusActive,
		LoanType:  LoanTypeUnsecured,
		Payments:  []LoanPayment{},
	}}
	st.Snapshots[0] = MonthSnapshot{Period: 0, NAV: decimal.NewFromInt(5)}

	clone := st.Clone()

	clone.Members[0].IsActive = false
	clone.Contributions = append(clone.Contributions, Contribution{MemberID: memberID, UnitsIssued: decimal.NewFromInt(99)})
	clone.Loans[0].Status = LoanStatusPaid
	clone.Snapshots[1] = MonthSnapshot{Period: 1}
	clone.CashBalance = decimal.NewFromInt(777)

	assert.True(t, st.Members[0].IsActive)
	assert.Len(t, st.Contributions, 1)
	assert.Equal(t, LoanStatusActive, st.Loans[0].Status)
	assert.Len(t, st.Snapshots, 1)
	assert.True(t, st.CashBalance.IsZero())
}

func TestMember_Validate(t *testing.T) {
	m := Member{Name: "", IsActive: true}
	assert.Error(t, m.Validate())

	m = Member{Name: "Bode Adeyemi", IsActive: true}
	require.NoError(t, m.Validate())

	// Inactive members must carry exit metadata.
	m.IsActive = false
	assert.Error(t, m.Validate())

	m.MarkExited(4, ExitMethodFundPayout, "relocation")
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, *m.ExitedAtPeriod)
	assert.Equal(t, ExitMethodFundPayout, *m.ExitMethod)
}

func TestLoan_Outstanding(t *testing.T) {
	l := Loan{TotalDue: decimal.NewFromInt(1100), AmountPaid: decimal.NewFromInt(300)}
	assert.True(t, l.Outstanding().Equal(decimal.NewFromInt(800)))

	// Over-payment reports negative outstanding by design of the ledger.
	l.AmountPaid = decimal.NewFromInt(1200)
	assert.True(t, l.Outstanding().Equal(decimal.NewFromInt(-100)))
}

func TestExpenseSetting_Validate(t *testing.T) {
	s := ExpenseSetting{Name: "Office rent", Amount: decimal.NewFromInt(100), Occurrence: ExpenseOccurrence("WEEKLY")}
	assert.Error(t, s.Validate())

	s.Occurrence = OccurrenceMonthly
	assert.NoError(t, s.Validate())

	s.Amount = decimal.Zero
	assert.Error(t, s.Validate())
}
