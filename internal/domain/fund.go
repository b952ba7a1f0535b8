package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundConfig holds the tunable parameters of the fund. It is part of the
// persisted state so a reloaded fund keeps the rates it was started with.
type FundConfig struct {
	InitialUnitPrice    decimal.Decimal `json:"initialUnitPrice"`
	CashAnnualRate      decimal.Decimal `json:"cashAnnualRate"`
	DividendRate        decimal.Decimal `json:"dividendRate"`
	CollateralThreshold decimal.Decimal `json:"collateralThreshold"`
	SecuredRate         decimal.Decimal `json:"securedRate"`
	UnsecuredRate       decimal.Decimal `json:"unsecuredRate"`
	MinimumInvestment   decimal.Decimal `json:"minimumInvestment"`
}

// DefaultFundConfig returns the configuration used when none is supplied.
func DefaultFundConfig() FundConfig {
	return FundConfig{
		InitialUnitPrice:    decimal.NewFromInt(1000),
		CashAnnualRate:      decimal.NewFromFloat(0.02),
		DividendRate:        decimal.NewFromFloat(0.20),
		CollateralThreshold: decimal.NewFromFloat(0.5),
		SecuredRate:         decimal.NewFromFloat(0.15),
		UnsecuredRate:       decimal.NewFromFloat(0.10),
		MinimumInvestment:   decimal.NewFromInt(10000),
	}
}

// FundState is the aggregate root. It owns the unit ledger, the member
// registry, all assets, expenses, dividends and loans. Operations never
// mutate a published FundState: the store clones it, applies the operation
// to the clone, and swaps the pointer on success.
type FundState struct {
	TotalUnits    decimal.Decimal `json:"totalUnits"`
	NAV           decimal.Decimal `json:"nav"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	CashBalance   decimal.Decimal `json:"cashBalance"`
	CurrentPeriod int             `json:"currentPeriod"`

	Config FundConfig `json:"config"`

	Members         []Member              `json:"members"`
	Contributions   []Contribution        `json:"contributions"`
	Lands           []Land                `json:"lands"`
	Investments     []InvestmentVehicle   `json:"investments"`
	ExpenseSettings []ExpenseSetting      `json:"expenseSettings"`
	ExpenseRecords  []ExpenseRecord       `json:"expenseRecords"`
	Dividends       []Dividend            `json:"dividends"`
	Loans           []Loan                `json:"loans"`
	Snapshots       map[int]MonthSnapshot `json:"snapshots"`
}

// NewFundState creates an empty fund at period 0. The unit price starts at
// the configured initial price so the very first contribution has a price
// to be issued against.
func NewFundState(cfg FundConfig) *FundState {
	return &FundState{
		TotalUnits:    decimal.Zero,
		NAV:           decimal.Zero,
		UnitPrice:     cfg.InitialUnitPrice,
		CashBalance:   decimal.Zero,
		CurrentPeriod: 0,
		Config:        cfg,
		Snapshots:     make(map[int]MonthSnapshot),
	}
}

// Clone returns a deep copy of the state. decimal.Decimal values are
// immutable and safe to share; slices, maps and pointer fields are copied.
func (st *FundState) Clone() *FundState {
	c := *st

	c.Members = make([]Member, len(st.Members))
	for i, m := range st.Members {
		c.Members[i] = m.clone()
	}

	c.Contributions = append([]Contribution(nil), st.Contributions...)
	c.ExpenseRecords = append([]ExpenseRecord(nil), st.ExpenseRecords...)

	c.Lands = make([]Land, len(st.Lands))
	for i, l := range st.Lands {
		c.Lands[i] = l.clone()
	}

	c.Investments = make([]InvestmentVehicle, len(st.Investments))
	for i, v := range st.Investments {
		c.Investments[i] = v.clone()
	}

	c.ExpenseSettings = append([]ExpenseSetting(nil), st.ExpenseSettings...)

	c.Dividends = make([]Dividend, len(st.Dividends))
	for i, d := range st.Dividends {
		c.Dividends[i] = d.clone()
	}

	c.Loans = make([]Loan, len(st.Loans))
	for i, l := range st.Loans {
		c.Loans[i] = l.clone()
	}

	c.Snapshots = make(map[int]MonthSnapshot, len(st.Snapshots))
	for k, v := range st.Snapshots {
		c.Snapshots[k] = v
	}

	return &c
}

// MemberByID returns a pointer into the state's member slice, or nil.
func (st *FundState) MemberByID(id uuid.UUID) *Member {
	for i := range st.Members {
		if st.Members[i].ID == id {
			return &st.Members[i]
		}
	}
	return nil
}

// ActiveMembers returns the members still participating in the fund.
func (st *FundState) ActiveMembers() []*Member {
	active := make([]*Member, 0, len(st.Members))
	for i := range st.Members {
		if st.Members[i].IsActive {
			active = append(active, &st.Members[i])
		}
	}
	return active
}

// MemberUnits derives a member's unit balance from the contribution facts.
// The balance is never stored redundantly; buyback transfers and exits are
// represented as signed internal contributions so the sum stays truthful.
func (st *FundState) MemberUnits(id uuid.UUID) decimal.Decimal {
	units := decimal.Zero
	for i := range st.Contributions {
		if st.Contributions[i].MemberID == id {
			units = units.Add(st.Contributions[i].UnitsIssued)
		}
	}
	return units
}

// OwnershipPercent returns the member's share of total units, in [0, 1].
func (st *FundState) OwnershipPercent(id uuid.UUID) decimal.Decimal {
	if st.TotalUnits.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return st.MemberUnits(id).Div(st.TotalUnits)
}

// InvestmentsValue sums the current value of active investment vehicles.
func (st *FundState) InvestmentsValue() decimal.Decimal {
	total := decimal.Zero
	for i := range st.Investments {
		if st.Investments[i].Status == InvestmentStatusActive {
			total = total.Add(st.Investments[i].CurrentValue)
		}
	}
	return total
}

// LandValue sums the current value of held land parcels.
func (st *FundState) LandValue() decimal.Decimal {
	total := decimal.Zero
	for i := range st.Lands {
		if st.Lands[i].Status == AssetStatusHeld {
			total = total.Add(st.Lands[i].CurrentValue)
		}
	}
	return total
}

// LoanByID returns a pointer into the state's loan slice, or nil.
func (st *FundState) LoanByID(id uuid.UUID) *Loan {
	for i := range st.Loans {
		if st.Loans[i].ID == id {
			return &st.Loans[i]
		}
	}
	return nil
}
