package dividend

import (
	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
)

// Holder is one qualifying unit holder for a distribution.
type Holder struct {
	Member *domain.Member
	Units  decimal.Decimal
}

// proRataShares splits the distributed amount across holders by
// instantaneous ownership: amount * units / totalUnits, computed once per
// holder. The shares sum to the distributed amount only up to rounding;
// no remainder-allocation step corrects the residue. That non-exactness
// is accepted and pinned by tests.
func proRataShares(distributed, totalUnits decimal.Decimal, holders []Holder) []domain.DividendShare {
	shares := make([]domain.DividendShare, 0, len(holders))
	for _, h := range holders {
		amount := distributed.Mul(h.Units).Div(totalUnits)
		shares = append(shares, domain.DividendShare{
			MemberID: h.Member.ID,
			Units:    h.Units,
			Amount:   amount,
		})
	}
	return shares
}

// qualifyingHolders returns the active members holding units right now.
func qualifyingHolders(st *domain.FundState) []Holder {
	holders := make([]Holder, 0, len(st.Members))
	for _, m := range st.ActiveMembers() {
		units := st.MemberUnits(m.ID)
		if units.IsPositive() {
			holders = append(holders, Holder{Member: m, Units: units})
		}
	}
	return holders
}
