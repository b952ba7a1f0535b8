// Package seeder populates a fresh fund with demo members and provides
// the seeded contribution generator that drives their monthly inflows.
package seeder

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/usecase/membership"
)

// demoProfiles are the personas used for demo members. BaseAmount is the
// monthly contribution around which the generator jitters.
var demoProfiles = []domain.ContributionProfile{
	{Persona: "steady", BaseAmount: decimal.NewFromInt(50_000), Variance: 0.05, SkipChance: 0},
	{Persona: "aggressive", BaseAmount: decimal.NewFromInt(120_000), Variance: 0.30, SkipChance: 0.05},
	{Persona: "sporadic", BaseAmount: decimal.NewFromInt(30_000), Variance: 0.50, SkipChance: 0.35},
}

var demoNames = []string{
	"Amara Okafor", "Bode Adeyemi", "Chidinma Eze", "Daudi Mwangi",
	"Efe Oghenekaro", "Folake Balogun", "Gathoni Kamau", "Halima Yusuf",
}

// SeedDemoMembers registers count demo members cycling through the
// personas. Only useful on a fresh state; seeding an existing fund again
// just adds more members.
func SeedDemoMembers(st *domain.FundState, count int) error {
	for i := 0; i < count; i++ {
		m := domain.Member{
			Name:    demoNames[i%len(demoNames)],
			Profile: demoProfiles[i%len(demoProfiles)],
		}
		if _, err := membership.Join(st, m); err != nil {
			return err
		}
	}
	return nil
}

// PersonaGenerator produces contribution amounts from each member's
// persona profile. The randomness source is injected and seeded so
// simulation runs are reproducible.
type PersonaGenerator struct {
	rng *rand.Rand
}

// NewPersonaGenerator creates a generator with its own seeded source.
func NewPersonaGenerator(seed int64) *PersonaGenerator {
	return &PersonaGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Amount returns the member's contribution for the period: the persona
// base amount jittered by its variance, or zero when the persona skips a
// month. Never negative.
func (g *PersonaGenerator) Amount(m domain.Member, period int) decimal.Decimal {
	p := m.Profile
	if p.BaseAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if p.SkipChance > 0 && g.rng.Float64() < p.SkipChance {
		return decimal.Zero
	}

	jitter := 1.0
	if p.Variance > 0 {
		jitter = 1 + (g.rng.Float64()*2-1)*p.Variance
	}
	amount := p.BaseAmount.Mul(decimal.NewFromFloat(jitter))
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}
