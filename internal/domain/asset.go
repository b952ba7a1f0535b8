package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetStatus tracks whether a land parcel is still held by the fund.
// A sold parcel is frozen: it stops appreciating and leaves the NAV.
type AssetStatus string

const (
	AssetStatusHeld AssetStatus = "HELD"
	AssetStatusSold AssetStatus = "SOLD"
)

// InvestmentStatus tracks whether an investment vehicle is still active.
type InvestmentStatus string

const (
	InvestmentStatusActive     InvestmentStatus = "ACTIVE"
	InvestmentStatusLiquidated InvestmentStatus = "LIQUIDATED"
)

// Land represents a land parcel held by the fund. Land appreciates at the
// monthly equivalent of its annual compound rate.
type Land struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	PurchasePrice decimal.Decimal  `json:"purchasePrice"`
	CurrentValue  decimal.Decimal  `json:"currentValue"`
	AnnualRate    decimal.Decimal  `json:"annualRate"`
	StartPeriod   int              `json:"startPeriod"`
	Status        AssetStatus      `json:"status"`
	SoldAtPeriod  *int             `json:"soldAtPeriod,omitempty"`
	SalePrice     *decimal.Decimal `json:"salePrice,omitempty"`
}

// Validate ensures the land parcel adheres to domain rules.
func (l *Land) Validate() error {
	if l.Name == "" {
		return errors.New("land name cannot be empty")
	}
	if l.PurchasePrice.LessThanOrEqual(decimal.Zero) {
		return errors.New("land purchase price must be positive")
	}
	if l.AnnualRate.IsNegative() {
		return errors.New("land annual rate cannot be negative")
	}
	return nil
}

func (l Land) clone() Land {
	c := l
	if l.SoldAtPeriod != nil {
		p := *l.SoldAtPeriod
		c.SoldAtPeriod = &p
	}
	if l.SalePrice != nil {
		sp := *l.SalePrice
		c.SalePrice = &sp
	}
	return c
}

// InvestmentVehicle represents an interest-bearing placement of fund cash.
// It earns simple monthly interest on its current value.
type InvestmentVehicle struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Principal          decimal.Decimal  `json:"principal"`
	CurrentValue       decimal.Decimal  `json:"currentValue"`
	AnnualRate         decimal.Decimal  `json:"annualRate"`
	StartPeriod        int              `json:"startPeriod"`
	Status             InvestmentStatus `json:"status"`
	LiquidatedAtPeriod *int             `json:"liquidatedAtPeriod,omitempty"`
}

// Validate ensures the investment vehicle adheres to domain rules.
func (v *InvestmentVehicle) Validate() error {
	if v.Name == "" {
		return errors.New("investment name cannot be empty")
	}
	if v.Principal.LessThanOrEqual(decimal.Zero) {
		return errors.New("investment principal must be positive")
	}
	if v.AnnualRate.IsNegative() {
		return errors.New("investment annual rate cannot be negative")
	}
	return nil
}

func (v InvestmentVehicle) clone() InvestmentVehicle {
	c := v
	if v.LiquidatedAtPeriod != nil {
		p := *v.LiquidatedAtPeriod
		c.LiquidatedAtPeriod = &p
	}
	return c
}
