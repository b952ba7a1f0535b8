// Package assets moves fund cash into and out of land parcels and
// investment vehicles. Purchases draw on the cash balance; sales and
// liquidations return proceeds to it. Every operation ends with a NAV
// recompute.
package assets

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/usecase/ledger"
)

// PurchaseLandInput carries the parameters for a land acquisition.
type PurchaseLandInput struct {
	Name          string
	PurchasePrice decimal.Decimal
	AnnualRate    decimal.Decimal
}

// PurchaseLand converts cash into a held land parcel at its purchase
// price. Rejected when the price exceeds available cash.
func PurchaseLand(st *domain.FundState, input PurchaseLandInput) (domain.Land, []domain.SimulationEvent, error) {
	land := domain.Land{
		ID:            uuid.New(),
		Name:          input.Name,
		PurchasePrice: input.PurchasePrice,
		CurrentValue:  input.PurchasePrice,
		AnnualRate:    input.AnnualRate,
		StartPeriod:   st.CurrentPeriod,
		Status:        domain.AssetStatusHeld,
	}
	if err := land.Validate(); err != nil {
		return domain.Land{}, nil, err
	}
	if input.PurchasePrice.GreaterThan(st.CashBalance) {
		return domain.Land{}, nil, domain.ErrInsufficientCash
	}

	st.CashBalance = st.CashBalance.Sub(input.PurchasePrice)
	st.Lands = append(st.Lands, land)
	ledger.RecomputeNAV(st)

	return land, []domain.SimulationEvent{domain.NewEvent(
		domain.EventLandPurchased,
		st.CurrentPeriod,
		fmt.Sprintf("purchased land %q for %s at %s annual appreciation", input.Name, input.PurchasePrice, input.AnnualRate),
		map[string]string{"landId": land.ID.String(), "price": input.PurchasePrice.String()},
	)}, nil
}

// SellLand freezes a held parcel at the given sale price and returns the
// proceeds to cash. The parcel keeps its last value for the record but is
// excluded from NAV from now on.
func SellLand(st *domain.FundState, landID uuid.UUID, salePrice decimal.Decimal) ([]domain.SimulationEvent, error) {
	if salePrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("sale price must be positive")
	}

	var land *domain.Land
	for i := range st.Lands {
		if st.Lands[i].ID == landID {
			land = &st.Lands[i]
			break
		}
	}
	if land == nil {
		return nil, domain.ErrAssetNotFound
	}
	if land.Status != domain.AssetStatusHeld {
		return nil, domain.ErrAssetNotHeld
	}

	period := st.CurrentPeriod
	land.Status = domain.AssetStatusSold
	land.SoldAtPeriod = &period
	land.SalePrice = &salePrice
	st.CashBalance = st.CashBalance.Add(salePrice)
	ledger.RecomputeNAV(st)

	return []domain.SimulationEvent{domain.NewEvent(
		domain.EventLandSold,
		period,
		fmt.Sprintf("sold land %q for %s (book value %s)", land.Name, salePrice, land.CurrentValue),
		map[string]string{"landId": landID.String(), "salePrice": salePrice.String()},
	)}, nil
}

// OpenInvestmentInput carries the parameters for an investment placement.
type OpenInvestmentInput struct {
	Name       string
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
}

// OpenInvestment places cash into an interest-bearing vehicle. Rejected
// below the configured minimum or beyond available cash.
func OpenInvestment(st *domain.FundState, input OpenInvestmentInput) (domain.InvestmentVehicle, []domain.SimulationEvent, error) {
	v := domain.InvestmentVehicle{
		ID:           uuid.New(),
		Name:         input.Name,
		Principal:    input.Principal,
		CurrentValue: input.Principal,
		AnnualRate:   input.AnnualRate,
		StartPeriod:  st.CurrentPeriod,
		Status:       domain.InvestmentStatusActive,
	}
	if err := v.Validate(); err != nil {
		return domain.InvestmentVehicle{}, nil, err
	}
	if input.Principal.LessThan(st.Config.MinimumInvestment) {
		return domain.InvestmentVehicle{}, nil, domain.ErrBelowMinimumInvestment
	}
	if input.Principal.GreaterThan(st.CashBalance) {
		return domain.InvestmentVehicle{}, nil, domain.ErrInsufficientCash
	}

	st.CashBalance = st.CashBalance.Sub(input.Principal)
	st.Investments = append(st.Investments, v)
	ledger.RecomputeNAV(st)

	return v, []domain.SimulationEvent{domain.NewEvent(
		domain.EventInvestmentOpened,
		st.CurrentPeriod,
		fmt.Sprintf("opened investment %q with %s at %s annual", input.Name, input.Principal, input.AnnualRate),
		map[string]string{"investmentId": v.ID.String(), "principal": input.Principal.String()},
	)}, nil
}

// LiquidateInvestment closes a vehicle at its current value and returns
// that value to cash. The vehicle stops compounding and leaves the NAV.
func LiquidateInvestment(st *domain.FundState, investmentID uuid.UUID) ([]domain.SimulationEvent, error) {
	var v *domain.InvestmentVehicle
	for i := range st.Investments {
		if st.Investments[i].ID == investmentID {
			v = &st.Investments[i]
			break
		}
	}
	if v == nil {
		return nil, domain.ErrAssetNotFound
	}
	if v.Status != domain.InvestmentStatusActive {
		return nil, domain.ErrAssetNotHeld
	}

	period := st.CurrentPeriod
	proceeds := v.CurrentValue
	v.Status = domain.InvestmentStatusLiquidated
	v.LiquidatedAtPeriod = &period
	st.CashBalance = st.CashBalance.Add(proceeds)
	ledger.RecomputeNAV(st)

	return []domain.SimulationEvent{domain.NewEvent(
		domain.EventInvestmentClosed,
		period,
		fmt.Sprintf("liquidated investment %q for %s", v.Name, proceeds),
		map[string]string{"investmentId": investmentID.String(), "proceeds": proceeds.String()},
	)}, nil
}
