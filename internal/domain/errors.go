package domain

import "errors"

// Validation rejections. Operations return these before touching any
// state, so a rejected call is always a no-op for the caller.
var (
	ErrMemberNotFound         = errors.New("member not found")
	ErrMemberInactive         = errors.New("member is not active")
	ErrBuyerNotFound          = errors.New("buyback buyer not found")
	ErrBuyerInactive          = errors.New("buyback buyer is not active")
	ErrAllocationSum          = errors.New("buyback allocations must sum to 100 percent")
	ErrInsufficientCash       = errors.New("insufficient cash balance")
	ErrBelowMinimumInvestment = errors.New("amount is below the minimum investment")
	ErrAssetNotFound          = errors.New("asset not found")
	ErrExpenseSettingNotFound = errors.New("expense setting not found")
	ErrAssetNotHeld           = errors.New("asset is no longer held")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrLoanNotActive          = errors.New("loan is not active")
	ErrCollateralRequired     = errors.New("secured loan requires collateral")
	ErrStateNotFound          = errors.New("no persisted fund state")
)
