package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Error types for consistent error handling across the module.

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrAccountInactive signals a withdrawal refused because the savings
// balance is below the minimum. No state was changed.
type ErrAccountInactive struct {
	Balance decimal.Decimal
	Minimum decimal.Decimal
	Amount  decimal.Decimal
}

func (e *ErrAccountInactive) Error() string {
	return "savings account is inactive, unable to withdraw"
}

// ErrOverdraft signals a checking withdrawal refused for insufficient
// funds. Fee has already been added to the pending service charges.
type ErrOverdraft struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
	Fee     decimal.Decimal
}

func (e *ErrOverdraft) Error() string {
	return fmt.Sprintf("insufficient funds: available=%s required=%s, %s overdraft fee charged",
		e.Balance.StringFixed(2), e.Amount.StringFixed(2), e.Fee.StringFixed(2))
}
