package domain

import "github.com/shopspring/decimal"

// FeeSchedule holds the thresholds and fees applied by the account kinds.
type FeeSchedule struct {
	// SavingsMinimumBalance is the balance at or above which a savings
	// account is active.
	SavingsMinimumBalance decimal.Decimal `json:"savings_minimum_balance"`
	// FreeWithdrawals is the number of savings withdrawals per cycle that
	// carry no fee.
	FreeWithdrawals          int             `json:"free_withdrawals"`
	ExcessWithdrawalFee      decimal.Decimal `json:"excess_withdrawal_fee"`
	OverdraftFee             decimal.Decimal `json:"overdraft_fee"`
	CheckingMonthlyFee       decimal.Decimal `json:"checking_monthly_fee"`
	CheckingPerWithdrawalFee decimal.Decimal `json:"checking_per_withdrawal_fee"`
}

// DefaultFeeSchedule returns the standard schedule.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		SavingsMinimumBalance:    decimal.RequireFromString("25.00"),
		FreeWithdrawals:          4,
		ExcessWithdrawalFee:      decimal.RequireFromString("1.00"),
		OverdraftFee:             decimal.RequireFromString("15.00"),
		CheckingMonthlyFee:       decimal.RequireFromString("5.00"),
		CheckingPerWithdrawalFee: decimal.RequireFromString("0.10"),
	}
}

// Validate rejects negative fees and thresholds.
func (f FeeSchedule) Validate() error {
	if f.FreeWithdrawals < 0 {
		return &ErrValidation{Field: "free_withdrawals", Message: "must not be negative"}
	}
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"savings_minimum_balance", f.SavingsMinimumBalance},
		{"excess_withdrawal_fee", f.ExcessWithdrawalFee},
		{"overdraft_fee", f.OverdraftFee},
		{"checking_monthly_fee", f.CheckingMonthlyFee},
		{"checking_per_withdrawal_fee", f.CheckingPerWithdrawalFee},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return &ErrValidation{Field: a.field, Message: "must not be negative"}
		}
	}
	return nil
}
