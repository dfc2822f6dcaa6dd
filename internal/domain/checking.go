package domain

import "github.com/shopspring/decimal"

// CheckingAccount charges a flat monthly fee plus a per-withdrawal fee, and
// turns overdrafts into a fee instead of a negative balance.
type CheckingAccount struct {
	ledger
	fees FeeSchedule
}

// NewCheckingAccount opens a checking account.
func NewCheckingAccount(startingBalance, annualRate decimal.Decimal, fees FeeSchedule) *CheckingAccount {
	return &CheckingAccount{ledger: newLedger(startingBalance, annualRate), fees: fees}
}

func (c *CheckingAccount) Kind() Kind { return KindChecking }

func (c *CheckingAccount) Deposit(amount decimal.Decimal) {
	c.deposit(amount)
}

// Withdraw rejects any withdrawal that would leave the balance negative.
// The overdraft fee is added to the pending charges before *ErrOverdraft
// is returned; balance and counters stay as they were.
func (c *CheckingAccount) Withdraw(amount decimal.Decimal) error {
	if c.balance.Sub(amount).IsNegative() {
		c.addServiceCharge(c.fees.OverdraftFee)
		return &ErrOverdraft{Balance: c.balance, Amount: amount, Fee: c.fees.OverdraftFee}
	}
	c.withdraw(amount)
	return nil
}

// MonthlyProcess adds the monthly and per-withdrawal fees, then runs the
// shared cycle.
func (c *CheckingAccount) MonthlyProcess() Cycle {
	perWithdrawal := c.fees.CheckingPerWithdrawalFee.Mul(decimal.NewFromInt(int64(c.WithdrawalCount())))
	c.addServiceCharge(c.fees.CheckingMonthlyFee)
	c.addServiceCharge(perWithdrawal)
	return c.monthlyProcess(KindChecking)
}

func (c *CheckingAccount) Snapshot() Snapshot {
	return c.snapshot(KindChecking)
}
