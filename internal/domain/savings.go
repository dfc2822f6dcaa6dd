package domain

import "github.com/shopspring/decimal"

// SavingsAccount gates withdrawals on a minimum balance and charges for
// withdrawals beyond the free allowance.
type SavingsAccount struct {
	ledger
	fees   FeeSchedule
	active bool
}

// NewSavingsAccount opens a savings account. Its status is derived from
// the starting balance immediately.
func NewSavingsAccount(startingBalance, annualRate decimal.Decimal, fees FeeSchedule) *SavingsAccount {
	s := &SavingsAccount{ledger: newLedger(startingBalance, annualRate), fees: fees}
	s.refreshStatus()
	return s
}

func (s *SavingsAccount) Kind() Kind { return KindSavings }

// Active reports whether withdrawals are currently allowed.
func (s *SavingsAccount) Active() bool { return s.active }

// refreshStatus is the only place active is written.
func (s *SavingsAccount) refreshStatus() {
	s.active = s.balance.GreaterThanOrEqual(s.fees.SavingsMinimumBalance)
}

func (s *SavingsAccount) Deposit(amount decimal.Decimal) {
	s.deposit(amount)
	s.refreshStatus()
}

// Withdraw returns *ErrAccountInactive without touching any state when the
// balance is under the minimum.
func (s *SavingsAccount) Withdraw(amount decimal.Decimal) error {
	s.refreshStatus()
	if !s.active {
		return &ErrAccountInactive{
			Balance: s.balance,
			Minimum: s.fees.SavingsMinimumBalance,
			Amount:  amount,
		}
	}
	s.withdraw(amount)
	s.refreshStatus()
	return nil
}

// MonthlyProcess charges for every withdrawal past the free allowance,
// then runs the shared cycle.
func (s *SavingsAccount) MonthlyProcess() Cycle {
	if excess := s.WithdrawalCount() - s.fees.FreeWithdrawals; excess > 0 {
		s.addServiceCharge(s.fees.ExcessWithdrawalFee.Mul(decimal.NewFromInt(int64(excess))))
	}
	cycle := s.monthlyProcess(KindSavings)
	s.refreshStatus()
	cycle.Statement.Active = s.active
	return cycle
}

func (s *SavingsAccount) Snapshot() Snapshot {
	snap := s.snapshot(KindSavings)
	snap.Active = s.active
	return snap
}
