// Package domain defines the account kinds and their monthly-cycle rules.
// Nothing in here does I/O; callers own logging, metrics and presentation.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ============================================================
// Account kinds
// ============================================================

// Kind identifies an account implementation.
type Kind string

const (
	KindSavings  Kind = "savings"
	KindChecking Kind = "checking"
)

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSavings, KindChecking:
		return k, nil
	default:
		return "", &ErrValidation{Field: "kind", Message: fmt.Sprintf("unknown account kind %q", s)}
	}
}

// Account is the capability set shared by every account kind.
// Implementations are not safe for concurrent use.
type Account interface {
	Kind() Kind
	Deposit(amount decimal.Decimal)
	// Withdraw returns a non-nil error when the withdrawal was rejected.
	// A rejected withdrawal leaves balance and counters untouched.
	Withdraw(amount decimal.Decimal) error
	MonthlyProcess() Cycle
	Snapshot() Snapshot
}

// NewAccount builds an account of the given kind.
func NewAccount(kind Kind, startingBalance, annualRate decimal.Decimal, fees FeeSchedule) (Account, error) {
	switch kind {
	case KindSavings:
		return NewSavingsAccount(startingBalance, annualRate, fees), nil
	case KindChecking:
		return NewCheckingAccount(startingBalance, annualRate, fees), nil
	default:
		return nil, &ErrValidation{Field: "kind", Message: fmt.Sprintf("unknown account kind %q", kind)}
	}
}

// Snapshot is a read-only view of an account.
// Active is only meaningful for savings accounts.
type Snapshot struct {
	Kind           Kind            `json:"kind"`
	Balance        decimal.Decimal `json:"balance"`
	Deposits       int             `json:"deposits"`
	Withdrawals    int             `json:"withdrawals"`
	ServiceCharges decimal.Decimal `json:"service_charges"`
	Active         bool            `json:"active,omitempty"`
}

// Cycle is the outcome of one monthly processing run.
// Statement carries the counters and charges the cycle consumed, read
// before the reset, and the balance after interest.
type Cycle struct {
	Statement Snapshot        `json:"statement"`
	Interest  decimal.Decimal `json:"interest"`
}

// ============================================================
// Shared state
// ============================================================

var monthsPerYear = decimal.NewFromInt(12)

// ledger is the state every kind owns exclusively. Its methods are the
// generic account behaviour; kinds layer their rules on top.
type ledger struct {
	balance        decimal.Decimal
	deposits       int
	withdrawals    int
	annualRate     decimal.Decimal
	pendingCharges decimal.Decimal
}

func newLedger(balance, annualRate decimal.Decimal) ledger {
	return ledger{balance: balance, annualRate: annualRate}
}

func (l *ledger) Balance() decimal.Decimal        { return l.balance }
func (l *ledger) DepositCount() int               { return l.deposits }
func (l *ledger) WithdrawalCount() int            { return l.withdrawals }
func (l *ledger) AnnualRate() decimal.Decimal     { return l.annualRate }
func (l *ledger) PendingCharges() decimal.Decimal { return l.pendingCharges }

func (l *ledger) addServiceCharge(amount decimal.Decimal) {
	l.pendingCharges = l.pendingCharges.Add(amount)
}

func (l *ledger) deposit(amount decimal.Decimal) {
	l.balance = l.balance.Add(amount)
	l.deposits++
}

// withdraw has no sufficiency check. Kinds decide whether to call it.
func (l *ledger) withdraw(amount decimal.Decimal) {
	l.balance = l.balance.Sub(amount)
	l.withdrawals++
}

// accrueInterest credits one month of interest and returns the amount.
// The product is taken before the division so round rates stay exact.
func (l *ledger) accrueInterest() decimal.Decimal {
	interest := l.balance.Mul(l.annualRate).Div(monthsPerYear)
	l.balance = l.balance.Add(interest)
	return interest
}

// monthlyProcess deducts pending charges, accrues interest on the reduced
// balance, then resets the counters and charges.
func (l *ledger) monthlyProcess(kind Kind) Cycle {
	charges := l.pendingCharges
	deposits, withdrawals := l.deposits, l.withdrawals

	l.balance = l.balance.Sub(charges)
	interest := l.accrueInterest()

	l.deposits = 0
	l.withdrawals = 0
	l.pendingCharges = decimal.Zero

	return Cycle{
		Statement: Snapshot{
			Kind:           kind,
			Balance:        l.balance,
			Deposits:       deposits,
			Withdrawals:    withdrawals,
			ServiceCharges: charges,
		},
		Interest: interest,
	}
}

func (l *ledger) snapshot(kind Kind) Snapshot {
	return Snapshot{
		Kind:           kind,
		Balance:        l.balance,
		Deposits:       l.deposits,
		Withdrawals:    l.withdrawals,
		ServiceCharges: l.pendingCharges,
	}
}
