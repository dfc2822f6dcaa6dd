package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Statement runs
// ============================================================

// Activity is the ordered list of operations applied to one account.
// All deposits are applied before any withdrawal.
type Activity struct {
	StartingBalance decimal.Decimal   `json:"starting_balance"`
	Deposits        []decimal.Decimal `json:"deposits"`
	Withdrawals     []decimal.Decimal `json:"withdrawals"`
}

// Session is one full run of the program: a savings and a checking
// account sharing an annual interest rate.
type Session struct {
	AnnualRate decimal.Decimal `json:"annual_rate"`
	Savings    Activity        `json:"savings"`
	Checking   Activity        `json:"checking"`
}

// StatementRequest runs a single account through one monthly cycle.
type StatementRequest struct {
	Label      string          `json:"label,omitempty"`
	Kind       Kind            `json:"kind"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	Activity
}

// Rejection records a withdrawal the account refused.
type Rejection struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
	// Fee is the charge added because of the rejection, zero when none.
	Fee decimal.Decimal `json:"fee"`
}

// Statement is the result of one account's monthly cycle.
type Statement struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Kind            Kind            `json:"kind"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Cycle           Cycle           `json:"cycle"`
	Rejections      []Rejection     `json:"rejections"`
	Report          string          `json:"report"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// SessionResult holds both statements of a session.
type SessionResult struct {
	Savings  *Statement `json:"savings"`
	Checking *Statement `json:"checking"`
}
