// Package report renders monthly account statements as console text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/boddenberg/monthly-statement/internal/domain"

	"github.com/shopspring/decimal"
)

// Format renders the monthly report for an account snapshot. Currency
// values are always printed with two decimals.
func Format(label string, startingBalance decimal.Decimal, snap domain.Snapshot) string {
	var b strings.Builder
	// strings.Builder never fails to write.
	_ = Write(&b, label, startingBalance, snap)
	return b.String()
}

// Write is Format for an io.Writer.
func Write(w io.Writer, label string, startingBalance decimal.Decimal, snap domain.Snapshot) error {
	_, err := fmt.Fprintf(w,
		"\n----- %s Monthly Report -----\n"+
			"Starting Balance:      $%s\n"+
			"Deposits:               %d\n"+
			"Withdrawals:            %d\n"+
			"Charges:               $%s\n"+
			"Final Balance:         $%s\n",
		label,
		money(startingBalance),
		snap.Deposits,
		snap.Withdrawals,
		money(snap.ServiceCharges),
		money(snap.Balance),
	)
	return err
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
