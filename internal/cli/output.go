package cli

import (
	"fmt"
	"io"

	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/boddenberg/monthly-statement/internal/report"
	"github.com/boddenberg/monthly-statement/internal/service"
)

// PrintSession writes the rejection notices of each account, then both
// monthly reports.
func PrintSession(w io.Writer, res *domain.SessionResult) error {
	for _, st := range []*domain.Statement{res.Savings, res.Checking} {
		for _, r := range st.Rejections {
			if _, err := fmt.Fprintln(w, service.Notice(r)); err != nil {
				return err
			}
		}
	}
	for _, st := range []*domain.Statement{res.Savings, res.Checking} {
		if err := report.Write(w, st.Label, st.StartingBalance, st.Cycle.Statement); err != nil {
			return err
		}
	}
	return nil
}
