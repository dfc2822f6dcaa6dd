package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/boddenberg/monthly-statement/internal/infra/observability"
	"github.com/boddenberg/monthly-statement/internal/service"

	"go.uber.org/zap"
)

func newService(t *testing.T) *service.StatementService {
	t.Helper()
	svc, err := service.NewStatementService(domain.DefaultFeeSchedule(), observability.NewMetrics(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestRunOnce_Interactive(t *testing.T) {
	in := strings.NewReader("20\n100\n0.04\n0\n1\n5\n0\n0\n")
	var out bytes.Buffer

	if err := runOnce(context.Background(), newService(t), "", in, &out); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Enter savings account starting balance: ",
		"Savings account is inactive, unable to withdraw.",
		"----- Savings Account Monthly Report -----",
		"Final Balance:         $20.07",
		"----- Checking Account Monthly Report -----",
		"Final Balance:         $95.32",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunOnce_Scenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "march.yml")
	doc := "annual_rate: 0\n" +
		"savings: {starting_balance: 50, deposits: [], withdrawals: [1, 1, 1, 1, 1, 1]}\n" +
		"checking: {starting_balance: 10, deposits: [], withdrawals: [20]}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer

	if err := runOnce(context.Background(), newService(t), path, strings.NewReader(""), &out); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	got := out.String()
	// savings: 50 - 6 = 44, two excess withdrawals cost 2.00
	for _, want := range []string{
		"Insufficient funds. $15.00 overdraft fee charged.",
		"Withdrawals:            6",
		"Charges:               $2.00",
		"Final Balance:         $42.00",
		"Charges:               $20.00",
		"Final Balance:         $-10.00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Enter") {
		t.Errorf("scenario runs must not prompt:\n%s", got)
	}
}

func TestRunOnce_TruncatedInput(t *testing.T) {
	err := runOnce(context.Background(), newService(t), "", strings.NewReader("20"), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for truncated input")
	}
}
