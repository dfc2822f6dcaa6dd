// Package scenario loads a whole session from a YAML file so the program
// can run without prompting.
package scenario

import (
	"fmt"
	"os"

	"github.com/boddenberg/monthly-statement/internal/domain"

	"github.com/shopspring/decimal"
	yaml "gopkg.in/yaml.v2"
)

// File describes the scenario file format.
type File struct {
	AnnualRate amount   `yaml:"annual_rate"`
	Savings    activity `yaml:"savings"`
	Checking   activity `yaml:"checking"`
}

type activity struct {
	StartingBalance amount   `yaml:"starting_balance"`
	Deposits        []amount `yaml:"deposits"`
	Withdrawals     []amount `yaml:"withdrawals"`
}

// amount accepts YAML numbers and quoted strings alike, and keeps the
// exact decimal text rather than going through float64.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	a.Decimal = v
	return nil
}

// Load reads and parses the scenario at path.
func Load(path string) (domain.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Session{}, fmt.Errorf("read scenario: %w", err)
	}
	sess, err := Parse(data)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", path, err)
	}
	return sess, nil
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(data []byte) (domain.Session, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return domain.Session{}, fmt.Errorf("parse scenario: %w", err)
	}
	return domain.Session{
		AnnualRate: f.AnnualRate.Decimal,
		Savings:    f.Savings.toDomain(),
		Checking:   f.Checking.toDomain(),
	}, nil
}

func (a activity) toDomain() domain.Activity {
	return domain.Activity{
		StartingBalance: a.StartingBalance.Decimal,
		Deposits:        decimals(a.Deposits),
		Withdrawals:     decimals(a.Withdrawals),
	}
}

func decimals(in []amount) []decimal.Decimal {
	out := make([]decimal.Decimal, len(in))
	for i, a := range in {
		out[i] = a.Decimal
	}
	return out
}
