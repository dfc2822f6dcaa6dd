// Package cli holds the console dialogue that collects a session from the
// user and prints the resulting statements.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/boddenberg/monthly-statement/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrInputClosed is returned when input ends before the session is complete.
var ErrInputClosed = errors.New("input closed before session was complete")

// Prompter reads whitespace-separated answers to a fixed sequence of
// prompts. An answer that does not parse is reported and asked again.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a prompter reading from in and prompting on out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	return &Prompter{in: sc, out: out}
}

// ReadSession asks for the starting balances, the shared rate and the
// activity of both accounts, in that order.
func (p *Prompter) ReadSession() (domain.Session, error) {
	var sess domain.Session
	var err error

	if sess.Savings.StartingBalance, err = p.amount("Enter savings account starting balance: "); err != nil {
		return sess, err
	}
	if sess.Checking.StartingBalance, err = p.amount("Enter checking account starting balance: "); err != nil {
		return sess, err
	}
	if sess.AnnualRate, err = p.amount("Enter annual interest rate (ex. 0.04 -> 4%): "); err != nil {
		return sess, err
	}

	fmt.Fprintln(p.out)
	if sess.Savings.Deposits, err = p.series("Enter number of deposits for the savings account: ", "Deposit"); err != nil {
		return sess, err
	}
	if sess.Savings.Withdrawals, err = p.series("Enter number of withdrawals from the savings account: ", "Withdrawal"); err != nil {
		return sess, err
	}

	fmt.Fprintln(p.out)
	if sess.Checking.Deposits, err = p.series("Enter number of deposits for the checking account: ", "Deposit"); err != nil {
		return sess, err
	}
	if sess.Checking.Withdrawals, err = p.series("Enter number of withdrawals from the checking account: ", "Withdrawal"); err != nil {
		return sess, err
	}

	return sess, nil
}

// series reads a count, then that many amounts. A negative count reads none.
func (p *Prompter) series(countPrompt, itemLabel string) ([]decimal.Decimal, error) {
	n, err := p.count(countPrompt)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, 0, max(n, 0))
	for i := 0; i < n; i++ {
		v, err := p.amount(fmt.Sprintf("%s #%d amount: ", itemLabel, i+1))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Prompter) amount(prompt string) (decimal.Decimal, error) {
	for {
		tok, err := p.ask(prompt)
		if err != nil {
			return decimal.Zero, err
		}
		v, err := decimal.NewFromString(tok)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "%q is not a valid amount.\n", tok)
	}
}

func (p *Prompter) count(prompt string) (int, error) {
	for {
		tok, err := p.ask(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(tok)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(p.out, "%q is not a whole number.\n", tok)
	}
}

func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return p.in.Text(), nil
}
