// Package service provides the business logic layer (use cases).
// StatementService runs accounts through one monthly cycle and produces
// their statements.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/boddenberg/monthly-statement/internal/infra/observability"
	"github.com/boddenberg/monthly-statement/internal/report"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/statement")

// Labels used for the two accounts of a session.
const (
	SavingsLabel  = "Savings Account"
	CheckingLabel = "Checking Account"
)

// StatementService builds accounts from requested activity and closes
// their monthly cycle. It holds no account state between calls.
type StatementService struct {
	fees    domain.FeeSchedule
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatementService creates a statement service with the given fee schedule.
func NewStatementService(fees domain.FeeSchedule, metrics *observability.Metrics, logger *zap.Logger) (*StatementService, error) {
	if err := fees.Validate(); err != nil {
		return nil, fmt.Errorf("fee schedule: %w", err)
	}
	return &StatementService{fees: fees, metrics: metrics, logger: logger, now: time.Now}, nil
}

// Fees returns the schedule the service applies.
func (s *StatementService) Fees() domain.FeeSchedule { return s.fees }

// Run applies every deposit, then every withdrawal, then closes the cycle.
// Rejected withdrawals are recorded on the statement, not returned as errors.
func (s *StatementService) Run(ctx context.Context, req domain.StatementRequest) (*domain.Statement, error) {
	_, span := tracer.Start(ctx, "StatementService.Run")
	defer span.End()

	kind, err := domain.ParseKind(string(req.Kind))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	label := req.Label
	if label == "" {
		label = defaultLabel(kind)
	}
	span.SetAttributes(
		attribute.String("account.kind", string(kind)),
		attribute.Int("activity.deposits", len(req.Deposits)),
		attribute.Int("activity.withdrawals", len(req.Withdrawals)),
	)

	start := time.Now()
	acct, err := domain.NewAccount(kind, req.StartingBalance, req.AnnualRate, s.fees)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With(zap.String("kind", string(kind)), zap.String("label", label))

	for _, amount := range req.Deposits {
		acct.Deposit(amount)
		s.metrics.IncrOperation(kind, "deposit", "applied")
	}

	var rejections []domain.Rejection
	for _, amount := range req.Withdrawals {
		err := acct.Withdraw(amount)
		if err == nil {
			s.metrics.IncrOperation(kind, "withdrawal", "applied")
			continue
		}
		rejection, ok := rejectionFrom(amount, err)
		if !ok {
			return nil, fmt.Errorf("withdraw %s: %w", amount, err)
		}
		rejections = append(rejections, rejection)
		s.metrics.IncrOperation(kind, "withdrawal", "rejected")
		s.metrics.IncrRejection(kind, rejection.Reason)
		logger.Warn("withdrawal rejected",
			zap.String("amount", amount.StringFixed(2)),
			zap.String("reason", rejection.Reason),
			zap.String("fee", rejection.Fee.StringFixed(2)),
		)
	}

	cycle := acct.MonthlyProcess()
	s.metrics.RecordCycle(kind, time.Since(start), cycle)

	span.SetAttributes(
		attribute.Int("statement.rejections", len(rejections)),
		attribute.String("statement.final_balance", cycle.Statement.Balance.StringFixed(2)),
	)
	logger.Info("monthly cycle closed",
		zap.String("starting_balance", req.StartingBalance.StringFixed(2)),
		zap.String("final_balance", cycle.Statement.Balance.StringFixed(2)),
		zap.String("service_charges", cycle.Statement.ServiceCharges.StringFixed(2)),
		zap.String("interest", cycle.Interest.StringFixed(2)),
		zap.Int("deposits", cycle.Statement.Deposits),
		zap.Int("withdrawals", cycle.Statement.Withdrawals),
	)

	if rejections == nil {
		rejections = []domain.Rejection{}
	}
	return &domain.Statement{
		ID:              uuid.NewString(),
		Label:           label,
		Kind:            kind,
		StartingBalance: req.StartingBalance,
		Cycle:           cycle,
		Rejections:      rejections,
		Report:          report.Format(label, req.StartingBalance, cycle.Statement),
		GeneratedAt:     s.now().UTC(),
	}, nil
}

// RunSession produces the savings statement, then the checking statement,
// both at the session's annual rate.
func (s *StatementService) RunSession(ctx context.Context, sess domain.Session) (*domain.SessionResult, error) {
	ctx, span := tracer.Start(ctx, "StatementService.RunSession")
	defer span.End()

	savings, err := s.Run(ctx, domain.StatementRequest{
		Label:      SavingsLabel,
		Kind:       domain.KindSavings,
		AnnualRate: sess.AnnualRate,
		Activity:   sess.Savings,
	})
	if err != nil {
		return nil, fmt.Errorf("savings statement: %w", err)
	}

	checking, err := s.Run(ctx, domain.StatementRequest{
		Label:      CheckingLabel,
		Kind:       domain.KindChecking,
		AnnualRate: sess.AnnualRate,
		Activity:   sess.Checking,
	})
	if err != nil {
		return nil, fmt.Errorf("checking statement: %w", err)
	}

	return &domain.SessionResult{Savings: savings, Checking: checking}, nil
}

// Rejection reasons, also used as metric labels.
const (
	ReasonInactive  = "inactive"
	ReasonOverdraft = "overdraft"
)

func rejectionFrom(amount decimal.Decimal, err error) (domain.Rejection, bool) {
	var inactive *domain.ErrAccountInactive
	var overdraft *domain.ErrOverdraft

	switch {
	case errors.As(err, &inactive):
		return domain.Rejection{Amount: amount, Reason: ReasonInactive, Fee: decimal.Zero}, true
	case errors.As(err, &overdraft):
		return domain.Rejection{Amount: amount, Reason: ReasonOverdraft, Fee: overdraft.Fee}, true
	default:
		return domain.Rejection{}, false
	}
}

// Notice is the console message for a rejected withdrawal.
func Notice(r domain.Rejection) string {
	switch r.Reason {
	case ReasonInactive:
		return "Savings account is inactive, unable to withdraw."
	case ReasonOverdraft:
		return fmt.Sprintf("Insufficient funds. $%s overdraft fee charged.", r.Fee.StringFixed(2))
	default:
		return fmt.Sprintf("Withdrawal of $%s rejected.", r.Amount.StringFixed(2))
	}
}

func defaultLabel(kind domain.Kind) string {
	if kind == domain.KindSavings {
		return SavingsLabel
	}
	return CheckingLabel
}
