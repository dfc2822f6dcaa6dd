// Package port defines the interfaces the HTTP layer depends on, so the
// handlers can be exercised against fakes.
package port

import (
	"context"

	"github.com/boddenberg/monthly-statement/internal/domain"
)

// StatementRunner produces monthly statements.
type StatementRunner interface {
	Run(ctx context.Context, req domain.StatementRequest) (*domain.Statement, error)
	RunSession(ctx context.Context, sess domain.Session) (*domain.SessionResult, error)
	Fees() domain.FeeSchedule
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	SetIfAbsent(key string, value T) (T, bool)
	Delete(key string)
}
