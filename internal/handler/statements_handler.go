package handler

import (
	"net/http"

	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/boddenberg/monthly-statement/internal/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Statements Handlers
// ============================================================

const (
	idempotencyHeader = "Idempotency-Key"
	replayHeader      = "Idempotent-Replay"
)

func sessionHandler(runner port.StatementRunner, replays port.Cache[any], logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/statements")
		defer span.End()

		var sess domain.Session
		if err := decodeJSON(w, r, &sess); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		serveIdempotent(w, r, replays, "session", logger, func() (any, error) {
			return runner.RunSession(ctx, sess)
		})
	}
}

func statementHandler(runner port.StatementRunner, replays port.Cache[any], logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/statements/{kind}")
		defer span.End()

		kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("account.kind", string(kind)))

		var req domain.StatementRequest
		if err := decodeJSON(w, r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if req.Kind != "" && req.Kind != kind {
			handleServiceError(w, &domain.ErrValidation{Field: "kind", Message: "does not match the URL"}, logger)
			return
		}
		req.Kind = kind

		serveIdempotent(w, r, replays, string(kind), logger, func() (any, error) {
			return runner.Run(ctx, req)
		})
	}
}

func feesHandler(runner port.StatementRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, runner.Fees())
	}
}

// serveIdempotent runs produce and writes its result. With an
// Idempotency-Key header the first result is kept for the cache TTL and
// later requests with the same key get that result back.
func serveIdempotent(w http.ResponseWriter, r *http.Request, replays port.Cache[any], scope string, logger *zap.Logger, produce func() (any, error)) {
	rawKey := r.Header.Get(idempotencyHeader)
	if rawKey == "" || replays == nil {
		result, err := produce()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	key, err := uuid.Parse(rawKey)
	if err != nil {
		handleServiceError(w, &domain.ErrValidation{Field: idempotencyHeader, Message: "must be a UUID"}, logger)
		return
	}
	cacheKey := idempotencyKeyFor(scope, key.String())

	if cached, ok := replays.Get(cacheKey); ok {
		logReplay(logger, cacheKey)
		w.Header().Set(replayHeader, "true")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := produce()
	if err != nil {
		handleServiceError(w, err, logger)
		return
	}
	if held, stored := replays.SetIfAbsent(cacheKey, result); !stored {
		// A concurrent request with the same key finished first.
		logReplay(logger, cacheKey)
		w.Header().Set(replayHeader, "true")
		result = held
	}
	writeJSON(w, http.StatusOK, result)
}

func logReplay(logger *zap.Logger, key string) {
	logger.Debug("idempotent replay", zap.String("key", key))
}
