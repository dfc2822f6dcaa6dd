package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/boddenberg/monthly-statement/internal/handler"
	"github.com/boddenberg/monthly-statement/internal/infra/cache"
	"github.com/boddenberg/monthly-statement/internal/infra/observability"
	"github.com/boddenberg/monthly-statement/internal/infra/resilience"
	"github.com/boddenberg/monthly-statement/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	svc, err := service.NewStatementService(domain.DefaultFeeSchedule(), metrics, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	replays := cache.New[any](time.Minute)
	t.Cleanup(replays.Close)
	limiter := resilience.NewBulkhead(8, time.Second)
	return handler.NewRouter(svc, replays, limiter, metrics, zap.NewNop()), metrics
}

func do(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, observability.NewMetrics(), zap.NewNop())

	rec := do(router, http.MethodGet, "/healthz", "", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "degraded" {
		t.Errorf("expected degraded without a runner, got '%s'", health.Status)
	}
}

func TestReadyz(t *testing.T) {
	router, _ := newRouter(t)

	if rec := do(router, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	unready := handler.NewRouter(nil, nil, nil, observability.NewMetrics(), zap.NewNop())
	if rec := do(unready, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router, _ := newRouter(t)

	do(router, http.MethodPost, "/v1/statements/checking", `{"starting_balance": 10, "annual_rate": 0}`, nil)
	rec := do(router, http.MethodGet, "/metrics", "", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `statement_runs_total{kind="checking"} 1`) {
		t.Errorf("expected statement counter in metrics output:\n%s", rec.Body.String())
	}
}

func TestStatementsUnavailableWithoutRunner(t *testing.T) {
	router := handler.NewRouter(nil, nil, nil, observability.NewMetrics(), zap.NewNop())

	rec := do(router, http.MethodPost, "/v1/statements", `{}`, nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

const sessionBody = `{
	"annual_rate": "0.04",
	"savings":  {"starting_balance": 20, "deposits": [10], "withdrawals": []},
	"checking": {"starting_balance": 100, "deposits": [], "withdrawals": [150]}
}`

func TestPostSession(t *testing.T) {
	router, metrics := newRouter(t)

	rec := do(router, http.MethodPost, "/v1/statements", sessionBody, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res domain.SessionResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if got := res.Savings.Cycle.Statement.Balance.StringFixed(2); got != "30.10" {
		t.Errorf("expected savings 30.10, got %s", got)
	}
	if len(res.Checking.Rejections) != 1 || res.Checking.Rejections[0].Reason != service.ReasonOverdraft {
		t.Errorf("expected one overdraft rejection, got %+v", res.Checking.Rejections)
	}
	if !strings.Contains(res.Checking.Report, "Charges:               $20.00") {
		t.Errorf("unexpected checking report:\n%s", res.Checking.Report)
	}
	if metrics.Summary().Statements != 2 {
		t.Errorf("expected 2 statements, got %d", metrics.Summary().Statements)
	}
}

func TestPostSession_IdempotentReplay(t *testing.T) {
	router, metrics := newRouter(t)
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	first := do(router, http.MethodPost, "/v1/statements", sessionBody, headers)
	second := do(router, http.MethodPost, "/v1/statements", sessionBody, headers)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", first.Code, second.Code)
	}
	if first.Header().Get("Idempotent-Replay") != "" {
		t.Error("first response must not be marked as replay")
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Error("second response should be marked as replay")
	}
	if first.Body.String() != second.Body.String() {
		t.Error("expected identical bodies for replay")
	}
	if metrics.Summary().Statements != 2 {
		t.Errorf("replay must not rerun the session, got %d statements", metrics.Summary().Statements)
	}
}

func TestPostSession_BadIdempotencyKey(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/v1/statements", sessionBody, map[string]string{"Idempotency-Key": "abc"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPostSession_MalformedBody(t *testing.T) {
	router, _ := newRouter(t)

	cases := map[string]string{
		"not json":      `{"annual_rate":`,
		"unknown field": `{"annual_rate": 0.04, "brokerage": {}}`,
		"trailing data": `{} {}`,
		"bad amount":    `{"annual_rate": "four"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/v1/statements", body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPostStatement(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/v1/statements/savings",
		`{"label": "Holiday Fund", "starting_balance": "20.00", "annual_rate": "0.04", "deposits": ["10.00"]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var st domain.Statement
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Kind != domain.KindSavings || st.Label != "Holiday Fund" {
		t.Errorf("unexpected statement header %s/%s", st.Kind, st.Label)
	}
	if got := st.Cycle.Statement.Balance.StringFixed(2); got != "30.10" {
		t.Errorf("expected 30.10, got %s", got)
	}
}

func TestPostStatement_KindErrors(t *testing.T) {
	router, _ := newRouter(t)

	if rec := do(router, http.MethodPost, "/v1/statements/brokerage", `{}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: expected 400, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/v1/statements/savings", `{"kind": "checking"}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched kind: expected 400, got %d", rec.Code)
	}
}

func TestGetFees(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodGet, "/v1/fees", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fees domain.FeeSchedule
	if err := json.NewDecoder(rec.Body).Decode(&fees); err != nil {
		t.Fatal(err)
	}
	if fees.FreeWithdrawals != 4 || fees.OverdraftFee.StringFixed(2) != "15.00" {
		t.Errorf("unexpected fees %+v", fees)
	}
}

func TestMetricsSummary(t *testing.T) {
	router, _ := newRouter(t)
	do(router, http.MethodPost, "/v1/statements", sessionBody, nil)

	rec := do(router, http.MethodGet, "/v1/metrics/summary", "", nil)

	var summary domain.MetricsSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}
	if summary.Statements != 2 || summary.RejectedWithdrawals != 1 || summary.Deposits != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestPostStatement_Saturated(t *testing.T) {
	metrics := observability.NewMetrics()
	svc, err := service.NewStatementService(domain.DefaultFeeSchedule(), metrics, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	limiter := resilience.NewBulkhead(1, 0)
	router := handler.NewRouter(svc, nil, limiter, metrics, zap.NewNop())

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	rec := do(router, http.MethodPost, "/v1/statements/checking", `{"starting_balance": 10}`, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while saturated, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if rec := do(router, http.MethodGet, "/v1/fees", "", nil); rec.Code != http.StatusOK {
		t.Errorf("fees should not need a run slot, got %d", rec.Code)
	}

	limiter.Release()
	if rec := do(router, http.MethodPost, "/v1/statements/checking", `{"starting_balance": 10}`, nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200 after release, got %d", rec.Code)
	}
	if limiter.InFlight() != 0 {
		t.Errorf("slot leaked, %d in flight", limiter.InFlight())
	}
}
