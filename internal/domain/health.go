package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual component.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// MetricsSummary is returned by GET /v1/metrics/summary.
type MetricsSummary struct {
	Statements          int64   `json:"statements"`
	Deposits            int64   `json:"deposits"`
	Withdrawals         int64   `json:"withdrawals"`
	RejectedWithdrawals int64   `json:"rejectedWithdrawals"`
	RejectionRate       float64 `json:"rejectionRate"`
	ServiceCharges      float64 `json:"serviceCharges"`
	InterestPaid        float64 `json:"interestPaid"`
}
