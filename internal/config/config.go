package config

import (
	"os"
	"strconv"
	"time"

	"github.com/boddenberg/monthly-statement/internal/domain"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Logging
	LogLevel string

	// HTTP server (serve mode)
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	IdempotencyKeyTTL time.Duration

	// Concurrent statement runs accepted by the API, and how long a
	// request queues for a slot before getting 503
	MaxConcurrentRuns int
	RunQueueTimeout   time.Duration

	// Observability
	OTLPEndpoint string
	ServiceName  string

	// Fees applied by the account kinds
	Fees domain.FeeSchedule
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	defaults := domain.DefaultFeeSchedule()

	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "warn"),

		Port:              getEnvInt("PORT", 8080),
		ReadTimeout:       getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:      getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		IdempotencyKeyTTL: getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		MaxConcurrentRuns: getEnvInt("MAX_CONCURRENT_RUNS", 32),
		RunQueueTimeout:   getEnvDuration("RUN_QUEUE_TIMEOUT", 2*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "monthly-statement"),

		Fees: domain.FeeSchedule{
			SavingsMinimumBalance:    getEnvDecimal("FEE_SAVINGS_MIN_BALANCE", defaults.SavingsMinimumBalance),
			FreeWithdrawals:          getEnvInt("FEE_FREE_WITHDRAWALS", defaults.FreeWithdrawals),
			ExcessWithdrawalFee:      getEnvDecimal("FEE_EXCESS_WITHDRAWAL", defaults.ExcessWithdrawalFee),
			OverdraftFee:             getEnvDecimal("FEE_OVERDRAFT", defaults.OverdraftFee),
			CheckingMonthlyFee:       getEnvDecimal("FEE_CHECKING_MONTHLY", defaults.CheckingMonthlyFee),
			CheckingPerWithdrawalFee: getEnvDecimal("FEE_CHECKING_PER_WITHDRAWAL", defaults.CheckingPerWithdrawalFee),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}
