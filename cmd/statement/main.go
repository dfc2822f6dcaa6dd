package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/boddenberg/monthly-statement/internal/cli"
	"github.com/boddenberg/monthly-statement/internal/config"
	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/boddenberg/monthly-statement/internal/handler"
	"github.com/boddenberg/monthly-statement/internal/infra/cache"
	"github.com/boddenberg/monthly-statement/internal/infra/observability"
	"github.com/boddenberg/monthly-statement/internal/infra/resilience"
	"github.com/boddenberg/monthly-statement/internal/scenario"
	"github.com/boddenberg/monthly-statement/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		envFile      = flag.String("env", ".env", "optional dotenv file; real environment variables win")
		scenarioFile = flag.String("scenario", "", "run the session described in a YAML file instead of prompting")
		serve        = flag.Bool("serve", false, "serve the statement API over HTTP instead of running once")
	)
	flag.Parse()

	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(*envFile)

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Debug("configuration loaded",
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("serve", *serve),
		zap.String("scenario", *scenarioFile),
		zap.String("savings_min_balance", cfg.Fees.SavingsMinimumBalance.StringFixed(2)),
		zap.Int("free_withdrawals", cfg.Fees.FreeWithdrawals),
		zap.String("overdraft_fee", cfg.Fees.OverdraftFee.StringFixed(2)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Services ---
	svc, err := service.NewStatementService(cfg.Fees, metrics, logger)
	if err != nil {
		logger.Fatal("invalid fee configuration", zap.Error(err))
	}

	if *serve {
		if err := runServer(ctx, cfg, svc, metrics, logger); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
		return
	}

	if err := runOnce(ctx, svc, *scenarioFile, os.Stdin, os.Stdout); err != nil {
		logger.Error("statement run failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}

// runOnce collects a session from the prompts or a scenario file, runs it
// and prints the notices and reports.
func runOnce(ctx context.Context, svc *service.StatementService, scenarioFile string, in io.Reader, out io.Writer) error {
	var sess domain.Session
	var err error
	if scenarioFile != "" {
		sess, err = scenario.Load(scenarioFile)
	} else {
		sess, err = cli.NewPrompter(in, out).ReadSession()
	}
	if err != nil {
		return err
	}

	res, err := svc.RunSession(ctx, sess)
	if err != nil {
		return err
	}
	return cli.PrintSession(out, res)
}

func runServer(ctx context.Context, cfg *config.Config, svc *service.StatementService, metrics *observability.Metrics, logger *zap.Logger) error {
	replays := cache.New[any](cfg.IdempotencyKeyTTL)
	defer replays.Close()
	limiter := resilience.NewBulkhead(cfg.MaxConcurrentRuns, cfg.RunQueueTimeout)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.NewRouter(svc, replays, limiter, metrics, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
