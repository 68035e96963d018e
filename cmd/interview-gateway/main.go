package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prepwise/interview-gateway/internal/dotenv"
	"github.com/prepwise/interview-gateway/pkg/agent"
	"github.com/prepwise/interview-gateway/pkg/gateway/config"
	gatewayserver "github.com/prepwise/interview-gateway/pkg/gateway/server"
	"github.com/prepwise/interview-gateway/pkg/generation"
	"github.com/prepwise/interview-gateway/pkg/metrics"
	"github.com/prepwise/interview-gateway/pkg/store"
)

type gatewayDeps struct {
	loadConfig   func() (config.Config, error)
	newStore     func(ctx context.Context) (agent.Store, func() error, error)
	newMetrics   func(ctx context.Context, cfg config.Config) (*metrics.Sink, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultGatewayDeps() gatewayDeps {
	return gatewayDeps{
		loadConfig: config.LoadFromEnv,
		newStore: func(ctx context.Context) (agent.Store, func() error, error) {
			creds, err := store.ResolveCredentials(os.Getenv)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve firestore credentials: %w", err)
			}
			fs, err := store.NewFirestore(ctx, creds)
			if err != nil {
				return nil, nil, fmt.Errorf("open firestore: %w", err)
			}
			return fs, fs.Close, nil
		},
		newMetrics: func(ctx context.Context, cfg config.Config) (*metrics.Sink, error) {
			return metrics.New(ctx, os.Stdout, cfg.MetricsInterval)
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func run(ctx context.Context, logger *slog.Logger, deps gatewayDeps) error {
	if deps.loadConfig == nil {
		return errors.New("missing loadConfig dependency")
	}
	if deps.newStore == nil {
		return errors.New("missing newStore dependency")
	}
	if deps.newMetrics == nil {
		return errors.New("missing newMetrics dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	interviewStore, closeStore, err := deps.newStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("closing store", "error", err)
			}
		}()
	}

	sink, err := deps.newMetrics(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	gw := gatewayserver.New(cfg, gatewayserver.Dependencies{
		Logger:    logger,
		Store:     interviewStore,
		Generator: generation.NewClient(cfg.GenerateBaseURL, cfg.GenerateTimeout),
		Metrics:   sink,
	})
	httpSrv := buildHTTPServer(cfg, gw.Handler())

	logger.Info("starting interview gateway",
		"addr", cfg.Addr,
		"generate_base_url", cfg.GenerateBaseURL,
	)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	gw.SetDraining(true)
	if warned := gw.WarnSessionsDraining(); warned > 0 {
		logger.Info("warned live sessions", "count", warned)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer waitCancel()
	if !gw.WaitSessions(waitCtx) {
		canceled := gw.CancelSessions()
		logger.Warn("canceled sessions that did not drain", "count", canceled)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	if summary := sink.Summary(); len(summary) > 0 {
		logger.Info("usage summary", "counts", summary)
	}
	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer metricsCancel()
	if err := sink.Shutdown(metricsCtx); err != nil {
		logger.Warn("metrics shutdown", "error", err)
	}

	logger.Info("interview gateway stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps gatewayDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := dotenv.Load(); err != nil {
		fmt.Fprintf(stderr, "interview-gateway: %v\n", err)
		return 1
	}

	if err := run(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "interview-gateway: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultGatewayDeps()))
}
