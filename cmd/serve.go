package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/botworkspace/googlelink/internal/auth"
	"github.com/botworkspace/googlelink/internal/config"
	"github.com/botworkspace/googlelink/internal/identity"
	"github.com/botworkspace/googlelink/internal/instrumentation"
	"github.com/botworkspace/googlelink/internal/server"
	"github.com/botworkspace/googlelink/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		listenAddr     string
		metricsAddr    string
		inMemoryStore  bool
		disableMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the account linking HTTP service",
		Long: `Starts the HTTP service that handles the Google account linking
lifecycle: consent URL issuance, the OAuth redirect callback and the
first-interaction check. Configuration is read from the environment;
flags override the listener addresses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), serveOptions{
				debug:          debugMode,
				listenAddr:     listenAddr,
				metricsAddr:    metricsAddr,
				inMemoryStore:  inMemoryStore,
				disableMetrics: disableMetrics,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (overrides LISTEN_ADDR)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Metrics listen address (overrides METRICS_ADDR)")
	cmd.Flags().BoolVar(&inMemoryStore, "in-memory-store", false, "Use an in-memory store instead of Postgres (local development only)")
	cmd.Flags().BoolVar(&disableMetrics, "disable-metrics", false, "Disable the metrics server")

	return cmd
}

type serveOptions struct {
	debug          bool
	listenAddr     string
	metricsAddr    string
	inMemoryStore  bool
	disableMetrics bool
}

func runServe(ctx context.Context, opts serveOptions) error {
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.listenAddr != "" {
		cfg.ListenAddr = opts.listenAddr
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Instrumentation
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if opts.disableMetrics {
		instrConfig.Enabled = false
	}
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := provider.Shutdown(sctx); err != nil {
			logger.Warn("instrumentation shutdown failed", slog.Any("error", err))
		}
	}()

	// Store
	var st store.Store
	if opts.inMemoryStore {
		logger.Warn("using in-memory store; refresh tokens will not survive restarts")
		st = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(shutdownCtx, cfg.DSN(), cfg.PoolSize, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		st = pg
	}
	defer st.Close()

	// Linking service and HTTP front
	validator := identity.NewHMACValidator([]byte(cfg.IdentitySecret))
	service := auth.NewService(auth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
	}, st, validator,
		auth.WithLogger(logger),
		auth.WithMetrics(provider.Metrics()),
	)

	srv := server.New(cfg.ListenAddr, service,
		server.WithLogger(logger),
		server.WithMetrics(provider.Metrics()),
	)

	errCh := make(chan error, 2)

	var metricsServer *server.MetricsServer
	if provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	logger.Info("service started",
		slog.String("addr", cfg.ListenAddr),
		slog.String("version", version))

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer drainCancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(drainCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}

	return nil
}
