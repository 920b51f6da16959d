package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/tgroups/internal/application/service"
	"github.com/turtacn/tgroups/internal/config"
	domainservice "github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/internal/infrastructure/audit"
	"github.com/turtacn/tgroups/internal/infrastructure/monitoring"
	"github.com/turtacn/tgroups/internal/infrastructure/persistence"
	"github.com/turtacn/tgroups/internal/infrastructure/registry"
	"github.com/turtacn/tgroups/internal/infrastructure/telegram"
	"github.com/turtacn/tgroups/internal/interfaces/http"
	"github.com/turtacn/tgroups/internal/interfaces/http/handlers"
	"github.com/turtacn/tgroups/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	var configFile string
	rootCmd := &cobra.Command{
		Use:           "tgroups-server",
		Short:         "Serves the Telegram group manager API and UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			appLogger, err := monitoring.NewZapLogger(&cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = appLogger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, appLogger)
		},
	}
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to tgroups.yaml")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *monitoring.ZapLogger) error {
	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(cfg.Tracing, appLogger)
	if err != nil {
		return err
	}
	defer func() { _ = tracing.Shutdown(context.Background()) }()

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)
	metricsAdapter := monitoring.NewMetricsAdapter(metrics)

	// Initialize the config store
	configRepo, redisConn, err := persistence.OpenConfigRepository(ctx, cfg.Store, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}
	defer configRepo.Close()

	deps := map[string]handlers.Pinger{}
	if redisConn != nil {
		deps["redis"] = redisConn
	}

	// Initialize the audit trail
	var recorder domainservice.AuditRecorder = domainservice.NoopAuditRecorder{}
	if cfg.Audit.Enabled {
		db, err := audit.OpenDatabase(cfg.Audit.Driver, cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		auditRepo := audit.NewGormAuditRepository(db)
		defer auditRepo.Close()
		recorder = audit.NewRecorder(auditRepo, cfg.Audit.SigningKey, appLogger)
		deps["audit"] = auditRepo
	}

	var publisher domainservice.EventPublisher = domainservice.NoopPublisher{}
	if cfg.Events.Enabled {
		producer := audit.NewKafkaProducer(cfg.Events, appLogger)
		defer producer.Close()
		publisher = producer
	}

	// Initialize the transport and the login registry
	factory := telegram.NewFactory(telegram.Options{
		ConnectionRetries: cfg.Telegram.ConnectionRetries,
		DialTimeout:       cfg.Telegram.DialTimeout,
		DialogPageSize:    cfg.Telegram.DialogPageSize,
		TestServer:        cfg.Telegram.TestServer,
		DeviceModel:       cfg.Telegram.DeviceModel,
	}, appLogger.Zap(cfg.Log.TelegramLevel), appLogger)
	attempts := registry.NewAttemptRegistry(cfg.Auth.AttemptTTL, cfg.Auth.CleanupInterval, appLogger, metricsAdapter)

	// Initialize application services
	authAppSvc := appservice.NewAuthAppService(configRepo, factory, attempts, recorder, metricsAdapter, appLogger)
	groupAppSvc := appservice.NewGroupAppService(configRepo, factory, recorder, publisher, metricsAdapter, appLogger)
	configAppSvc := appservice.NewConfigAppService(configRepo, appLogger)

	// Initialize HTTP handlers and router
	router := http.NewRouter(cfg, appLogger, http.Handlers{
		Health: handlers.NewHealthHandler(deps, appLogger),
		Auth:   handlers.NewAuthHandler(authAppSvc, appLogger),
		Group:  handlers.NewGroupHandler(groupAppSvc),
		Config: handlers.NewConfigHandler(configAppSvc),
	}, tracing, metrics, reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info(context.Background(), "Shutting down", logger.String("store", cfg.Store.Driver))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		attempts.Close(shutdownCtx)
		return router.Stop(shutdownCtx)
	})
	return g.Wait()
}

//Personal.AI order the ending
