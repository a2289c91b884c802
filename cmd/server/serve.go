package main

import (
	"context"
	"fmt"
	"time"

	authapp "finance-tracker/internal/application/auth"
	dashboardapp "finance-tracker/internal/application/dashboard"
	ledgerapp "finance-tracker/internal/application/ledger"
	"finance-tracker/internal/infrastructure/config"
	"finance-tracker/internal/infrastructure/identity"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
	grpcserver "finance-tracker/internal/presentation/grpc"
	"finance-tracker/internal/presentation/rest"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST and gRPC servers",
		RunE:  runServe,
	}
	cmd.Flags().Bool("migrate", false, "Apply the database schema before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	migrate, _ := cmd.Flags().GetBool("migrate")

	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer shutdownWithTimeout(tracerShutdown)

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer shutdownWithTimeout(meterShutdown)

	// ロガーとメトリクスの初期化
	logger := otelinfra.NewLoggerFromConfig(otelinfra.Tracer(cfg.OpenTelemetry.ServiceName), &cfg.Log)
	metrics, err := otelinfra.NewMetrics(cfg.OpenTelemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// ストレージの初期化
	st, err := openStore(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error(context.Background(), "Failed to close store", err, nil)
		}
	}()

	// トークン検証器の初期化
	verifier, err := identity.NewJWTVerifier(&cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	// アプリケーションサービスの初期化
	authService := authapp.NewAuthApplicationService(verifier, &cfg.JWT, logger, metrics)
	ledgerService := ledgerapp.NewLedgerApplicationService(st.repo, logger, metrics)
	dashboardService := dashboardapp.NewDashboardApplicationService(st.repo, logger)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(cfg, logger, metrics, authService, ledgerService, dashboardService, st.health)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	// gRPCサーバーの初期化
	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPCEnabled {
		grpcSrv, err = grpcserver.NewServer(cfg, logger, metrics, authService, ledgerService, dashboardService)
		if err != nil {
			return fmt.Errorf("failed to create gRPC server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	address := rest.Address(cfg.Server.Port)
	g.Go(func() error {
		logger.Info(gctx, "REST API server starting", map[string]interface{}{
			"address": address,
			"storage": cfg.Storage.Driver,
		})
		return router.Start(address)
	})

	if grpcSrv != nil {
		g.Go(grpcSrv.Start)
	}

	// シグナルまたはサーバーエラーを待機
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down servers", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := router.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down REST API server", err, nil)
		}
		if grpcSrv != nil {
			if err := grpcSrv.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "Error shutting down gRPC server", err, nil)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(context.Background(), "Servers stopped", nil)
	return nil
}

func shutdownWithTimeout(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}
