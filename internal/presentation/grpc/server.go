package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	dashboardapp "finance-tracker/internal/application/dashboard"
	ledgerapp "finance-tracker/internal/application/ledger"
	"finance-tracker/internal/infrastructure/config"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
	"finance-tracker/internal/presentation/grpc/handler"
	"finance-tracker/internal/presentation/grpc/interceptor"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// Server gRPCサーバー
type Server struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	port     int
	logger   *otelinfra.Logger
}

// NewServer 新しいgRPCサーバーを作成
func NewServer(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authenticator interceptor.Authenticator,
	ledgerService *ledgerapp.LedgerApplicationService,
	dashboardService *dashboardapp.DashboardApplicationService,
) (*Server, error) {
	port := cfg.Server.GRPCPort
	address := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	return NewServerWithListener(cfg, logger, metrics, authenticator, ledgerService, dashboardService, listener, port)
}

// NewServerWithListener リスナーを指定してgRPCサーバーを作成（テスト用）
func NewServerWithListener(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authenticator interceptor.Authenticator,
	ledgerService *ledgerapp.LedgerApplicationService,
	dashboardService *dashboardapp.DashboardApplicationService,
	listener net.Listener,
	port int,
) (*Server, error) {
	// インターセプターを設定
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			interceptor.LoggingInterceptor(logger, metrics),
			interceptor.AuthInterceptor(authenticator, logger),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Second,
			MaxConnectionAge:      30 * time.Second,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	// gRPCサーバーを作成
	grpcServer := grpc.NewServer(opts...)

	// ハンドラーを登録
	handler.RegisterTransactionServiceServer(grpcServer, handler.NewTransactionHandler(ledgerService, dashboardService))

	// ヘルスチェック
	healthServer := health.NewServer()
	healthServer.SetServingStatus(handler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// リフレクションを有効化（開発環境用）
	if cfg.IsDevelopment() {
		reflection.Register(grpcServer)
	}

	return &Server{
		server:   grpcServer,
		health:   healthServer,
		listener: listener,
		port:     port,
		logger:   logger,
	}, nil
}

// Start サーバーを起動
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "gRPC server starting", map[string]interface{}{
		"port": s.port,
	})
	if err := s.server.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop サーバーを停止
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping gRPC server", nil)
	s.health.Shutdown()

	// グレースフルシャットダウン
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	// タイムアウトを設定
	select {
	case <-stopped:
		s.logger.Info(ctx, "gRPC server stopped", nil)
		return nil
	case <-ctx.Done():
		// タイムアウトした場合は強制停止
		s.logger.Warn(context.Background(), "gRPC server shutdown timeout, forcing stop", nil)
		s.server.Stop()
		return ctx.Err()
	}
}

// Port サーバーのポート番号を返す
func (s *Server) Port() int {
	return s.port
}
