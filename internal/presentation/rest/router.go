package rest

import (
	"context"
	"net/http"
	"strconv"

	authapp "finance-tracker/internal/application/auth"
	dashboardapp "finance-tracker/internal/application/dashboard"
	ledgerapp "finance-tracker/internal/application/ledger"
	"finance-tracker/internal/infrastructure/config"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
	"finance-tracker/internal/presentation/rest/handler"
	restmiddleware "finance-tracker/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// maxBodySize リクエストボディの上限
const maxBodySize = "1M"

// Router REST APIルーター
type Router struct {
	echo               *echo.Echo
	cfg                *config.Config
	transactionHandler *handler.TransactionHandler
	dashboardHandler   *handler.DashboardHandler
	authHandler        *handler.AuthHandler
	healthHandler      *handler.HealthHandler
}

// NewRouter 新しいRouterを作成
// healthCheckerがnilの場合、ヘルスチェックはストアを確認しない
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authService *authapp.AuthApplicationService,
	ledgerService *ledgerapp.LedgerApplicationService,
	dashboardService *dashboardapp.DashboardApplicationService,
	healthChecker handler.HealthChecker,
) (*Router, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// ルーティング前に発生したエラー（404/405など）の処理
	e.HTTPErrorHandler = restmiddleware.HTTPErrorHandler(logger)

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	r := &Router{
		echo:               e,
		cfg:                cfg,
		transactionHandler: handler.NewTransactionHandler(ledgerService),
		dashboardHandler:   handler.NewDashboardHandler(dashboardService),
		authHandler:        handler.NewAuthHandler(authService),
		healthHandler:      handler.NewHealthHandler(healthChecker, logger),
	}

	// ルーティングの設定
	r.setupRoutes(authService, logger)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return r, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// ボディサイズ制限
	e.Use(middleware.BodyLimit(maxBodySize))

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// メトリクスミドルウェア
	if metrics != nil {
		e.Use(restmiddleware.MetricsMiddleware(metrics))
	}

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func (r *Router) setupRoutes(authService *authapp.AuthApplicationService, logger *otelinfra.Logger) {
	// API v1グループ
	api := r.echo.Group("/api/v1")

	// 開発用トークン発行エンドポイント（認証不要）
	if r.cfg.Auth.TokenEndpointEnabled {
		api.POST("/auth/token", r.authHandler.GenerateToken)
	}

	// 認証が必要なエンドポイント
	authGroup := api.Group("", restmiddleware.AuthMiddleware(authService, logger))

	// トランザクション関連エンドポイント
	authGroup.GET("/transactions", r.transactionHandler.ListTransactions)
	authGroup.POST("/transactions", r.transactionHandler.CreateTransaction)
	authGroup.GET("/transactions/:id", r.transactionHandler.GetTransaction)
	authGroup.PUT("/transactions/:id", r.transactionHandler.UpdateTransaction)
	authGroup.DELETE("/transactions/:id", r.transactionHandler.DeleteTransaction)

	// ダッシュボード関連エンドポイント
	authGroup.GET("/dashboard/summary", r.dashboardHandler.GetSummary)

	// ヘルスチェックエンドポイント（認証不要）
	r.echo.GET("/health", r.healthHandler.Check)
}

// ServeHTTP http.Handlerを実装
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(w, req)
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	server := &http.Server{
		Addr:         address,
		ReadTimeout:  r.cfg.Server.ReadTimeout,
		WriteTimeout: r.cfg.Server.WriteTimeout,
		IdleTimeout:  r.cfg.Server.IdleTimeout,
	}
	if err := r.echo.StartServer(server); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}

// Address ポート番号から待ち受けアドレスを返す
func Address(port int) string {
	return ":" + strconv.Itoa(port)
}
