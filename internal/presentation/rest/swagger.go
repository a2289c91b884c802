package rest

import (
	"net/http"

	"finance-tracker/internal/presentation/openapi"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const redocHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Finance Tracker API - ReDoc</title>
	<meta charset="utf-8"/>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { margin: 0; padding: 0; }
	</style>
</head>
<body>
	<redoc spec-url="/openapi.yaml"></redoc>
	<script src="https://cdn.jsdelivr.net/npm/redoc@latest/bundles/redoc.standalone.js"></script>
</body>
</html>`

// SetupSwagger Swagger UI / ReDoc統合を設定
func SetupSwagger(e *echo.Echo) {
	// OpenAPI仕様ファイルの配信
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/x-yaml", openapi.Spec)
	})

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(
		echoSwagger.URL("/openapi.yaml"),
	))

	e.GET("/redoc", func(c echo.Context) error {
		return c.HTML(http.StatusOK, redocHTML)
	})
}
