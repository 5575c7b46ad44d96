package router

import (
	"flipearn/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupHealthRouter(e *echo.Echo, healthHandler *handler.HealthHandler) {
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/health/db", healthHandler.CheckDatabaseHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
