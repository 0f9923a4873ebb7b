package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/lunchly/internal/handler" // import the handlers that implement the API
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the liveness and readiness checks and the
// Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	// Liveness only proves the process is serving.
	e.GET("/healthz", handler.Health)
	// Readiness pings the database.
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the token endpoint.  Staff exchange their
// credentials here for the bearer token the write routes require.  limiter
// throttles password guessing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/token", a.Token, limiter)
}
