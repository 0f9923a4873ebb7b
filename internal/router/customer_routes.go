package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lunchly/internal/handler"
	"github.com/iliyamo/lunchly/internal/middleware"
	"github.com/iliyamo/lunchly/internal/utils"
)

// RegisterCustomer registers the customer endpoints under /v1/customers.
// Reads are public and go through the response cache; writes require a
// valid JWT with the STAFF role.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, cache *middleware.ResponseCache, jwtSecret string) {
	read := e.Group("/v1/customers", cache.Middleware())
	read.GET("", h.List)
	// "top" is a static segment, so echo matches it before :id.
	read.GET("/top", h.Top)
	read.GET("/:id", h.Get)
	read.GET("/:id/reservations", h.ListReservations)

	write := e.Group(
		"/v1/customers",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleStaff),
	)
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.POST("/:id/reservations", h.AddReservation)
}
