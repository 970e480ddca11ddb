package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/handler"
	"github.com/iliyamo/venue-reservation/internal/middleware"
)

// RegisterReservations mounts /reservas.  Every route needs a token;
// listing everything, confirming and editing are staff only.  Ownership of
// single reservations is checked by the service.
func RegisterReservations(api *echo.Group, h *handler.ReservationHandler, jwtSecret string, invalidate echo.MiddlewareFunc) {
	g := api.Group("/reservas", middleware.JWTAuth(jwtSecret), invalidate)
	staff := middleware.StaffOnly()

	g.GET("", h.List, staff)
	g.GET("/mis-reservas", h.Mine)
	g.GET("/:id", h.Get)
	g.GET("/:id/comprobante.pdf", h.Voucher)
	g.POST("", h.Create)
	g.PATCH("/:id/confirmar", h.Confirm, staff)
	g.PUT("/:id", h.Update, staff)
	g.DELETE("/:id", h.Delete)
}

// RegisterNotifications mounts the caller's notification inbox.
func RegisterNotifications(api *echo.Group, h *handler.NotificationHandler, jwtSecret string) {
	g := api.Group("/notificaciones", middleware.JWTAuth(jwtSecret))
	g.GET("", h.List)
	g.PATCH("/:id/leida", h.MarkRead)
}

// RegisterUsers mounts /usuarios.  Reading and editing a single account is
// also open to its owner; the service enforces that.
func RegisterUsers(api *echo.Group, h *handler.UserHandler, jwtSecret string, invalidate echo.MiddlewareFunc) {
	g := api.Group("/usuarios", middleware.JWTAuth(jwtSecret))
	admin := middleware.AdminOnly()

	g.GET("", h.List, admin)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, invalidate)
	g.DELETE("/:id", h.Delete, admin, invalidate)
}

// RegisterReports mounts /informes behind staff auth and the response
// cache.
func RegisterReports(api *echo.Group, h *handler.ReportHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := api.Group("/informes", middleware.JWTAuth(jwtSecret), middleware.StaffOnly(), cache)
	g.GET("/estadisticas", h.Stats)
	g.GET("/reservas", h.Reservations)
	g.GET("/reservas.csv", h.ReservationsCSV)
	g.GET("/reservas.pdf", h.ReservationsPDF)
}
