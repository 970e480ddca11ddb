package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/handler"
	"github.com/iliyamo/venue-reservation/internal/middleware"
)

// RegisterCatalog mounts salones, servicios and turnos.  Reads are public;
// ?all=true and every write require staff.
func RegisterCatalog(api *echo.Group, v *handler.VenueHandler, a *handler.AddOnHandler, t *handler.TimeSlotHandler, jwtSecret string, invalidate echo.MiddlewareFunc) {
	optional := middleware.OptionalJWT(jwtSecret)
	staff := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.StaffOnly(), invalidate}

	salones := api.Group("/salones")
	salones.GET("", v.List, optional)
	salones.GET("/disponibilidad", v.Availability)
	salones.GET("/:id", v.Get, optional)
	salones.POST("", v.Create, staff...)
	salones.PUT("/:id", v.Update, staff...)
	salones.DELETE("/:id", v.Delete, staff...)

	servicios := api.Group("/servicios")
	servicios.GET("", a.List, optional)
	servicios.GET("/:id", a.Get, optional)
	servicios.POST("", a.Create, staff...)
	servicios.PUT("/:id", a.Update, staff...)
	servicios.DELETE("/:id", a.Delete, staff...)

	turnos := api.Group("/turnos")
	turnos.GET("", t.List, optional)
	turnos.GET("/:id", t.Get, optional)
	turnos.POST("", t.Create, staff...)
	turnos.PUT("/:id", t.Update, staff...)
	turnos.DELETE("/:id", t.Delete, staff...)
}
