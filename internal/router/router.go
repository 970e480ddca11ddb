// Package router registers the HTTP routes of the API.  Everything except
// /healthz lives under /api.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/config"
	"github.com/iliyamo/venue-reservation/internal/handler"
	"github.com/iliyamo/venue-reservation/internal/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Venues        *handler.VenueHandler
	AddOns        *handler.AddOnHandler
	TimeSlots     *handler.TimeSlotHandler
	Users         *handler.UserHandler
	Reservations  *handler.ReservationHandler
	Reports       *handler.ReportHandler
	Notifications *handler.NotificationHandler
}

// Options carries the cross-cutting settings applied to the routes.  Redis
// may be nil, which disables the report cache and moves rate limiting in
// process.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	RateLimit   config.RateLimitConfig
	Cache       config.CacheConfig
	Redis       *redis.Client
	Log         *zap.Logger
}

// New builds an echo instance with global middleware and all routes.
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Log)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomw.Recover())
	e.Use(middleware.CORS(opts.CORSOrigins))
	e.Use(middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log))

	RegisterRoutes(e, h.Health)

	api := e.Group("/api")
	invalidate := middleware.InvalidateCache(opts.Cache, opts.Redis, opts.Log)
	RegisterAuth(api, h.Auth, opts.JWTSecret)
	RegisterCatalog(api, h.Venues, h.AddOns, h.TimeSlots, opts.JWTSecret, invalidate)
	RegisterUsers(api, h.Users, opts.JWTSecret, invalidate)
	RegisterReservations(api, h.Reservations, opts.JWTSecret, invalidate)
	RegisterNotifications(api, h.Notifications, opts.JWTSecret)
	RegisterReports(api, h.Reports, opts.JWTSecret, middleware.NewRedisCache(opts.Cache, opts.Redis, opts.Log))
	return e
}

// RegisterRoutes registers routes that sit outside /api.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	e.GET("/healthz", health.Health)
}

// RegisterAuth mounts registration, login and the current-user endpoint.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}
