package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
)

// CORS wraps rs/cors for the given origins.  A single "*" allows any
// origin without credentials.
func CORS(origins []string) echo.MiddlewareFunc {
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", echo.HeaderXRequestID},
		ExposedHeaders:   []string{echo.HeaderXRequestID, "X-Cache", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	}
	if wildcard {
		opts.AllowedOrigins = []string{"*"}
	}
	return echo.WrapMiddleware(cors.New(opts).Handler)
}
