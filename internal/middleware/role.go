package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// RequireRole only lets through callers whose role is in roles.  It must
// run after JWTAuth; a missing identity is treated as unauthenticated.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				return deny(c, http.StatusUnauthorized, "Token de acceso requerido")
			}
			if !allowed[id.Role] {
				return deny(c, http.StatusForbidden, "No tiene permisos para esta operación")
			}
			return next(c)
		}
	}
}

// StaffOnly allows employees and administrators.
func StaffOnly() echo.MiddlewareFunc { return RequireRole(model.RoleStaff, model.RoleAdmin) }

// AdminOnly allows administrators.
func AdminOnly() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }
