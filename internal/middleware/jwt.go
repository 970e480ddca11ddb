package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/utils"
)

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// JWTAuth validates the Bearer access token and stores the caller's
// Identity in the context.  Requests without a valid token get 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return deny(c, http.StatusUnauthorized, "Token de acceso requerido")
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return deny(c, http.StatusUnauthorized, "Token inválido o expirado")
			}
			SetIdentity(c, identityFromClaims(claims))
			return next(c)
		}
	}
}

// OptionalJWT sets the Identity when a valid token is present and lets
// anonymous requests through.  A present but invalid token is still
// rejected so clients notice expired sessions.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return next(c)
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return deny(c, http.StatusUnauthorized, "Token inválido o expirado")
			}
			SetIdentity(c, identityFromClaims(claims))
			return next(c)
		}
	}
}
