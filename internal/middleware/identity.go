package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/utils"
)

const identityKey = "identity"

// Identity is the authenticated caller as read from the access token.
type Identity struct {
	UserID    uint64
	Role      model.Role
	Login     string
	FirstName string
	LastName  string
}

// IsStaff reports whether the caller is an employee or administrator.
func (id Identity) IsStaff() bool { return id.Role.IsStaff() }

// CanAccessUser reports whether the caller may act on userID's data.
func (id Identity) CanAccessUser(userID uint64) bool {
	return id.UserID == userID || id.Role.IsStaff()
}

func identityFromClaims(cl *utils.Claims) Identity {
	return Identity{
		UserID:    cl.UserID,
		Role:      cl.Role,
		Login:     cl.Login,
		FirstName: cl.FirstName,
		LastName:  cl.LastName,
	}
}

// SetIdentity stores id on the request context.
func SetIdentity(c echo.Context, id Identity) { c.Set(identityKey, id) }

// CurrentIdentity returns the caller stored by JWTAuth or OptionalJWT.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// userID returns the caller id as a string for cache and rate-limit keys,
// or "guest" for anonymous requests.
func userID(c echo.Context) string {
	if id, ok := CurrentIdentity(c); ok {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "guest"
}

// deny writes the error envelope used across the API.
func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

