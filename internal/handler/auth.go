package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	if auth == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{auth: auth}
}

// Register creates a customer account and returns an access token right
// away.  Any tipo_usuario in the body is ignored.
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.CreateUserInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	sess, err := h.auth.Register(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusCreated, sess, "Usuario registrado")
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	sess, err := h.auth.Login(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, sess)
}

// Me returns the profile of the token's owner.
func (h *AuthHandler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.auth.Me(ctx, a)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, u)
}
