package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/service"
)

// UserHandler serves /api/usuarios.  List, create and delete are routed
// behind AdminOnly; get and update also admit the account owner.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	if users == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	us, err := h.users.List(ctx, queryBool(c, "all"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, us)
}

func (h *UserHandler) Get(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.users.Get(ctx, a, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, u)
}

func (h *UserHandler) Create(c echo.Context) error {
	var in service.CreateUserInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.users.Create(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusCreated, u, "Usuario creado")
}

func (h *UserHandler) Update(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.UpdateUserInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	u, err := h.users.Update(ctx, a, id, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, u, "Usuario actualizado")
}

func (h *UserHandler) Delete(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.users.Delete(ctx, a, id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, nil, "Usuario eliminado")
}
