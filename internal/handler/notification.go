package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/service"
)

// NotificationHandler serves the caller's own notifications.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	if notifications == nil {
		panic("nil service passed to NewNotificationHandler")
	}
	return &NotificationHandler{notifications: notifications}
}

// List supports ?no_leidas=true to return unread notifications only.
func (h *NotificationHandler) List(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	ns, err := h.notifications.List(ctx, a, queryBool(c, "no_leidas"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, ns)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
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
	if err := h.notifications.MarkRead(ctx, a, id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, nil, "Notificación marcada como leída")
}
