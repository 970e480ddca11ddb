// Package handler adapts HTTP requests to the service layer.  Every JSON
// response uses the envelope {success, data, message} or
// {success, error, details}.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/middleware"
	"github.com/iliyamo/venue-reservation/internal/service"
)

// requestTimeout bounds the service work done for one request.
const requestTimeout = 5 * time.Second

type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func okMsg(c echo.Context, status int, data any, msg string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: msg})
}

// fail writes err as an error envelope.  The status comes from the error
// kind; internal causes are never sent to the client.
func fail(c echo.Context, err error) error {
	ae := apperr.From(err)
	return c.JSON(ae.Kind.HTTPStatus(), envelope{Error: ae.Message, Details: ae.Details})
}

// ErrorHandler renders errors that escape handlers, such as unknown routes
// or echo's own binding failures, in the same envelope.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			switch he.Code {
			case http.StatusNotFound:
				msg = "Recurso no encontrado"
			case http.StatusMethodNotAllowed:
				msg = "Método no permitido"
			}
			if c.Request().Method == http.MethodHead {
				_ = c.NoContent(he.Code)
				return
			}
			_ = c.JSON(he.Code, envelope{Error: msg})
			return
		}
		if errors.As(err, new(*apperr.Error)) {
			_ = fail(c, err)
			return
		}
		log.Error("unhandled error",
			zap.String("path", c.Path()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		_ = c.JSON(http.StatusInternalServerError, envelope{Error: "Error interno del servidor"})
	}
}

// requestContext derives the service context: request id for logs and a
// deadline.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	ctx := service.WithRequestID(c.Request().Context(), middleware.GetRequestID(c))
	return context.WithTimeout(ctx, requestTimeout)
}

// actor converts the authenticated identity into a service actor.
func actor(c echo.Context) (service.Actor, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return service.Actor{}, apperr.Unauthenticated("Token de acceso requerido")
	}
	return service.Actor{UserID: id.UserID, Role: id.Role}, nil
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation("Identificador inválido", name+" debe ser un entero positivo")
	}
	return n, nil
}

// queryUint parses an optional positive numeric query parameter; zero means
// absent.
func queryUint(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation("Parámetros de consulta inválidos", name+" debe ser un entero positivo")
	}
	return n, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("Parámetros de consulta inválidos", name+" debe ser un entero positivo")
	}
	return n, nil
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}

// includeAll reads ?all=true, which only staff may use.
func includeAll(c echo.Context) (bool, error) {
	if !queryBool(c, "all") {
		return false, nil
	}
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return false, apperr.Unauthenticated("Token de acceso requerido")
	}
	if !id.IsStaff() {
		return false, apperr.Forbidden("No tiene permisos para esta operación")
	}
	return true, nil
}

// bind decodes the JSON body.  Field rules are checked by the services.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("Cuerpo de la solicitud inválido", "el cuerpo debe ser JSON válido")
	}
	return nil
}
