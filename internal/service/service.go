// Package service holds the business rules of the reservation system.
// Services depend on small store interfaces satisfied by the repository
// package and report failures as *apperr.Error values.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/repository"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID uint64
	Role   model.Role
}

// IsStaff reports whether the actor is an employee or administrator.
func (a Actor) IsStaff() bool { return a.Role.IsStaff() }

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

const msgInternal = "Error interno del servidor"

// internal logs err with its operation and returns a sanitized error.
func internal(log *zap.Logger, op string, err error) error {
	log.Error(op, zap.Error(err))
	return apperr.Internal(msgInternal, err)
}

// notFoundOr maps repository.ErrNotFound to a NotFound error with msg and
// anything else to Internal.
func notFoundOr(log *zap.Logger, op string, err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return internal(log, op, err)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and turns failures into a
// Validation error with one detail per field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Validation("Datos inválidos", err.Error())
	}
	details := make([]string, 0, len(ves))
	for _, fe := range ves {
		details = append(details, describe(fe))
	}
	return apperr.Validation("Datos inválidos", details...)
}

func describe(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " es obligatorio"
	case "email":
		return f + " debe ser un correo electrónico válido"
	case "gt":
		return fmt.Sprintf("%s debe ser mayor que %s", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s debe ser mayor o igual que %s", f, fe.Param())
	case "min":
		return fmt.Sprintf("%s debe tener al menos %s caracteres", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s no puede superar %s caracteres", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", f, fe.Param())
	}
	return fmt.Sprintf("%s no es válido (%s)", f, fe.Tag())
}

// parseDate accepts strict YYYY-MM-DD dates.
func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil || t.Format(model.DateLayout) != s {
		return time.Time{}, apperr.Validation("Fecha inválida", field+" debe tener el formato AAAA-MM-DD")
	}
	return t, nil
}

// trimmed returns nil for nil or blank strings.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type ctxKey struct{}

// WithRequestID attaches a request id used in service logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func logFor(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
