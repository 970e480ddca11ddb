package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/service"
)

// ReservationHandler serves /api/reservas.
type ReservationHandler struct {
	reservations *service.ReservationService
	reports      *service.ReportService
}

func NewReservationHandler(reservations *service.ReservationService, reports *service.ReportService) *ReservationHandler {
	if reservations == nil || reports == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{reservations: reservations, reports: reports}
}

// List returns one page of reservations for staff.  Query parameters:
// page, limit, estado, usuario_id, salon_id, turno_id, fecha, sortField,
// sortOrder and all.
func (h *ReservationHandler) List(c echo.Context) error {
	var (
		q   service.ListQuery
		err error
	)
	if q.Page, err = queryInt(c, "page"); err != nil {
		return fail(c, err)
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return fail(c, err)
	}
	if q.UserID, err = queryUint(c, "usuario_id"); err != nil {
		return fail(c, err)
	}
	if q.VenueID, err = queryUint(c, "salon_id"); err != nil {
		return fail(c, err)
	}
	if q.TimeSlotID, err = queryUint(c, "turno_id"); err != nil {
		return fail(c, err)
	}
	q.Status = c.QueryParam("estado")
	q.Date = c.QueryParam("fecha")
	q.SortField = c.QueryParam("sortField")
	q.SortOrder = c.QueryParam("sortOrder")
	q.IncludeInactive = queryBool(c, "all")

	ctx, cancel := requestContext(c)
	defer cancel()
	page, err := h.reservations.List(ctx, q)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, page)
}

// Mine lists the caller's own active reservations.
func (h *ReservationHandler) Mine(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	rows, err := h.reservations.ListByUser(ctx, a.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, rows)
}

func (h *ReservationHandler) Get(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	all, err := includeAll(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	d, err := h.reservations.Get(ctx, a, id, all)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, d)
}

func (h *ReservationHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var in service.CreateReservationInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	d, err := h.reservations.Create(ctx, a, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusCreated, d, "Reserva creada")
}

func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.UpdateReservationInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	d, err := h.reservations.Update(ctx, id, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, d, "Reserva actualizada")
}

func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	d, err := h.reservations.Confirm(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, d, "Reserva confirmada")
}

func (h *ReservationHandler) Delete(c echo.Context) error {
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
	if _, err := h.reservations.Delete(ctx, a, id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, nil, "Reserva eliminada")
}

// Voucher streams GET /reservas/:id/comprobante.pdf.
func (h *ReservationHandler) Voucher(c echo.Context) error {
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
	var buf bytes.Buffer
	if err := h.reports.Voucher(ctx, a, id, &buf); err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"reserva-%d.pdf\"", id))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
