package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/service"
)

// VenueHandler serves /api/salones.
type VenueHandler struct {
	venues *service.VenueService
}

// NewVenueHandler panics on a nil service so wiring mistakes fail at startup.
func NewVenueHandler(venues *service.VenueService) *VenueHandler {
	if venues == nil {
		panic("nil service passed to NewVenueHandler")
	}
	return &VenueHandler{venues: venues}
}

func (h *VenueHandler) List(c echo.Context) error {
	all, err := includeAll(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	vs, err := h.venues.List(ctx, all)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, vs)
}

func (h *VenueHandler) Get(c echo.Context) error {
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
	v, err := h.venues.Get(ctx, id, all)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, v)
}

func (h *VenueHandler) Create(c echo.Context) error {
	var in service.VenueInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	v, err := h.venues.Create(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusCreated, v, "Salón creado")
}

func (h *VenueHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.VenueInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	v, err := h.venues.Update(ctx, id, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, v, "Salón actualizado")
}

func (h *VenueHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.venues.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, nil, "Salón eliminado")
}

// Availability answers GET /salones/disponibilidad?fecha=&turno_id=.
func (h *VenueHandler) Availability(c echo.Context) error {
	date := c.QueryParam("fecha")
	if date == "" {
		return fail(c, apperr.Validation("Parámetros de consulta inválidos", "fecha es obligatorio"))
	}
	slotID, err := queryUint(c, "turno_id")
	if err != nil {
		return fail(c, err)
	}
	var slot *uint64
	if slotID != 0 {
		slot = &slotID
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	out, err := h.venues.Availability(ctx, date, slot)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, out)
}
