package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/service"
)

// AddOnHandler serves /api/servicios.
type AddOnHandler struct {
	addOns *service.AddOnService
}

func NewAddOnHandler(addOns *service.AddOnService) *AddOnHandler {
	if addOns == nil {
		panic("nil service passed to NewAddOnHandler")
	}
	return &AddOnHandler{addOns: addOns}
}

func (h *AddOnHandler) List(c echo.Context) error {
	all, err := includeAll(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	as, err := h.addOns.List(ctx, all)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, as)
}

func (h *AddOnHandler) Get(c echo.Context) error {
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
	a, err := h.addOns.Get(ctx, id, all)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, a)
}

func (h *AddOnHandler) Create(c echo.Context) error {
	var in service.AddOnInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	a, err := h.addOns.Create(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusCreated, a, "Servicio creado")
}

func (h *AddOnHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.AddOnInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	a, err := h.addOns.Update(ctx, id, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, a, "Servicio actualizado")
}

func (h *AddOnHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.addOns.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, nil, "Servicio eliminado")
}

// TimeSlotHandler serves /api/turnos.
type TimeSlotHandler struct {
	slots *service.TimeSlotService
}

func NewTimeSlotHandler(slots *service.TimeSlotService) *TimeSlotHandler {
	if slots == nil {
		panic("nil service passed to NewTimeSlotHandler")
	}
	return &TimeSlotHandler{slots: slots}
}

func (h *TimeSlotHandler) List(c echo.Context) error {
	all, err := includeAll(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	ts, err := h.slots.List(ctx, all)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, ts)
}

func (h *TimeSlotHandler) Get(c echo.Context) error {
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
	t, err := h.slots.Get(ctx, id, all)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, t)
}

func (h *TimeSlotHandler) Create(c echo.Context) error {
	var in service.TimeSlotInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	t, err := h.slots.Create(ctx, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusCreated, t, "Turno creado")
}

func (h *TimeSlotHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.TimeSlotInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	t, err := h.slots.Update(ctx, id, in)
	if err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, t, "Turno actualizado")
}

func (h *TimeSlotHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.slots.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return okMsg(c, http.StatusOK, nil, "Turno eliminado")
}
