package handler

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/service"
)

// ReportHandler serves /api/informes.  All routes are staff only.
type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	if reports == nil {
		panic("nil service passed to NewReportHandler")
	}
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Stats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	st, err := h.reports.Stats(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, st)
}

func (h *ReportHandler) Reservations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	rows, err := h.reports.Reservations(ctx)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, rows)
}

func (h *ReportHandler) ReservationsCSV(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	var buf bytes.Buffer
	if err := h.reports.ExportCSV(ctx, &buf); err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="reservas.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ReportHandler) ReservationsPDF(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	var buf bytes.Buffer
	if err := h.reports.ExportPDF(ctx, &buf); err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="reservas.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
