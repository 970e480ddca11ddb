package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-reservation/internal/notify"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness for load balancers and monitoring.  It
// answers 503 when the database cannot be reached.
type HealthHandler struct {
	db    Pinger
	stats func() notify.Stats
}

// NewHealthHandler accepts nil for either dependency; the matching check is
// then skipped.
func NewHealthHandler(db Pinger, stats func() notify.Stats) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

type healthResp struct {
	Status        string        `json:"status"`
	Database      string        `json:"database,omitempty"`
	Notifications *notify.Stats `json:"notificaciones,omitempty"`
}

func (h *HealthHandler) Health(c echo.Context) error {
	resp := healthResp{Status: "ok"}
	code := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		resp.Database = "ok"
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	if h.stats != nil {
		st := h.stats()
		resp.Notifications = &st
	}
	return c.JSON(code, resp)
}
