package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/middleware"
	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/notify"
	"github.com/iliyamo/venue-reservation/internal/repository"
	"github.com/iliyamo/venue-reservation/internal/service"
	"github.com/iliyamo/venue-reservation/internal/utils"
)

const secret = "handler-secret"

type memVenues struct {
	rows map[uint64]*model.Venue
	seq  uint64
}

func (m *memVenues) List(_ context.Context, includeInactive bool) ([]model.Venue, error) {
	out := []model.Venue{}
	for i := uint64(1); i <= m.seq; i++ {
		if v, ok := m.rows[i]; ok && (v.Active || includeInactive) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memVenues) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	v, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVenues) Create(_ context.Context, v *model.Venue) error {
	m.seq++
	v.ID, v.Active = m.seq, true
	cp := *v
	m.rows[v.ID] = &cp
	return nil
}

func (m *memVenues) Update(_ context.Context, v *model.Venue) error {
	cp := *v
	m.rows[v.ID] = &cp
	return nil
}

func (m *memVenues) SoftDelete(_ context.Context, id uint64) error {
	v, ok := m.rows[id]
	if !ok || !v.Active {
		return repository.ErrNotFound
	}
	v.Active = false
	return nil
}

func (m *memVenues) Availability(_ context.Context, _ string, _ *uint64) ([]model.VenueAvailability, error) {
	out := []model.VenueAvailability{}
	for _, v := range m.rows {
		if v.Active {
			out = append(out, model.VenueAvailability{Venue: *v, Available: true})
		}
	}
	return out, nil
}

// noSlots satisfies service.TimeSlotStore with an empty table.
type noSlots struct{}

func (noSlots) List(context.Context, bool) ([]model.TimeSlot, error) { return nil, nil }
func (noSlots) GetByID(context.Context, uint64) (*model.TimeSlot, error) {
	return nil, repository.ErrNotFound
}
func (noSlots) Create(context.Context, *model.TimeSlot) error { return nil }
func (noSlots) Update(context.Context, *model.TimeSlot) error { return nil }
func (noSlots) SoftDelete(context.Context, uint64) error      { return nil }

func newVenueServer() (*echo.Echo, *memVenues) {
	store := &memVenues{rows: map[uint64]*model.Venue{}}
	h := NewVenueHandler(service.NewVenueService(store, noSlots{}, zap.NewNop()))
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	e.Use(middleware.RequestID())
	optional := middleware.OptionalJWT(secret)
	staff := []echo.MiddlewareFunc{middleware.JWTAuth(secret), middleware.StaffOnly()}
	e.GET("/api/salones", h.List, optional)
	e.GET("/api/salones/disponibilidad", h.Availability)
	e.GET("/api/salones/:id", h.Get, optional)
	e.POST("/api/salones", h.Create, staff...)
	e.PUT("/api/salones/:id", h.Update, staff...)
	e.DELETE("/api/salones/:id", h.Delete, staff...)
	return e, store
}

func bearer(t *testing.T, role model.Role) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, &model.User{ID: 7, Role: role, Login: "x@example.com"}, 60)
	if err != nil {
		t.Fatal(err)
	}
	return at.Token
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type decoded struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details []string        `json:"details"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) decoded {
	t.Helper()
	var d decoded
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return d
}

func TestVenueEndpoints(t *testing.T) {
	e, _ := newVenueServer()
	staff := bearer(t, model.RoleStaff)

	rec := do(e, http.MethodPost, "/api/salones", staff, `{"titulo":"Salón Azul","direccion":"Calle 1","capacidad":50,"importe":1000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	d := decode(t, rec)
	var v model.Venue
	if err := json.Unmarshal(d.Data, &v); err != nil {
		t.Fatal(err)
	}
	if !d.Success || v.ID != 1 || v.Price != 1000 || d.Message == "" {
		t.Fatalf("unexpected envelope %+v / %+v", d, v)
	}

	rec = do(e, http.MethodPost, "/api/salones", staff, `{"titulo":"","direccion":"x","capacidad":0,"importe":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if d := decode(t, rec); d.Success || len(d.Details) != 2 {
		t.Fatalf("expected two validation details, got %+v", d)
	}

	rec = do(e, http.MethodPost, "/api/salones", staff, `{"titulo":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/salones", bearer(t, model.RoleCustomer), `{}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer write: expected 403, got %d", rec.Code)
	}

	if rec = do(e, http.MethodDelete, "/api/salones/1", staff, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec = do(e, http.MethodGet, "/api/salones/1", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted venue: expected 404, got %d", rec.Code)
	}
	if rec = do(e, http.MethodGet, "/api/salones/1?all=true", staff, ""); rec.Code != http.StatusOK {
		t.Fatalf("staff all=true: expected 200, got %d", rec.Code)
	}
	if rec = do(e, http.MethodGet, "/api/salones/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
}

func TestIncludeAllRequiresStaff(t *testing.T) {
	e, _ := newVenueServer()

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"customer", bearer(t, model.RoleCustomer), http.StatusForbidden},
		{"admin", bearer(t, model.RoleAdmin), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/api/salones?all=true", tc.token, "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
	if rec := do(e, http.MethodGet, "/api/salones", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("public list: expected 200, got %d", rec.Code)
	}
}

func TestAvailabilityQuery(t *testing.T) {
	e, _ := newVenueServer()

	if rec := do(e, http.MethodGet, "/api/salones/disponibilidad", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing fecha: expected 400, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/salones/disponibilidad?fecha=2030-02-01&turno_id=x", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad turno_id: expected 400, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/salones/disponibilidad?fecha=2030-02-01&turno_id=3", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown slot: expected 404, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/salones/disponibilidad?fecha=2030-02-01", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop())
	e.GET("/conflict", func(echo.Context) error { return apperr.Conflict("ya existe") })
	e.GET("/boom", func(echo.Context) error { return errors.New("db password leaked") })

	rec := do(e, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound || decode(t, rec).Error != "Recurso no encontrado" {
		t.Fatalf("unknown route: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(e, http.MethodGet, "/conflict", "", "")
	if rec.Code != http.StatusConflict || decode(t, rec).Error != "ya existe" {
		t.Fatalf("app error: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(e, http.MethodGet, "/boom", "", "")
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal error leaked: %d %s", rec.Code, rec.Body.String())
	}
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	stats := func() notify.Stats { return notify.Stats{Enqueued: 3, Delivered: 2, Pending: 1} }

	e := echo.New()
	e.GET("/healthz", NewHealthHandler(failingPinger{}, stats).Health)
	rec := do(e, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"encoladas":3`) {
		t.Fatalf("healthy: %d %s", rec.Code, rec.Body.String())
	}

	e = echo.New()
	e.GET("/healthz", NewHealthHandler(failingPinger{err: errors.New("down")}, nil).Health)
	if rec := do(e, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("db down: expected 503, got %d", rec.Code)
	}
}
