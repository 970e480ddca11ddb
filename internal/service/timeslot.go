package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
)

// TimeSlotStore is the persistence used by TimeSlotService.
type TimeSlotStore interface {
	List(ctx context.Context, includeInactive bool) ([]model.TimeSlot, error)
	GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error)
	Create(ctx context.Context, t *model.TimeSlot) error
	Update(ctx context.Context, t *model.TimeSlot) error
	SoftDelete(ctx context.Context, id uint64) error
}

// TimeSlotInput is the writable part of a time slot.  Times are HH:MM or
// HH:MM:SS.
type TimeSlotInput struct {
	Order int    `json:"orden" validate:"gt=0"`
	Start string `json:"hora_desde" validate:"required"`
	End   string `json:"hora_hasta" validate:"required"`
}

// TimeSlotService manages turnos.  Several slots may share an order value.
type TimeSlotService struct {
	slots TimeSlotStore
	log   *zap.Logger
}

func NewTimeSlotService(slots TimeSlotStore, log *zap.Logger) *TimeSlotService {
	return &TimeSlotService{slots: slots, log: log}
}

const msgSlotNotFound = "Turno no encontrado"

// parseClock reads a wall-clock time on a fixed reference date.
func parseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// checkHours validates both times and returns them as HH:MM:SS.
func checkHours(in TimeSlotInput) (string, string, error) {
	var details []string
	start, okStart := parseClock(in.Start)
	end, okEnd := parseClock(in.End)
	if !okStart {
		details = append(details, "hora_desde debe tener el formato HH:MM")
	}
	if !okEnd {
		details = append(details, "hora_hasta debe tener el formato HH:MM")
	}
	if okStart && okEnd && !end.After(start) {
		details = append(details, "hora_hasta debe ser posterior a hora_desde")
	}
	if len(details) > 0 {
		return "", "", apperr.Validation("Datos inválidos", details...)
	}
	return start.Format("15:04:05"), end.Format("15:04:05"), nil
}

func (s *TimeSlotService) List(ctx context.Context, includeInactive bool) ([]model.TimeSlot, error) {
	ts, err := s.slots.List(ctx, includeInactive)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "timeslot.list", err)
	}
	return ts, nil
}

func (s *TimeSlotService) Get(ctx context.Context, id uint64, includeInactive bool) (*model.TimeSlot, error) {
	t, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "timeslot.get", err, msgSlotNotFound)
	}
	if !t.Active && !includeInactive {
		return nil, apperr.NotFound(msgSlotNotFound)
	}
	return t, nil
}

func (s *TimeSlotService) Create(ctx context.Context, in TimeSlotInput) (*model.TimeSlot, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	start, end, err := checkHours(in)
	if err != nil {
		return nil, err
	}
	t := &model.TimeSlot{Order: in.Order, Start: start, End: end}
	if err := s.slots.Create(ctx, t); err != nil {
		return nil, internal(logFor(ctx, s.log), "timeslot.create", err)
	}
	return t, nil
}

func (s *TimeSlotService) Update(ctx context.Context, id uint64, in TimeSlotInput) (*model.TimeSlot, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	start, end, err := checkHours(in)
	if err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	t.Order, t.Start, t.End = in.Order, start, end
	if err := s.slots.Update(ctx, t); err != nil {
		return nil, internal(logFor(ctx, s.log), "timeslot.update", err)
	}
	return s.Get(ctx, id, false)
}

func (s *TimeSlotService) Delete(ctx context.Context, id uint64) error {
	if err := s.slots.SoftDelete(ctx, id); err != nil {
		return notFoundOr(logFor(ctx, s.log), "timeslot.delete", err, msgSlotNotFound)
	}
	return nil
}
