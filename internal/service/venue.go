package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
)

// VenueStore is the persistence used by VenueService.
type VenueStore interface {
	List(ctx context.Context, includeInactive bool) ([]model.Venue, error)
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
	Create(ctx context.Context, v *model.Venue) error
	Update(ctx context.Context, v *model.Venue) error
	SoftDelete(ctx context.Context, id uint64) error
	Availability(ctx context.Context, date string, slotID *uint64) ([]model.VenueAvailability, error)
}

// VenueInput is the writable part of a venue.
type VenueInput struct {
	Title    string  `json:"titulo" validate:"required,max=255"`
	Address  string  `json:"direccion" validate:"required,max=255"`
	Capacity int     `json:"capacidad" validate:"gt=0"`
	Price    float64 `json:"importe" validate:"gt=0"`
}

func (in *VenueInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Address = strings.TrimSpace(in.Address)
}

// VenueService manages salones and answers availability queries.
type VenueService struct {
	venues VenueStore
	slots  TimeSlotStore
	log    *zap.Logger
}

func NewVenueService(venues VenueStore, slots TimeSlotStore, log *zap.Logger) *VenueService {
	return &VenueService{venues: venues, slots: slots, log: log}
}

const msgVenueNotFound = "Salón no encontrado"

func (s *VenueService) List(ctx context.Context, includeInactive bool) ([]model.Venue, error) {
	vs, err := s.venues.List(ctx, includeInactive)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "venue.list", err)
	}
	return vs, nil
}

// Get returns a venue; inactive venues are NotFound unless includeInactive.
func (s *VenueService) Get(ctx context.Context, id uint64, includeInactive bool) (*model.Venue, error) {
	v, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "venue.get", err, msgVenueNotFound)
	}
	if !v.Active && !includeInactive {
		return nil, apperr.NotFound(msgVenueNotFound)
	}
	return v, nil
}

func (s *VenueService) Create(ctx context.Context, in VenueInput) (*model.Venue, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	v := &model.Venue{Title: in.Title, Address: in.Address, Capacity: in.Capacity, Price: in.Price}
	if err := s.venues.Create(ctx, v); err != nil {
		return nil, internal(logFor(ctx, s.log), "venue.create", err)
	}
	return v, nil
}

func (s *VenueService) Update(ctx context.Context, id uint64, in VenueInput) (*model.Venue, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}
	v, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	v.Title, v.Address, v.Capacity, v.Price = in.Title, in.Address, in.Capacity, in.Price
	if err := s.venues.Update(ctx, v); err != nil {
		return nil, internal(logFor(ctx, s.log), "venue.update", err)
	}
	return s.Get(ctx, id, false)
}

// Delete soft-deletes a venue.  Existing reservations keep referencing it.
func (s *VenueService) Delete(ctx context.Context, id uint64) error {
	if err := s.venues.SoftDelete(ctx, id); err != nil {
		return notFoundOr(logFor(ctx, s.log), "venue.delete", err, msgVenueNotFound)
	}
	return nil
}

// Availability lists every active venue with whether it is free on date,
// optionally for one time slot.
func (s *VenueService) Availability(ctx context.Context, date string, slotID *uint64) ([]model.VenueAvailability, error) {
	if _, err := parseDate("fecha", date); err != nil {
		return nil, err
	}
	if slotID != nil {
		slot, err := s.slots.GetByID(ctx, *slotID)
		if err != nil {
			return nil, notFoundOr(logFor(ctx, s.log), "venue.availability", err, msgSlotNotFound)
		}
		if !slot.Active {
			return nil, apperr.NotFound(msgSlotNotFound)
		}
	}
	out, err := s.venues.Availability(ctx, date, slotID)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "venue.availability", err)
	}
	return out, nil
}
