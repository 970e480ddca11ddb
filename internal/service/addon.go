package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
)

// AddOnStore is the persistence used by AddOnService.
type AddOnStore interface {
	List(ctx context.Context, includeInactive bool) ([]model.AddOn, error)
	GetByID(ctx context.Context, id uint64) (*model.AddOn, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]model.AddOn, error)
	Create(ctx context.Context, a *model.AddOn) error
	Update(ctx context.Context, a *model.AddOn) error
	SoftDelete(ctx context.Context, id uint64) error
}

// AddOnInput is the writable part of an add-on service.
type AddOnInput struct {
	Description string  `json:"descripcion" validate:"required,max=255"`
	Price       float64 `json:"importe" validate:"gte=0"`
}

// AddOnService manages servicios.
type AddOnService struct {
	addOns AddOnStore
	log    *zap.Logger
}

func NewAddOnService(addOns AddOnStore, log *zap.Logger) *AddOnService {
	return &AddOnService{addOns: addOns, log: log}
}

const msgAddOnNotFound = "Servicio no encontrado"

func (s *AddOnService) List(ctx context.Context, includeInactive bool) ([]model.AddOn, error) {
	as, err := s.addOns.List(ctx, includeInactive)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "addon.list", err)
	}
	return as, nil
}

func (s *AddOnService) Get(ctx context.Context, id uint64, includeInactive bool) (*model.AddOn, error) {
	a, err := s.addOns.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "addon.get", err, msgAddOnNotFound)
	}
	if !a.Active && !includeInactive {
		return nil, apperr.NotFound(msgAddOnNotFound)
	}
	return a, nil
}

func (s *AddOnService) Create(ctx context.Context, in AddOnInput) (*model.AddOn, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	a := &model.AddOn{Description: in.Description, Price: in.Price}
	if err := s.addOns.Create(ctx, a); err != nil {
		return nil, internal(logFor(ctx, s.log), "addon.create", err)
	}
	return a, nil
}

func (s *AddOnService) Update(ctx context.Context, id uint64, in AddOnInput) (*model.AddOn, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	a.Description, a.Price = in.Description, in.Price
	if err := s.addOns.Update(ctx, a); err != nil {
		return nil, internal(logFor(ctx, s.log), "addon.update", err)
	}
	return s.Get(ctx, id, false)
}

func (s *AddOnService) Delete(ctx context.Context, id uint64) error {
	if err := s.addOns.SoftDelete(ctx, id); err != nil {
		return notFoundOr(logFor(ctx, s.log), "addon.delete", err, msgAddOnNotFound)
	}
	return nil
}
