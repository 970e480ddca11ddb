package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/queue"
	"github.com/iliyamo/venue-reservation/internal/repository"
)

// ReservationStore is the persistence used by ReservationService.
type ReservationStore interface {
	CreateWithAddOns(ctx context.Context, res *model.Reservation, addOns []model.ReservationAddOn) error
	Update(ctx context.Context, u repository.ReservationUpdate) error
	Get(ctx context.Context, id uint64, includeInactive bool) (*model.ReservationDetail, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationRow, int, error)
	ListAll(ctx context.Context) ([]model.ReservationRow, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.ReservationRow, error)
	Confirm(ctx context.Context, id uint64) (bool, error)
	SoftDelete(ctx context.Context, id uint64) (uint64, error)
}

// EventSink accepts reservation events without blocking.
type EventSink interface {
	Enqueue(ev queue.Event) bool
}

// CreateReservationInput is the body of POST /reservas.  Prices are never
// taken from the client.
type CreateReservationInput struct {
	Date       string   `json:"fecha_reserva" validate:"required"`
	VenueID    uint64   `json:"salon_id" validate:"required"`
	TimeSlotID uint64   `json:"turno_id" validate:"required"`
	UserID     uint64   `json:"usuario_id"`
	Theme      *string  `json:"tematica" validate:"omitempty,max=255"`
	Photo      *string  `json:"foto_cumpleaniero" validate:"omitempty,max=255"`
	AddOnIDs   []uint64 `json:"servicios" validate:"omitempty,dive,gt=0"`
}

// UpdateReservationInput is a partial update.  A non-nil AddOnIDs replaces
// the attached add-ons, an empty list removes them all.
type UpdateReservationInput struct {
	Date       *string                  `json:"fecha_reserva"`
	VenueID    *uint64                  `json:"salon_id" validate:"omitempty,gt=0"`
	TimeSlotID *uint64                  `json:"turno_id" validate:"omitempty,gt=0"`
	Theme      *string                  `json:"tematica" validate:"omitempty,max=255"`
	Photo      *string                  `json:"foto_cumpleaniero" validate:"omitempty,max=255"`
	Status     *model.ReservationStatus `json:"estado"`
	AddOnIDs   *[]uint64                `json:"servicios"`
}

// ListQuery selects one page of reservations.
type ListQuery struct {
	Page            int
	Limit           int
	Status          string
	UserID          uint64
	VenueID         uint64
	TimeSlotID      uint64
	Date            string
	SortField       string
	SortOrder       string
	IncludeInactive bool
}

// Pagination describes the page returned by List.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// ReservationPage is one page of denormalized reservations.
type ReservationPage struct {
	Items      []model.ReservationRow `json:"reservas"`
	Pagination Pagination             `json:"paginacion"`
}

const (
	defaultPageSize = 10
	maxPageSize     = 100

	msgReservationNotFound = "Reserva no encontrada"
	msgSlotTaken           = "El salón ya está reservado para esa fecha y turno"
	msgNotOwner            = "No puede acceder a reservas de otros usuarios"
	msgStatusChanged       = "La reserva cambió de estado mientras se editaba; vuelva a intentarlo"
)

// ReservationService enforces the booking rules: authoritative pricing,
// referential checks, status transitions and one active reservation per
// venue, date and time slot.
type ReservationService struct {
	reservations ReservationStore
	venues       VenueStore
	slots        TimeSlotStore
	addOns       AddOnStore
	users        UserStore
	events       EventSink
	log          *zap.Logger
	now          func() time.Time
}

func NewReservationService(
	reservations ReservationStore,
	venues VenueStore,
	slots TimeSlotStore,
	addOns AddOnStore,
	users UserStore,
	events EventSink,
	log *zap.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		venues:       venues,
		slots:        slots,
		addOns:       addOns,
		users:        users,
		events:       events,
		log:          log,
		now:          time.Now,
	}
}

// checkBookable validates a date that a reservation is about to take.
func (s *ReservationService) checkBookable(date string) error {
	if _, err := parseDate("fecha_reserva", date); err != nil {
		return err
	}
	if date < s.now().Format(model.DateLayout) {
		return apperr.Validation("Fecha inválida", "fecha_reserva no puede ser anterior a hoy")
	}
	return nil
}

func (s *ReservationService) activeVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "reservation.venue", err, "El salón no existe o está inactivo")
	}
	if !v.Active {
		return nil, apperr.NotFound("El salón no existe o está inactivo")
	}
	return v, nil
}

func (s *ReservationService) activeSlot(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	t, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "reservation.slot", err, "El turno no existe o está inactivo")
	}
	if !t.Active {
		return nil, apperr.NotFound("El turno no existe o está inactivo")
	}
	return t, nil
}

func (s *ReservationService) activeCustomer(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "reservation.user", err, "El usuario no existe o está inactivo")
	}
	if !u.Active {
		return nil, apperr.NotFound("El usuario no existe o está inactivo")
	}
	return u, nil
}

// resolveAddOns loads the requested add-ons and snapshots their prices.
// Repeated ids are collapsed; a missing or inactive id is NotFound.
func (s *ReservationService) resolveAddOns(ctx context.Context, ids []uint64) ([]model.ReservationAddOn, error) {
	uniq := make([]uint64, 0, len(ids))
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	if len(uniq) == 0 {
		return nil, nil
	}
	found, err := s.addOns.GetByIDs(ctx, uniq)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "reservation.addons", err)
	}
	byID := make(map[uint64]model.AddOn, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	out := make([]model.ReservationAddOn, 0, len(uniq))
	for _, id := range uniq {
		a, ok := byID[id]
		if !ok || !a.Active {
			return nil, apperr.NotFound(fmt.Sprintf("El servicio con id %d no existe o está inactivo", id))
		}
		out = append(out, model.ReservationAddOn{AddOnID: a.ID, Description: a.Description, Price: a.Price})
	}
	return out, nil
}

func total(venuePrice float64, addOns []model.ReservationAddOn) float64 {
	prices := make([]float64, len(addOns))
	for i, a := range addOns {
		prices[i] = a.Price
	}
	return model.SumAmounts(venuePrice, prices...)
}

func (s *ReservationService) mapWriteErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		return apperr.Conflict(msgSlotTaken)
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(msgReservationNotFound)
	case errors.Is(err, repository.ErrStatusChanged):
		return apperr.Conflict(msgStatusChanged)
	}
	return internal(logFor(ctx, s.log), op, err)
}

func (s *ReservationService) emit(ctx context.Context, t model.NotificationType, reservationID, userID uint64) {
	if s.events == nil {
		return
	}
	if !s.events.Enqueue(queue.NewEvent(t, reservationID, userID)) {
		logFor(ctx, s.log).Warn("reservation: notification not queued",
			zap.String("tipo", string(t)), zap.Uint64("reserva_id", reservationID))
	}
}

// Create books a venue.  Customers always book for themselves; staff book
// on behalf of the customer named in the input.
func (s *ReservationService) Create(ctx context.Context, actor Actor, in CreateReservationInput) (*model.ReservationDetail, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	switch {
	case in.UserID == 0:
		in.UserID = actor.UserID
	case in.UserID != actor.UserID && !actor.IsStaff():
		return nil, apperr.Forbidden("Solo puede crear reservas a su nombre")
	}
	if err := s.checkBookable(in.Date); err != nil {
		return nil, err
	}
	venue, err := s.activeVenue(ctx, in.VenueID)
	if err != nil {
		return nil, err
	}
	if _, err := s.activeSlot(ctx, in.TimeSlotID); err != nil {
		return nil, err
	}
	if _, err := s.activeCustomer(ctx, in.UserID); err != nil {
		return nil, err
	}
	addOns, err := s.resolveAddOns(ctx, in.AddOnIDs)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		Date:       in.Date,
		VenueID:    venue.ID,
		TimeSlotID: in.TimeSlotID,
		UserID:     in.UserID,
		Theme:      trimmed(in.Theme),
		Photo:      trimmed(in.Photo),
		VenuePrice: venue.Price,
		Total:      total(venue.Price, addOns),
		Status:     model.StatusPending,
	}
	if err := s.reservations.CreateWithAddOns(ctx, res, addOns); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("El salón no existe o está inactivo")
		}
		return nil, s.mapWriteErr(ctx, "reservation.create", err)
	}
	logFor(ctx, s.log).Info("reservation created",
		zap.Uint64("reserva_id", res.ID), zap.Uint64("usuario_id", res.UserID), zap.Float64("importe_total", res.Total))
	s.emit(ctx, model.NotifyReservationCreated, res.ID, res.UserID)
	return s.reload(ctx, res.ID)
}

func (s *ReservationService) reload(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	d, err := s.reservations.Get(ctx, id, false)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "reservation.reload", err, msgReservationNotFound)
	}
	return d, nil
}

// List returns a filtered, sorted page of reservations.
func (s *ReservationService) List(ctx context.Context, q ListQuery) (*ReservationPage, error) {
	var details []string
	if q.Page <= 0 {
		q.Page = 1
	}
	switch {
	case q.Limit <= 0:
		q.Limit = defaultPageSize
	case q.Limit > maxPageSize:
		q.Limit = maxPageSize
	}
	status := model.ReservationStatus(q.Status)
	if status != "" && !status.Valid() {
		details = append(details, "estado debe ser pendiente, confirmada, cancelada o completada")
	}
	if q.Date != "" {
		if _, err := parseDate("fecha", q.Date); err != nil {
			details = append(details, "fecha debe tener el formato AAAA-MM-DD")
		}
	}
	if q.SortField == "" {
		q.SortField = repository.DefaultReservationSort
	} else if !repository.ValidReservationSort(q.SortField) {
		details = append(details, "sortField no es un campo ordenable")
	}
	asc := false
	switch strings.ToUpper(q.SortOrder) {
	case "", "DESC":
	case "ASC":
		asc = true
	default:
		details = append(details, "sortOrder debe ser ASC o DESC")
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Parámetros de consulta inválidos", details...)
	}

	rows, n, err := s.reservations.List(ctx, repository.ReservationFilter{
		Status:          status,
		UserID:          q.UserID,
		VenueID:         q.VenueID,
		TimeSlotID:      q.TimeSlotID,
		Date:            q.Date,
		IncludeInactive: q.IncludeInactive,
		SortField:       q.SortField,
		SortAsc:         asc,
		Limit:           q.Limit,
		Offset:          (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "reservation.list", err)
	}
	pages := (n + q.Limit - 1) / q.Limit
	return &ReservationPage{
		Items:      rows,
		Pagination: Pagination{Total: n, Page: q.Page, Limit: q.Limit, TotalPages: pages},
	}, nil
}

// ListAll returns all active reservations, newest date first.
func (s *ReservationService) ListAll(ctx context.Context) ([]model.ReservationRow, error) {
	rows, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "reservation.list_all", err)
	}
	return rows, nil
}

// ListByUser returns a customer's active reservations.
func (s *ReservationService) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationRow, error) {
	rows, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "reservation.list_by_user", err)
	}
	return rows, nil
}

// Get returns one reservation with its add-ons.  Soft-deleted reservations
// are only visible to staff asking for includeInactive.
func (s *ReservationService) Get(ctx context.Context, actor Actor, id uint64, includeInactive bool) (*model.ReservationDetail, error) {
	d, err := s.reservations.Get(ctx, id, includeInactive && actor.IsStaff())
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "reservation.get", err, msgReservationNotFound)
	}
	if !actor.IsStaff() && d.UserID != actor.UserID {
		return nil, apperr.Forbidden(msgNotOwner)
	}
	return d, nil
}

// Update applies a partial update.  Prices are recomputed whenever the
// venue or the add-on list changes, and the add-on rows are replaced in the
// same transaction as the reservation row.
func (s *ReservationService) Update(ctx context.Context, id uint64, in UpdateReservationInput) (*model.ReservationDetail, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	cur, err := s.reservations.Get(ctx, id, false)
	if err != nil {
		return nil, notFoundOr(logFor(ctx, s.log), "reservation.update", err, msgReservationNotFound)
	}

	next := cur.Reservation
	moved, repriced := false, false

	if in.Date != nil && *in.Date != cur.Date {
		if err := s.checkBookable(*in.Date); err != nil {
			return nil, err
		}
		next.Date = *in.Date
		moved = true
	}
	if in.VenueID != nil && *in.VenueID != cur.VenueID {
		v, err := s.activeVenue(ctx, *in.VenueID)
		if err != nil {
			return nil, err
		}
		next.VenueID, next.VenuePrice = v.ID, v.Price
		moved, repriced = true, true
	}
	if in.TimeSlotID != nil && *in.TimeSlotID != cur.TimeSlotID {
		if _, err := s.activeSlot(ctx, *in.TimeSlotID); err != nil {
			return nil, err
		}
		next.TimeSlotID = *in.TimeSlotID
		moved = true
	}
	if in.Theme != nil {
		next.Theme = trimmed(in.Theme)
	}
	if in.Photo != nil {
		next.Photo = trimmed(in.Photo)
	}
	if in.Status != nil {
		st := model.ReservationStatus(strings.ToLower(string(*in.Status)))
		if !st.Valid() {
			return nil, apperr.Validation("Estado inválido", "estado debe ser pendiente, confirmada, cancelada o completada")
		}
		if !cur.Status.CanTransition(st) {
			return nil, apperr.Conflict(fmt.Sprintf("No se puede pasar una reserva de %s a %s", cur.Status, st))
		}
		next.Status = st
	}

	addOns := cur.AddOns
	if in.AddOnIDs != nil {
		if addOns, err = s.resolveAddOns(ctx, *in.AddOnIDs); err != nil {
			return nil, err
		}
		repriced = true
	}
	if repriced {
		next.Total = total(next.VenuePrice, addOns)
	}

	err = s.reservations.Update(ctx, repository.ReservationUpdate{
		Reservation:    &next,
		AddOns:         addOns,
		ReplaceAddOns:  in.AddOnIDs != nil,
		CheckSlot:      moved,
		ExpectedStatus: cur.Status,
	})
	if err != nil {
		return nil, s.mapWriteErr(ctx, "reservation.update", err)
	}

	kind := model.NotifyReservationUpdated
	if next.Status == model.StatusConfirmed && cur.Status != model.StatusConfirmed {
		kind = model.NotifyReservationConfirmed
	}
	s.emit(ctx, kind, id, cur.UserID)
	return s.reload(ctx, id)
}

// Confirm moves a pending reservation to confirmed.  Any other current
// status is a Conflict naming that status.
func (s *ReservationService) Confirm(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	ok, err := s.reservations.Confirm(ctx, id)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "reservation.confirm", err)
	}
	if !ok {
		cur, err := s.reservations.Get(ctx, id, false)
		if err != nil {
			return nil, notFoundOr(logFor(ctx, s.log), "reservation.confirm", err, msgReservationNotFound)
		}
		return nil, apperr.Conflict(fmt.Sprintf("La reserva ya está en estado %s", cur.Status))
	}
	d, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, model.NotifyReservationConfirmed, id, d.UserID)
	return d, nil
}

// Delete soft-deletes a reservation and returns its owner.  Customers may
// only delete their own reservations.
func (s *ReservationService) Delete(ctx context.Context, actor Actor, id uint64) (uint64, error) {
	if !actor.IsStaff() {
		cur, err := s.reservations.Get(ctx, id, false)
		if err != nil {
			return 0, notFoundOr(logFor(ctx, s.log), "reservation.delete", err, msgReservationNotFound)
		}
		if cur.UserID != actor.UserID {
			return 0, apperr.Forbidden(msgNotOwner)
		}
	}
	owner, err := s.reservations.SoftDelete(ctx, id)
	if err != nil {
		return 0, s.mapWriteErr(ctx, "reservation.delete", err)
	}
	s.emit(ctx, model.NotifyReservationCancelled, id, owner)
	return owner, nil
}
