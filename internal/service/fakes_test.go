package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/queue"
	"github.com/iliyamo/venue-reservation/internal/repository"
)

// world is an in-memory database shared by the fake stores below.
type world struct {
	mu           sync.Mutex
	seq          uint64
	venues       map[uint64]*model.Venue
	slots        map[uint64]*model.TimeSlot
	addOns       map[uint64]*model.AddOn
	users        map[uint64]*model.User
	reservations map[uint64]*model.Reservation
	resAddOns    map[uint64][]model.ReservationAddOn
}

func newWorld() *world {
	return &world{
		venues:       map[uint64]*model.Venue{},
		slots:        map[uint64]*model.TimeSlot{},
		addOns:       map[uint64]*model.AddOn{},
		users:        map[uint64]*model.User{},
		reservations: map[uint64]*model.Reservation{},
		resAddOns:    map[uint64][]model.ReservationAddOn{},
	}
}

func (w *world) next() uint64 {
	w.seq++
	return w.seq
}

type venueStore struct{ *world }

func (s venueStore) List(_ context.Context, includeInactive bool) ([]model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Venue{}
	for _, v := range s.venues {
		if v.Active || includeInactive {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s venueStore) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s venueStore) Create(_ context.Context, v *model.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID, v.Active = s.next(), true
	cp := *v
	s.venues[v.ID] = &cp
	return nil
}

func (s venueStore) Update(_ context.Context, v *model.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.venues[v.ID] = &cp
	return nil
}

func (s venueStore) SoftDelete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok || !v.Active {
		return repository.ErrNotFound
	}
	v.Active = false
	return nil
}

func (s venueStore) Availability(_ context.Context, date string, slotID *uint64) ([]model.VenueAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.VenueAvailability{}
	for _, v := range s.venues {
		if !v.Active {
			continue
		}
		free := true
		for _, r := range s.reservations {
			if r.Active && r.VenueID == v.ID && r.Date == date && (slotID == nil || r.TimeSlotID == *slotID) {
				free = false
			}
		}
		out = append(out, model.VenueAvailability{Venue: *v, Available: free})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type slotStore struct{ *world }

func (s slotStore) List(_ context.Context, includeInactive bool) ([]model.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.TimeSlot{}
	for _, t := range s.slots {
		if t.Active || includeInactive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s slotStore) GetByID(_ context.Context, id uint64) (*model.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s slotStore) Create(_ context.Context, t *model.TimeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID, t.Active = s.next(), true
	cp := *t
	s.slots[t.ID] = &cp
	return nil
}

func (s slotStore) Update(_ context.Context, t *model.TimeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.slots[t.ID] = &cp
	return nil
}

func (s slotStore) SoftDelete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.slots[id]
	if !ok || !t.Active {
		return repository.ErrNotFound
	}
	t.Active = false
	return nil
}

type addOnStore struct{ *world }

func (s addOnStore) List(_ context.Context, includeInactive bool) ([]model.AddOn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.AddOn{}
	for _, a := range s.addOns {
		if a.Active || includeInactive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s addOnStore) GetByID(_ context.Context, id uint64) (*model.AddOn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addOns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s addOnStore) GetByIDs(_ context.Context, ids []uint64) ([]model.AddOn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.AddOn{}
	for _, id := range ids {
		if a, ok := s.addOns[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s addOnStore) Create(_ context.Context, a *model.AddOn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID, a.Active = s.next(), true
	cp := *a
	s.addOns[a.ID] = &cp
	return nil
}

func (s addOnStore) Update(_ context.Context, a *model.AddOn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.addOns[a.ID] = &cp
	return nil
}

func (s addOnStore) SoftDelete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addOns[id]
	if !ok || !a.Active {
		return repository.ErrNotFound
	}
	a.Active = false
	return nil
}

type userStore struct{ *world }

func (s userStore) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.User{}
	for _, u := range s.users {
		if u.Active || includeInactive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s userStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s userStore) GetByLogin(_ context.Context, login string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Login, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s userStore) loginTaken(login string, except uint64) bool {
	for _, u := range s.users {
		if u.ID != except && strings.EqualFold(u.Login, login) {
			return true
		}
	}
	return false
}

func (s userStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginTaken(u.Login, 0) {
		return repository.ErrDuplicate
	}
	u.ID = s.next()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s userStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginTaken(u.Login, u.ID) {
		return repository.ErrDuplicate
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s userStore) SoftDelete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.Active {
		return repository.ErrNotFound
	}
	u.Active = false
	return nil
}

type reservationStore struct{ *world }

func (s reservationStore) taken(r *model.Reservation) bool {
	for _, o := range s.reservations {
		if o.Active && o.ID != r.ID && o.VenueID == r.VenueID && o.Date == r.Date && o.TimeSlotID == r.TimeSlotID {
			return true
		}
	}
	return false
}

func (s reservationStore) CreateWithAddOns(_ context.Context, res *model.Reservation, addOns []model.ReservationAddOn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.venues[res.VenueID]; !ok {
		return repository.ErrNotFound
	}
	if s.taken(res) {
		return repository.ErrSlotTaken
	}
	res.ID, res.Active = s.next(), true
	cp := *res
	s.reservations[res.ID] = &cp
	rows := make([]model.ReservationAddOn, len(addOns))
	for i, a := range addOns {
		a.ReservationID = res.ID
		rows[i] = a
	}
	s.resAddOns[res.ID] = rows
	return nil
}

func (s reservationStore) Update(_ context.Context, u repository.ReservationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.reservations[u.Reservation.ID]
	if !ok || !cur.Active {
		return repository.ErrNotFound
	}
	if u.ExpectedStatus != "" && cur.Status != u.ExpectedStatus {
		return repository.ErrStatusChanged
	}
	if u.CheckSlot && s.taken(u.Reservation) {
		return repository.ErrSlotTaken
	}
	cp := *u.Reservation
	s.reservations[cp.ID] = &cp
	if u.ReplaceAddOns {
		rows := make([]model.ReservationAddOn, len(u.AddOns))
		for i, a := range u.AddOns {
			a.ReservationID = cp.ID
			rows[i] = a
		}
		s.resAddOns[cp.ID] = rows
	}
	return nil
}

func (s reservationStore) row(r *model.Reservation) model.ReservationRow {
	row := model.ReservationRow{Reservation: *r}
	if v, ok := s.venues[r.VenueID]; ok {
		row.VenueTitle, row.VenueAddress = v.Title, v.Address
	}
	if u, ok := s.users[r.UserID]; ok {
		row.CustomerName, row.CustomerLast, row.CustomerLogin = u.FirstName, u.LastName, u.Login
	}
	if t, ok := s.slots[r.TimeSlotID]; ok {
		row.SlotOrder, row.SlotStart, row.SlotEnd = t.Order, t.Start, t.End
	}
	return row
}

func (s reservationStore) Get(_ context.Context, id uint64, includeInactive bool) (*model.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok || (!r.Active && !includeInactive) {
		return nil, repository.ErrNotFound
	}
	addOns := append([]model.ReservationAddOn{}, s.resAddOns[id]...)
	return &model.ReservationDetail{ReservationRow: s.row(r), AddOns: addOns}, nil
}

func (s reservationStore) filter(keep func(*model.Reservation) bool) []model.ReservationRow {
	out := []model.ReservationRow{}
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, s.row(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].SlotOrder < out[j].SlotOrder
	})
	return out
}

func (s reservationStore) List(_ context.Context, f repository.ReservationFilter) ([]model.ReservationRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.filter(func(r *model.Reservation) bool {
		return (r.Active || f.IncludeInactive) &&
			(f.Status == "" || r.Status == f.Status) &&
			(f.UserID == 0 || r.UserID == f.UserID) &&
			(f.VenueID == 0 || r.VenueID == f.VenueID) &&
			(f.TimeSlotID == 0 || r.TimeSlotID == f.TimeSlotID) &&
			(f.Date == "" || r.Date == f.Date)
	})
	n := len(rows)
	if f.Offset >= n {
		return []model.ReservationRow{}, n, nil
	}
	end := f.Offset + f.Limit
	if end > n {
		end = n
	}
	return rows[f.Offset:end], n, nil
}

func (s reservationStore) ListAll(context.Context) ([]model.ReservationRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(r *model.Reservation) bool { return r.Active }), nil
}

func (s reservationStore) ListByUser(_ context.Context, userID uint64) ([]model.ReservationRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(r *model.Reservation) bool { return r.Active && r.UserID == userID }), nil
}

func (s reservationStore) Confirm(_ context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok || !r.Active || r.Status != model.StatusPending {
		return false, nil
	}
	r.Status = model.StatusConfirmed
	return true, nil
}

func (s reservationStore) SoftDelete(_ context.Context, id uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok || !r.Active {
		return 0, repository.ErrNotFound
	}
	r.Active = false
	return r.UserID, nil
}

// recordingSink captures events; accept=false simulates a full queue.
type recordingSink struct {
	mu     sync.Mutex
	events []queue.Event
	reject bool
}

func (s *recordingSink) Enqueue(ev queue.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject {
		return false
	}
	s.events = append(s.events, ev)
	return true
}

func (s *recordingSink) types() []model.NotificationType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.NotificationType, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Type
	}
	return out
}

// fixture wires every service to one world.
type fixture struct {
	w            *world
	sink         *recordingSink
	venues       *VenueService
	slots        *TimeSlotService
	addOns       *AddOnService
	users        *UserService
	auth         *AuthService
	reservations *ReservationService
	today        time.Time
}

func newFixture() *fixture {
	w := newWorld()
	log := zap.NewNop()
	sink := &recordingSink{}
	users := NewUserService(userStore{w}, 4, log)
	f := &fixture{
		w:      w,
		sink:   sink,
		venues: NewVenueService(venueStore{w}, slotStore{w}, log),
		slots:  NewTimeSlotService(slotStore{w}, log),
		addOns: NewAddOnService(addOnStore{w}, log),
		users:  users,
		auth:   NewAuthService(userStore{w}, users, "secret", 60, log),
		reservations: NewReservationService(
			reservationStore{w}, venueStore{w}, slotStore{w}, addOnStore{w}, userStore{w}, sink, log),
		today: time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	f.reservations.now = func() time.Time { return f.today }
	return f
}
