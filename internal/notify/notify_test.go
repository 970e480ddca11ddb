package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/queue"
)

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(func(context.Context, queue.Event) error { return nil },
		Options{Workers: 1, Buffer: 1}, zap.NewNop())

	if !q.Enqueue(queue.NewEvent(model.NotifyReservationCreated, 1, 1)) {
		t.Fatal("first event should fit")
	}
	if q.Enqueue(queue.NewEvent(model.NotifyReservationCreated, 2, 1)) {
		t.Fatal("second event should be dropped")
	}
	st := q.Stats()
	if st.Enqueued != 1 || st.Dropped != 1 || st.Pending != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}

	q.Start()
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if st := q.Stats(); st.Delivered != 1 {
		t.Fatalf("expected queued event to be drained, got %+v", st)
	}
}

func TestQueueCountsFailuresAndPanics(t *testing.T) {
	q := NewQueue(func(_ context.Context, ev queue.Event) error {
		switch ev.ReservationID {
		case 1:
			return errors.New("db down")
		case 2:
			panic("boom")
		}
		return nil
	}, Options{Workers: 2, Buffer: 8}, zap.NewNop())
	q.Start()

	for id := uint64(1); id <= 3; id++ {
		q.Enqueue(queue.NewEvent(model.NotifyReservationUpdated, id, 1))
	}
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	st := q.Stats()
	if st.Failed != 2 || st.Delivered != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if q.Enqueue(queue.NewEvent(model.NotifyReservationUpdated, 4, 1)) {
		t.Fatal("closed queue must reject events")
	}
}

func TestShutdownHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue(func(ctx context.Context, _ queue.Event) error {
		<-release
		return nil
	}, Options{Workers: 1, Buffer: 2}, zap.NewNop())
	q.Start()
	q.Enqueue(queue.NewEvent(model.NotifyReservationCreated, 1, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	close(release)
}

type fakeReservations struct{ detail *model.ReservationDetail }

func (f fakeReservations) Get(_ context.Context, id uint64, includeInactive bool) (*model.ReservationDetail, error) {
	if f.detail == nil || f.detail.ID != id || !includeInactive {
		return nil, errors.New("not found")
	}
	return f.detail, nil
}

type fakeStaff []uint64

func (f fakeStaff) ListStaffIDs(context.Context) ([]uint64, error) { return f, nil }

type captureWriter struct {
	mu   sync.Mutex
	rows []model.Notification
}

func (w *captureWriter) CreateMany(_ context.Context, ns []model.Notification) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, ns...)
	return nil
}

func detail(id, userID uint64) *model.ReservationDetail {
	d := &model.ReservationDetail{}
	d.ID = id
	d.UserID = userID
	d.Date = "2030-01-15"
	d.VenueTitle = "Salón Azul"
	d.Status = model.StatusPending
	d.Total = 1250
	return d
}

func TestNotifierCreatedFansOutToStaff(t *testing.T) {
	w := &captureWriter{}
	// user 9 is both customer and staff and must be notified once
	n := NewNotifier(fakeReservations{detail(4, 9)}, fakeStaff{2, 9, 3}, w)

	if err := n.Handle(context.Background(), queue.NewEvent(model.NotifyReservationCreated, 4, 9)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(w.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(w.rows))
	}
	got := map[uint64]bool{}
	for _, r := range w.rows {
		got[r.UserID] = true
		if r.Type != model.NotifyReservationCreated || r.Title == "" || r.Message == "" {
			t.Fatalf("incomplete notification %+v", r)
		}
	}
	for _, id := range []uint64{9, 2, 3} {
		if !got[id] {
			t.Fatalf("user %d not notified", id)
		}
	}
}

func TestNotifierCancelledGoesToCustomerOnly(t *testing.T) {
	w := &captureWriter{}
	n := NewNotifier(fakeReservations{detail(4, 9)}, fakeStaff{2, 3}, w)

	if err := n.Handle(context.Background(), queue.NewEvent(model.NotifyReservationCancelled, 4, 9)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(w.rows) != 1 || w.rows[0].UserID != 9 {
		t.Fatalf("expected a single row for the customer, got %+v", w.rows)
	}
}
