package notify

import (
	"context"
	"fmt"

	"github.com/iliyamo/venue-reservation/internal/model"
	"github.com/iliyamo/venue-reservation/internal/queue"
)

// ReservationReader loads a reservation, including soft-deleted ones.
type ReservationReader interface {
	Get(ctx context.Context, id uint64, includeInactive bool) (*model.ReservationDetail, error)
}

// StaffLister returns the ids of active staff and administrators.
type StaffLister interface {
	ListStaffIDs(ctx context.Context) ([]uint64, error)
}

// Writer persists notification rows.
type Writer interface {
	CreateMany(ctx context.Context, ns []model.Notification) error
}

// Notifier turns reservation events into notification rows.
type Notifier struct {
	reservations ReservationReader
	staff        StaffLister
	out          Writer
}

// NewNotifier wires a Notifier to its stores.
func NewNotifier(reservations ReservationReader, staff StaffLister, out Writer) *Notifier {
	return &Notifier{reservations: reservations, staff: staff, out: out}
}

// Handle writes one notification per recipient.  New reservations go to the
// customer and every active staff member; all other events go to the
// customer only.
func (n *Notifier) Handle(ctx context.Context, ev queue.Event) error {
	r, err := n.reservations.Get(ctx, ev.ReservationID, true)
	if err != nil {
		return fmt.Errorf("load reservation %d: %w", ev.ReservationID, err)
	}

	recipients := []uint64{r.UserID}
	if ev.Type == model.NotifyReservationCreated {
		ids, err := n.staff.ListStaffIDs(ctx)
		if err != nil {
			return fmt.Errorf("list staff: %w", err)
		}
		recipients = appendUnique(recipients, ids...)
	}

	title, msg := render(ev.Type, r)
	rows := make([]model.Notification, 0, len(recipients))
	for _, uid := range recipients {
		rows = append(rows, model.Notification{UserID: uid, Type: ev.Type, Title: title, Message: msg})
	}
	return n.out.CreateMany(ctx, rows)
}

func appendUnique(dst []uint64, ids ...uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(dst)+len(ids))
	for _, id := range dst {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}

func render(t model.NotificationType, r *model.ReservationDetail) (string, string) {
	when := fmt.Sprintf("%s de %s a %s", r.Date, r.SlotStart, r.SlotEnd)
	switch t {
	case model.NotifyReservationCreated:
		return "Nueva reserva",
			fmt.Sprintf("Reserva #%d de %s %s en %s para el %s. Total: $%.2f.",
				r.ID, r.CustomerName, r.CustomerLast, r.VenueTitle, when, r.Total)
	case model.NotifyReservationConfirmed:
		return "Reserva confirmada",
			fmt.Sprintf("Tu reserva #%d en %s para el %s fue confirmada.", r.ID, r.VenueTitle, when)
	case model.NotifyReservationCancelled:
		return "Reserva cancelada",
			fmt.Sprintf("Tu reserva #%d en %s para el %s fue cancelada.", r.ID, r.VenueTitle, when)
	default:
		return "Reserva actualizada",
			fmt.Sprintf("Tu reserva #%d en %s para el %s fue modificada. Estado: %s. Total: $%.2f.",
				r.ID, r.VenueTitle, when, r.Status, r.Total)
	}
}
