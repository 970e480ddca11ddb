// Package queue carries reservation events over RabbitMQ.  The publisher
// and the consumer share the durable queue declared here.
package queue

import (
	"time"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// NotificationQueue is the durable queue holding reservation events.
const NotificationQueue = "reservas.notificaciones"

// Event is published after a reservation changes.  It only carries ids;
// consumers load the current reservation before notifying anyone.
type Event struct {
	Type          model.NotificationType `json:"tipo"`
	ReservationID uint64                 `json:"reserva_id"`
	UserID        uint64                 `json:"usuario_id"`
	OccurredAt    time.Time              `json:"ocurrido"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(t model.NotificationType, reservationID, userID uint64) Event {
	return Event{Type: t, ReservationID: reservationID, UserID: userID, OccurredAt: time.Now().UTC()}
}
