package model

import "time"

// NotificationType tags a notification row.
type NotificationType string

const (
	NotifyReservationCreated   NotificationType = "reserva_creada"
	NotifyReservationConfirmed NotificationType = "reserva_confirmada"
	NotifyReservationUpdated   NotificationType = "reserva_actualizada"
	NotifyReservationCancelled NotificationType = "reserva_cancelada"
)

// Notification is an in-app message for one user.  Rows are append-only
// except for the read flag.
type Notification struct {
	ID        uint64           `json:"notificacion_id"`
	UserID    uint64           `json:"usuario_id"`
	Type      NotificationType `json:"tipo"`
	Title     string           `json:"titulo"`
	Message   string           `json:"mensaje"`
	Read      bool             `json:"leida"`
	CreatedAt time.Time        `json:"creado"`
}
