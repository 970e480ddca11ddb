package model

// ReservationStatus is the workflow stage of a reservation.  It is
// independent of the soft-delete flag.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pendiente"
	StatusConfirmed ReservationStatus = "confirmada"
	StatusCancelled ReservationStatus = "cancelada"
	StatusCompleted ReservationStatus = "completada"
)

// transitions lists the statuses reachable from each status.  Cancelled and
// completed are terminal.
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a reservation in status s may move to next.
// Re-setting the current status is allowed and is a no-op.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}
