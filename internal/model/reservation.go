package model

import "time"

// DateLayout is the wire and column format of reservation dates.
const DateLayout = "2006-01-02"

// Reservation records a booking of one venue and one time slot on one date
// for one customer.  VenuePrice and Total are snapshots taken when the
// reservation was priced.
//
// Fields:
//
//	ID         – primary key identifier.
//	Date       – reservation date, YYYY-MM-DD.
//	VenueID    – booked venue.
//	TimeSlotID – booked time slot.
//	UserID     – owning customer.
//	Theme      – optional party theme.
//	Photo      – optional photo reference.
//	VenuePrice – venue price at pricing time.
//	Total      – VenuePrice plus all attached add-on snapshots.
//	Status     – workflow stage.
//	Active     – soft-delete marker, orthogonal to Status.
type Reservation struct {
	ID         uint64            `json:"reserva_id"`
	Date       string            `json:"fecha_reserva"`
	VenueID    uint64            `json:"salon_id"`
	TimeSlotID uint64            `json:"turno_id"`
	UserID     uint64            `json:"usuario_id"`
	Theme      *string           `json:"tematica"`
	Photo      *string           `json:"foto_cumpleaniero"`
	VenuePrice float64           `json:"importe_salon"`
	Total      float64           `json:"importe_total"`
	Status     ReservationStatus `json:"estado"`
	Active     bool              `json:"activo"`
	CreatedAt  time.Time         `json:"creado"`
	UpdatedAt  time.Time         `json:"modificado"`
}

// ReservationAddOn links a reservation to an add-on with the add-on price
// captured when it was attached (table `reservas_servicios`).
type ReservationAddOn struct {
	ReservationID uint64  `json:"reserva_id"`
	AddOnID       uint64  `json:"servicio_id"`
	Description   string  `json:"descripcion,omitempty"`
	Price         float64 `json:"importe"`
}

// ReservationRow is the denormalized listing shape: the reservation joined
// with venue, customer and time-slot fields.
type ReservationRow struct {
	Reservation
	VenueTitle    string `json:"salon_titulo"`
	VenueAddress  string `json:"salon_direccion"`
	CustomerName  string `json:"usuario_nombre"`
	CustomerLast  string `json:"usuario_apellido"`
	CustomerLogin string `json:"nombre_usuario"`
	SlotOrder     int    `json:"turno_orden"`
	SlotStart     string `json:"hora_desde"`
	SlotEnd       string `json:"hora_hasta"`
}

// ReservationDetail is a denormalized reservation with its add-ons.
type ReservationDetail struct {
	ReservationRow
	AddOns []ReservationAddOn `json:"servicios"`
}
