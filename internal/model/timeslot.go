package model

import "time"

// TimeSlot is a fixed daily window (table `turnos`).  Start and End keep the
// MySQL TIME text form, e.g. "14:00:00".
type TimeSlot struct {
	ID        uint64    `json:"turno_id"`
	Order     int       `json:"orden"`
	Start     string    `json:"hora_desde"`
	End       string    `json:"hora_hasta"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"creado"`
	UpdatedAt time.Time `json:"modificado"`
}
