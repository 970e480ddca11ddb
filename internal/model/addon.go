package model

import "time"

// AddOn is an optional priced service attachable to a reservation
// (table `servicios`).
type AddOn struct {
	ID          uint64    `json:"servicio_id"`
	Description string    `json:"descripcion"`
	Price       float64   `json:"importe"`
	Active      bool      `json:"activo"`
	CreatedAt   time.Time `json:"creado"`
	UpdatedAt   time.Time `json:"modificado"`
}
