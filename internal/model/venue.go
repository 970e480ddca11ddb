package model

import "time"

// Venue is a bookable hall (table `salones`).
type Venue struct {
	ID        uint64    `json:"salon_id"`   // salones.salon_id
	Title     string    `json:"titulo"`     // salones.titulo
	Address   string    `json:"direccion"`  // salones.direccion
	Capacity  int       `json:"capacidad"`  // salones.capacidad
	Price     float64   `json:"importe"`    // salones.importe
	Active    bool      `json:"activo"`     // salones.activo
	CreatedAt time.Time `json:"creado"`     // salones.creado
	UpdatedAt time.Time `json:"modificado"` // salones.modificado
}

// VenueAvailability annotates a venue with whether it is free for a date
// (and optionally a time slot).
type VenueAvailability struct {
	Venue
	Available bool `json:"disponible"`
}
