package model

// ReservationStats aggregates reservation counts for the admin dashboard.
type ReservationStats struct {
	Total        int            `json:"total"`
	Active       int            `json:"activas"`
	Inactive     int            `json:"inactivas"`
	ByStatus     map[string]int `json:"por_estado"`
	Revenue      float64        `json:"ingresos"`
	ByVenue      []VenueCount   `json:"por_salon"`
	Customers    int            `json:"clientes"`
	UpcomingWeek int            `json:"proximos_7_dias"`
}

// VenueCount is the number of active reservations of one venue.
type VenueCount struct {
	VenueID uint64  `json:"salon_id"`
	Title   string  `json:"titulo"`
	Count   int     `json:"reservas"`
	Revenue float64 `json:"ingresos"`
}
