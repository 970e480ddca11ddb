package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// VenueRepo provides persistence for the salones table.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = `salon_id, titulo, direccion, capacidad, importe, activo, creado, modificado`

func scanVenue(sc scanner, v *model.Venue) error {
	return sc.Scan(&v.ID, &v.Title, &v.Address, &v.Capacity, &v.Price, &v.Active, &v.CreatedAt, &v.UpdatedAt)
}

// List returns venues ordered by id.  Inactive venues are included only
// when includeInactive is true.
func (r *VenueRepo) List(ctx context.Context, includeInactive bool) ([]model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM salones`
	if !includeInactive {
		q += ` WHERE activo = 1`
	}
	q += ` ORDER BY salon_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Venue, 0)
	for rows.Next() {
		var v model.Venue
		if err := scanVenue(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByID retrieves a venue regardless of its active flag.  It returns
// ErrNotFound when no row matches.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	err := scanVenue(r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM salones WHERE salon_id = ?`, id), &v)
	if err != nil {
		return nil, noRows(err)
	}
	return &v, nil
}

// Create inserts a venue and reloads it so timestamps and defaults are set.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO salones (titulo, direccion, capacidad, importe) VALUES (?, ?, ?, ?)`,
		v.Title, v.Address, v.Capacity, v.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanVenue(r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM salones WHERE salon_id = ?`, id), v)
}

// Update overwrites the editable columns of a venue.  Existence is checked
// by the caller; MySQL reports zero affected rows for unchanged values.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE salones SET titulo = ?, direccion = ?, capacidad = ?, importe = ? WHERE salon_id = ?`,
		v.Title, v.Address, v.Capacity, v.Price, v.ID)
	return err
}

// SoftDelete marks an active venue inactive.  ErrNotFound is returned when
// the venue does not exist or is already inactive.
func (r *VenueRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE salones SET activo = 0 WHERE salon_id = ? AND activo = 1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Availability lists active venues and whether each one is free on date.
// When slotID is non-nil only reservations of that time slot count.
// Soft-deleted reservations never block a venue.
func (r *VenueRepo) Availability(ctx context.Context, date string, slotID *uint64) ([]model.VenueAvailability, error) {
	q := `SELECT ` + venueColumns + `,
	             NOT EXISTS (
	                 SELECT 1 FROM reservas rv
	                 WHERE rv.salon_id = salones.salon_id
	                   AND rv.fecha_reserva = ?
	                   AND rv.activo = 1`
	args := []any{date}
	if slotID != nil {
		q += ` AND rv.turno_id = ?`
		args = append(args, *slotID)
	}
	q += `) AS disponible
	      FROM salones
	      WHERE activo = 1
	      ORDER BY salon_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.VenueAvailability, 0)
	for rows.Next() {
		var va model.VenueAvailability
		v := &va.Venue
		if err := rows.Scan(&v.ID, &v.Title, &v.Address, &v.Capacity, &v.Price, &v.Active, &v.CreatedAt, &v.UpdatedAt, &va.Available); err != nil {
			return nil, err
		}
		out = append(out, va)
	}
	return out, rows.Err()
}
