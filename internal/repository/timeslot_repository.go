package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// TimeSlotRepo provides persistence for the turnos table.
type TimeSlotRepo struct {
	db *sql.DB
}

func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

const slotColumns = `turno_id, orden, hora_desde, hora_hasta, activo, creado, modificado`

func scanSlot(sc scanner, t *model.TimeSlot) error {
	return sc.Scan(&t.ID, &t.Order, &t.Start, &t.End, &t.Active, &t.CreatedAt, &t.UpdatedAt)
}

// List returns time slots in display order.
func (r *TimeSlotRepo) List(ctx context.Context, includeInactive bool) ([]model.TimeSlot, error) {
	q := `SELECT ` + slotColumns + ` FROM turnos`
	if !includeInactive {
		q += ` WHERE activo = 1`
	}
	q += ` ORDER BY orden, turno_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TimeSlot, 0)
	for rows.Next() {
		var t model.TimeSlot
		if err := scanSlot(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	var t model.TimeSlot
	if err := scanSlot(r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM turnos WHERE turno_id = ?`, id), &t); err != nil {
		return nil, noRows(err)
	}
	return &t, nil
}

func (r *TimeSlotRepo) Create(ctx context.Context, t *model.TimeSlot) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO turnos (orden, hora_desde, hora_hasta) VALUES (?, ?, ?)`,
		t.Order, t.Start, t.End)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanSlot(r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM turnos WHERE turno_id = ?`, id), t)
}

func (r *TimeSlotRepo) Update(ctx context.Context, t *model.TimeSlot) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE turnos SET orden = ?, hora_desde = ?, hora_hasta = ? WHERE turno_id = ?`,
		t.Order, t.Start, t.End, t.ID)
	return err
}

func (r *TimeSlotRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE turnos SET activo = 0 WHERE turno_id = ? AND activo = 1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
