package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// AddOnRepo provides persistence for the servicios table.
type AddOnRepo struct {
	db *sql.DB
}

func NewAddOnRepo(db *sql.DB) *AddOnRepo { return &AddOnRepo{db: db} }

const addOnColumns = `servicio_id, descripcion, importe, activo, creado, modificado`

func scanAddOn(sc scanner, a *model.AddOn) error {
	return sc.Scan(&a.ID, &a.Description, &a.Price, &a.Active, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AddOnRepo) List(ctx context.Context, includeInactive bool) ([]model.AddOn, error) {
	q := `SELECT ` + addOnColumns + ` FROM servicios`
	if !includeInactive {
		q += ` WHERE activo = 1`
	}
	q += ` ORDER BY servicio_id`
	return r.query(ctx, q)
}

func (r *AddOnRepo) GetByID(ctx context.Context, id uint64) (*model.AddOn, error) {
	var a model.AddOn
	if err := scanAddOn(r.db.QueryRowContext(ctx, `SELECT `+addOnColumns+` FROM servicios WHERE servicio_id = ?`, id), &a); err != nil {
		return nil, noRows(err)
	}
	return &a, nil
}

// GetByIDs loads the given add-ons regardless of active flag.  Ids with no
// row are simply absent from the result.
func (r *AddOnRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.AddOn, error) {
	if len(ids) == 0 {
		return []model.AddOn{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT ` + addOnColumns + ` FROM servicios WHERE servicio_id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	return r.query(ctx, q, args...)
}

func (r *AddOnRepo) Create(ctx context.Context, a *model.AddOn) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO servicios (descripcion, importe) VALUES (?, ?)`, a.Description, a.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanAddOn(r.db.QueryRowContext(ctx, `SELECT `+addOnColumns+` FROM servicios WHERE servicio_id = ?`, id), a)
}

func (r *AddOnRepo) Update(ctx context.Context, a *model.AddOn) error {
	_, err := r.db.ExecContext(ctx, `UPDATE servicios SET descripcion = ?, importe = ? WHERE servicio_id = ?`, a.Description, a.Price, a.ID)
	return err
}

func (r *AddOnRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE servicios SET activo = 0 WHERE servicio_id = ? AND activo = 1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AddOnRepo) query(ctx context.Context, q string, args ...any) ([]model.AddOn, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AddOn, 0)
	for rows.Next() {
		var a model.AddOn
		if err := scanAddOn(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
