package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// UserRepo provides persistence for the usuarios table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `usuario_id, nombre, apellido, nombre_usuario, contrasenia, tipo_usuario, celular, foto, activo, creado, modificado`

func scanUser(sc scanner, u *model.User) error {
	var (
		role         uint8
		phone, photo sql.NullString
	)
	if err := sc.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Login, &u.PasswordHash, &role, &phone, &photo, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.Role = model.Role(role)
	u.Phone = fromNull(phone)
	u.Photo = fromNull(photo)
	return nil
}

func normalizeLogin(login string) string { return strings.ToLower(strings.TrimSpace(login)) }

// List returns users ordered by last and first name.
func (r *UserRepo) List(ctx context.Context, includeInactive bool) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM usuarios`
	if !includeInactive {
		q += ` WHERE activo = 1`
	}
	q += ` ORDER BY apellido, nombre, usuario_id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID fetches a user by id regardless of the active flag.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE usuario_id = ? LIMIT 1`, id), &u); err != nil {
		return nil, noRows(err)
	}
	return &u, nil
}

// GetByLogin fetches a user by normalized login identifier.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE nombre_usuario = ? LIMIT 1`, normalizeLogin(login)), &u); err != nil {
		return nil, noRows(err)
	}
	return &u, nil
}

// Create inserts a user.  The password must already be hashed.  A
// duplicate login yields ErrDuplicate and no row is written.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Login = normalizeLogin(u.Login)
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO usuarios (nombre, apellido, nombre_usuario, contrasenia, tipo_usuario, celular, foto) VALUES (?,?,?,?,?,?,?)`,
		u.FirstName, u.LastName, u.Login, u.PasswordHash, uint8(u.Role), nullable(u.Phone), nullable(u.Photo))
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE usuario_id = ?`, id), u)
}

// Update overwrites profile columns, role, active flag and password hash.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Login = normalizeLogin(u.Login)
	_, err := r.DB.ExecContext(ctx,
		`UPDATE usuarios
		 SET nombre = ?, apellido = ?, nombre_usuario = ?, contrasenia = ?, tipo_usuario = ?, celular = ?, foto = ?, activo = ?
		 WHERE usuario_id = ?`,
		u.FirstName, u.LastName, u.Login, u.PasswordHash, uint8(u.Role), nullable(u.Phone), nullable(u.Photo), u.Active, u.ID)
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// SoftDelete marks an active user inactive.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE usuarios SET activo = 0 WHERE usuario_id = ? AND activo = 1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStaffIDs returns the ids of every active employee and administrator.
func (r *UserRepo) ListStaffIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT usuario_id FROM usuarios WHERE activo = 1 AND tipo_usuario IN (?, ?) ORDER BY usuario_id`,
		uint8(model.RoleStaff), uint8(model.RoleAdmin))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
