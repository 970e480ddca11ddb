package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/venue-reservation/internal/database"
	"github.com/iliyamo/venue-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and their attached
// add-ons.  Writes that touch both tables run in a single transaction and
// take a row lock on the venue so that two bookings of the same venue are
// serialized.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationFilter narrows and orders a paginated listing.  Zero values
// mean "no filter".
type ReservationFilter struct {
	Status          model.ReservationStatus
	UserID          uint64
	VenueID         uint64
	TimeSlotID      uint64
	Date            string
	IncludeInactive bool
	SortField       string
	SortAsc         bool
	Limit           int
	Offset          int
}

// reservationSortColumns whitelists the sortable fields.  Only values from
// this map are ever interpolated into SQL.
var reservationSortColumns = map[string]string{
	"fecha_reserva": "r.fecha_reserva",
	"importe_total": "r.importe_total",
	"estado":        "r.estado",
	"creado":        "r.creado",
	"reserva_id":    "r.reserva_id",
	"salon":         "s.titulo",
}

// DefaultReservationSort is used when the requested field is unknown.
const DefaultReservationSort = "fecha_reserva"

// ValidReservationSort reports whether field may be used for ordering.
func ValidReservationSort(field string) bool {
	_, ok := reservationSortColumns[field]
	return ok
}

const reservationRowSelect = `SELECT r.reserva_id, r.fecha_reserva, r.salon_id, r.turno_id, r.usuario_id,
       r.tematica, r.foto_cumpleaniero, r.importe_salon, r.importe_total, r.estado, r.activo,
       r.creado, r.modificado,
       s.titulo, s.direccion, u.nombre, u.apellido, u.nombre_usuario,
       t.orden, t.hora_desde, t.hora_hasta
FROM reservas r
JOIN salones s ON s.salon_id = r.salon_id
JOIN usuarios u ON u.usuario_id = r.usuario_id
JOIN turnos t ON t.turno_id = r.turno_id`

func scanReservationRow(sc scanner) (model.ReservationRow, error) {
	var (
		row          model.ReservationRow
		date         time.Time
		theme, photo sql.NullString
		status       string
	)
	res := &row.Reservation
	err := sc.Scan(&res.ID, &date, &res.VenueID, &res.TimeSlotID, &res.UserID,
		&theme, &photo, &res.VenuePrice, &res.Total, &status, &res.Active,
		&res.CreatedAt, &res.UpdatedAt,
		&row.VenueTitle, &row.VenueAddress, &row.CustomerName, &row.CustomerLast, &row.CustomerLogin,
		&row.SlotOrder, &row.SlotStart, &row.SlotEnd)
	if err != nil {
		return row, err
	}
	res.Date = formatDate(date)
	res.Theme = fromNull(theme)
	res.Photo = fromNull(photo)
	res.Status = model.ReservationStatus(status)
	return row, nil
}

func (r *ReservationRepo) queryRows(ctx context.Context, q string, args ...any) ([]model.ReservationRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ReservationRow, 0)
	for rows.Next() {
		row, err := scanReservationRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CreateWithAddOns inserts a reservation and its add-on rows atomically.
// ErrNotFound is returned when the venue row is missing and ErrSlotTaken
// when an active reservation already holds the venue, date and time slot.
// On success res.ID is set.
func (r *ReservationRepo) CreateWithAddOns(ctx context.Context, res *model.Reservation, addOns []model.ReservationAddOn) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockVenueTx(ctx, tx, res.VenueID); err != nil {
			return err
		}
		taken, err := slotTakenTx(ctx, tx, res.VenueID, res.Date, res.TimeSlotID, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
		if err := r.CreateTx(ctx, tx, res); err != nil {
			return err
		}
		return r.CreateAddOnsBulkTx(ctx, tx, res.ID, addOns)
	})
}

// ReservationUpdate describes a full-row rewrite of an existing reservation.
// When ReplaceAddOns is set the attached add-ons are deleted and AddOns is
// inserted in their place.  CheckSlot re-runs the double-booking check, which
// is needed whenever venue, date or time slot change.  ExpectedStatus, when
// set, is the status the caller based its changes on.
type ReservationUpdate struct {
	Reservation    *model.Reservation
	AddOns         []model.ReservationAddOn
	ReplaceAddOns  bool
	CheckSlot      bool
	ExpectedStatus model.ReservationStatus
}

// Update applies u inside a transaction.  ErrNotFound is returned when the
// reservation is absent or soft-deleted, and ErrStatusChanged when its
// stored status no longer matches u.ExpectedStatus.
func (r *ReservationRepo) Update(ctx context.Context, u ReservationUpdate) error {
	res := u.Reservation
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			active bool
			status string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT activo, estado FROM reservas WHERE reserva_id = ? FOR UPDATE`, res.ID).Scan(&active, &status)
		if err != nil {
			return noRows(err)
		}
		if !active {
			return ErrNotFound
		}
		if u.ExpectedStatus != "" && model.ReservationStatus(status) != u.ExpectedStatus {
			return ErrStatusChanged
		}
		if u.CheckSlot {
			if err := lockVenueTx(ctx, tx, res.VenueID); err != nil {
				return err
			}
			taken, err := slotTakenTx(ctx, tx, res.VenueID, res.Date, res.TimeSlotID, res.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotTaken
			}
		}
		const q = `UPDATE reservas
		           SET fecha_reserva = ?, salon_id = ?, turno_id = ?, tematica = ?, foto_cumpleaniero = ?,
		               importe_salon = ?, importe_total = ?, estado = ?
		           WHERE reserva_id = ?`
		if _, err := tx.ExecContext(ctx, q,
			res.Date, res.VenueID, res.TimeSlotID, nullable(res.Theme), nullable(res.Photo),
			res.VenuePrice, res.Total, string(res.Status), res.ID); err != nil {
			return err
		}
		if !u.ReplaceAddOns {
			return nil
		}
		if err := r.DeleteAddOnsTx(ctx, tx, res.ID); err != nil {
			return err
		}
		return r.CreateAddOnsBulkTx(ctx, tx, res.ID, u.AddOns)
	})
}

// CreateTx inserts a reservation row within an existing transaction and
// populates res.ID.  Status defaults to pending when empty.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if res.Status == "" {
		res.Status = model.StatusPending
	}
	const q = `INSERT INTO reservas
	           (fecha_reserva, salon_id, usuario_id, turno_id, foto_cumpleaniero, tematica, importe_salon, importe_total, estado)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.Date, res.VenueID, res.UserID, res.TimeSlotID, nullable(res.Photo), nullable(res.Theme),
		res.VenuePrice, res.Total, string(res.Status))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Active = true
	return nil
}

// CreateAddOnsBulkTx inserts add-on rows for a reservation in a single
// statement.  Passing an empty slice has no effect.
func (r *ReservationRepo) CreateAddOnsBulkTx(ctx context.Context, tx *sql.Tx, reservationID uint64, addOns []model.ReservationAddOn) error {
	if len(addOns) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO reservas_servicios (reserva_id, servicio_id, importe) VALUES `)
	args := make([]any, 0, len(addOns)*3)
	for i, a := range addOns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?)")
		args = append(args, reservationID, a.AddOnID, a.Price)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}

// DeleteAddOnsTx removes every add-on row of a reservation.
func (r *ReservationRepo) DeleteAddOnsTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservas_servicios WHERE reserva_id = ?`, reservationID)
	return err
}

func lockVenueTx(ctx context.Context, tx *sql.Tx, venueID uint64) error {
	var id uint64
	err := tx.QueryRowContext(ctx, `SELECT salon_id FROM salones WHERE salon_id = ? FOR UPDATE`, venueID).Scan(&id)
	return noRows(err)
}

// slotTakenTx reports whether another active reservation holds the venue on
// date for the time slot.  excludeID skips the reservation being edited.
func slotTakenTx(ctx context.Context, tx *sql.Tx, venueID uint64, date string, slotID, excludeID uint64) (bool, error) {
	const q = `SELECT reserva_id FROM reservas
	           WHERE salon_id = ? AND fecha_reserva = ? AND turno_id = ? AND activo = 1 AND reserva_id <> ?
	           LIMIT 1`
	var id uint64
	err := tx.QueryRowContext(ctx, q, venueID, date, slotID, excludeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns one reservation with venue, customer and time-slot fields and
// its attached add-ons.  Soft-deleted reservations are only returned when
// includeInactive is set; otherwise ErrNotFound.
func (r *ReservationRepo) Get(ctx context.Context, id uint64, includeInactive bool) (*model.ReservationDetail, error) {
	q := reservationRowSelect + ` WHERE r.reserva_id = ?`
	if !includeInactive {
		q += ` AND r.activo = 1`
	}
	row, err := scanReservationRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, noRows(err)
	}
	addOns, err := r.AddOns(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.ReservationDetail{ReservationRow: row, AddOns: addOns}, nil
}

// AddOns lists the add-ons attached to a reservation with their snapshot
// prices.
func (r *ReservationRepo) AddOns(ctx context.Context, reservationID uint64) ([]model.ReservationAddOn, error) {
	const q = `SELECT rs.reserva_id, rs.servicio_id, sv.descripcion, rs.importe
	           FROM reservas_servicios rs
	           JOIN servicios sv ON sv.servicio_id = rs.servicio_id
	           WHERE rs.reserva_id = ?
	           ORDER BY rs.reserva_servicio_id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ReservationAddOn, 0)
	for rows.Next() {
		var a model.ReservationAddOn
		if err := rows.Scan(&a.ReservationID, &a.AddOnID, &a.Description, &a.Price); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// List returns one page of reservations matching f and the total number of
// matching rows.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.ReservationRow, int, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeInactive {
		where = append(where, "r.activo = 1")
	}
	if f.Status != "" {
		where = append(where, "r.estado = ?")
		args = append(args, string(f.Status))
	}
	if f.UserID != 0 {
		where = append(where, "r.usuario_id = ?")
		args = append(args, f.UserID)
	}
	if f.VenueID != 0 {
		where = append(where, "r.salon_id = ?")
		args = append(args, f.VenueID)
	}
	if f.TimeSlotID != 0 {
		where = append(where, "r.turno_id = ?")
		args = append(args, f.TimeSlotID)
	}
	if f.Date != "" {
		where = append(where, "r.fecha_reserva = ?")
		args = append(args, f.Date)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservas r`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := reservationSortColumns[f.SortField]
	if !ok {
		col = reservationSortColumns[DefaultReservationSort]
	}
	dir := "DESC"
	if f.SortAsc {
		dir = "ASC"
	}
	q := reservationRowSelect + cond + ` ORDER BY ` + col + ` ` + dir + `, t.orden ASC, r.reserva_id ASC LIMIT ? OFFSET ?`
	rows, err := r.queryRows(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every active reservation, newest date first and then by
// time-slot order.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.ReservationRow, error) {
	return r.queryRows(ctx, reservationRowSelect+` WHERE r.activo = 1 ORDER BY r.fecha_reserva DESC, t.orden ASC, r.reserva_id ASC`)
}

// ListByUser returns a customer's active reservations.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationRow, error) {
	return r.queryRows(ctx, reservationRowSelect+` WHERE r.activo = 1 AND r.usuario_id = ? ORDER BY r.fecha_reserva DESC, t.orden ASC, r.reserva_id ASC`, userID)
}

// Confirm moves an active pending reservation to confirmed.  It reports
// false when no row was in a confirmable state, leaving the caller to find
// out why.
func (r *ReservationRepo) Confirm(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservas SET estado = ? WHERE reserva_id = ? AND activo = 1 AND estado = ?`,
		string(model.StatusConfirmed), id, string(model.StatusPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SoftDelete marks an active reservation inactive and returns its owner.
// The status column and the add-on rows are left untouched.
func (r *ReservationRepo) SoftDelete(ctx context.Context, id uint64) (uint64, error) {
	var userID uint64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var active bool
		if err := tx.QueryRowContext(ctx,
			`SELECT usuario_id, activo FROM reservas WHERE reserva_id = ? FOR UPDATE`, id).Scan(&userID, &active); err != nil {
			return noRows(err)
		}
		if !active {
			return ErrNotFound
		}
		_, err := tx.ExecContext(ctx, `UPDATE reservas SET activo = 0 WHERE reserva_id = ?`, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}
