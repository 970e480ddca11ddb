package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// ReportRepo runs the aggregate queries behind the reporting endpoints.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a ReportRepo bound to db.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Stats computes reservation totals.  Revenue only counts active
// reservations that were not cancelled.
func (r *ReportRepo) Stats(ctx context.Context) (*model.ReservationStats, error) {
	st := &model.ReservationStats{ByStatus: map[string]int{}}

	const totals = `SELECT COUNT(*),
	       COALESCE(SUM(activo = 1), 0),
	       COALESCE(SUM(CASE WHEN activo = 1 AND estado <> 'cancelada' THEN importe_total ELSE 0 END), 0),
	       COUNT(DISTINCT CASE WHEN activo = 1 THEN usuario_id END),
	       COALESCE(SUM(activo = 1 AND fecha_reserva BETWEEN CURDATE() AND CURDATE() + INTERVAL 7 DAY), 0)
	FROM reservas`
	if err := r.db.QueryRowContext(ctx, totals).Scan(
		&st.Total, &st.Active, &st.Revenue, &st.Customers, &st.UpcomingWeek); err != nil {
		return nil, err
	}
	st.Inactive = st.Total - st.Active

	rows, err := r.db.QueryContext(ctx,
		`SELECT estado, COUNT(*) FROM reservas WHERE activo = 1 GROUP BY estado`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.ByStatus[status] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const perVenue = `SELECT s.salon_id, s.titulo, COUNT(r.reserva_id),
	       COALESCE(SUM(CASE WHEN r.estado <> 'cancelada' THEN r.importe_total ELSE 0 END), 0)
	FROM salones s
	LEFT JOIN reservas r ON r.salon_id = s.salon_id AND r.activo = 1
	WHERE s.activo = 1
	GROUP BY s.salon_id, s.titulo
	ORDER BY COUNT(r.reserva_id) DESC, s.salon_id`
	vrows, err := r.db.QueryContext(ctx, perVenue)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	st.ByVenue = make([]model.VenueCount, 0)
	for vrows.Next() {
		var vc model.VenueCount
		if err := vrows.Scan(&vc.VenueID, &vc.Title, &vc.Count, &vc.Revenue); err != nil {
			return nil, err
		}
		st.ByVenue = append(st.ByVenue, vc)
	}
	return st, vrows.Err()
}
