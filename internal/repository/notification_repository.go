package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// NotificationRepo stores in-app notifications.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to db.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// CreateMany inserts all rows with a single statement.
func (r *NotificationRepo) CreateMany(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO notificaciones (usuario_id, tipo, titulo, mensaje) VALUES `)
	args := make([]any, 0, len(ns)*4)
	for i, n := range ns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, n.UserID, string(n.Type), n.Title, n.Message)
	}
	_, err := r.db.ExecContext(ctx, b.String(), args...)
	return err
}

// ListByUser returns the newest notifications of a user first.  A limit of
// zero or less returns every row.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, error) {
	q := `SELECT notificacion_id, usuario_id, tipo, titulo, mensaje, leida, creado
	      FROM notificaciones WHERE usuario_id = ?`
	args := []any{userID}
	if unreadOnly {
		q += ` AND leida = 0`
	}
	q += ` ORDER BY creado DESC, notificacion_id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var (
			n   model.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(typ)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification of userID as read.  ErrNotFound is returned
// when the notification does not exist or belongs to someone else.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notificaciones SET leida = 1 WHERE notificacion_id = ? AND usuario_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// Zero rows also happens when the row was already read.
	var owner uint64
	err = r.db.QueryRowContext(ctx,
		`SELECT usuario_id FROM notificaciones WHERE notificacion_id = ? AND usuario_id = ?`, id, userID).Scan(&owner)
	return noRows(err)
}
