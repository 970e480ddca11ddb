// Package repository holds the SQL data access layer.  Repositories run
// parameterized statements only; validation and business rules live in the
// service layer.  The sentinel errors below let services classify failures
// without inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row lookup, update or soft delete matches
// nothing.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key.
var ErrDuplicate = errors.New("duplicate key")

// ErrSlotTaken is returned when an active reservation already holds the
// same venue, date and time slot.
var ErrSlotTaken = errors.New("slot already reserved")

// ErrStatusChanged is returned when a reservation's status changed between
// the caller's read and its write.
var ErrStatusChanged = errors.New("reservation status changed")

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// noRows converts sql.ErrNoRows into ErrNotFound.
func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func formatDate(t time.Time) string { return t.Format("2006-01-02") }
