package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/venue-reservation/internal/model"
)

func newMockRepo(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewReservationRepo(db), mock
}

func sampleReservation() *model.Reservation {
	return &model.Reservation{
		Date:       "2030-05-10",
		VenueID:    1,
		TimeSlotID: 2,
		UserID:     5,
		VenuePrice: 1000,
		Total:      1250,
	}
}

const (
	lockVenueSQL = `SELECT salon_id FROM salones WHERE salon_id = \? FOR UPDATE`
	slotSQL      = `SELECT reserva_id FROM reservas`
)

func TestCreateWithAddOnsCommits(t *testing.T) {
	repo, mock := newMockRepo(t)
	res := sampleReservation()
	addOns := []model.ReservationAddOn{{AddOnID: 3, Price: 200}, {AddOnID: 4, Price: 50}}

	mock.ExpectBegin()
	mock.ExpectQuery(lockVenueSQL).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"salon_id"}).AddRow(1))
	mock.ExpectQuery(slotSQL).WithArgs(1, "2030-05-10", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"reserva_id"}))
	mock.ExpectExec(`INSERT INTO reservas \(`).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(`INSERT INTO reservas_servicios`).
		WithArgs(10, 3, 200.0, 10, 4, 50.0).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := repo.CreateWithAddOns(context.Background(), res, addOns); err != nil {
		t.Fatalf("CreateWithAddOns: %v", err)
	}
	if res.ID != 10 {
		t.Fatalf("expected id 10, got %d", res.ID)
	}
	if res.Status != model.StatusPending || !res.Active {
		t.Fatalf("expected pending active reservation, got %q active=%v", res.Status, res.Active)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateWithAddOnsRejectsTakenSlot(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVenueSQL).
		WillReturnRows(sqlmock.NewRows([]string{"salon_id"}).AddRow(1))
	mock.ExpectQuery(slotSQL).
		WillReturnRows(sqlmock.NewRows([]string{"reserva_id"}).AddRow(7))
	mock.ExpectRollback()

	err := repo.CreateWithAddOns(context.Background(), sampleReservation(), nil)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateWithAddOnsMissingVenue(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVenueSQL).
		WillReturnRows(sqlmock.NewRows([]string{"salon_id"}))
	mock.ExpectRollback()

	err := repo.CreateWithAddOns(context.Background(), sampleReservation(), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateWithAddOnsRollsBackOnAddOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(lockVenueSQL).
		WillReturnRows(sqlmock.NewRows([]string{"salon_id"}).AddRow(1))
	mock.ExpectQuery(slotSQL).
		WillReturnRows(sqlmock.NewRows([]string{"reserva_id"}))
	mock.ExpectExec(`INSERT INTO reservas \(`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`INSERT INTO reservas_servicios`).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.CreateWithAddOns(context.Background(), sampleReservation(),
		[]model.ReservationAddOn{{AddOnID: 3, Price: 200}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateReplacesAddOnsAtomically(t *testing.T) {
	repo, mock := newMockRepo(t)
	res := sampleReservation()
	res.ID = 10
	res.Status = model.StatusConfirmed

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT activo, estado FROM reservas WHERE reserva_id = \? FOR UPDATE`).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "estado"}).AddRow(true, "confirmada"))
	mock.ExpectExec(`UPDATE reservas`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM reservas_servicios WHERE reserva_id = \?`).WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO reservas_servicios`).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), ReservationUpdate{
		Reservation:   res,
		AddOns:        []model.ReservationAddOn{{AddOnID: 9, Price: 10}},
		ReplaceAddOns: true,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateChecksSlotExcludingItself(t *testing.T) {
	repo, mock := newMockRepo(t)
	res := sampleReservation()
	res.ID = 10

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT activo, estado FROM reservas`).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "estado"}).AddRow(true, "pendiente"))
	mock.ExpectQuery(lockVenueSQL).
		WillReturnRows(sqlmock.NewRows([]string{"salon_id"}).AddRow(1))
	mock.ExpectQuery(slotSQL).WithArgs(1, "2030-05-10", 2, 10).
		WillReturnRows(sqlmock.NewRows([]string{"reserva_id"}).AddRow(12))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), ReservationUpdate{Reservation: res, CheckSlot: true})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateInactiveReservation(t *testing.T) {
	repo, mock := newMockRepo(t)
	res := sampleReservation()
	res.ID = 10

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT activo, estado FROM reservas`).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "estado"}).AddRow(false, "pendiente"))
	mock.ExpectRollback()

	if err := repo.Update(context.Background(), ReservationUpdate{Reservation: res}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRejectsChangedStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	res := sampleReservation()
	res.ID = 10
	res.Status = model.StatusPending

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT activo, estado FROM reservas`).WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "estado"}).AddRow(true, "confirmada"))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), ReservationUpdate{Reservation: res, ExpectedStatus: model.StatusPending})
	if !errors.Is(err, ErrStatusChanged) {
		t.Fatalf("expected ErrStatusChanged, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestConfirmReportsNoTransition(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE reservas SET estado = \?`).
		WithArgs("confirmada", 4, "pendiente").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Confirm(context.Background(), 4)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if ok {
		t.Fatal("expected no row to be confirmed")
	}
}

func TestSoftDeleteReturnsOwner(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT usuario_id, activo FROM reservas`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"usuario_id", "activo"}).AddRow(5, true))
	mock.ExpectExec(`UPDATE reservas SET activo = 0`).WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	owner, err := repo.SoftDelete(context.Background(), 4)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if owner != 5 {
		t.Fatalf("expected owner 5, got %d", owner)
	}
}

func TestSoftDeleteTwice(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT usuario_id, activo FROM reservas`).
		WillReturnRows(sqlmock.NewRows([]string{"usuario_id", "activo"}).AddRow(5, false))
	mock.ExpectRollback()

	if _, err := repo.SoftDelete(context.Background(), 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidReservationSort(t *testing.T) {
	if !ValidReservationSort("importe_total") {
		t.Fatal("importe_total should be sortable")
	}
	if ValidReservationSort("1; DROP TABLE reservas") {
		t.Fatal("arbitrary input must not be sortable")
	}
}
