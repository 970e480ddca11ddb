package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/apperr"
	"github.com/iliyamo/venue-reservation/internal/model"
)

// ReportStore runs aggregate queries.
type ReportStore interface {
	Stats(ctx context.Context) (*model.ReservationStats, error)
}

// ReportService backs the staff reporting endpoints and reservation
// vouchers.
type ReportService struct {
	reports      ReportStore
	reservations ReservationStore
	log          *zap.Logger
	now          func() time.Time
}

func NewReportService(reports ReportStore, reservations ReservationStore, log *zap.Logger) *ReportService {
	return &ReportService{reports: reports, reservations: reservations, log: log, now: time.Now}
}

func (s *ReportService) Stats(ctx context.Context) (*model.ReservationStats, error) {
	st, err := s.reports.Stats(ctx)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "report.stats", err)
	}
	return st, nil
}

// Reservations returns every active reservation in report order.
func (s *ReportService) Reservations(ctx context.Context) ([]model.ReservationRow, error) {
	rows, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "report.reservations", err)
	}
	return rows, nil
}

// ExportCSV writes the reservation report as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.Reservations(ctx)
	if err != nil {
		return err
	}
	if err := WriteReservationsCSV(w, rows); err != nil {
		return internal(logFor(ctx, s.log), "report.csv", err)
	}
	return nil
}

// ExportPDF writes the reservation report as a landscape PDF table.
func (s *ReportService) ExportPDF(ctx context.Context, w io.Writer) error {
	rows, err := s.Reservations(ctx)
	if err != nil {
		return err
	}
	if err := WriteReservationsPDF(w, rows, s.now()); err != nil {
		return internal(logFor(ctx, s.log), "report.pdf", err)
	}
	return nil
}

// Voucher writes a one-page PDF for a single reservation.  Customers only
// get vouchers for their own reservations.
func (s *ReportService) Voucher(ctx context.Context, actor Actor, id uint64, w io.Writer) error {
	d, err := s.reservations.Get(ctx, id, false)
	if err != nil {
		return notFoundOr(logFor(ctx, s.log), "report.voucher", err, msgReservationNotFound)
	}
	if !actor.IsStaff() && d.UserID != actor.UserID {
		return apperr.Forbidden(msgNotOwner)
	}
	if err := WriteVoucherPDF(w, d, s.now()); err != nil {
		return internal(logFor(ctx, s.log), "report.voucher", err)
	}
	return nil
}
