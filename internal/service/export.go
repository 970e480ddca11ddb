package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/venue-reservation/internal/model"
)

var reportHeader = []string{
	"reserva_id", "fecha_reserva", "hora_desde", "hora_hasta", "salon", "direccion",
	"cliente", "nombre_usuario", "estado", "importe_salon", "importe_total",
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// WriteReservationsCSV writes rows with a header line.
func WriteReservationsCSV(w io.Writer, rows []model.ReservationRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatUint(r.ID, 10), r.Date, r.SlotStart, r.SlotEnd, r.VenueTitle, r.VenueAddress,
			r.CustomerName + " " + r.CustomerLast, r.CustomerLogin, string(r.Status),
			money(r.VenuePrice), money(r.Total),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReservationsPDF renders rows as a table.
func WriteReservationsPDF(w io.Writer, rows []model.ReservationRow, generated time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Reporte de reservas", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr("Reporte de reservas"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generado: %s | Total: %d", generated.Format("2006-01-02 15:04"), len(rows))))
	pdf.Ln(10)

	cols := []struct {
		title string
		width float64
	}{
		{"ID", 12}, {"Fecha", 22}, {"Horario", 28}, {"Salón", 55},
		{"Cliente", 55}, {"Estado", 25}, {"Salón $", 28}, {"Total $", 28},
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		vals := []string{
			strconv.FormatUint(r.ID, 10), r.Date, r.SlotStart + "-" + r.SlotEnd, r.VenueTitle,
			r.CustomerName + " " + r.CustomerLast, string(r.Status), money(r.VenuePrice), money(r.Total),
		}
		for i, c := range cols {
			align := "L"
			if i >= 6 {
				align = "R"
			}
			pdf.CellFormat(c.width, 6, tr(vals[i]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

// WriteVoucherPDF renders a reservation voucher with a QR code carrying the
// reservation id and date.
func WriteVoucherPDF(w io.Writer, d *model.ReservationDetail, generated time.Time) error {
	png, err := qrcode.Encode(fmt.Sprintf("reserva:%d|%s|%d", d.ID, d.Date, d.VenueID), qrcode.Medium, 256)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Comprobante de reserva #%d", d.ID)))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Cliente: " + d.CustomerName + " " + d.CustomerLast,
		"Salón: " + d.VenueTitle,
		"Dirección: " + d.VenueAddress,
		fmt.Sprintf("Fecha: %s de %s a %s", d.Date, d.SlotStart, d.SlotEnd),
		"Estado: " + string(d.Status),
	}
	if d.Theme != nil {
		lines = append(lines, "Temática: "+*d.Theme)
	}
	for _, l := range lines {
		pdf.Cell(0, 8, tr(l))
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr("Detalle"))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(120, 7, tr("Salón"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, money(d.VenuePrice), "1", 1, "R", false, 0, "")
	for _, a := range d.AddOns {
		pdf.CellFormat(120, 7, tr(a.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, money(a.Price), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(120, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, money(d.Total), "1", 1, "R", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, opts, 0, "")

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 6, tr("Emitido el "+generated.Format("2006-01-02 15:04")))
	return pdf.Output(w)
}
