package infra

// pdf.go — daily dock sheet generation using go-pdf/fpdf.
// One A4 landscape page per day: a table of every appointment (time,
// supplier, purchase order, plate, driver, status) for the gate staff's
// clipboard.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateDockSheetPDF renders the day's appointment table to
// storagePath/dock_sheet_{date}.pdf and returns the absolute path.
// Appointments are expected pre-sorted by time with Supplier preloaded.
func GenerateDockSheetPDF(date time.Time, appointments []model.Appointment, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("dock_sheet_%s.pdf", date.Format("2006-01-02"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Dock Schedule", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, date.Format("Monday, 02 Jan 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Column layout ─────────────────────────────────────────────────────────
	colTime := contentW * 0.08
	colSupplier := contentW * 0.28
	colPO := contentW * 0.18
	colPlate := contentW * 0.12
	colDriver := contentW * 0.22
	colStatus := contentW * 0.12

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colTime, 7, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colSupplier, 7, "Supplier", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colPO, 7, "Purchase Order", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colPlate, 7, "Plate", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colDriver, 7, "Driver", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colStatus, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i := range appointments {
		a := &appointments[i]
		supplierName := ""
		if a.Supplier != nil {
			supplierName = a.Supplier.Description
		}
		pdf.CellFormat(colTime, 7, a.Time, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colSupplier, 7, supplierName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colPO, 7, a.PurchaseOrder, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colPlate, 7, a.TruckPlate, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colDriver, 7, a.DriverName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colStatus, 7, a.Status, "1", 1, "C", false, 0, "")
	}

	if len(appointments) == 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(contentW, 7, "No appointments scheduled for this date.", "", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
