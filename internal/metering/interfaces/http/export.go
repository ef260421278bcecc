package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	metering "solar-portal/internal/metering/domain"
	"solar-portal/internal/observability/metrics"
)

const (
	formatPDF  = "pdf"
	formatXLSX = "xlsx"
)

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, referenceCode, format string) {
	start := time.Now()
	app, err := h.service.Get(r.Context(), referenceCode)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		respondError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case formatPDF:
		data, err = BuildApplicationPDF(app)
		contentType = "application/pdf"
	case formatXLSX:
		data, err = BuildApplicationXLSX(app)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", app.ReferenceCode, format))
	_, _ = w.Write(data)

	h.logAudit(r, "application.export."+format, referenceCode)
}

// BuildApplicationPDF renders a review dossier for an application.
func BuildApplicationPDF(app *metering.Application) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Metering Application")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Reference: %s", app.ReferenceCode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Type: %s", app.Type))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", app.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Capacity (kW): %.2f", app.RequestedCapacityKw))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Estimated Cost: %.0f", app.EstimatedCost))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Property: %s (%s)", app.PropertyAddress, app.PropertyType))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Ownership: %s", app.Ownership))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Submitted: %s", app.SubmittedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Last Updated: %s", app.LastUpdatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	// History table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "When", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "From", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "To", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Actor", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, change := range app.History {
		pdf.CellFormat(40, 6, change.At.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, string(change.From), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, string(change.To), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, change.Actor, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildApplicationXLSX renders an XLSX workbook for an application.
func BuildApplicationXLSX(app *metering.Application) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	historySheet := "history"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(historySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Metering Application")
	_ = f.SetCellValue(summarySheet, "A3", "Reference")
	_ = f.SetCellValue(summarySheet, "B3", app.ReferenceCode)
	_ = f.SetCellValue(summarySheet, "A4", "Type")
	_ = f.SetCellValue(summarySheet, "B4", string(app.Type))
	_ = f.SetCellValue(summarySheet, "A5", "Status")
	_ = f.SetCellValue(summarySheet, "B5", string(app.Status))
	_ = f.SetCellValue(summarySheet, "A6", "Capacity (kW)")
	_ = f.SetCellValue(summarySheet, "B6", app.RequestedCapacityKw)
	_ = f.SetCellValue(summarySheet, "A7", "Estimated Cost")
	_ = f.SetCellValue(summarySheet, "B7", app.EstimatedCost)
	_ = f.SetCellValue(summarySheet, "A8", "Property Address")
	_ = f.SetCellValue(summarySheet, "B8", app.PropertyAddress)
	_ = f.SetCellValue(summarySheet, "A9", "Ownership")
	_ = f.SetCellValue(summarySheet, "B9", string(app.Ownership))
	_ = f.SetCellValue(summarySheet, "A10", "Submitted")
	_ = f.SetCellValue(summarySheet, "B10", app.SubmittedAt.Format(time.RFC3339))

	_ = f.SetCellValue(historySheet, "A1", "When")
	_ = f.SetCellValue(historySheet, "B1", "From")
	_ = f.SetCellValue(historySheet, "C1", "To")
	_ = f.SetCellValue(historySheet, "D1", "Actor")
	_ = f.SetCellValue(historySheet, "E1", "Notes")
	for i, change := range app.History {
		row := i + 2
		_ = f.SetCellValue(historySheet, fmt.Sprintf("A%d", row), change.At.Format(time.RFC3339))
		_ = f.SetCellValue(historySheet, fmt.Sprintf("B%d", row), string(change.From))
		_ = f.SetCellValue(historySheet, fmt.Sprintf("C%d", row), string(change.To))
		_ = f.SetCellValue(historySheet, fmt.Sprintf("D%d", row), change.Actor)
		_ = f.SetCellValue(historySheet, fmt.Sprintf("E%d", row), change.Notes)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
