// Package report renders attendance history for download.
package report

import (
	"fmt"
	"io"

	"coaching/attendance/internal/entity"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const sheet = "Attendance"

var headers = []string{"Date", "Subject", "Subject ID", "Batch", "Branch", "Status", "Approval", "Remarks"}

// ContentType returns the MIME type of format, or "" if it is unknown.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return ""
}

// Write renders records in format to w.
func Write(w io.Writer, format, title string, records []entity.AttendanceRecord) error {
	switch format {
	case FormatXLSX:
		return WriteExcel(w, records)
	case FormatPDF:
		return WritePDF(w, title, records)
	}
	return errors.Wrapf(entity.ErrValidation, "unknown export format %q", format)
}

func row(r entity.AttendanceRecord) []string {
	batch := ""
	if r.BatchID != nil {
		batch = fmt.Sprint(*r.BatchID)
	}
	remarks := ""
	if r.Remarks != nil {
		remarks = *r.Remarks
	}

	return []string{
		r.Date.Format("2006-01-02"),
		string(r.SubjectType),
		fmt.Sprint(r.SubjectID),
		batch,
		fmt.Sprint(r.BranchID),
		string(r.Status),
		string(r.ApprovalState),
		remarks,
	}
}

// WriteExcel writes one sheet with a header row and one row per record.
func WriteExcel(w io.Writer, records []entity.AttendanceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	if err := setRow(f, 1, headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, r := range records {
		if err := setRow(f, i+2, row(r)); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "H", "H", 40)

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", n), &cells); err != nil {
		return errors.Wrapf(err, "writing row %d", n)
	}
	return nil
}

var pdfWidths = []float64{22, 24, 18, 14, 14, 18, 24, 56}

// WritePDF writes a landscape A4 table of records under title.
func WritePDF(w io.Writer, title string, records []entity.AttendanceRecord) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(pdfWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range records {
		for i, v := range row(r) {
			pdf.CellFormat(pdfWidths[i], 7, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "writing pdf")
	}
	return nil
}
