// Package export writes stored records in the pre-processed display shape, as CSV or
// as an Excel workbook. Both outputs re-import without changes for dates in 1969-2068:
// dates are written as MM-DD-YY and read back with Go's two-digit-year rule, which maps
// 69-99 to 19xx and 00-68 to 20xx.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/scalesync/internal/domain/model"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet written by XLSX.
const SheetName = "Records"

// ErrUnknownFormat is returned for a format other than csv or xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// Write renders records to w in the given format.
func Write(w io.Writer, format string, records []model.StoredRecord) error {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return CSV(w, records)
	case FormatXLSX:
		return XLSX(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if strings.EqualFold(format, FormatXLSX) {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// CSV writes a header row and one row per record.
func CSV(w io.Writer, records []model.StoredRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(row(rec.Record)); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.Key(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(rec model.Record) []string {
	out := make([]string, 0, len(model.Fields)+1)
	out = append(out, model.DisplayDate(rec.Date))
	for _, v := range rec.Values() {
		out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return out
}

// XLSX writes a workbook with a single sheet. Dates are text in MM-DD-YY form and
// readings are numeric cells.
func XLSX(w io.Writer, records []model.StoredRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(model.Fields)+1)
	for _, c := range model.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, rec := range records {
		cells := make([]any, 0, len(model.Fields)+1)
		cells = append(cells, model.DisplayDate(rec.Date))
		for _, v := range rec.Values() {
			cells = append(cells, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row %s: %w", rec.Key(), err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// XLSXToCSV reads the first sheet of a workbook and returns it as CSV text, so a
// spreadsheet can go through the same import path as a CSV export.
func XLSXToCSV(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("open excel: no sheets found")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return "", fmt.Errorf("convert sheet: %w", err)
	}
	return buf.String(), nil
}
