// Package export writes computed workspace results as spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/costcalc/internal/pricing"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Sheet names of the XLSX export.
const (
	SheetServices = "Costi Servizi"
	SheetSummary  = "Riepilogo"
)

const baseFilename = "costi-servizi"

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatXLSX, FormatCSV:
		return Format(raw), nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

// Filename is the fixed download name for format.
func (f Format) Filename() string {
	return baseFilename + "." + string(f)
}

// ContentType is the MIME type served for format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write encodes res in format.
func Write(w io.Writer, format Format, res pricing.Result) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, res)
	case FormatCSV:
		return WriteCSV(w, res)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// Round rounds a currency amount to cents.
func Round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// ServiceTable returns the header and rows of the service sheet: one row per
// service, one column per scenario in presentation order.
func ServiceTable(res pricing.Result) ([]string, [][]any) {
	header := make([]string, 0, len(res.Scenarios)+1)
	header = append(header, "Servizio")
	for _, sr := range res.Scenarios {
		header = append(header, sr.Scenario.Name)
	}

	if len(res.Scenarios) == 0 {
		return header, nil
	}

	services := res.Scenarios[0].Services
	rows := make([][]any, 0, len(services))
	for i, svc := range services {
		row := make([]any, 0, len(header))
		row = append(row, svc.Name)
		for _, sr := range res.Scenarios {
			row = append(row, Round(sr.Services[i].Monthly).InexactFloat64())
		}
		rows = append(rows, row)
	}
	return header, rows
}

// SummaryTable returns the header and rows of the per-scenario totals sheet.
func SummaryTable(res pricing.Result) ([]string, [][]any) {
	header := []string{
		"Scenario",
		"Utenti",
		"Servizi/mese",
		"Storage media/mese",
		"Totale mensile",
		"Totale annuale",
		"Costo per utente",
	}

	rows := make([][]any, 0, len(res.Scenarios))
	for _, sr := range res.Scenarios {
		rows = append(rows, []any{
			sr.Scenario.Name,
			sr.Scenario.UserCount,
			Round(sr.Totals.Services).InexactFloat64(),
			Round(sr.Totals.Media).InexactFloat64(),
			Round(sr.Totals.Monthly).InexactFloat64(),
			Round(sr.Totals.Annual).InexactFloat64(),
			decimal.NewFromFloat(sr.CostPerUser).Round(4).InexactFloat64(),
		})
	}
	return header, rows
}

// WriteXLSX writes the service sheet followed by the summary sheet.
func WriteXLSX(w io.Writer, res pricing.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetServices); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	header, rows := ServiceTable(res)
	if err := writeSheet(f, SheetServices, header, rows); err != nil {
		return err
	}
	header, rows = SummaryTable(res)
	if err := writeSheet(f, SheetSummary, header, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// WriteCSV writes the service sheet as CSV.
func WriteCSV(w io.Writer, res pricing.Result) error {
	cw := csv.NewWriter(w)

	header, rows := ServiceTable(res)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return decimal.NewFromFloat(x).StringFixed(2)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
