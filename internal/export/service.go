// Package export renders extraction results as XLSX workbooks: a formatted
// statements sheet with P&L and balance-sheet blocks, and a raw data sheet.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/finstatement-extractor/internal/entity"
	"github.com/joseph-ayodele/finstatement-extractor/internal/statement"
)

const (
	StatementsSheet = "Financial Statements"
	RawSheet        = "Raw Data"

	navy        = "1B3E5F"
	numberFmt   = "#,##0"
	labelIndent = "    "
)

// Service produces XLSX bytes for extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// StatementsXLSX returns the workbook for res as bytes.
func (s *Service) StatementsXLSX(ctx context.Context, res entity.ExtractionResult) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("xlsx styles: %w", err)
	}
	if _, err := f.NewSheet(StatementsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(RawSheet); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, sheet: StatementsSheet, st: st, headers: res.YearHeaders}
	writeStatements(w, res)
	if w.err != nil {
		return nil, fmt.Errorf("statements sheet: %w", w.err)
	}
	raw := &sheetWriter{f: f, sheet: RawSheet, st: st, headers: res.YearHeaders}
	writeRawData(raw, res)
	if raw.err != nil {
		return nil, fmt.Errorf("raw data sheet: %w", raw.err)
	}

	idx, err := f.GetSheetIndex(StatementsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("xlsx export ok",
		"rows", len(res.Rows),
		"columns", len(res.YearHeaders),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile renders res to path.
func (s *Service) WriteFile(ctx context.Context, path string, res entity.ExtractionResult) error {
	b, err := s.StatementsXLSX(ctx, res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

type styles struct {
	title, header, bold, total, number, rawTitle, rawHeader int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	defs := []struct {
		dst *int
		s   *excelize.Style
	}{
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Color: navy}}},
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{navy}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&st.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&st.total, &excelize.Style{Font: &excelize.Font{Bold: true, Color: navy}, CustomNumFmt: strPtr(numberFmt)}},
		{&st.number, &excelize.Style{CustomNumFmt: strPtr(numberFmt)}},
		{&st.rawTitle, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12, Color: "800000"}}},
		{&st.rawHeader, &excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.s)
		if err != nil {
			return st, err
		}
		*d.dst = id
	}
	return st, nil
}

func strPtr(s string) *string { return &s }

// sheetWriter keeps the first error so layout code can stay linear.
type sheetWriter struct {
	f       *excelize.File
	sheet   string
	st      styles
	headers []string
	row     int
	err     error
}

func (w *sheetWriter) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && w.err == nil {
		w.err = err
	}
	return name
}

func (w *sheetWriter) set(col, row int, v any, style int) {
	if w.err != nil {
		return
	}
	c := w.cell(col, row)
	if err := w.f.SetCellValue(w.sheet, c, v); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, c, c, style)
	}
}

func (w *sheetWriter) formula(col, row int, expr string, style int) {
	if w.err != nil {
		return
	}
	c := w.cell(col, row)
	if err := w.f.SetCellFormula(w.sheet, c, expr); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, c, c, style)
	}
}

func (w *sheetWriter) width(from, to string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(w.sheet, from, to, width)
	}
}

func (w *sheetWriter) colName(i int) string {
	name, err := excelize.ColumnNumberToName(i)
	if err != nil && w.err == nil {
		w.err = err
	}
	return name
}

// headerRow writes "Particulars" and the period headers at the current row.
func (w *sheetWriter) headerRow() {
	w.set(1, w.row, "Particulars", w.st.header)
	for i, h := range w.headers {
		w.set(i+2, w.row, h, w.st.header)
	}
	w.row++
}

// items writes one row per item that has at least one value.
func (w *sheetWriter) items(items []statement.LineItem) {
	for _, it := range items {
		if !hasValues(it.Values) {
			continue
		}
		w.set(1, w.row, strings.Repeat(labelIndent, it.Indent)+it.Label, 0)
		for i := range w.headers {
			if i >= len(it.Values) {
				break
			}
			v := it.Values[i]
			if f, ok := v.Float(); ok {
				w.set(i+2, w.row, f, w.st.number)
			} else if !v.IsNull() {
				w.set(i+2, w.row, v.String(), 0)
			}
		}
		w.row++
	}
}

// sumRow writes label with a SUM over rows [from, to] in every period
// column, or 0 when the range is empty.
func (w *sheetWriter) sumRow(label string, from, to int) int {
	r := w.row
	w.set(1, r, label, w.st.bold)
	for i := range w.headers {
		if to < from {
			w.set(i+2, r, 0, w.st.total)
			continue
		}
		col := w.colName(i + 2)
		w.formula(i+2, r, fmt.Sprintf("SUM(%s%d:%s%d)", col, from, col, to), w.st.total)
	}
	w.row++
	return r
}

func hasValues(vals []entity.Value) bool {
	for _, v := range vals {
		if !v.IsNull() {
			return true
		}
	}
	return false
}
