package datatable

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/Rana718/tablo/internal/table"
)

const (
	ContentTypeCSV   = "text/csv; charset=utf-8"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	excelSheet = "Sheet1"
)

// ExportResult describes a finished export.
type ExportResult struct {
	FileName    string
	ContentType string
	Format      table.ExportFormat
	Columns     []string
	Rows        int
}

// ExportPlan resolves the format, column scope and file name of an export
// without running it.
func (e *Engine) ExportPlan(p Params) (*ExportResult, error) {
	cfg := e.table.Export()
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: %s", table.ErrNotExportable, e.table.ID())
	}

	format := cfg.Format
	if p.ExportType != "" {
		f, err := table.ParseExportFormat(p.ExportType)
		if err != nil {
			return nil, err
		}
		format = f
	}
	scope := cfg.Columns
	if p.ExportColumns != "" {
		s, err := table.ParseColumnScope(p.ExportColumns)
		if err != nil {
			return nil, err
		}
		scope = s
	}

	res := &ExportResult{
		FileName:    fmt.Sprintf("%s_%s.%s", cfg.FileName, e.now().Format("2006-01-02_15-04-05"), format.Extension()),
		ContentType: ContentTypeCSV,
		Format:      format,
	}
	if format == table.Excel {
		res.ContentType = ContentTypeExcel
	}
	for _, col := range e.exportColumns(p, scope) {
		res.Columns = append(res.Columns, col.Name())
	}
	return res, nil
}

// Export writes every row matching p's search, filters and sort to w, ignoring
// pagination. A non-empty p.SelectedIDs narrows the rows unless p.ExportRows is
// "all".
func (e *Engine) Export(ctx context.Context, p Params, w io.Writer) (*ExportResult, error) {
	res, err := e.ExportPlan(p)
	if err != nil {
		return nil, err
	}

	scope := e.table.Export().Columns
	if p.ExportColumns != "" {
		scope, _ = table.ParseColumnScope(p.ExportColumns)
	}
	columns := e.exportColumns(p, scope)

	e.loadSearchFields(ctx)
	pn := e.planner.build(p)
	selected := p.ExportRows != "all" && len(p.SelectedIDs) > 0
	var inMemory bool
	if selected {
		if cond, ok := e.idCondition(p.SelectedIDs); ok {
			pn.where = append(pn.where, cond)
		} else {
			inMemory = true
		}
	}

	records, err := e.db.QueryRows(ctx, e.planner.rowsQuery(pn))
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", e.table.ID(), err)
	}
	if inMemory {
		records = e.filterByID(records, p.SelectedIDs)
	}

	var sheet sheetWriter
	if res.Format == table.Excel {
		sheet = newExcelWriter(w)
	} else {
		sheet = newCSVWriter(w)
	}

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.Label()
	}
	if err := sheet.WriteRow(header); err != nil {
		return nil, err
	}
	for _, raw := range records {
		rec := table.Record(raw)
		cells := make([]any, len(columns))
		for i, col := range columns {
			cells[i] = col.ExportValue(rec)
		}
		if err := sheet.WriteRow(cells); err != nil {
			return nil, err
		}
	}
	if err := sheet.Close(); err != nil {
		return nil, fmt.Errorf("export %s: %w", e.table.ID(), err)
	}

	res.Rows = len(records)
	e.log.Infow("exported table", "file", res.FileName, "rows", res.Rows, "columns", len(columns))
	return res, nil
}

// exportColumns lists the exportable plain columns in declaration order, narrowed
// to the visible ones for the visible scope.
func (e *Engine) exportColumns(p Params, scope table.ColumnScope) []*table.Column {
	var cols []*table.Column
	for _, col := range e.table.Columns() {
		if col.Type() != table.PlainColumn || !col.IsExportable() {
			continue
		}
		if scope == table.VisibleColumns && !isVisible(col, p.VisibleColumns) {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

type sheetWriter interface {
	WriteRow(cells []any) error
	Close() error
}

type csvWriter struct {
	w *csv.Writer
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{w: csv.NewWriter(w)}
}

func (c *csvWriter) WriteRow(cells []any) error {
	record := make([]string, len(cells))
	for i, v := range cells {
		record[i] = formatCell(v)
	}
	return c.w.Write(record)
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

type excelWriter struct {
	out  io.Writer
	file *excelize.File
	row  int
}

func newExcelWriter(w io.Writer) *excelWriter {
	return &excelWriter{out: w, file: excelize.NewFile()}
}

func (x *excelWriter) WriteRow(cells []any) error {
	x.row++
	for i, v := range cells {
		x.file.SetCellValue(excelSheet, cellName(i+1, x.row), excelValue(v))
	}
	return nil
}

func (x *excelWriter) Close() error {
	return x.file.Write(x.out)
}

// cellName converts 1-based coordinates to a cell reference such as "AB12".
func cellName(col, row int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters) + strconv.Itoa(row)
}

// excelValue keeps numbers and booleans typed and formats everything else.
func excelValue(v any) any {
	switch v.(type) {
	case int, int32, int64, float32, float64, bool:
		return v
	}
	return formatCell(v)
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}
