package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/timelinetracker/backend/internal/models"
	"github.com/timelinetracker/backend/internal/timeline"
)

const sheetName = "Timeline"

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Filename() string {
	return "timeline." + string(f)
}

// Write renders doc in format f.
func Write(w io.Writer, f Format, doc models.Document) error {
	if f == FormatXLSX {
		return WriteXLSX(w, doc)
	}
	return WriteCSV(w, doc)
}

// Rows lays out doc as a table: a header, one row per ticket, then the
// remaining days and the total timeframe.
func Rows(doc models.Document) [][]string {
	rows := [][]string{{"Name", "Best Case", "Worst Case", "Link"}}
	for _, t := range doc.Tickets {
		rows = append(rows, []string{t.Name, Days(t.BestCase), Days(t.WorstCase), t.Link})
	}
	r := timeline.RemainingFor(doc)
	rows = append(rows,
		[]string{"Remaining", Days(r.BestCase), Days(r.WorstCase), ""},
		[]string{"Total timeframe", Days(doc.Timeframe.Days()), "", ""},
	)
	return rows
}

// Days formats a day count as "1 day" or "N days".
func Days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func WriteCSV(w io.Writer, doc models.Document) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(doc)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func WriteXLSX(w io.Writer, doc models.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for i, row := range Rows(doc) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "C", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "D", "D", 50); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
