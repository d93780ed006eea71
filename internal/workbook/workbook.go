// Package workbook is the input boundary. It reads the master (staff
// ordering) table and the activity table from a single .xlsx workbook and
// converts them into named-field records. Positional row access stops here;
// nothing downstream indexes cells.
package workbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// StaffRecord is one row of the authoritative master list. The order of
// StaffRecords defines the canonical staff and department iteration order.
type StaffRecord struct {
	Name       string
	Department string
	Excluded   bool
}

// ActivityRow is one sales-activity row. Immutable once read; row order
// within a staff member is the order encountered in the sheet.
type ActivityRow struct {
	Date     time.Time
	Staff    string
	Customer string
	Purpose  string
	Result   string
	Attendee string
}

// Tables is everything the pipeline consumes from the workbook.
type Tables struct {
	Master   []StaffRecord
	Activity []ActivityRow
}

// ReadError indicates the workbook or one of its sheets could not be read.
type ReadError struct {
	Path  string
	Sheet string
	Err   error
}

func (e *ReadError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("workbook %s: sheet %q: %v", e.Path, e.Sheet, e.Err)
	}
	return fmt.Sprintf("workbook %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ValidationError indicates the workbook was readable but its contents are
// unusable (no data rows, malformed dates).
type ValidationError struct {
	Sheet  string
	Row    int // 1-based sheet row, 0 when the whole sheet is at fault
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("sheet %q row %d: %s", e.Sheet, e.Row, e.Reason)
	}
	return fmt.Sprintf("sheet %q: %s", e.Sheet, e.Reason)
}

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06 15:04",
}

// Read opens the workbook at path and reads both tables in full. The first
// row of each sheet is treated as a header and skipped.
func Read(path, masterSheet, activitySheet string) (*Tables, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	master, err := readMaster(f, path, masterSheet)
	if err != nil {
		return nil, err
	}
	activity, err := readActivity(f, path, activitySheet)
	if err != nil {
		return nil, err
	}
	return &Tables{Master: master, Activity: activity}, nil
}

// Master sheet columns: No, staff name, department, exclusion flag.
func readMaster(f *excelize.File, path, sheet string) ([]StaffRecord, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ReadError{Path: path, Sheet: sheet, Err: err}
	}
	if len(rows) <= 1 {
		return nil, &ValidationError{Sheet: sheet, Reason: "no staff rows"}
	}

	records := make([]StaffRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		name := cell(row, 1)
		dept := cell(row, 2)
		if name == "" && dept == "" {
			continue // trailing blank rows are common in hand-edited sheets
		}
		if name == "" || dept == "" {
			return nil, &ValidationError{Sheet: sheet, Row: i + 2, Reason: "staff name and department are both required"}
		}
		records = append(records, StaffRecord{
			Name:       name,
			Department: dept,
			Excluded:   parseFlag(cell(row, 3)),
		})
	}
	if len(records) == 0 {
		return nil, &ValidationError{Sheet: sheet, Reason: "no staff rows"}
	}
	return records, nil
}

// Activity sheet columns: date, staff name, customer, purpose, result,
// external attendee.
func readActivity(f *excelize.File, path, sheet string) ([]ActivityRow, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ReadError{Path: path, Sheet: sheet, Err: err}
	}
	if len(rows) <= 1 {
		return nil, &ValidationError{Sheet: sheet, Reason: "no activity rows"}
	}

	records := make([]ActivityRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		raw := cell(row, 0)
		staff := cell(row, 1)
		if raw == "" && staff == "" {
			continue
		}
		date, err := parseDate(raw)
		if err != nil {
			return nil, &ValidationError{Sheet: sheet, Row: i + 2, Reason: fmt.Sprintf("malformed date %q", raw)}
		}
		if staff == "" {
			return nil, &ValidationError{Sheet: sheet, Row: i + 2, Reason: "staff name is required"}
		}
		records = append(records, ActivityRow{
			Date:     date,
			Staff:    staff,
			Customer: cell(row, 2),
			Purpose:  cell(row, 3),
			Result:   cell(row, 4),
			Attendee: cell(row, 5),
		})
	}
	if len(records) == 0 {
		return nil, &ValidationError{Sheet: sheet, Reason: "no activity rows"}
	}
	return records, nil
}

// cell returns the trimmed cell value at index, tolerant of short rows
// (excelize drops trailing empty cells).
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFlag(s string) bool {
	if s == "" {
		return false
	}
	if b, err := cast.ToBoolE(s); err == nil {
		return b
	}
	// Any other non-empty marker ("x", "excluded") counts as excluded.
	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// Excel sometimes hands back a raw serial number when the cell has no
	// date format applied.
	if serial := cast.ToFloat64(s); serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
