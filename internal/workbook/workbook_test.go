package workbook

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, master [][]interface{}, activity [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Master"))
	_, err := f.NewSheet("Activity")
	require.NoError(t, err)

	for i, row := range master {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Master", cell, &row))
	}
	for i, row := range activity {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Activity", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func headerRows() ([][]interface{}, [][]interface{}) {
	master := [][]interface{}{
		{"No", "Staff", "Department", "Excluded"},
	}
	activity := [][]interface{}{
		{"Date", "Staff", "Customer", "Purpose", "Result", "Attendee"},
	}
	return master, activity
}

func TestRead_FullWorkbook(t *testing.T) {
	master, activity := headerRows()
	master = append(master,
		[]interface{}{1, "Tanaka", "Sales", ""},
		[]interface{}{2, "Suzuki", "Sales", "x"},
		[]interface{}{3, "Yamada", "Support", "0"},
	)
	activity = append(activity,
		[]interface{}{"2026-08-30", "Tanaka", "Acme", "visit", "signed", "CEO"},
		[]interface{}{"2026/08/30", "Yamada", "Globex", "support call", "resolved", ""},
	)

	path := writeWorkbook(t, master, activity)
	tables, err := Read(path, "Master", "Activity")
	require.NoError(t, err)

	require.Len(t, tables.Master, 3)
	assert.Equal(t, StaffRecord{Name: "Tanaka", Department: "Sales"}, tables.Master[0])
	assert.True(t, tables.Master[1].Excluded, "non-empty flag marks exclusion")
	assert.False(t, tables.Master[2].Excluded, "zero flag is not excluded")

	require.Len(t, tables.Activity, 2)
	first := tables.Activity[0]
	assert.Equal(t, "Tanaka", first.Staff)
	assert.Equal(t, "Acme", first.Customer)
	assert.Equal(t, "signed", first.Result)
	assert.Equal(t, 2026, first.Date.Year())
	assert.Equal(t, 30, first.Date.Day())

	// Both supported date layouts parse to the same day.
	assert.Equal(t, first.Date, tables.Activity[1].Date)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.xlsx"), "Master", "Activity")

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr), "expected *ReadError, got %v", err)
}

func TestRead_MissingSheet(t *testing.T) {
	master, activity := headerRows()
	master = append(master, []interface{}{1, "Tanaka", "Sales", ""})
	activity = append(activity, []interface{}{"2026-08-30", "Tanaka", "", "", "", ""})
	path := writeWorkbook(t, master, activity)

	_, err := Read(path, "Master", "NoSuchSheet")
	var readErr *ReadError
	require.True(t, errors.As(err, &readErr), "expected *ReadError, got %v", err)
	assert.Equal(t, "NoSuchSheet", readErr.Sheet)
}

func TestRead_NoActivityRows(t *testing.T) {
	master, activity := headerRows()
	master = append(master, []interface{}{1, "Tanaka", "Sales", ""})
	path := writeWorkbook(t, master, activity)

	_, err := Read(path, "Master", "Activity")
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr), "expected *ValidationError, got %v", err)
	assert.Equal(t, "Activity", valErr.Sheet)
}

func TestRead_MalformedDate(t *testing.T) {
	master, activity := headerRows()
	master = append(master, []interface{}{1, "Tanaka", "Sales", ""})
	activity = append(activity, []interface{}{"yesterday-ish", "Tanaka", "Acme", "", "", ""})
	path := writeWorkbook(t, master, activity)

	_, err := Read(path, "Master", "Activity")
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr), "expected *ValidationError, got %v", err)
	assert.Contains(t, valErr.Reason, "malformed date")
	assert.Equal(t, 2, valErr.Row)
}

func TestRead_BlankTrailingRowsIgnored(t *testing.T) {
	master, activity := headerRows()
	master = append(master,
		[]interface{}{1, "Tanaka", "Sales", ""},
		[]interface{}{"", "", "", ""},
	)
	activity = append(activity,
		[]interface{}{"2026-08-30", "Tanaka", "Acme", "", "", ""},
		[]interface{}{"", "", "", "", "", ""},
	)
	path := writeWorkbook(t, master, activity)

	tables, err := Read(path, "Master", "Activity")
	require.NoError(t, err)
	assert.Len(t, tables.Master, 1)
	assert.Len(t, tables.Activity, 1)
}
