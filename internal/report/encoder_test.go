package report

import (
	"encoding/csv"
	"strings"
	"testing"

	"salesbrief/internal/workbook"
)

func TestEncodeStaff_EscapingSurvivesReparse(t *testing.T) {
	nasty := "Acme, \"quoted\"\nnewline Inc."
	sa := StaffActivity{
		Staff: workbook.StaffRecord{Name: "Tanaka", Department: "Sales"},
		Rows: []workbook.ActivityRow{
			{Date: day(1), Staff: "Tanaka", Customer: nasty, Purpose: "visit", Result: "ok", Attendee: "none"},
		},
	}

	block := EncodeStaff(sa)
	lines := strings.SplitN(block, "\n", 2)
	if !strings.Contains(lines[0], "Tanaka") || !strings.Contains(lines[0], "Sales") {
		t.Errorf("header line must identify staff and department: %q", lines[0])
	}

	// A standard delimited-text parser must recover the original field.
	r := csv.NewReader(strings.NewReader(lines[1]))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 record, got %d", len(records))
	}
	if records[1][1] != nasty {
		t.Errorf("customer field corrupted by escaping:\nwant %q\ngot  %q", nasty, records[1][1])
	}
}

func TestEncodeStaff_NoActivityPlaceholder(t *testing.T) {
	sa := StaffActivity{Staff: workbook.StaffRecord{Name: "Yamada", Department: "Support"}}

	block := EncodeStaff(sa)
	if !strings.Contains(block, "(no recorded activity)") {
		t.Errorf("zero-row staff must get an explicit placeholder, got:\n%s", block)
	}
}

func TestEncodeGroup_PreservesStaffOrder(t *testing.T) {
	group := DepartmentGroup{
		Department: "Sales",
		Staff: []StaffActivity{
			{Staff: workbook.StaffRecord{Name: "Tanaka", Department: "Sales"}},
			{Staff: workbook.StaffRecord{Name: "Suzuki", Department: "Sales"}},
		},
	}

	block := EncodeGroup(group)
	if strings.Index(block, "Tanaka") > strings.Index(block, "Suzuki") {
		t.Errorf("staff blocks out of order:\n%s", block)
	}
}
