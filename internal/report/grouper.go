// Package report implements the two-stage report synthesis pipeline:
// grouping activity rows by department, generating per-department narrative
// via the generation client, splitting responses at the sentinel tag, and
// synthesizing the framing document around the spliced detail sections.
package report

import (
	"salesbrief/internal/config"
	"salesbrief/internal/workbook"

	"go.uber.org/zap"
)

// UnknownDepartment is the bucket used for activity rows whose staff is
// absent from the master list when the bucket policy is selected. It is
// appended after all master-defined departments.
const UnknownDepartment = "Unknown"

// StaffActivity pairs one master staff record with their activity rows in
// original sheet order. A staff member with no rows is kept with an empty
// slice; downstream renders an explicit "no activity" entry rather than
// omitting the person.
type StaffActivity struct {
	Staff workbook.StaffRecord
	Rows  []workbook.ActivityRow
}

// DepartmentGroup is the unit of first-stage generation.
type DepartmentGroup struct {
	Department string
	Staff      []StaffActivity
}

// GroupRows partitions activity rows into department groups.
//
// Ordering contract: departments appear in first-seen order of the master
// list; staff within a department appear in master order, regardless of
// data arrival order. Excluded master staff are skipped entirely. Rows for
// staff not on the master list are dropped (with one log line each) or
// bucketed under UnknownDepartment, per policy.
func GroupRows(tables *workbook.Tables, policy string, logger *zap.Logger) []DepartmentGroup {
	if logger == nil {
		logger = zap.NewNop()
	}

	rowsByStaff := make(map[string][]workbook.ActivityRow)
	for _, row := range tables.Activity {
		rowsByStaff[row.Staff] = append(rowsByStaff[row.Staff], row)
	}

	known := make(map[string]bool, len(tables.Master))
	for _, rec := range tables.Master {
		known[rec.Name] = true
	}

	deptIndex := make(map[string]int)
	var groups []DepartmentGroup
	for _, rec := range tables.Master {
		if rec.Excluded {
			continue
		}
		idx, ok := deptIndex[rec.Department]
		if !ok {
			idx = len(groups)
			deptIndex[rec.Department] = idx
			groups = append(groups, DepartmentGroup{Department: rec.Department})
		}
		groups[idx].Staff = append(groups[idx].Staff, StaffActivity{
			Staff: rec,
			Rows:  rowsByStaff[rec.Name],
		})
	}

	unknown := collectUnknown(tables, known)
	if len(unknown) == 0 {
		return groups
	}

	switch policy {
	case config.UnknownStaffBucket:
		group := DepartmentGroup{Department: UnknownDepartment}
		for _, sa := range unknown {
			group.Staff = append(group.Staff, sa)
		}
		groups = append(groups, group)
	default: // config.UnknownStaffDrop
		for _, sa := range unknown {
			logger.Warn("dropping rows for staff not on master list",
				zap.String("staff", sa.Staff.Name), zap.Int("rows", len(sa.Rows)))
		}
	}
	return groups
}

// collectUnknown gathers rows for staff missing from the master list,
// keyed in first-seen activity order so the placement is deterministic.
func collectUnknown(tables *workbook.Tables, known map[string]bool) []StaffActivity {
	var order []string
	rows := make(map[string][]workbook.ActivityRow)
	for _, row := range tables.Activity {
		if known[row.Staff] {
			continue
		}
		if _, seen := rows[row.Staff]; !seen {
			order = append(order, row.Staff)
		}
		rows[row.Staff] = append(rows[row.Staff], row)
	}

	out := make([]StaffActivity, 0, len(order))
	for _, name := range order {
		out = append(out, StaffActivity{
			Staff: workbook.StaffRecord{Name: name, Department: UnknownDepartment},
			Rows:  rows[name],
		})
	}
	return out
}
