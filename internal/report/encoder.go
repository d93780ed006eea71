package report

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Field order of the encoded activity lines. This block is opaque data for
// the model; nothing downstream of the generation client re-parses it.
var encoderHeader = []string{"date", "customer", "purpose", "result", "external_attendee"}

// EncodeStaff renders one staff member's activity as a compact delimited
// text block: a header line identifying staff and department, a column
// header line, then one CSV record per row in original order. CSV quoting
// rules apply (quote-wrap on comma/quote/newline, double embedded quotes),
// so free-text fields survive a standard delimited-text parser intact.
//
// A staff member with zero rows gets an explicit "no recorded activity"
// line so every master staff member is visible to the model.
func EncodeStaff(sa StaffActivity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s / %s\n", sa.Staff.Name, sa.Staff.Department)

	if len(sa.Rows) == 0 {
		b.WriteString("(no recorded activity)\n")
		return b.String()
	}

	w := csv.NewWriter(&b)
	_ = w.Write(encoderHeader)
	for _, row := range sa.Rows {
		_ = w.Write([]string{
			row.Date.Format("2006-01-02"),
			row.Customer,
			row.Purpose,
			row.Result,
			row.Attendee,
		})
	}
	w.Flush()
	return b.String()
}

// EncodeGroup concatenates the blocks of every staff member in the group,
// in master order.
func EncodeGroup(group DepartmentGroup) string {
	var b strings.Builder
	for _, sa := range group.Staff {
		b.WriteString(EncodeStaff(sa))
		b.WriteString("\n")
	}
	return b.String()
}
