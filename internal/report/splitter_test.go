package report

import "testing"

func TestSplitAtTag(t *testing.T) {
	const tag = "【DEPT_SUMMARY】"

	tests := []struct {
		name    string
		raw     string
		detail  string
		summary string
	}{
		{"tag in middle", "A" + tag + "B", "A", "B"},
		{"tag absent", "A", "A", ""},
		{"tag first", tag + "B", "", "B"},
		{"whitespace trimmed", "  detail \n" + tag + "\n summary \n", "detail", "summary"},
		{"only first occurrence splits", "A" + tag + "B" + tag + "C", "A", "B" + tag + "C"},
		{"empty input", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAtTag(tt.raw, tag)
			if got.Detail != tt.detail {
				t.Errorf("Detail = %q, want %q", got.Detail, tt.detail)
			}
			if got.Summary != tt.summary {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.summary)
			}
		})
	}
}
