package report

import "strings"

// SplitResult separates one raw generation response into the detail text
// that goes into the document body and the summary text carried forward to
// the second stage.
type SplitResult struct {
	Detail  string
	Summary string
}

// SplitAtTag splits raw at the first occurrence of tag. Detail is the
// trimmed text before the tag; Summary is the trimmed remainder. When the
// tag is absent the whole response is detail and Summary is empty; the
// model not contributing a summary is valid output, never an error.
func SplitAtTag(raw, tag string) SplitResult {
	before, after, found := strings.Cut(raw, tag)
	if !found {
		return SplitResult{Detail: strings.TrimSpace(raw)}
	}
	return SplitResult{
		Detail:  strings.TrimSpace(before),
		Summary: strings.TrimSpace(after),
	}
}
