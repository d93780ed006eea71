package document

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteError indicates the output artifact could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("document: write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ArtifactName derives the output file name for a report date:
// <prefix>_<ISO-date>.html. Re-runs for the same date derive the same name.
func ArtifactName(prefix string, date time.Time) string {
	return fmt.Sprintf("%s_%s.html", prefix, date.Format("2006-01-02"))
}

// WriteHTML writes the document to dir under its derived name. Any
// pre-existing artifact with the same name is removed first, so re-running
// for the same date supersedes the earlier report instead of accumulating
// copies. Returns the artifact path.
func WriteHTML(doc *Document, dir, prefix string, date time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &WriteError{Path: dir, Err: err}
	}
	path := filepath.Join(dir, ArtifactName(prefix, date))

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", &WriteError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, []byte(RenderHTML(doc)), 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

// RenderHTML serializes the document. The target format exposes enough
// heading levels that markdown levels 1-4 map directly onto h1-h4; no
// degrade-to-bold fallback is needed.
func RenderHTML(doc *Document) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(doc.Title))
	b.WriteString("</head>\n<body>\n")

	for _, block := range doc.Blocks {
		switch block.Kind {
		case KindRule:
			b.WriteString("<hr>\n")
		case KindHeading:
			level := block.Level
			if level < 1 {
				level = 1
			}
			if level > 4 {
				level = 4
			}
			// Headings render bold regardless of inline spans.
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, html.EscapeString(block.Text), level)
		case KindBullet:
			fmt.Fprintf(&b, "<ul class=\"level-%d\"><li>%s</li></ul>\n", block.Level, inlineHTML(block))
		default:
			if block.Text == "" && len(block.Bold) == 0 {
				b.WriteString("<p></p>\n")
				continue
			}
			fmt.Fprintf(&b, "<p>%s</p>\n", inlineHTML(block))
		}
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// inlineHTML escapes the block text and wraps each bold span in <strong>.
// Spans are byte offsets into the unescaped text, processed in order.
func inlineHTML(block Block) string {
	if len(block.Bold) == 0 {
		return html.EscapeString(block.Text)
	}

	var b strings.Builder
	cursor := 0
	for _, span := range block.Bold {
		if span.Start < cursor || span.End > len(block.Text) || span.Start > span.End {
			continue // malformed span, render the text unstyled instead of failing
		}
		b.WriteString(html.EscapeString(block.Text[cursor:span.Start]))
		b.WriteString("<strong>")
		b.WriteString(html.EscapeString(block.Text[span.Start:span.End]))
		b.WriteString("</strong>")
		cursor = span.End
	}
	b.WriteString(html.EscapeString(block.Text[cursor:]))
	return b.String()
}
