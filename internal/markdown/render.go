// Package markdown parses the constrained Markdown subset the generation
// model is instructed to emit and converts it into styled document blocks.
// It is a line-oriented, best-effort transform: one malformed line never
// aborts the whole render.
package markdown

import (
	"strings"

	"salesbrief/internal/document"
)

// indentUnit is the number of source spaces per bullet nesting level.
const indentUnit = 2

// Render parses text line by line into a document.
//
// Recognized forms: blank line (empty paragraph, preserves vertical
// spacing), "---" alone on a line (horizontal rule), "#".."####" headings,
// "-"/"*" bullets with 2-space indent nesting, and inline **bold** spans.
// Everything else is a plain paragraph.
func Render(text string) *document.Document {
	doc := &document.Document{}
	for _, line := range strings.Split(text, "\n") {
		doc.Append(renderLine(line))
	}
	return doc
}

// renderLine converts one source line to a block. A panic while styling a
// line is swallowed and the line is emitted as a plain unstyled paragraph,
// so malformed model output still yields a complete document.
func renderLine(line string) (block document.Block) {
	defer func() {
		if r := recover(); r != nil {
			block = document.Block{Kind: document.KindParagraph, Text: line}
		}
	}()

	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		return document.Block{Kind: document.KindParagraph}
	}

	if trimmed == "---" {
		return document.Block{Kind: document.KindRule}
	}

	if level, rest, ok := headingLine(trimmed); ok {
		// Headings are bold by construction; inline delimiters are
		// stripped but contribute no extra spans.
		text, _ := extractBold(rest)
		return document.Block{Kind: document.KindHeading, Level: level, Text: text}
	}

	if level, rest, ok := bulletLine(line); ok {
		text, spans := extractBold(rest)
		return document.Block{Kind: document.KindBullet, Level: level, Text: text, Bold: spans}
	}

	text, spans := extractBold(trimmed)
	return document.Block{Kind: document.KindParagraph, Text: text, Bold: spans}
}

// headingLine recognizes "#".."####" followed by a space.
func headingLine(trimmed string) (level int, rest string, ok bool) {
	for level = 0; level < len(trimmed) && trimmed[level] == '#'; level++ {
	}
	if level < 1 || level > 4 {
		return 0, "", false
	}
	if level >= len(trimmed) || trimmed[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(trimmed[level+1:]), true
}

// bulletLine recognizes "- " or "* " after optional indentation. Nesting
// level is indentation width divided by the indent unit.
func bulletLine(line string) (level int, rest string, ok bool) {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	body := line[indent:]
	if len(body) < 2 || (body[0] != '-' && body[0] != '*') || body[1] != ' ' {
		return 0, "", false
	}
	return indent / indentUnit, strings.TrimSpace(body[2:]), true
}

// extractBold rewrites **bold** runs in place: delimiters are removed and
// each enclosed run is reported as a span over the rewritten text. Matches
// are processed left to right, the search cursor advancing past each
// rewritten run, so adjacent and repeated spans keep correct offsets as
// the text shrinks. An unpaired ** is left as literal text.
func extractBold(line string) (string, []document.BoldSpan) {
	var spans []document.BoldSpan
	cursor := 0
	for {
		open := strings.Index(line[cursor:], "**")
		if open < 0 {
			break
		}
		open += cursor
		end := strings.Index(line[open+2:], "**")
		if end < 0 {
			break
		}
		end += open + 2

		inner := line[open+2 : end]
		line = line[:open] + inner + line[end+2:]
		if inner != "" {
			spans = append(spans, document.BoldSpan{Start: open, End: open + len(inner)})
		}
		cursor = open + len(inner)
	}
	return line, spans
}
