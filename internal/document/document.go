// Package document holds the styled document model produced by the
// markdown renderer and writes it out as an HTML artifact.
package document

// Kind discriminates block types.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindBullet
	KindRule
)

// BoldSpan marks a bold run inside a block's text, as [Start, End) byte
// offsets into Text after delimiter removal.
type BoldSpan struct {
	Start int
	End   int
}

// Block is one document element. Level means heading level (1-4) for
// headings and nesting depth (0-based) for bullets; it is unused for
// paragraphs and rules.
type Block struct {
	Kind  Kind
	Level int
	Text  string
	Bold  []BoldSpan
}

// Document is an ordered sequence of blocks.
type Document struct {
	Title  string
	Blocks []Block
}

// Append adds a block, keeping the zero value usable.
func (d *Document) Append(b Block) {
	d.Blocks = append(d.Blocks, b)
}
