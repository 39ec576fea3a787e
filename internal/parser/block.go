package parser

import "fmt"

// Kind distinguishes import blocks from definition blocks.
type Kind int

const (
	KindImport Kind = iota + 1
	KindDefinition
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindDefinition:
		return "definition"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Line is a piece of source text with the 1-based line number it starts on.
// Number is 0 for text that is absent from the document.
type Line struct {
	Number int    `yaml:"line" json:"line" msgpack:"line"`
	Text   string `yaml:"text" json:"text" msgpack:"text"`
}

// Block is one parsed unit of a template document.
type Block struct {
	Kind      Kind
	Signature Line
	Body      Line
	Doc       Line
	Options   []string
}
