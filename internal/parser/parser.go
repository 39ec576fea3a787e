package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/ftmpl/internal/source"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s can name a transform option or parameter.
func IsIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// Parse tokenizes a document into an ordered list of blocks.
func Parse(doc *source.Document) ([]Block, error) {
	p := &parser{doc: doc, lines: doc.Lines()}
	p.offsets = lineOffsets(doc.Text)
	return p.parse()
}

type parser struct {
	doc     *source.Document
	lines   []string
	offsets []int
	pos     int
}

func (p *parser) parse() ([]Block, error) {
	var blocks []Block
	seenDefinition := false

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		lineNo := p.pos + 1

		if !strings.HasPrefix(line, "[") {
			// Only reachable before the first definition; definitions consume
			// every following non-control line as body.
			if strings.TrimSpace(line) == "" {
				p.pos++
				continue
			}
			return nil, p.errorf(lineNo, nil, "text outside of a block; a document starts with [import ...] or [signature] lines")
		}

		inner, ok := controlText(line)
		if !ok {
			return nil, p.errorf(lineNo, nil, "unterminated control line; expected ']' at end of line")
		}
		p.pos++

		if keyword, rest, isImport := splitImport(inner); isImport {
			if seenDefinition {
				return nil, p.errorf(lineNo, nil, "imports must appear before the first definition")
			}
			if rest == "" {
				return nil, p.errorf(lineNo, nil, "%s statement without a module name", keyword)
			}
			blocks = append(blocks, Block{
				Kind:      KindImport,
				Signature: Line{Number: lineNo, Text: keyword + " " + rest},
			})
			continue
		}

		block, err := p.definition(lineNo, inner)
		if err != nil {
			return nil, err
		}
		seenDefinition = true
		blocks = append(blocks, block)
	}

	if !seenDefinition {
		return nil, p.errorf(0, ErrNoDefinitions, "at least one definition block is required")
	}
	return blocks, nil
}

// definition parses the remainder of a definition block whose control line
// has already been consumed.
func (p *parser) definition(lineNo int, inner string) (Block, error) {
	signature, optionText, hasOptions := strings.Cut(inner, ";")
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return Block{}, p.errorf(lineNo, nil, "empty signature")
	}

	block := Block{
		Kind:      KindDefinition,
		Signature: Line{Number: lineNo, Text: signature},
		Options:   []string{},
	}

	if hasOptions {
		for _, opt := range strings.Split(optionText, ",") {
			opt = strings.TrimSpace(opt)
			if !IsIdentifier(opt) {
				return Block{}, p.errorf(lineNo, nil, "invalid option %q; options are comma separated identifiers", opt)
			}
			block.Options = append(block.Options, opt)
		}
	}

	if p.pos < len(p.lines) {
		if text, ok := docText(p.lines[p.pos]); ok {
			block.Doc = Line{Number: p.pos + 1, Text: text}
			p.pos++
		}
	}

	start := p.pos
	for p.pos < len(p.lines) && !strings.HasPrefix(p.lines[p.pos], "[") {
		p.pos++
	}
	if p.pos > start {
		block.Body = Line{Number: start + 1, Text: strings.Join(p.lines[start:p.pos], "\n")}
	}

	return block, nil
}

// controlText returns the text between the opening '[' and the closing ']'
// that ends the line.
func controlText(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < 2 || !strings.HasSuffix(trimmed, "]") {
		return "", false
	}
	return trimmed[1 : len(trimmed)-1], true
}

func splitImport(inner string) (keyword, rest string, ok bool) {
	for _, kw := range []string{"import", "from"} {
		if inner == kw {
			return kw, "", true
		}
		if strings.HasPrefix(inner, kw) && len(inner) > len(kw) && (inner[len(kw)] == ' ' || inner[len(kw)] == '\t') {
			return kw, strings.TrimSpace(inner[len(kw):]), true
		}
	}
	return "", "", false
}

func docText(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < 4 || !strings.HasPrefix(trimmed, `["`) || !strings.HasSuffix(trimmed, `"]`) {
		return "", false
	}
	return trimmed[2 : len(trimmed)-2], true
}

func (p *parser) errorf(lineNo int, wrapped error, format string, args ...any) *SyntaxError {
	err := &SyntaxError{
		Path: p.doc.Path,
		Line: lineNo,
		Msg:  fmt.Sprintf(format, args...),
		Err:  wrapped,
	}
	if lineNo > 0 && lineNo <= len(p.lines) {
		start := p.offsets[lineNo-1]
		err.subject = &hcl.Range{
			Filename: p.doc.Path,
			Start:    hcl.Pos{Line: lineNo, Column: 1, Byte: start},
			End:      hcl.Pos{Line: lineNo, Column: len(p.lines[lineNo-1]) + 1, Byte: start + len(p.lines[lineNo-1])},
		}
	}
	return err
}

// lineOffsets returns the byte offset at which each line starts.
func lineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
