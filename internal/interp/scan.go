package interp

import (
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
)

// cursor maps byte offsets inside a piece of text back to document
// positions. Columns count characters. Offsets are expected in increasing
// order; a smaller offset rescans from the start of the text.
type cursor struct {
	text  string
	start hcl.Pos

	off int
	at  hcl.Pos
}

func newCursor(text string, start hcl.Pos) *cursor {
	return &cursor{text: text, start: start, at: start}
}

func (c *cursor) pos(offset int) hcl.Pos {
	if offset < c.off {
		c.off, c.at = 0, c.start
	}
	for c.off < offset && c.off < len(c.text) {
		r, size := utf8.DecodeRuneInString(c.text[c.off:])
		if r == '\n' {
			c.at.Line++
			c.at.Column = 1
		} else {
			c.at.Column++
		}
		c.off += size
	}
	p := c.at
	p.Byte = c.start.Byte + offset
	return p
}

func (c *cursor) rng(filename string, from, to int) hcl.Range {
	start := c.pos(from)
	return hcl.Range{Filename: filename, Start: start, End: c.pos(to)}
}

// matchClose returns the offset of the bracket closing the one opened at
// text[open]. Brackets inside quoted strings are ignored.
func matchClose(text string, open int) (int, bool) {
	var stack []byte
	for i := open; i < len(text); i++ {
		switch c := text[i]; c {
		case '"':
			end, ok := skipString(text, i)
			if !ok {
				return 0, false
			}
			i = end
		case '(', '[', '{':
			stack = append(stack, closerFor(c))
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// skipString returns the offset of the quote closing the string literal
// that starts at text[open].
func skipString(text string, open int) (int, bool) {
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

func closerFor(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// splitTopLevel splits text at commas that are not nested inside brackets
// or string literals.
func splitTopLevel(text string) ([]string, bool) {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '"':
			end, ok := skipString(text, i)
			if !ok {
				return nil, false
			}
			i = end
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				parts = append(parts, text[last:i])
				last = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	return append(parts, text[last:]), true
}
