// Package source holds template source documents.
package source

import (
	"fmt"
	"os"
	"strings"
)

// Document is an immutable template source text together with the path used
// in diagnostics.
type Document struct {
	Path string
	Text string
}

// New creates a document from in-memory text.
func New(path, text string) *Document {
	return &Document{Path: path, Text: text}
}

// Read loads a document from disk. The file is read fully and closed before
// returning.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template source %s: %w", path, err)
	}
	return &Document{Path: path, Text: string(data)}, nil
}

// Lines splits the document into lines without their terminators. A final
// newline does not produce a trailing empty line.
func (d *Document) Lines() []string {
	text := strings.TrimSuffix(d.Text, "\n")
	if text == "" && d.Text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Bytes returns the document text as bytes, as needed by diagnostic writers.
func (d *Document) Bytes() []byte {
	return []byte(d.Text)
}
