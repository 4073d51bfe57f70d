// Package models defines the data passed between the extraction pipeline, the
// HTTP API and the CLI.
package models

import (
	"path/filepath"
	"strings"
)

// DefaultFilename is used when a caller does not name the document.
const DefaultFilename = "document.pdf"

// Document is the raw input of one extraction request. It is never mutated
// after it has been received.
type Document struct {
	Filename string
	Data     []byte
}

// NewDocument returns a Document, substituting DefaultFilename for an empty name.
func NewDocument(filename string, data []byte) *Document {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = DefaultFilename
	}
	return &Document{Filename: filename, Data: data}
}

// Ext returns the lower-cased filename extension including the leading dot.
func (d *Document) Ext() string {
	return strings.ToLower(filepath.Ext(d.Filename))
}

// Stem returns the filename without directory and extension.
func (d *Document) Stem() string {
	base := filepath.Base(d.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
