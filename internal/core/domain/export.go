package domain

import (
	"path/filepath"
	"strings"
)

// SkippedAnnotation reports an annotation the exporter could not apply.
type SkippedAnnotation struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// ExportResult is the output of an export.
type ExportResult struct {
	// Data is the exported document.
	Data []byte `json:"-"`

	// MIMEType is always application/pdf.
	MIMEType string `json:"mimeType"`

	// Applied counts the annotations written into Data.
	Applied int `json:"applied"`

	// Skipped lists malformed annotations left out of Data.
	Skipped []SkippedAnnotation `json:"skipped,omitempty"`
}

// AnnotatedFileName returns the file name of the exported copy of name.
func AnnotatedFileName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = "document"
	}
	return stem + "-annotated.pdf"
}

// ExportPath returns where the annotated copy of doc is written: in dir when
// set, else next to the source file, else in the working directory.
func ExportPath(doc *Document, dir string) string {
	if dir == "" && doc.Path != "" {
		dir = filepath.Dir(doc.Path)
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, AnnotatedFileName(doc.Name))
}
