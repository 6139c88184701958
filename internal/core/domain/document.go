package domain

import "time"

// PDFMIMEType is the only accepted input and the export output type.
const PDFMIMEType = "application/pdf"

// DefaultMaxUploadBytes is the largest accepted input file (10MB).
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// Document is the loaded PDF for the current session.
// Data is read-only once loaded.
type Document struct {
	// ID identifies the session the document was loaded into.
	ID string

	// Name is the file name the document was loaded from.
	Name string

	// Path is the file path, empty for documents loaded from memory.
	Path string

	// MIMEType is the sniffed content type.
	MIMEType string

	// Data is the raw document bytes.
	Data []byte

	// NumPages is reported by the rendering collaborator.
	NumPages int

	// Metadata is best-effort information about the document.
	Metadata DocumentMetadata

	// LoadedAt is when the document replaced the previous one.
	LoadedAt time.Time
}

// Size returns the document size in bytes.
func (d *Document) Size() int64 {
	return int64(len(d.Data))
}

// DocumentMetadata holds information extracted from the PDF Info dictionary.
// Every field is optional.
type DocumentMetadata struct {
	Title string `json:"title,omitempty"`

	Author string `json:"author,omitempty"`

	// CreationDate is formatted YYYY-MM-DD.
	CreationDate string `json:"creationDate,omitempty"`

	PageCount int `json:"pageCount"`

	Keywords []string `json:"keywords,omitempty"`

	Subject string `json:"subject,omitempty"`
}

// FallbackMetadata is returned when extraction fails.
func FallbackMetadata(fileName string) DocumentMetadata {
	return DocumentMetadata{
		Title:     fileName,
		PageCount: 0,
	}
}

// Upload describes a file offered for loading before it is accepted.
type Upload struct {
	// Name is the file name.
	Name string

	// MIMEType is the declared or sniffed content type.
	MIMEType string

	// Size is the file size in bytes.
	Size int64
}
