package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Upload Errors.

	// ErrNotPDF indicates the uploaded file is not a PDF.
	ErrNotPDF = errors.New("Please upload a PDF file") //nolint:staticcheck // user-facing message

	// ErrFileTooLarge indicates the uploaded file exceeds the size limit.
	ErrFileTooLarge = errors.New("File is too large. Maximum size is 10MB.") //nolint:staticcheck // user-facing message

	// Session Errors.

	// ErrNoDocument indicates an operation needs a loaded document.
	ErrNoDocument = errors.New("no document loaded")

	// ErrDocumentLoad indicates the document could not be parsed.
	// The previous session stays usable.
	ErrDocumentLoad = errors.New("Failed to load PDF document") //nolint:staticcheck // user-facing message

	// Capture Errors.

	// ErrNoCapture indicates no comment or signature capture is open.
	ErrNoCapture = errors.New("no capture in progress")

	// ErrEmptySignature indicates a signature save was attempted with nothing drawn or typed.
	// The capture remains open.
	ErrEmptySignature = errors.New("empty signature")

	// ErrEmptyComment indicates a comment save was attempted with no text.
	// The capture is closed without creating a record.
	ErrEmptyComment = errors.New("empty comment")

	// Export Errors.

	// ErrExportInProgress indicates an export is already running.
	ErrExportInProgress = errors.New("export in progress")

	// ErrExportFailed indicates the export collaborator failed as a whole.
	ErrExportFailed = errors.New("export failed")
)
