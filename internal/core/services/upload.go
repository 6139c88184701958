package services

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// SniffMIMEType returns the content type of a candidate document.
// Content sniffing wins; the file extension is consulted only when the
// content is not recognised.
func SniffMIMEType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/plain") {
		return stripParams(sniffed)
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return stripParams(byExt)
	}
	return stripParams(sniffed)
}

func stripParams(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		return strings.TrimSpace(contentType[:i])
	}
	return contentType
}

// ValidateUpload checks a candidate document before it is parsed.
// The type check runs first, so a large non-PDF reports ErrNotPDF.
// A maxBytes of zero or less selects domain.DefaultMaxUploadBytes.
func ValidateUpload(up domain.Upload, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	if up.MIMEType != domain.PDFMIMEType {
		return domain.ErrNotPDF
	}
	if up.Size > maxBytes {
		return domain.ErrFileTooLarge
	}
	if up.Size == 0 {
		return fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, up.Name)
	}
	return nil
}
