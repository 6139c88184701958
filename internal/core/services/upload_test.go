package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/marginalia/internal/core/domain"
)

func TestSniffMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     string
	}{
		{"pdf content", "report.pdf", testPDF, domain.PDFMIMEType},
		{"pdf content wrong extension", "report.txt", testPDF, domain.PDFMIMEType},
		{"binary with pdf extension", "scan.PDF", []byte{0x00, 0x01, 0x02, 0x03}, domain.PDFMIMEType},
		{"text file", "notes.txt", []byte("hello world"), "text/plain"},
		{"png", "image.pdf", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffMIMEType(tt.fileName, tt.data))
		})
	}
}

func TestValidateUpload(t *testing.T) {
	const limit = 100
	tests := []struct {
		name    string
		upload  domain.Upload
		wantErr error
	}{
		{"valid", domain.Upload{Name: "a.pdf", MIMEType: domain.PDFMIMEType, Size: 10}, nil},
		{"at limit", domain.Upload{Name: "a.pdf", MIMEType: domain.PDFMIMEType, Size: limit}, nil},
		{"wrong type", domain.Upload{Name: "a.png", MIMEType: "image/png", Size: 10}, domain.ErrNotPDF},
		{"wrong type and too large", domain.Upload{Name: "a.png", MIMEType: "image/png", Size: limit + 1}, domain.ErrNotPDF},
		{"too large", domain.Upload{Name: "a.pdf", MIMEType: domain.PDFMIMEType, Size: limit + 1}, domain.ErrFileTooLarge},
		{"empty", domain.Upload{Name: "a.pdf", MIMEType: domain.PDFMIMEType}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.upload, limit)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateUpload_DefaultLimit(t *testing.T) {
	up := domain.Upload{Name: "a.pdf", MIMEType: domain.PDFMIMEType, Size: domain.DefaultMaxUploadBytes}
	assert.NoError(t, ValidateUpload(up, 0))

	up.Size++
	assert.ErrorIs(t, ValidateUpload(up, 0), domain.ErrFileTooLarge)
}
