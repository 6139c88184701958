package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Size(t *testing.T) {
	doc := &Document{Data: []byte("%PDF-1.7")}
	assert.Equal(t, int64(8), doc.Size())

	assert.Zero(t, (&Document{}).Size())
}

func TestFallbackMetadata(t *testing.T) {
	meta := FallbackMetadata("minutes.pdf")

	assert.Equal(t, "minutes.pdf", meta.Title)
	assert.Zero(t, meta.PageCount)
	assert.Empty(t, meta.Author)
	assert.Empty(t, meta.Keywords)
}

func TestDefaultMaxUploadBytes(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), int64(DefaultMaxUploadBytes))
}

func TestAnnotatedFileName(t *testing.T) {
	assert.Equal(t, "contract-annotated.pdf", AnnotatedFileName("contract.pdf"))
	assert.Equal(t, "report.v2-annotated.pdf", AnnotatedFileName("report.v2.PDF"))
	assert.Equal(t, "notes-annotated.pdf", AnnotatedFileName("notes"))
	assert.Equal(t, "document-annotated.pdf", AnnotatedFileName(""))
}

func TestExportPath(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		dir  string
		want string
	}{
		{"explicit dir", Document{Name: "contract.pdf", Path: "/docs/contract.pdf"}, "/out", filepath.Join("/out", "contract-annotated.pdf")},
		{"next to source", Document{Name: "contract.pdf", Path: "/docs/contract.pdf"}, "", filepath.Join("/docs", "contract-annotated.pdf")},
		{"in memory", Document{Name: "contract.pdf"}, "", "contract-annotated.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportPath(&tt.doc, tt.dir))
		})
	}
}
