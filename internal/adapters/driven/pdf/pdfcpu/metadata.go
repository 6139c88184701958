package pdfcpu

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// Ensure MetadataExtractor implements the interface.
var _ driven.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor reads the Info dictionary with pdfcpu.
type MetadataExtractor struct {
	now func() time.Time
}

// NewMetadataExtractor creates a new metadata extractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{now: time.Now}
}

// Extract returns the document metadata. Any failure, including a panic
// inside pdfcpu, yields domain.FallbackMetadata(fileName).
func (e *MetadataExtractor) Extract(data []byte, fileName string) (meta domain.DocumentMetadata) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("metadata extraction panicked for %s: %v", fileName, rec)
			meta = domain.FallbackMetadata(fileName)
		}
	}()

	meta, err := e.extract(data, fileName)
	if err != nil {
		logger.Warn("metadata extraction failed for %s: %v", fileName, err)
		return domain.FallbackMetadata(fileName)
	}
	return meta
}

func (e *MetadataExtractor) extract(data []byte, fileName string) (domain.DocumentMetadata, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), configuration())
	if err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("read: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return domain.DocumentMetadata{}, fmt.Errorf("validate: %w", err)
	}

	title := strings.TrimSpace(ctx.Title)
	if title == "" {
		title = fileName
	}

	return domain.DocumentMetadata{
		Title:        title,
		Author:       strings.TrimSpace(ctx.Author),
		CreationDate: formatCreationDate(ctx.XRefTable.CreationDate, e.now()),
		PageCount:    ctx.PageCount,
		Keywords:     splitKeywords(ctx.Keywords),
		Subject:      strings.TrimSpace(ctx.Subject),
	}, nil
}

// formatCreationDate converts a PDF date ("D:20240115103000Z") or an ISO
// date to YYYY-MM-DD. Without a readable date, today's date is used.
func formatCreationDate(raw string, now time.Time) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "D:")
	if len(s) >= 8 {
		if t, err := time.Parse("20060102", s[:8]); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse(time.DateOnly, s[:10]); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return now.Format(time.DateOnly)
}

// splitKeywords splits a comma separated keyword list, dropping empty entries.
func splitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
