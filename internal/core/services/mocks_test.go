package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
)

// testPDF sniffs as application/pdf; the fake renderer never parses it.
var testPDF = []byte("%PDF-1.4\n%test document\n")

// mockRenderer implements driven.Renderer for testing.
type mockRenderer struct {
	numPages int
	err      error
	opened   int
}

func (m *mockRenderer) Open(_ []byte) (driven.RenderedDocument, error) {
	m.opened++
	if m.err != nil {
		return nil, m.err
	}
	return &mockRendered{numPages: m.numPages}, nil
}

// mockRendered implements driven.RenderedDocument for testing.
type mockRendered struct {
	numPages int
}

func (m *mockRendered) NumPages() int { return m.numPages }

func (m *mockRendered) PageSize(page int) (domain.PageSize, error) {
	if page < 1 || page > m.numPages {
		return domain.PageSize{}, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, page)
	}
	return domain.DefaultPageSize, nil
}

func (m *mockRendered) TextLayer(page int) ([]domain.TextRun, error) {
	if page < 1 || page > m.numPages {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, page)
	}
	return []domain.TextRun{{Text: fmt.Sprintf("page %d", page), X: 72, Y: 72, Width: 40, FontSize: 12}}, nil
}

// mockMetadata implements driven.MetadataExtractor for testing.
type mockMetadata struct {
	meta domain.DocumentMetadata
}

func (m *mockMetadata) Extract(_ []byte, fileName string) domain.DocumentMetadata {
	meta := m.meta
	if meta.Title == "" {
		meta.Title = fileName
	}
	return meta
}

// mockExporter implements driven.Exporter for testing.
type mockExporter struct {
	ExportFunc func(ctx context.Context, doc []byte, annotations []domain.Annotation) (*domain.ExportResult, error)
}

func (m *mockExporter) Export(ctx context.Context, doc []byte, annotations []domain.Annotation) (*domain.ExportResult, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, doc, annotations)
	}
	return &domain.ExportResult{Data: doc, MIMEType: domain.PDFMIMEType, Applied: len(annotations)}, nil
}

// mockRasterizer implements driven.SignatureRasterizer for testing.
type mockRasterizer struct {
	calls int
	err   error
}

func (m *mockRasterizer) Rasterize(in domain.SignatureInput) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "data:image/png;base64,c2lnbmF0dXJl", nil
}

// mockWatcher implements driven.DocumentWatcher for testing.
// Changes sent on trigger are forwarded until the watch context ends.
type mockWatcher struct {
	mu      sync.Mutex
	trigger chan struct{}
	paths   []string
	err     error
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{trigger: make(chan struct{})}
}

func (m *mockWatcher) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.paths = append(m.paths, path)

	out := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.trigger:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (m *mockWatcher) watched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}
