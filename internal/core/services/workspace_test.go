package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
)

type workspaceFixture struct {
	ws         *Workspace
	store      *memory.AnnotationStore
	renderer   *mockRenderer
	exporter   *mockExporter
	rasterizer *mockRasterizer
}

func newWorkspaceFixture(t *testing.T, numPages int) *workspaceFixture {
	t.Helper()
	f := &workspaceFixture{
		store:      memory.NewAnnotationStore(),
		renderer:   &mockRenderer{numPages: numPages},
		exporter:   &mockExporter{},
		rasterizer: &mockRasterizer{},
	}
	f.ws = NewWorkspace(f.store, f.renderer, &mockMetadata{}, f.exporter, f.rasterizer, nil, domain.DefaultAppSettings())
	t.Cleanup(func() { _ = f.ws.Close() })
	return f
}

func (f *workspaceFixture) load(t *testing.T) {
	t.Helper()
	_, err := f.ws.Load(context.Background(), driving.DocumentSource{Name: "contract.pdf", Data: testPDF})
	require.NoError(t, err)
}

func (f *workspaceFixture) add(t *testing.T, tool domain.AnnotationType, pos domain.Point) *domain.Annotation {
	t.Helper()
	_, err := f.ws.SetTool(tool)
	require.NoError(t, err)
	a, _, err := f.ws.Add(context.Background(), domain.Draft{Position: &pos, Data: "note"})
	require.NoError(t, err)
	return a
}

func TestNewWorkspace_AppliesSettings(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Annotate.Tool = domain.AnnotationComment
	settings.Annotate.Color = "#F44336"
	settings.View.Zoom = 1.5

	ws := NewWorkspace(memory.NewAnnotationStore(), &mockRenderer{numPages: 1}, nil, &mockExporter{}, &mockRasterizer{}, nil, settings)
	s := ws.Session()

	assert.Equal(t, domain.AnnotationComment, s.Tool)
	assert.Equal(t, "#F44336", s.Color)
	assert.Equal(t, 1.5, s.Zoom)
	assert.Nil(t, ws.Document())
}

func TestWorkspace_Load(t *testing.T) {
	f := newWorkspaceFixture(t, 3)

	ev, err := f.ws.Load(context.Background(), driving.DocumentSource{Name: "contract.pdf", Data: testPDF})

	require.NoError(t, err)
	assert.Equal(t, domain.EventDocumentLoaded, ev.Kind)
	assert.Equal(t, "Document loaded successfully", ev.Title)
	assert.Equal(t, "contract.pdf is ready for annotation.", ev.Description)

	doc := f.ws.Document()
	require.NotNil(t, doc)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "contract.pdf", doc.Name)
	assert.Equal(t, domain.PDFMIMEType, doc.MIMEType)
	assert.Equal(t, 3, doc.NumPages)
	assert.Equal(t, "contract.pdf", doc.Metadata.Title)

	s := f.ws.Session()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 3, s.NumPages)
}

func TestWorkspace_Load_NameFromPath(t *testing.T) {
	f := newWorkspaceFixture(t, 1)

	_, err := f.ws.Load(context.Background(), driving.DocumentSource{Path: "/tmp/docs/lease.pdf", Data: testPDF})

	require.NoError(t, err)
	assert.Equal(t, "lease.pdf", f.ws.Document().Name)
}

func TestWorkspace_Load_RejectsNonPDF(t *testing.T) {
	f := newWorkspaceFixture(t, 1)

	_, err := f.ws.Load(context.Background(), driving.DocumentSource{Name: "notes.txt", Data: []byte("plain text")})

	assert.ErrorIs(t, err, domain.ErrNotPDF)
	assert.Nil(t, f.ws.Document())
	assert.Zero(t, f.renderer.opened)
}

func TestWorkspace_Load_RejectsLargeFile(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Upload.MaxBytes = 8
	ws := NewWorkspace(memory.NewAnnotationStore(), &mockRenderer{numPages: 1}, nil, &mockExporter{}, &mockRasterizer{}, nil, settings)

	_, err := ws.Load(context.Background(), driving.DocumentSource{Name: "big.pdf", Data: testPDF})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestWorkspace_Load_ParseFailureKeepsPrevious(t *testing.T) {
	f := newWorkspaceFixture(t, 2)
	f.load(t)
	a := f.add(t, domain.AnnotationComment, domain.Point{X: 1, Y: 1})

	f.renderer.err = errors.New("broken xref")
	_, err := f.ws.Load(context.Background(), driving.DocumentSource{Name: "broken.pdf", Data: testPDF})

	assert.ErrorIs(t, err, domain.ErrDocumentLoad)
	assert.Equal(t, "contract.pdf", f.ws.Document().Name)
	all, err := f.ws.AllAnnotations(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)
}

func TestWorkspace_Load_ResetsDocumentState(t *testing.T) {
	f := newWorkspaceFixture(t, 5)
	f.load(t)
	f.add(t, domain.AnnotationComment, domain.Point{X: 1, Y: 1})
	_, _ = f.ws.SetTool(domain.AnnotationUnderline)
	require.NoError(t, f.ws.SetColor("#9C27B0"))
	f.ws.ZoomIn()
	f.ws.ToggleFullscreen()
	f.ws.SetPage(4)

	f.renderer.numPages = 2
	f.load(t)

	all, err := f.ws.AllAnnotations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	s := f.ws.Session()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 2, s.NumPages)
	assert.Equal(t, domain.AnnotationUnderline, s.Tool)
	assert.Equal(t, "#9C27B0", s.Color)
	assert.InDelta(t, 1.1, s.Zoom, 1e-9)
	assert.True(t, s.Fullscreen)
}

func TestWorkspace_RequiresDocument(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	ctx := context.Background()

	_, _, err := f.ws.Add(ctx, domain.Draft{})
	assert.ErrorIs(t, err, domain.ErrNoDocument)

	_, _, err = f.ws.Export(ctx)
	assert.ErrorIs(t, err, domain.ErrNoDocument)

	_, err = f.ws.Reload(ctx)
	assert.ErrorIs(t, err, domain.ErrNoDocument)

	_, err = f.ws.PageSize(1)
	assert.ErrorIs(t, err, domain.ErrNoDocument)

	_, err = f.ws.TextLayer(1)
	assert.ErrorIs(t, err, domain.ErrNoDocument)

	_, err = f.ws.Click(domain.Point{}, domain.Point{})
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}

func TestWorkspace_PageSizeAndTextLayer(t *testing.T) {
	f := newWorkspaceFixture(t, 2)
	f.load(t)

	size, err := f.ws.PageSize(2)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPageSize, size)

	runs, err := f.ws.TextLayer(2)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "page 2", runs[0].Text)

	_, err = f.ws.PageSize(3)
	assert.Error(t, err)
}

func TestWorkspace_Add_IDsUniqueAndIncreasing(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)

	var last int64
	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		a := f.add(t, domain.AnnotationComment, domain.Point{X: float64(i), Y: 1})
		assert.False(t, seen[a.ID], "duplicate id %d", a.ID)
		assert.Greater(t, a.ID, last)
		seen[a.ID] = true
		last = a.ID
	}
}

func TestWorkspace_Add_IDsNotReusedAfterUndo(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)

	first := f.add(t, domain.AnnotationComment, domain.Point{})
	_, err := f.ws.UndoLast(context.Background())
	require.NoError(t, err)
	second := f.add(t, domain.AnnotationComment, domain.Point{})

	assert.Greater(t, second.ID, first.ID)
}

func TestWorkspace_Add_CompletesDraft(t *testing.T) {
	f := newWorkspaceFixture(t, 3)
	f.load(t)
	f.ws.SetPage(2)

	hl := f.add(t, domain.AnnotationHighlight, domain.Point{X: 10, Y: 20})
	assert.Equal(t, domain.AnnotationHighlight, hl.Type)
	assert.Equal(t, 2, hl.Page)
	assert.Equal(t, domain.DefaultColor, hl.Color)
	require.NotNil(t, hl.BoundingRect)
	assert.Equal(t, domain.Rect{X: 10, Y: 20}, *hl.BoundingRect)
	assert.False(t, hl.CreatedAt.IsZero())

	c := f.add(t, domain.AnnotationComment, domain.Point{X: 5, Y: 6})
	assert.Empty(t, c.Color)
	assert.Nil(t, c.BoundingRect)
	assert.Equal(t, domain.Point{X: 5, Y: 6}, c.Position)
}

func TestWorkspace_Add_DefaultPosition(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)
	_, _ = f.ws.SetTool(domain.AnnotationComment)

	a, ev, err := f.ws.Add(context.Background(), domain.Draft{Data: "hi"})

	require.NoError(t, err)
	assert.Equal(t, domain.Point{}, a.Position)
	assert.Equal(t, domain.EventAnnotationAdded, ev.Kind)
	assert.Equal(t, "Annotation added", ev.Title)
	assert.Equal(t, "Comment annotation added to page 1.", ev.Description)
	assert.Equal(t, a, ev.Annotation)
}

func TestWorkspace_Annotations_InsertionOrderPerPage(t *testing.T) {
	f := newWorkspaceFixture(t, 2)
	f.load(t)
	ctx := context.Background()

	a1 := f.add(t, domain.AnnotationComment, domain.Point{X: 1})
	f.ws.SetPage(2)
	b1 := f.add(t, domain.AnnotationComment, domain.Point{X: 2})
	f.ws.SetPage(1)
	a2 := f.add(t, domain.AnnotationComment, domain.Point{X: 3})

	page1, err := f.ws.Annotations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, a1.ID, page1[0].ID)
	assert.Equal(t, a2.ID, page1[1].ID)

	all, err := f.ws.AllAnnotations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{a1.ID, b1.ID, a2.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestWorkspace_Delete(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)
	ctx := context.Background()
	a := f.add(t, domain.AnnotationComment, domain.Point{})
	b := f.add(t, domain.AnnotationComment, domain.Point{})

	ev, err := f.ws.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventAnnotationDeleted, ev.Kind)
	assert.Equal(t, "The annotation has been removed.", ev.Description)

	all, err := f.ws.AllAnnotations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestWorkspace_Delete_MissingIsNoOp(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)
	f.add(t, domain.AnnotationComment, domain.Point{})

	ev, err := f.ws.Delete(context.Background(), 999)

	require.NoError(t, err)
	assert.False(t, ev.Changed())
	n, _ := f.store.Count(context.Background())
	assert.Equal(t, 1, n)
}

func TestWorkspace_UndoLast_CurrentPageOnly(t *testing.T) {
	f := newWorkspaceFixture(t, 2)
	f.load(t)
	ctx := context.Background()

	p1 := f.add(t, domain.AnnotationComment, domain.Point{})
	f.ws.SetPage(2)
	p2 := f.add(t, domain.AnnotationComment, domain.Point{})
	f.ws.SetPage(1)

	ev, err := f.ws.UndoLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EventUndo, ev.Kind)
	assert.Equal(t, "Last annotation has been removed.", ev.Description)
	require.NotNil(t, ev.Annotation)
	assert.Equal(t, p1.ID, ev.Annotation.ID)

	ev, err = f.ws.UndoLast(ctx)
	require.NoError(t, err)
	assert.False(t, ev.Changed())

	all, err := f.ws.AllAnnotations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, p2.ID, all[0].ID)
}

func TestWorkspace_UndoLast_Scenarios(t *testing.T) {
	comment := func(page int, text string) domain.AnnotationRequest {
		return domain.AnnotationRequest{Type: domain.AnnotationComment, Page: page, Data: text}
	}

	tests := []struct {
		name     string
		numPages int
		adds     []domain.AnnotationRequest
		undoPage int
		removed  int
		before   map[int]int
		after    map[int]int
	}{
		{
			name:     "second comment on page 2 removed, page 3 untouched",
			numPages: 3,
			adds:     []domain.AnnotationRequest{comment(2, "first"), comment(2, "second"), comment(3, "third")},
			undoPage: 2,
			removed:  1,
			before:   map[int]int{2: 2, 3: 1},
			after:    map[int]int{2: 1, 3: 1},
		},
		{
			name:     "single highlight added then undone",
			numPages: 1,
			adds: []domain.AnnotationRequest{{
				Type: domain.AnnotationHighlight, Page: 1, Position: domain.Point{X: 10, Y: 20},
				Color: "#FFEB3B", Data: "hello",
			}},
			undoPage: 1,
			removed:  0,
			before:   map[int]int{1: 1},
			after:    map[int]int{1: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkspaceFixture(t, tt.numPages)
			f.load(t)
			ctx := context.Background()

			var added []*domain.Annotation
			for _, req := range tt.adds {
				a, _, err := f.ws.Apply(ctx, req)
				require.NoError(t, err)
				added = append(added, a)
			}
			for page, n := range tt.before {
				got, err := f.ws.Annotations(ctx, page)
				require.NoError(t, err)
				assert.Len(t, got, n, "page %d before undo", page)
			}

			f.ws.SetPage(tt.undoPage)
			ev, err := f.ws.UndoLast(ctx)

			require.NoError(t, err)
			require.NotNil(t, ev.Annotation)
			assert.Equal(t, *added[tt.removed], *ev.Annotation)
			for page, n := range tt.after {
				got, err := f.ws.Annotations(ctx, page)
				require.NoError(t, err)
				assert.Len(t, got, n, "page %d after undo", page)
				for _, a := range got {
					assert.NotEqual(t, added[tt.removed].ID, a.ID)
				}
			}
		})
	}
}

func TestWorkspace_Add_HighlightRecord(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)
	ctx := context.Background()

	a, _, err := f.ws.Apply(ctx, domain.AnnotationRequest{
		Type: domain.AnnotationHighlight, Page: 1, Position: domain.Point{X: 10, Y: 20},
		Color: "#FFEB3B", Data: "hello",
	})
	require.NoError(t, err)

	got, err := f.ws.Annotations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *a, got[0])
	assert.Equal(t, domain.Point{X: 10, Y: 20}, got[0].Position)
	assert.Equal(t, "#FFEB3B", got[0].Color)
	assert.Equal(t, "hello", got[0].Data)
}

func TestWorkspace_Export(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)
	f.add(t, domain.AnnotationComment, domain.Point{})
	f.add(t, domain.AnnotationComment, domain.Point{})

	var got []domain.Annotation
	f.exporter.ExportFunc = func(_ context.Context, doc []byte, annotations []domain.Annotation) (*domain.ExportResult, error) {
		got = annotations
		return &domain.ExportResult{
			Data:     append([]byte(nil), doc...),
			MIMEType: domain.PDFMIMEType,
			Applied:  1,
			Skipped:  []domain.SkippedAnnotation{{ID: annotations[1].ID, Reason: "bad"}},
		}, nil
	}

	result, ev, err := f.ws.Export(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, testPDF, result.Data)
	assert.Equal(t, domain.EventExported, ev.Kind)
	assert.Equal(t, "Document exported successfully", ev.Title)
	assert.Equal(t, "1 annotations applied, 1 skipped.", ev.Description)
	assert.False(t, f.ws.Exporting())
}

func TestWorkspace_Export_FailureLeavesStore(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)
	f.add(t, domain.AnnotationComment, domain.Point{})
	f.exporter.ExportFunc = func(context.Context, []byte, []domain.Annotation) (*domain.ExportResult, error) {
		return nil, errors.New("disk full")
	}

	_, ev, err := f.ws.Export(context.Background())

	assert.ErrorIs(t, err, domain.ErrExportFailed)
	assert.False(t, ev.Changed())
	assert.False(t, f.ws.Exporting())
	n, _ := f.store.Count(context.Background())
	assert.Equal(t, 1, n)
}

func TestWorkspace_Export_RejectsConcurrentExport(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.exporter.ExportFunc = func(_ context.Context, doc []byte, _ []domain.Annotation) (*domain.ExportResult, error) {
		close(started)
		<-release
		return &domain.ExportResult{Data: doc}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := f.ws.Export(context.Background())
		done <- err
	}()
	<-started

	assert.True(t, f.ws.Exporting())
	_, _, err := f.ws.Export(context.Background())
	assert.ErrorIs(t, err, domain.ErrExportInProgress)

	// Other operations are not blocked by a running export.
	assert.Equal(t, 1, f.ws.Session().Page)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.ws.Exporting())
}

func TestWorkspace_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.pdf")
	require.NoError(t, os.WriteFile(path, testPDF, 0600))

	f := newWorkspaceFixture(t, 2)
	_, err := f.ws.Load(context.Background(), driving.DocumentSource{Path: path, Data: testPDF})
	require.NoError(t, err)
	f.add(t, domain.AnnotationComment, domain.Point{})
	firstID := f.ws.Document().ID

	ev, err := f.ws.Reload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.EventDocumentReloaded, ev.Kind)
	assert.Equal(t, "draft.pdf changed on disk. Annotations were cleared.", ev.Description)
	assert.NotEqual(t, firstID, f.ws.Document().ID)
	n, _ := f.store.Count(context.Background())
	assert.Zero(t, n)
}

func TestWorkspace_Reload_RequiresPath(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)

	_, err := f.ws.Reload(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWorkspace_WatcherTriggersReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.pdf")
	require.NoError(t, os.WriteFile(path, testPDF, 0600))

	watcher := newMockWatcher()
	store := memory.NewAnnotationStore()
	ws := NewWorkspace(store, &mockRenderer{numPages: 1}, nil, &mockExporter{}, &mockRasterizer{}, watcher, domain.DefaultAppSettings())
	defer ws.Close()

	_, err := ws.Load(context.Background(), driving.DocumentSource{Path: path, Data: testPDF})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, watcher.watched())

	_, _ = ws.SetTool(domain.AnnotationComment)
	_, _, err = ws.Add(context.Background(), domain.Draft{Data: "x"})
	require.NoError(t, err)

	watcher.trigger <- struct{}{}

	select {
	case ev := <-ws.Reloads():
		assert.Equal(t, domain.EventDocumentReloaded, ev.Kind)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload event")
	}
	n, _ := store.Count(context.Background())
	assert.Zero(t, n)
}

func TestWorkspace_Close(t *testing.T) {
	f := newWorkspaceFixture(t, 1)
	f.load(t)

	require.NoError(t, f.ws.Close())

	assert.Nil(t, f.ws.Document())
	_, _, err := f.ws.Add(context.Background(), domain.Draft{})
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}
