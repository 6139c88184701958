package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// Ensure Workspace implements the interface.
var _ driving.WorkspaceService = (*Workspace)(nil)

// Workspace owns the single live document, its annotations and the tool
// state. Every mutation runs under one mutex, so concurrent callers (MCP
// handlers, the file watcher) observe a single mutator.
type Workspace struct {
	store      driven.AnnotationStore
	renderer   driven.Renderer
	metadata   driven.MetadataExtractor
	exporter   driven.Exporter
	rasterizer driven.SignatureRasterizer
	watcher    driven.DocumentWatcher

	maxBytes int64
	now      func() time.Time

	mu        sync.Mutex
	ctrl      *Controller
	doc       *domain.Document
	rendered  driven.RenderedDocument
	capture   *domain.Capture
	exporting bool

	// loadSeq increases with every Load and Close. A reload only applies
	// while the sequence it started from is current.
	loadSeq   uint64
	stopWatch context.CancelFunc
	reloads   chan domain.Event
}

// NewWorkspace creates a workspace with no document loaded.
// The watcher is optional; without it documents are never reloaded.
func NewWorkspace(
	store driven.AnnotationStore,
	renderer driven.Renderer,
	metadata driven.MetadataExtractor,
	exporter driven.Exporter,
	rasterizer driven.SignatureRasterizer,
	watcher driven.DocumentWatcher,
	settings domain.AppSettings,
) *Workspace {
	initial := domain.DefaultSession()
	initial.Tool = settings.Annotate.Tool
	initial.Color = settings.Annotate.Color
	initial.Zoom = settings.View.Zoom

	return &Workspace{
		store:      store,
		renderer:   renderer,
		metadata:   metadata,
		exporter:   exporter,
		rasterizer: rasterizer,
		watcher:    watcher,
		maxBytes:   settings.Upload.MaxBytes,
		now:        time.Now,
		ctrl:       NewController(initial),
		reloads:    make(chan domain.Event, 1),
	}
}

// Reloads delivers an event each time the watched document is reloaded.
func (w *Workspace) Reloads() <-chan domain.Event {
	return w.reloads
}

// Load validates and parses src and makes it the current document.
func (w *Workspace) Load(ctx context.Context, src driving.DocumentSource) (domain.Event, error) {
	doc, rendered, err := w.prepare(src)
	if err != nil {
		return domain.NoChange(), err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.replaceLocked(ctx, doc, rendered); err != nil {
		return domain.NoChange(), err
	}
	w.loadSeq++
	w.watchLocked(doc.Path, w.loadSeq)

	logger.Info("loaded %s (%d pages, %d bytes)", doc.Name, doc.NumPages, doc.Size())
	return domain.Event{
		Kind:        domain.EventDocumentLoaded,
		Title:       "Document loaded successfully",
		Description: doc.Name + " is ready for annotation.",
	}, nil
}

// Reload re-reads the current document from disk. Annotations are cleared.
func (w *Workspace) Reload(ctx context.Context) (domain.Event, error) {
	w.mu.Lock()
	seq := w.loadSeq
	w.mu.Unlock()
	return w.reload(ctx, seq)
}

func (w *Workspace) reload(ctx context.Context, seq uint64) (domain.Event, error) {
	w.mu.Lock()
	if w.doc == nil {
		w.mu.Unlock()
		return domain.NoChange(), domain.ErrNoDocument
	}
	if w.doc.Path == "" {
		w.mu.Unlock()
		return domain.NoChange(), fmt.Errorf("%w: document was not loaded from a file", domain.ErrInvalidInput)
	}
	path, name := w.doc.Path, w.doc.Name
	w.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.NoChange(), fmt.Errorf("read %s: %w", path, err)
	}
	doc, rendered, err := w.prepare(driving.DocumentSource{Name: name, Path: path, Data: data})
	if err != nil {
		return domain.NoChange(), err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.loadSeq {
		return domain.NoChange(), nil
	}
	if err := w.replaceLocked(ctx, doc, rendered); err != nil {
		return domain.NoChange(), err
	}

	logger.Info("reloaded %s after change on disk", name)
	return domain.Event{
		Kind:        domain.EventDocumentReloaded,
		Title:       "Document reloaded",
		Description: name + " changed on disk. Annotations were cleared.",
	}, nil
}

// prepare validates and parses a document without touching session state.
func (w *Workspace) prepare(src driving.DocumentSource) (*domain.Document, driven.RenderedDocument, error) {
	name := src.Name
	if name == "" {
		name = filepath.Base(src.Path)
	}
	up := domain.Upload{
		Name:     name,
		MIMEType: SniffMIMEType(name, src.Data),
		Size:     int64(len(src.Data)),
	}
	if err := ValidateUpload(up, w.maxBytes); err != nil {
		return nil, nil, err
	}

	rendered, err := w.renderer.Open(src.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrDocumentLoad, err)
	}

	meta := domain.FallbackMetadata(name)
	if w.metadata != nil {
		meta = w.metadata.Extract(src.Data, name)
	}
	if meta.PageCount == 0 {
		logger.Warn("metadata unavailable for %s", name)
	}

	return &domain.Document{
		ID:       uuid.New().String(),
		Name:     name,
		Path:     src.Path,
		MIMEType: up.MIMEType,
		Data:     src.Data,
		NumPages: rendered.NumPages(),
		Metadata: meta,
		LoadedAt: w.now(),
	}, rendered, nil
}

func (w *Workspace) replaceLocked(ctx context.Context, doc *domain.Document, rendered driven.RenderedDocument) error {
	if err := w.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear annotations: %w", err)
	}
	w.doc = doc
	w.rendered = rendered
	w.capture = nil
	w.ctrl.ResetDocument(doc.NumPages)
	return nil
}

// watchLocked replaces the watcher subscription with one for path.
func (w *Workspace) watchLocked(path string, seq uint64) {
	if w.stopWatch != nil {
		w.stopWatch()
		w.stopWatch = nil
	}
	if w.watcher == nil || path == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.watcher.Watch(ctx, path)
	if err != nil {
		cancel()
		logger.Warn("watch %s: %v", path, err)
		return
	}
	w.stopWatch = cancel

	go func() {
		for range changes {
			if ctx.Err() != nil {
				return
			}
			ev, err := w.reload(ctx, seq)
			if err != nil {
				logger.Warn("reload %s: %v", path, err)
				continue
			}
			if !ev.Changed() {
				continue
			}
			select {
			case w.reloads <- ev:
			default:
			}
		}
	}()
}

// Document returns the loaded document, or nil.
func (w *Workspace) Document() *domain.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc
}

// Session returns a copy of the interaction state.
func (w *Workspace) Session() domain.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Session()
}

// PageSize returns the extent of a page of the loaded document.
func (w *Workspace) PageSize(page int) (domain.PageSize, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rendered == nil {
		return domain.PageSize{}, domain.ErrNoDocument
	}
	return w.rendered.PageSize(page)
}

// TextLayer returns the text runs of a page of the loaded document.
func (w *Workspace) TextLayer(page int) ([]domain.TextRun, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rendered == nil {
		return nil, domain.ErrNoDocument
	}
	return w.rendered.TextLayer(page)
}

// SetTool selects the active tool.
func (w *Workspace) SetTool(tool domain.AnnotationType) (domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.SetTool(tool)
}

// SetPage moves to page, clamped to the document.
func (w *Workspace) SetPage(page int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.SetPage(page)
}

// NextPage moves one page forward.
func (w *Workspace) NextPage() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.NextPage()
}

// PrevPage moves one page back.
func (w *Workspace) PrevPage() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.PrevPage()
}

// ZoomIn increases zoom by one step.
func (w *Workspace) ZoomIn() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.ZoomIn()
}

// ZoomOut decreases zoom by one step.
func (w *Workspace) ZoomOut() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.ZoomOut()
}

// SetZoom sets a continuous zoom factor.
func (w *Workspace) SetZoom(z float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.SetZoom(z)
}

// ToggleFullscreen flips fullscreen.
func (w *Workspace) ToggleFullscreen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.ToggleFullscreen()
}

// Escape leaves fullscreen.
func (w *Workspace) Escape() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Escape()
}

// SetColor sets the highlight and underline colour.
func (w *Workspace) SetColor(color string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.SetColor(color)
}

// CycleColor moves to the next palette colour.
func (w *Workspace) CycleColor() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.CycleColor()
}

// Add completes draft with the current tool, colour and page and stores it.
func (w *Workspace) Add(ctx context.Context, draft domain.Draft) (*domain.Annotation, domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doc == nil {
		return nil, domain.NoChange(), domain.ErrNoDocument
	}
	s := w.ctrl.Session()
	return w.addLocked(ctx, s.Tool, s.Page, draft)
}

func (w *Workspace) addLocked(
	ctx context.Context, tool domain.AnnotationType, page int, draft domain.Draft,
) (*domain.Annotation, domain.Event, error) {
	a := domain.Annotation{
		Type:      tool,
		Page:      page,
		Data:      draft.Data,
		CreatedAt: w.now(),
	}
	if draft.Position != nil {
		a.Position = *draft.Position
	}
	if tool.UsesColor() {
		a.Color = w.ctrl.Session().Color
	}
	if tool.IsSelectionBased() {
		a.BoundingRect = draft.BoundingRect
		if a.BoundingRect == nil {
			a.BoundingRect = &domain.Rect{X: a.Position.X, Y: a.Position.Y}
		}
	}
	if err := a.Validate(w.doc.NumPages); err != nil {
		return nil, domain.NoChange(), err
	}

	id, err := w.store.NextID(ctx)
	if err != nil {
		return nil, domain.NoChange(), fmt.Errorf("reserve annotation id: %w", err)
	}
	a.ID = id
	if err := w.store.Append(ctx, a); err != nil {
		return nil, domain.NoChange(), fmt.Errorf("append annotation: %w", err)
	}

	logger.Debug("added %s annotation %d on page %d at (%.1f, %.1f)", a.Type, a.ID, a.Page, a.Position.X, a.Position.Y)
	return &a, domain.Event{
		Kind:        domain.EventAnnotationAdded,
		Title:       "Annotation added",
		Description: fmt.Sprintf("%s annotation added to page %d.", w.ctrl.title.String(a.Type.String()), a.Page),
		Annotation:  &a,
	}, nil
}

// Delete removes an annotation. Missing IDs are a no-op.
func (w *Workspace) Delete(ctx context.Context, id int64) (domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	found, err := w.store.Delete(ctx, id)
	if err != nil {
		return domain.NoChange(), fmt.Errorf("delete annotation %d: %w", id, err)
	}
	if !found {
		logger.Debug("delete: annotation %d not found", id)
		return domain.NoChange(), nil
	}

	logger.Debug("deleted annotation %d", id)
	return domain.Event{
		Kind:        domain.EventAnnotationDeleted,
		Title:       "Annotation deleted",
		Description: "The annotation has been removed.",
	}, nil
}

// UndoLast removes the most recent annotation on the current page.
func (w *Workspace) UndoLast(ctx context.Context) (domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	page := w.ctrl.Session().Page
	removed, err := w.store.UndoLast(ctx, page)
	if err != nil {
		return domain.NoChange(), fmt.Errorf("undo on page %d: %w", page, err)
	}
	if removed == nil {
		return domain.NoChange(), nil
	}

	logger.Debug("undo removed annotation %d on page %d", removed.ID, page)
	return domain.Event{
		Kind:        domain.EventUndo,
		Title:       "Undo",
		Description: "Last annotation has been removed.",
		Annotation:  removed,
	}, nil
}

// Annotations returns the annotations of a page in insertion order.
func (w *Workspace) Annotations(ctx context.Context, page int) ([]domain.Annotation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.ByPage(ctx, page)
}

// AllAnnotations returns every annotation in insertion order.
func (w *Workspace) AllAnnotations(ctx context.Context) ([]domain.Annotation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.All(ctx)
}

// Export produces the annotated copy of the loaded document. Only one export
// runs at a time; the store is read once and never modified.
func (w *Workspace) Export(ctx context.Context) (*domain.ExportResult, domain.Event, error) {
	w.mu.Lock()
	if w.doc == nil {
		w.mu.Unlock()
		return nil, domain.NoChange(), domain.ErrNoDocument
	}
	if w.exporting {
		w.mu.Unlock()
		return nil, domain.NoChange(), domain.ErrExportInProgress
	}
	annotations, err := w.store.All(ctx)
	if err != nil {
		w.mu.Unlock()
		return nil, domain.NoChange(), fmt.Errorf("read annotations: %w", err)
	}
	data := w.doc.Data
	w.exporting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.exporting = false
		w.mu.Unlock()
	}()

	logger.Section("Export")
	logger.Debug("exporting %d annotations", len(annotations))

	result, err := w.exporter.Export(ctx, data, annotations)
	if err != nil {
		logger.Error("export failed: %v", err)
		return nil, domain.NoChange(), fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	for _, s := range result.Skipped {
		logger.Warn("skipped annotation %d: %s", s.ID, s.Reason)
	}

	desc := fmt.Sprintf("%d annotations applied.", result.Applied)
	if len(result.Skipped) > 0 {
		desc = fmt.Sprintf("%d annotations applied, %d skipped.", result.Applied, len(result.Skipped))
	}
	return result, domain.Event{
		Kind:        domain.EventExported,
		Title:       "Document exported successfully",
		Description: desc,
	}, nil
}

// Exporting reports whether an export is running.
func (w *Workspace) Exporting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exporting
}

// Close releases the document and stops watching it.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopWatch != nil {
		w.stopWatch()
		w.stopWatch = nil
	}
	w.doc = nil
	w.rendered = nil
	w.capture = nil
	w.loadSeq++
	return nil
}
