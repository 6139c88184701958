package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driving"
	"github.com/custodia-labs/marginalia/internal/logger"
)

// EmptyInput is the input schema of tools without arguments.
type EmptyInput struct{}

// LoadDocumentInput is the input schema for the load_document tool.
type LoadDocumentInput struct {
	Path string `json:"path" jsonschema:"path of the PDF file to load"`
}

// DocumentOutput describes the loaded document.
type DocumentOutput struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Path         string   `json:"path,omitempty"`
	Pages        int      `json:"pages"`
	Size         int64    `json:"size"`
	Title        string   `json:"title,omitempty"`
	Author       string   `json:"author,omitempty"`
	CreationDate string   `json:"creation_date,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// SessionOutput is the output schema for the get_session tool.
type SessionOutput struct {
	Document    *DocumentOutput `json:"document,omitempty"`
	Tool        string          `json:"tool"`
	Color       string          `json:"color"`
	Page        int             `json:"page"`
	NumPages    int             `json:"num_pages"`
	Zoom        float64         `json:"zoom"`
	Annotations int             `json:"annotations"`
	Exporting   bool            `json:"exporting"`
}

// SetToolInput is the input schema for the set_tool tool.
type SetToolInput struct {
	Tool string `json:"tool" jsonschema:"one of highlight, underline, comment, signature"`
}

// SetPageInput is the input schema for the set_page tool.
type SetPageInput struct {
	Page int `json:"page" jsonschema:"1-based page number; clamped to the document"`
}

// SetColorInput is the input schema for the set_color tool.
type SetColorInput struct {
	Color string `json:"color" jsonschema:"highlight and underline colour as #RRGGBB"`
}

// AddAnnotationInput is the input schema for the add_annotation tool.
type AddAnnotationInput struct {
	Type   string  `json:"type" jsonschema:"one of highlight, underline, comment, signature"`
	Page   int     `json:"page,omitempty" jsonschema:"1-based page; defaults to the current page"`
	X      float64 `json:"x" jsonschema:"left edge in points from the top-left of the page"`
	Y      float64 `json:"y" jsonschema:"top edge in points from the top-left of the page"`
	Width  float64 `json:"width,omitempty" jsonschema:"width in points of the marked text (highlight, underline)"`
	Height float64 `json:"height,omitempty" jsonschema:"height in points of the marked text (highlight, underline)"`
	Color  string  `json:"color,omitempty" jsonschema:"#RRGGBB colour for highlight and underline"`
	Text   string  `json:"text,omitempty" jsonschema:"marked text or comment text"`
	Bold   bool    `json:"bold,omitempty" jsonschema:"format the comment in bold"`
	Italic bool    `json:"italic,omitempty" jsonschema:"format the comment in italic"`
	Name   string  `json:"name,omitempty" jsonschema:"name rendered as a typed signature"`
	Font   string  `json:"font,omitempty" jsonschema:"signature font: signature, handwritten or standard"`
}

// AnnotationOutput represents a single annotation.
type AnnotationOutput struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Page      int         `json:"page"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Color     string      `json:"color,omitempty"`
	Text      string      `json:"text,omitempty"`
	Rect      *RectOutput `json:"rect,omitempty"`
	CreatedAt string      `json:"created_at"`
}

// RectOutput is the bounding rectangle of a highlight or underline.
type RectOutput struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MutationOutput reports the outcome of a change to the session.
type MutationOutput struct {
	Changed    bool              `json:"changed"`
	Message    string            `json:"message,omitempty"`
	Annotation *AnnotationOutput `json:"annotation,omitempty"`
}

// ListAnnotationsInput is the input schema for the list_annotations tool.
type ListAnnotationsInput struct {
	Page int `json:"page,omitempty" jsonschema:"1-based page; zero lists every page"`
}

// ListAnnotationsOutput is the output schema for the list_annotations tool.
type ListAnnotationsOutput struct {
	Annotations []AnnotationOutput `json:"annotations"`
	Count       int                `json:"count"`
}

// DeleteAnnotationInput is the input schema for the delete_annotation tool.
type DeleteAnnotationInput struct {
	ID int64 `json:"id" jsonschema:"identifier of the annotation to remove"`
}

// ExportInput is the input schema for the export tool.
type ExportInput struct {
	Path string `json:"path,omitempty" jsonschema:"output file; defaults to <name>-annotated.pdf next to the source"`
}

// ExportOutput is the output schema for the export tool.
type ExportOutput struct {
	Path    string   `json:"path"`
	Size    int      `json:"size"`
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped,omitempty"`
	Message string   `json:"message,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_document",
		Description: "Load a PDF file, replacing the current document and clearing its annotations",
	}, s.handleLoadDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_session",
		Description: "Describe the loaded document and the current tool, colour, page and zoom",
	}, s.handleGetSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_tool",
		Description: "Select the active annotation tool",
	}, s.handleSetTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_page",
		Description: "Move to a page of the loaded document",
	}, s.handleSetPage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_color",
		Description: "Set the highlight and underline colour",
	}, s.handleSetColor)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_annotation",
		Description: "Add a highlight, underline, comment or typed signature to a page",
	}, s.handleAddAnnotation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_annotations",
		Description: "List annotations in insertion order",
	}, s.handleListAnnotations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_annotation",
		Description: "Remove an annotation by id",
	}, s.handleDeleteAnnotation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "undo",
		Description: "Remove the most recent annotation on the current page",
	}, s.handleUndo)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export",
		Description: "Write the annotated copy of the document to a file",
	}, s.handleExport)
}

func (s *Server) handleLoadDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if err := s.wait(ctx, "load_document"); err != nil {
		return nil, DocumentOutput{}, err
	}
	if input.Path == "" {
		return nil, DocumentOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("read %s: %w", input.Path, err)
	}

	ev, err := s.ports.Workspace.Load(ctx, driving.DocumentSource{
		Name: filepath.Base(input.Path),
		Path: input.Path,
		Data: data,
	})
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	out := toDocumentOutput(s.ports.Workspace.Document())
	out.Message = message(ev)
	return nil, out, nil
}

func (s *Server) handleGetSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	if err := s.wait(ctx, "get_session"); err != nil {
		return nil, SessionOutput{}, err
	}

	out, err := s.session(ctx)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleSetTool(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetToolInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := s.wait(ctx, "set_tool"); err != nil {
		return nil, MutationOutput{}, err
	}

	tool, err := domain.ParseAnnotationType(input.Tool)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	ev, err := s.ports.Workspace.SetTool(tool)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, toMutationOutput(ev), nil
}

func (s *Server) handleSetPage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetPageInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	if err := s.wait(ctx, "set_page"); err != nil {
		return nil, SessionOutput{}, err
	}
	if s.ports.Workspace.Document() == nil {
		return nil, SessionOutput{}, domain.ErrNoDocument
	}

	s.ports.Workspace.SetPage(input.Page)
	out, err := s.session(ctx)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleSetColor(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetColorInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := s.wait(ctx, "set_color"); err != nil {
		return nil, MutationOutput{}, err
	}

	if err := s.ports.Workspace.SetColor(input.Color); err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, MutationOutput{
		Changed: true,
		Message: "Colour set to " + s.ports.Workspace.Session().Color,
	}, nil
}

func (s *Server) handleAddAnnotation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddAnnotationInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := s.wait(ctx, "add_annotation"); err != nil {
		return nil, MutationOutput{}, err
	}

	tool, err := domain.ParseAnnotationType(input.Type)
	if err != nil {
		return nil, MutationOutput{}, err
	}

	req := domain.AnnotationRequest{
		Type:     tool,
		Page:     input.Page,
		Position: domain.Point{X: input.X, Y: input.Y},
		Color:    input.Color,
		Data:     input.Text,
		Bold:     input.Bold,
		Italic:   input.Italic,
		Name:     input.Name,
		Font:     domain.SignatureFont(input.Font),
	}
	if tool.IsSelectionBased() {
		req.BoundingRect = &domain.Rect{X: input.X, Y: input.Y, Width: input.Width, Height: input.Height}
	}
	if tool == domain.AnnotationSignature {
		req.Data = ""
	}

	a, ev, err := s.ports.Workspace.Apply(ctx, req)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	out := toMutationOutput(ev)
	ao := toAnnotationOutput(*a)
	out.Annotation = &ao
	return nil, out, nil
}

func (s *Server) handleListAnnotations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListAnnotationsInput,
) (*mcp.CallToolResult, ListAnnotationsOutput, error) {
	if err := s.wait(ctx, "list_annotations"); err != nil {
		return nil, ListAnnotationsOutput{}, err
	}

	var (
		annotations []domain.Annotation
		err         error
	)
	if input.Page > 0 {
		annotations, err = s.ports.Workspace.Annotations(ctx, input.Page)
	} else {
		annotations, err = s.ports.Workspace.AllAnnotations(ctx)
	}
	if err != nil {
		return nil, ListAnnotationsOutput{}, err
	}

	output := ListAnnotationsOutput{
		Annotations: make([]AnnotationOutput, len(annotations)),
		Count:       len(annotations),
	}
	for i := range annotations {
		output.Annotations[i] = toAnnotationOutput(annotations[i])
	}
	return nil, output, nil
}

func (s *Server) handleDeleteAnnotation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteAnnotationInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := s.wait(ctx, "delete_annotation"); err != nil {
		return nil, MutationOutput{}, err
	}

	ev, err := s.ports.Workspace.Delete(ctx, input.ID)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, toMutationOutput(ev), nil
}

func (s *Server) handleUndo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := s.wait(ctx, "undo"); err != nil {
		return nil, MutationOutput{}, err
	}

	ev, err := s.ports.Workspace.UndoLast(ctx)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	return nil, toMutationOutput(ev), nil
}

func (s *Server) handleExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	if err := s.wait(ctx, "export"); err != nil {
		return nil, ExportOutput{}, err
	}

	doc := s.ports.Workspace.Document()
	if doc == nil {
		return nil, ExportOutput{}, domain.ErrNoDocument
	}
	path := input.Path
	if path == "" {
		path = domain.ExportPath(doc, "")
	}

	result, ev, err := s.ports.Workspace.Export(ctx)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	if err := os.WriteFile(path, result.Data, 0o644); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("mcp: exported %s (%d applied, %d skipped)", path, result.Applied, len(result.Skipped))

	out := ExportOutput{
		Path:    path,
		Size:    len(result.Data),
		Applied: result.Applied,
		Message: message(ev),
	}
	for _, sk := range result.Skipped {
		out.Skipped = append(out.Skipped, fmt.Sprintf("#%d: %s", sk.ID, sk.Reason))
	}
	return nil, out, nil
}

// session describes the workspace state.
func (s *Server) session(ctx context.Context) (SessionOutput, error) {
	ws := s.ports.Workspace
	state := ws.Session()
	out := SessionOutput{
		Tool:      state.Tool.String(),
		Color:     state.Color,
		Page:      state.Page,
		NumPages:  state.NumPages,
		Zoom:      state.Zoom,
		Exporting: ws.Exporting(),
	}

	if doc := ws.Document(); doc != nil {
		d := toDocumentOutput(doc)
		out.Document = &d
		all, err := ws.AllAnnotations(ctx)
		if err != nil {
			return SessionOutput{}, err
		}
		out.Annotations = len(all)
	}
	return out, nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	if doc == nil {
		return DocumentOutput{}
	}
	return DocumentOutput{
		ID:           doc.ID,
		Name:         doc.Name,
		Path:         doc.Path,
		Pages:        doc.NumPages,
		Size:         doc.Size(),
		Title:        doc.Metadata.Title,
		Author:       doc.Metadata.Author,
		CreationDate: doc.Metadata.CreationDate,
		Keywords:     doc.Metadata.Keywords,
	}
}

func toAnnotationOutput(a domain.Annotation) AnnotationOutput {
	out := AnnotationOutput{
		ID:        a.ID,
		Type:      a.Type.String(),
		Page:      a.Page,
		X:         a.Position.X,
		Y:         a.Position.Y,
		Color:     a.Color,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.Type != domain.AnnotationSignature {
		out.Text = a.Data
	}
	if r := a.BoundingRect; r != nil {
		out.Rect = &RectOutput{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return out
}

func toMutationOutput(ev domain.Event) MutationOutput {
	out := MutationOutput{Changed: ev.Changed(), Message: message(ev)}
	if ev.Annotation != nil {
		ao := toAnnotationOutput(*ev.Annotation)
		out.Annotation = &ao
	}
	return out
}

// message joins an event's title and description.
func message(ev domain.Event) string {
	switch {
	case !ev.Changed():
		return ""
	case ev.Description == "":
		return ev.Title
	default:
		return ev.Title + ": " + ev.Description
	}
}
