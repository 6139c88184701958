package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for marginalia resources.
	uriScheme = "marginalia://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "session",
		Name:        "session",
		Description: "The loaded document and the current tool state",
		MIMEType:    "application/json",
	}, s.handleSessionResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "annotations",
		Name:        "annotations",
		Description: "Every annotation of the loaded document in insertion order",
		MIMEType:    "application/json",
	}, s.handleAnnotationsResource)

	// Template for the text of one page.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "pages/{page}/text",
		Name:        "page-text",
		Description: "Text runs of a page with their top-down positions in points",
		MIMEType:    "text/plain",
	}, s.handlePageTextResource)
}

// handleSessionResource returns the session as JSON.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	out, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, out)
}

// handleAnnotationsResource returns every annotation as JSON.
func (s *Server) handleAnnotationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Workspace.Document() == nil {
		return jsonResource(req.Params.URI, []AnnotationOutput{})
	}

	annotations, err := s.ports.Workspace.AllAnnotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}

	infos := make([]AnnotationOutput, len(annotations))
	for i := range annotations {
		infos[i] = toAnnotationOutput(annotations[i])
	}
	return jsonResource(req.Params.URI, infos)
}

// handlePageTextResource returns one line per text run of a page.
func (s *Server) handlePageTextResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	page := extractPage(req.Params.URI)
	if page == 0 || s.ports.Workspace.Document() == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runs, err := s.ports.Workspace.TextLayer(page)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var b strings.Builder
	for _, r := range runs {
		fmt.Fprintf(&b, "(%.1f, %.1f) %s\n", r.X, r.Y-r.FontSize, r.Text)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     b.String(),
		}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPage extracts the page number from a URI like
// marginalia://pages/{page}/text. Zero means the URI is malformed.
func extractPage(uri string) int {
	const prefix = uriScheme + "pages/"
	const suffix = "/text"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0
	}

	page, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix))
	if err != nil || page < 1 {
		return 0
	}
	return page
}
