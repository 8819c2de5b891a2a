package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/megafile/internal/adapters/driving/view"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

const (
	uriScheme = "megafile://"

	// operationListLimit caps the operations resource.
	operationListLimit = 100
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Operation == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "operations",
		Name:        "operations",
		Description: "Most recent operations with their client and AI summary",
		MIMEType:    "application/json",
	}, s.handleOperationsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "operations/{operationId}",
		Name:        "operation",
		Description: "One operation with its documents and extracted fields",
		MIMEType:    "application/json",
	}, s.handleOperationResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-text",
		Description: "Extracted text of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentTextResource)
}

// handleOperationsResource lists recent operations.
func (s *Server) handleOperationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ops, err := s.ports.Operation.List(ctx, operationListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return jsonResult(req.Params.URI, view.NewOperations(ops))
}

// handleOperationResource returns one operation with its documents.
func (s *Server) handleOperationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := trimID(req.Params.URI, "operations/")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	op, err := s.ports.Operation.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting operation: %w", err)
	}
	return jsonResult(req.Params.URI, view.NewOperation(op, true))
}

// handleDocumentTextResource returns the extracted text of a document.
func (s *Server) handleDocumentTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := trimID(req.Params.URI, "documents/")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Operation.GetDocument(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Text(),
		}},
	}, nil
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// trimID extracts the trailing ID from megafile://<kind>/<id>.
func trimID(uri, kind string) string {
	id, ok := strings.CutPrefix(uri, uriScheme+kind)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
