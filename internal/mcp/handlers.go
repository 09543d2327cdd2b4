package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/linkgrab/internal/errors"
	"github.com/hpungsan/linkgrab/internal/extract"
	"github.com/hpungsan/linkgrab/internal/session"
	"github.com/hpungsan/linkgrab/internal/view"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *session.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *session.Store) *Handlers {
	return &Handlers{store: store}
}

// FetchRequest represents the arguments for links_fetch.
type FetchRequest struct {
	URL string `json:"url"`
}

// StateRequest represents the arguments for links_state.
type StateRequest struct {
	IncludeContent bool `json:"include_content,omitempty"`
}

// ExtractRequest represents the arguments for links_extract.
type ExtractRequest struct {
	Text    string `json:"text"`
	BaseURL string `json:"base_url,omitempty"`
}

// FetchResponse is returned by links_fetch.
type FetchResponse struct {
	*session.FetchOutput
	Status session.Status `json:"status"`
}

// StateResponse is returned by links_state.
type StateResponse struct {
	Input   string         `json:"input"`
	Links   []string       `json:"links"`
	Status  session.Status `json:"status"`
	Content *string        `json:"content,omitempty"`
}

// ExtractResponse is returned by links_extract.
type ExtractResponse struct {
	Links []string `json:"links"`
	Count int      `json:"count"`
}

// HandleFetch handles the links_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	m := view.NewModel()
	out, err := h.store.FetchAndStore(ctx, m, input.URL)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(FetchResponse{FetchOutput: out, Status: m.Status})
}

// HandleState handles the links_state tool call.
func (h *Handlers) HandleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	// LoadState repairs corrupt links before we read anything else
	m := view.NewModel()
	if err := h.store.LoadState(ctx, m); err != nil {
		return errorResult(err), nil
	}

	resp := StateResponse{
		Input:  m.Input,
		Links:  m.Links,
		Status: m.Status,
	}
	if resp.Links == nil {
		resp.Links = []string{}
	}

	if input.IncludeContent {
		snap, err := h.store.Snapshot(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		resp.Content = &snap.Content
	}

	return successResult(resp)
}

// HandleClear handles the links_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m := view.NewModel()
	if err := h.store.ClearAll(ctx, m); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"cleared": true, "status": m.Status})
}

// HandleExtract handles the links_extract tool call.
func (h *Handlers) HandleExtract(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExtractRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	links := extract.Links(input.Text, input.BaseURL)
	return successResult(ExtractResponse{Links: links, Count: len(links)})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to avoid leaking paths or SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	lErr := errors.As(err)

	errorObj := map[string]any{
		"code":    lErr.Code,
		"message": lErr.Message,
		"status":  lErr.Status,
	}
	if lErr.Code == errors.ErrInternal {
		errorObj["message"] = "an internal error occurred"
	} else if lErr.Details != nil {
		errorObj["details"] = lErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
