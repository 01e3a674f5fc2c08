package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/record"
	"github.com/hpungsan/diary/internal/render"
	"github.com/hpungsan/diary/internal/view"
)

// Handlers holds dependencies for MCP tool handlers.
// The controller is single-threaded, so every call holds mu.
type Handlers struct {
	mu     sync.Mutex
	ctrl   *view.Controller
	logger *slog.Logger
	now    func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctrl *view.Controller, logger *slog.Logger) *Handlers {
	return &Handlers{ctrl: ctrl, logger: logging.OrDiscard(logger), now: time.Now}
}

// Request types for each tool

// CreateRequest represents the arguments for entry_create.
type CreateRequest struct {
	Title    string `json:"title"`
	Text     string `json:"text,omitempty"`
	Mood     *int   `json:"mood"`
	Symptoms string `json:"symptoms,omitempty"`
	Date     string `json:"date,omitempty"`
}

// DeleteRequest represents the arguments for entry_delete.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// FilterRequest represents the arguments for view_filter.
type FilterRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Mode  string `json:"mode"`
}

// ShowRequest represents the arguments for view_show.
type ShowRequest struct {
	Format string `json:"format,omitempty"`
}

// SymptomSearchRequest represents the arguments for symptom_search.
type SymptomSearchRequest struct {
	Query string `json:"query"`
}

// Output types

// CreateOutput is returned by entry_create.
type CreateOutput struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
}

// DeleteOutput is returned by entry_delete.
type DeleteOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// ShowOutput is returned by view_show for rendered formats.
type ShowOutput struct {
	Mode    view.Mode `json:"mode"`
	Format  string    `json:"format"`
	Content string    `json:"content"`
}

// SymptomSearchOutput is returned by symptom_search.
type SymptomSearchOutput struct {
	Query   string   `json:"query"`
	Matches []string `json:"matches"`
}

// Handler implementations

// HandleCreate handles the entry_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if strings.TrimSpace(input.Title) == "" {
		return errorResult(errors.NewInvalidRequest("title is required")), nil
	}
	if input.Mood == nil {
		return errorResult(errors.NewInvalidRequest("mood is required")), nil
	}
	if !record.ValidMood(*input.Mood) {
		return errorResult(errors.NewInvalidRequest("mood must be between 0 and 10")), nil
	}
	date := input.Date
	if date == "" {
		date = record.Today(h.now())
	} else if !record.IsDate(date) {
		return errorResult(errors.NewInvalidDateFormat(date)), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id, err := h.ctrl.CreateRecord(input.Title, input.Text, *input.Mood, input.Symptoms, date)
	if err != nil {
		h.logger.Error("entry_create failed", logging.FieldError, err)
		return errorResult(err), nil
	}
	h.logger.Info("entry created", logging.FieldID, id, logging.FieldDate, date)

	return successResult(CreateOutput{ID: id, Date: date})
}

// HandleDelete handles the entry_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID <= 0 {
		return errorResult(errors.NewInvalidRequest("id must be positive")), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ctrl.DeleteRecord(input.ID); err != nil {
		h.logger.Warn("entry_delete failed", logging.FieldID, input.ID, logging.FieldError, err)
		return errorResult(err), nil
	}
	h.logger.Info("entry deleted", logging.FieldID, input.ID)

	return successResult(DeleteOutput{ID: input.ID, Deleted: true})
}

// HandleFilter handles the view_filter tool call.
func (h *Handlers) HandleFilter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FilterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	mode, err := view.ParseMode(input.Mode)
	if err != nil {
		return errorResult(err), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ctrl.ApplyDateFilter(input.Start, input.End, mode); err != nil {
		return errorResult(err), nil
	}

	return successResult(h.ctrl.State())
}

// HandleClearFilter handles the view_clear_filter tool call.
func (h *Handlers) HandleClearFilter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ctrl.ClearFilter(); err != nil {
		return errorResult(err), nil
	}

	return successResult(h.ctrl.State())
}

// HandleShow handles the view_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShowRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	st := h.ctrl.State()
	h.mu.Unlock()

	if input.Format == "" || input.Format == "json" {
		return successResult(st)
	}

	format, err := render.ParseFormat(input.Format)
	if err != nil {
		return errorResult(err), nil
	}
	content, err := render.String(st, format)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ShowOutput{Mode: st.Mode, Format: string(format), Content: content})
}

// HandleSymptomSearch handles the symptom_search tool call.
func (h *Handlers) HandleSymptomSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SymptomSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	matches := record.SearchSymptoms(input.Query)
	if matches == nil {
		matches = []string{}
	}

	return successResult(SymptomSearchOutput{Query: input.Query, Matches: matches})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal and storage error causes are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var diaryErr *errors.DiaryError
	if stderrors.As(err, &diaryErr) {
		errorObj := map[string]any{
			"code":    diaryErr.Code,
			"message": diaryErr.Message,
			"status":  diaryErr.Status,
		}
		if diaryErr.Code != errors.ErrInternal && diaryErr.Details != nil {
			errorObj["details"] = diaryErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}
