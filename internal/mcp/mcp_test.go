package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/diary/internal/config"
	"github.com/hpungsan/diary/internal/store"
	"github.com/hpungsan/diary/internal/view"
)

// testSetup creates handlers over a fresh memory store with both views.
func testSetup(t *testing.T) *Handlers {
	t.Helper()
	return testSetupWith(t, store.NewMemory())
}

func testSetupWith(t *testing.T, s store.Store) *Handlers {
	t.Helper()
	ctrl, err := view.New(s, view.Options{List: true, Summary: true})
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	t.Cleanup(ctrl.Close)

	h := NewHandlers(ctrl, nil)
	h.now = func() time.Time { return time.Date(2023, time.September, 21, 10, 0, 0, 0, time.Local) }
	return h
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("result has no content")
	}
	return r.Content[0].(mcp.TextContent).Text
}

func decodeResult[T any](t *testing.T, r *mcp.CallToolResult) T {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, r))
	}
	var out T
	if err := json.Unmarshal([]byte(resultText(t, r)), &out); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
	return out
}

// errorCode returns the error code of an error result.
func errorCode(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if !r.IsError {
		t.Fatalf("expected error result, got %s", resultText(t, r))
	}
	var payload struct {
		Error struct {
			Code   string `json:"code"`
			Status int    `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, r)), &payload); err != nil {
		t.Fatalf("failed to parse error payload: %v", err)
	}
	return payload.Error.Code
}

func create(t *testing.T, h *Handlers, args map[string]any) CreateOutput {
	t.Helper()
	r, err := h.HandleCreate(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("HandleCreate error: %v", err)
	}
	return decodeResult[CreateOutput](t, r)
}

func TestHandleCreate(t *testing.T) {
	h := testSetup(t)

	out := create(t, h, map[string]any{
		"title": "Monday", "text": "slept badly", "mood": 4, "symptoms": "Headache", "date": "2023-09-20",
	})
	if out.ID != 1 {
		t.Errorf("ID = %d, want 1", out.ID)
	}
	if out.Date != "2023-09-20" {
		t.Errorf("Date = %q, want 2023-09-20", out.Date)
	}

	st := h.ctrl.State()
	if st.Summary.Count != 1 {
		t.Errorf("summary count = %d, want 1 (view recomputed)", st.Summary.Count)
	}
}

func TestHandleCreate_DefaultsToToday(t *testing.T) {
	h := testSetup(t)

	out := create(t, h, map[string]any{"title": "t", "mood": 5})
	if out.Date != "2023-09-21" {
		t.Errorf("Date = %q, want today 2023-09-21", out.Date)
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		code string
	}{
		{"missing title", map[string]any{"mood": 5}, "INVALID_REQUEST"},
		{"missing mood", map[string]any{"title": "t"}, "INVALID_REQUEST"},
		{"mood too high", map[string]any{"title": "t", "mood": 11}, "INVALID_REQUEST"},
		{"fractional mood", map[string]any{"title": "t", "mood": 4.5}, "INVALID_REQUEST"},
		{"bad date", map[string]any{"title": "t", "mood": 5, "date": "21/09/2023"}, "INVALID_DATE_FORMAT"},
		{"unknown field", map[string]any{"title": "t", "mood": 5, "weather": "rain"}, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testSetup(t)
			r, err := h.HandleCreate(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("HandleCreate error: %v", err)
			}
			if got := errorCode(t, r); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	h := testSetup(t)
	out := create(t, h, map[string]any{"title": "t", "mood": 5})

	r, err := h.HandleDelete(context.Background(), makeRequest(map[string]any{"id": out.ID}))
	if err != nil {
		t.Fatalf("HandleDelete error: %v", err)
	}
	del := decodeResult[DeleteOutput](t, r)
	if !del.Deleted || del.ID != out.ID {
		t.Errorf("output = %+v", del)
	}

	// Memory backend reports a second delete
	r, _ = h.HandleDelete(context.Background(), makeRequest(map[string]any{"id": out.ID}))
	if got := errorCode(t, r); got != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND", got)
	}
}

func TestHandleDelete_SQLiteMissingSucceeds(t *testing.T) {
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("NewSQLite error: %v", err)
	}
	h := testSetupWith(t, s)

	r, err := h.HandleDelete(context.Background(), makeRequest(map[string]any{"id": 99}))
	if err != nil {
		t.Fatalf("HandleDelete error: %v", err)
	}
	decodeResult[DeleteOutput](t, r)
}

func TestHandleDelete_InvalidID(t *testing.T) {
	h := testSetup(t)
	r, _ := h.HandleDelete(context.Background(), makeRequest(map[string]any{"id": 0}))
	if got := errorCode(t, r); got != "INVALID_REQUEST" {
		t.Errorf("code = %s, want INVALID_REQUEST", got)
	}
}

func TestHandleFilter(t *testing.T) {
	h := testSetup(t)
	for _, d := range []string{"2023-09-21", "2023-09-22", "2023-09-23"} {
		create(t, h, map[string]any{"title": d, "mood": 5, "date": d})
	}

	r, err := h.HandleFilter(context.Background(), makeRequest(map[string]any{
		"start": "2023-09-22", "end": "2023-09-23", "mode": "entries",
	}))
	if err != nil {
		t.Fatalf("HandleFilter error: %v", err)
	}
	st := decodeResult[view.State](t, r)
	if st.Mode != view.ModeEntries {
		t.Errorf("Mode = %s, want entries", st.Mode)
	}
	if len(st.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(st.Entries))
	}
}

func TestHandleFilter_BadDatesResetToAllTime(t *testing.T) {
	h := testSetup(t)
	create(t, h, map[string]any{"title": "a", "mood": 4, "date": "2023-09-21"})
	create(t, h, map[string]any{"title": "b", "mood": 8, "date": "2023-09-22"})

	r, _ := h.HandleFilter(context.Background(), makeRequest(map[string]any{
		"start": "last week", "end": "2023-09-22", "mode": "summary",
	}))
	st := decodeResult[view.State](t, r)
	if !st.Filter.IsZero() {
		t.Errorf("Filter = %+v, want all time", st.Filter)
	}
	if st.Summary.Count != 2 || st.Summary.AverageMood != 6.0 {
		t.Errorf("summary = %+v, want all records", st.Summary)
	}
}

func TestHandleFilter_UnknownMode(t *testing.T) {
	h := testSetup(t)
	r, _ := h.HandleFilter(context.Background(), makeRequest(map[string]any{
		"start": "2023-09-21", "end": "2023-09-22", "mode": "calendar",
	}))
	if got := errorCode(t, r); got != "INVALID_REQUEST" {
		t.Errorf("code = %s, want INVALID_REQUEST", got)
	}
}

func TestHandleClearFilter(t *testing.T) {
	h := testSetup(t)
	create(t, h, map[string]any{"title": "a", "mood": 4, "date": "2023-09-21"})
	create(t, h, map[string]any{"title": "b", "mood": 8, "date": "2023-09-22"})
	h.HandleFilter(context.Background(), makeRequest(map[string]any{
		"start": "2023-09-22", "end": "2023-09-22", "mode": "entries",
	}))

	r, err := h.HandleClearFilter(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("HandleClearFilter error: %v", err)
	}
	st := decodeResult[view.State](t, r)
	if st.Mode != view.ModeEntries || len(st.Entries) != 2 {
		t.Errorf("state = %+v, want entries mode with both records", st)
	}
}

func TestHandleShow(t *testing.T) {
	h := testSetup(t)
	create(t, h, map[string]any{"title": "a", "mood": 4, "symptoms": "pain", "date": "2023-09-21"})
	create(t, h, map[string]any{"title": "b", "mood": 8, "symptoms": "pain,fatigue", "date": "2023-09-22"})

	t.Run("json default", func(t *testing.T) {
		r, _ := h.HandleShow(context.Background(), makeRequest(nil))
		st := decodeResult[view.State](t, r)
		if st.Summary.SymptomsText != "pain (2),fatigue (1)" {
			t.Errorf("SymptomsText = %q", st.Summary.SymptomsText)
		}
	})

	t.Run("text", func(t *testing.T) {
		r, _ := h.HandleShow(context.Background(), makeRequest(map[string]any{"format": "text"}))
		out := decodeResult[ShowOutput](t, r)
		if !strings.Contains(out.Content, "Your average mood level was 6.0.") {
			t.Errorf("content = %q", out.Content)
		}
	})

	t.Run("html", func(t *testing.T) {
		r, _ := h.HandleShow(context.Background(), makeRequest(map[string]any{"format": "html"}))
		out := decodeResult[ShowOutput](t, r)
		if !strings.Contains(out.Content, "<h2>Summary</h2>") {
			t.Errorf("content = %q", out.Content)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		r, _ := h.HandleShow(context.Background(), makeRequest(map[string]any{"format": "pdf"}))
		if got := errorCode(t, r); got != "INVALID_REQUEST" {
			t.Errorf("code = %s, want INVALID_REQUEST", got)
		}
	})
}

func TestHandleSymptomSearch(t *testing.T) {
	h := testSetup(t)

	r, err := h.HandleSymptomSearch(context.Background(), makeRequest(map[string]any{"query": "pain"}))
	if err != nil {
		t.Fatalf("HandleSymptomSearch error: %v", err)
	}
	out := decodeResult[SymptomSearchOutput](t, r)
	if len(out.Matches) == 0 {
		t.Fatal("expected matches for \"pain\"")
	}
	for _, m := range out.Matches {
		if !strings.Contains(m, "pain") {
			t.Errorf("match %q does not contain query", m)
		}
	}

	r, _ = h.HandleSymptomSearch(context.Background(), makeRequest(map[string]any{"query": ""}))
	out = decodeResult[SymptomSearchOutput](t, r)
	if out.Matches == nil || len(out.Matches) != 0 {
		t.Errorf("Matches = %v, want empty list", out.Matches)
	}
}

func TestHandlers_ConcurrentCalls(t *testing.T) {
	h := testSetup(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.HandleCreate(context.Background(), makeRequest(map[string]any{"title": "t", "mood": 5}))
			h.HandleShow(context.Background(), makeRequest(nil))
		}()
	}
	wg.Wait()

	if got := h.ctrl.State().Summary.Count; got != 20 {
		t.Errorf("summary count = %d, want 20", got)
	}
}

func TestServerRegistration(t *testing.T) {
	h := testSetup(t)

	s := NewServer(h.ctrl, config.DefaultConfig(), "test", nil)
	tools := s.ListTools()

	expected := AllToolNames()
	if len(tools) != len(expected) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expected))
	}
	for _, name := range expected {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	h := testSetup(t)
	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"entry_delete", "entry_delete", "no_such_tool"}

	tools := NewServer(h.ctrl, cfg, "test", nil).ListTools()

	if len(tools) != len(toolRegistry)-1 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-1)
	}
	if _, ok := tools["entry_delete"]; ok {
		t.Error("disabled tool entry_delete should not be registered")
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	h := testSetup(t)
	cfg := config.DefaultConfig()
	cfg.DisabledTools = AllToolNames()

	if tools := NewServer(h.ctrl, cfg, "test", nil).ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"entry_create", "capsule_store"})
	if len(unknown) != 1 || unknown[0] != "capsule_store" {
		t.Errorf("unknown = %v, want [capsule_store]", unknown)
	}
}
