package mcp

import (
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/diary/internal/config"
	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/view"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"entry_create": {
		def:     entryCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"entry_delete": {
		def:     entryDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"view_filter": {
		def:     viewFilterToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFilter },
	},
	"view_clear_filter": {
		def:     viewClearFilterToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClearFilter },
	},
	"view_show": {
		def:     viewShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShow },
	},
	"symptom_search": {
		def:     symptomSearchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSymptomSearch },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server whose tools drive ctrl.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(ctrl *view.Controller, cfg *config.Config, version string, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"diary",
		version,
		server.WithToolCapabilities(true),
	)

	logger = logging.Component(logger, logging.ComponentMCP)
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", unknown)
	}

	h := NewHandlers(ctrl, logger)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(ctrl *view.Controller, cfg *config.Config, version string, logger *slog.Logger) error {
	s := NewServer(ctrl, cfg, version, logger)
	return server.ServeStdio(s)
}
