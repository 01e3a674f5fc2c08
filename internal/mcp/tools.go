package mcp

import "github.com/mark3labs/mcp-go/mcp"

var entryCreateToolDef = mcp.NewTool("entry_create",
	mcp.WithDescription("Add a diary entry. Returns the id assigned by the store."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Entry title")),
	mcp.WithString("text", mcp.Description("Entry body")),
	mcp.WithNumber("mood", mcp.Required(), mcp.Description("Mood level from 0 to 10")),
	mcp.WithString("symptoms", mcp.Description("Comma-separated symptom names, e.g. \"Cough,Headache\"")),
	mcp.WithString("date", mcp.Description("Entry date as YYYY-MM-DD. Defaults to today.")),
)

var entryDeleteToolDef = mcp.NewTool("entry_delete",
	mcp.WithDescription("Delete a diary entry by id."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Entry id")),
)

var viewFilterToolDef = mcp.NewTool("view_filter",
	mcp.WithDescription("Restrict the view to an inclusive date range and switch to the entries list or the summary. "+
		"Dates that are not YYYY-MM-DD reset the view to all time."),
	mcp.WithString("start", mcp.Required(), mcp.Description("First date, YYYY-MM-DD")),
	mcp.WithString("end", mcp.Required(), mcp.Description("Last date, YYYY-MM-DD")),
	mcp.WithString("mode", mcp.Required(), mcp.Enum("entries", "summary"), mcp.Description("View to show")),
)

var viewClearFilterToolDef = mcp.NewTool("view_clear_filter",
	mcp.WithDescription("Remove the date filter. The current view stays selected."),
)

var viewShowToolDef = mcp.NewTool("view_show",
	mcp.WithDescription("Show the current view: the entries list or the summary for the active filter."),
	mcp.WithString("format", mcp.Enum("json", "text", "markdown", "html"), mcp.Description("Output format (default json)")),
)

var symptomSearchToolDef = mcp.NewTool("symptom_search",
	mcp.WithDescription("Find catalog symptom names containing the query (case-sensitive)."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Substring to look for")),
)
