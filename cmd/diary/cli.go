package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/diary/internal/config"
	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/record"
	"github.com/hpungsan/diary/internal/render"
	"github.com/hpungsan/diary/internal/store"
	"github.com/hpungsan/diary/internal/view"
)

// now is replaced in tests.
var now = time.Now

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st store.Store, cfg *config.Config, logger *slog.Logger) *cli.App {
	logger = logging.Component(logger, logging.ComponentCLI)
	app := &cli.App{
		Name:    "diary",
		Usage:   "Personal mood and symptom diary",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(st),
			deleteCmd(st),
			viewCmd(st, cfg, logger, view.ModeEntries, "List diary entries, newest first"),
			viewCmd(st, cfg, logger, view.ModeSummary, "Summarize mood and symptoms for a period"),
			symptomsCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// CreateOutput is printed by add.
type CreateOutput struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
}

// addCmd creates the add command.
func addCmd(st store.Store) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a diary entry (reads text from stdin when --text is omitted)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Entry title"},
			&cli.StringFlag{Name: "text", Usage: "Entry body"},
			&cli.IntFlag{Name: "mood", Aliases: []string{"m"}, Required: true, Usage: "Mood level 0-10"},
			&cli.StringFlag{Name: "symptoms", Aliases: []string{"s"}, Usage: "Comma-separated symptom names"},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Entry date YYYY-MM-DD (default today)"},
		},
		Action: func(c *cli.Context) error {
			title := strings.TrimSpace(c.String("title"))
			if title == "" {
				return outputError(errors.NewInvalidRequest("title is required"))
			}

			mood := c.Int("mood")
			if !record.ValidMood(mood) {
				return outputError(errors.NewInvalidRequest(
					fmt.Sprintf("mood must be between %d and %d", record.MinMood, record.MaxMood)))
			}

			date := c.String("date")
			if date == "" {
				date = record.Today(now())
			} else if !record.IsDate(date) {
				return outputError(errors.NewInvalidDateFormat(date))
			}

			text := c.String("text")
			if !c.IsSet("text") && stdinHasData() {
				var err error
				if text, err = readStdin(); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			id, err := st.Create(title, text, mood, parseSymptoms(c.String("symptoms")), date)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(CreateOutput{ID: id, Date: date})
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(st store.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a diary entry",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one entry id is required"))
			}
			id, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil || id <= 0 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid id %q", c.Args().First())))
			}

			if err := st.Delete(id); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"id": id, "deleted": true})
		},
	}
}

// viewCmd creates the entries and summary commands. Each builds a
// controller showing only its own view.
func viewCmd(st store.Store, cfg *config.Config, logger *slog.Logger, mode view.Mode, usage string) *cli.Command {
	return &cli.Command{
		Name:  string(mode),
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "First date YYYY-MM-DD (inclusive)"},
			&cli.StringFlag{Name: "to", Usage: "Last date YYYY-MM-DD (inclusive)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|text|markdown|html"},
		},
		Action: func(c *cli.Context) error {
			opts := view.Options{List: mode == view.ModeEntries, Summary: mode == view.ModeSummary}
			if cfg != nil && ((opts.List && !cfg.ListEnabled()) || (opts.Summary && !cfg.SummaryEnabled())) {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("%s view is disabled in config", mode)))
			}

			format := c.String("format")
			var rf render.Format
			if format != "json" {
				var err error
				if rf, err = render.ParseFormat(format); err != nil {
					return outputError(err)
				}
			}

			if c.IsSet("from") != c.IsSet("to") {
				return outputError(errors.NewInvalidRequest("--from and --to must be given together"))
			}

			ctrl, err := view.New(st, opts, view.WithLogger(logger))
			if err != nil {
				return outputError(err)
			}
			defer ctrl.Close()

			if c.IsSet("from") {
				if err := ctrl.ApplyDateFilter(c.String("from"), c.String("to"), mode); err != nil {
					return outputError(err)
				}
			}

			state := ctrl.State()
			if format == "json" {
				return outputJSON(state)
			}
			if err := render.State(os.Stdout, state, rf); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// symptomsCmd creates the symptoms command.
func symptomsCmd() *cli.Command {
	return &cli.Command{
		Name:      "symptoms",
		Usage:     "Search the symptom catalog (case-sensitive)",
		ArgsUsage: "[query]",
		Action: func(c *cli.Context) error {
			query := c.Args().First()
			matches := record.Catalog
			if query != "" {
				matches = record.SearchSymptoms(query)
			}
			if matches == nil {
				matches = []string{}
			}
			return outputJSON(map[string]any{"query": query, "matches": matches})
		},
	}
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var diaryErr *errors.DiaryError
	if stderrors.As(err, &diaryErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", diaryErr.Code, diaryErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseSymptoms normalizes a comma-separated symptom list: names are trimmed,
// empty names dropped and repeats removed, as the picker does.
func parseSymptoms(s string) string {
	var p record.Picker
	for _, name := range strings.Split(s, record.SymptomSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			p.Add(name)
		}
	}
	return p.Field()
}
