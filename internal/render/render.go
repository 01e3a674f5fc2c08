// Package render formats controller state for people: plain text, Markdown,
// or HTML converted from the Markdown with goldmark.
package render

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/diary/internal/analytics"
	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/record"
	"github.com/hpungsan/diary/internal/view"
)

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown format %q: want text, markdown or html", s))
	}
}

// State writes the displayed view of st in format f.
func State(w io.Writer, st view.State, f Format) error {
	var out string
	switch st.Mode {
	case view.ModeSummary:
		out = summary(st.Summary, f)
	default:
		out = entries(st.Entries, f)
	}

	if f == FormatHTML {
		html, err := markdownToHTML(out)
		if err != nil {
			return err
		}
		out = html
	}

	_, err := io.WriteString(w, out)
	return err
}

// String is State rendered to a string.
func String(st view.State, f Format) (string, error) {
	var buf bytes.Buffer
	if err := State(&buf, st, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SummaryText returns the summary sentences shown for a period.
func SummaryText(s analytics.Summary) string {
	return "Here is a summary of the selected period.\n" +
		"You had entered " + strconv.Itoa(s.Count) + " diary entries.\n" +
		"Your average mood level was " + formatMood(s) + ".\n" +
		"Your symptoms and the number of times each one has irritated you are listed here: " +
		s.SymptomsText + ".\n"
}

// formatMood prints one decimal, or a bare 0 when there were no entries.
func formatMood(s analytics.Summary) string {
	if s.Count == 0 {
		return "0"
	}
	return strconv.FormatFloat(s.AverageMood, 'f', 1, 64)
}

func summary(s analytics.Summary, f Format) string {
	if f == FormatText {
		return SummaryText(s)
	}

	var b strings.Builder
	b.WriteString("## Summary\n\n")
	for _, line := range strings.Split(strings.TrimSuffix(SummaryText(s), "\n"), "\n") {
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	if len(s.Symptoms) > 0 {
		b.WriteString("| Symptom | Times |\n|---|---|\n")
		for _, c := range s.Symptoms {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeMarkdown(c.Name), c.Count)
		}
	}
	return b.String()
}

// entries lists records newest-inserted first.
func entries(records []record.Record, f Format) string {
	if len(records) == 0 {
		if f == FormatText {
			return "No entries.\n"
		}
		return "_No entries._\n"
	}

	ordered := slices.Clone(records)
	slices.Reverse(ordered)

	var b strings.Builder
	for i, r := range ordered {
		if f == FormatText {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "[%d] %s\n", r.ID, r.Title)
			if r.Text != "" {
				fmt.Fprintf(&b, "%s\n", r.Text)
			}
			fmt.Fprintf(&b, "Level of mood: %d\n", r.Mood)
			fmt.Fprintf(&b, "Your symptoms today: %s\n", r.Symptoms)
			fmt.Fprintf(&b, "Date: %s\n", r.Date)
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(r.Title))
		if r.Text != "" {
			fmt.Fprintf(&b, "%s\n\n", r.Text)
		}
		fmt.Fprintf(&b, "- **Id:** %d\n", r.ID)
		fmt.Fprintf(&b, "- **Date:** %s\n", escapeMarkdown(r.Date))
		fmt.Fprintf(&b, "- **Mood:** %d\n", r.Mood)
		if r.Symptoms != "" {
			fmt.Fprintf(&b, "- **Symptoms:** %s\n", escapeMarkdown(strings.Join(record.SplitSymptoms(r.Symptoms), ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "|", `\|`,
	"[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// md renders tables; raw HTML in the input is not passed through.
var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// markdownToHTML converts markdown text to HTML using goldmark.
func markdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", errors.NewInternal(err)
	}
	return buf.String(), nil
}
