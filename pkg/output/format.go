// Package output provides utilities for formatting and displaying report views.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MarkdownStyle is the glamour style used for markdown output. "auto" picks
// dark, light or plain text depending on the terminal.
var MarkdownStyle = "auto"

// MarkdownWidth is the word-wrap width of rendered markdown.
var MarkdownWidth = 120

// Table is one titled block of rows. Every row has one cell per column.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Tabular is a view that can be laid out as tables.
type Tabular interface {
	Tables() []Table
}

// Document is a view that is preformatted text, such as a letter. Pretty and
// markdown output print the text instead of the tables.
type Document interface {
	Document() string
}

// Write renders v in the given output format.
func Write(w io.Writer, format string, v Tabular) error {
	switch format {
	case constants.OutputFormatPretty:
		if d, ok := v.(Document); ok {
			_, err := io.WriteString(w, d.Document())
			return err
		}
		return PrettyFormat(w, v.Tables())
	case constants.OutputFormatCSV:
		return CsvFormat(w, v.Tables())
	case constants.OutputFormatJSON:
		return JSONFormat(w, v)
	case constants.OutputFormatMarkdown:
		rendered, err := RenderMarkdown(Markdown(v), MarkdownStyle)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, rendered)
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, tables []Table) error {
	p := message.NewPrinter(language.Finnish)
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := p.Fprintf(w, "--- %s (%d) ---\n", t.Title, len(t.Rows)); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Columns, "\t| "))
		underline := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			underline[j] = strings.Repeat("_", len([]rune(c)))
		}
		fmt.Fprintln(tw, strings.Join(underline, "\t| "))
		for _, row := range t.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t| "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format. Tables are separated by
// an empty line and start with their header row.
func CsvFormat(w io.Writer, tables []Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Columns); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormat outputs v as indented JSON.
func JSONFormat(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Markdown returns v as GitHub-flavoured markdown. Documents become a
// preformatted block.
func Markdown(v Tabular) string {
	var b strings.Builder
	if d, ok := v.(Document); ok {
		b.WriteString("```\n")
		b.WriteString(strings.TrimRight(d.Document(), "\n"))
		b.WriteString("\n```\n")
		return b.String()
	}

	for i, t := range v.Tables() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", t.Title)
		b.WriteString(markdownRow(t.Columns))
		separator := make([]string, len(t.Columns))
		for j := range separator {
			separator[j] = "---"
		}
		b.WriteString(markdownRow(separator))
		for _, row := range t.Rows {
			b.WriteString(markdownRow(row))
		}
	}
	return b.String()
}

func markdownRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |\n"
}

// RenderMarkdown renders markdown for the terminal with a glamour style.
func RenderMarkdown(md, style string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(MarkdownWidth),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}
