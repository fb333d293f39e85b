package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	xansi "github.com/charmbracelet/x/ansi"
)

// MaxCellWidth bounds table cells; longer values are truncated with an ellipsis.
const MaxCellWidth = 48

// Tabular values know how to render themselves as table rows.
type Tabular interface {
	Table() (headers []string, rows [][]string)
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - table
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "table":
		return WriteTable(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTable renders the "data" of an output envelope as a table, followed
// by a footer line: "meta" when that is a fmt.Stringer, else the data itself
// when it is one. Data that is not Tabular is written as indented JSON.
func WriteTable(w io.Writer, v any) error {
	data, meta := v, any(nil)
	if env, ok := v.(map[string]any); ok {
		data, meta = env["data"], env["meta"]
	}

	t, ok := data.(Tabular)
	if !ok {
		return WriteJSON(w, data, true)
	}
	headers, rows := t.Table()
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(w, "(no results)"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, RenderTable(headers, rows)); err != nil {
			return err
		}
	}
	footer := meta
	if footer == nil {
		footer = data
	}
	if s, ok := footer.(fmt.Stringer); ok {
		if line := strings.TrimSpace(s.String()); line != "" {
			_, err := fmt.Fprintln(w, line)
			return err
		}
	}
	return nil
}

// RenderTable draws headers and rows with a rounded border.
func RenderTable(headers []string, rows [][]string) string {
	clipped := make([][]string, len(rows))
	for i, r := range rows {
		clipped[i] = make([]string, len(r))
		for j, c := range r {
			clipped[i][j] = Truncate(c, MaxCellWidth)
		}
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(clipped...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// Truncate shortens s to at most width cells, single-lined.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}
