package render

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ModuleRow is a module with its version change.
type ModuleRow struct {
	Name string
	From string
	To   string
}

// IgnoredRow is an outdated module silenced by the ignore list.
type IgnoredRow struct {
	ModuleRow
	Versions string
	Reason   string
}

// IgnoreEntryRow is an entry of the ignore list.
type IgnoreEntryRow struct {
	Name     string
	Versions string
	Reason   string
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	return t
}

// UpdatedModules renders modules with their colorized version change.
func UpdatedModules(w io.Writer, rows []ModuleRow) {
	t := newTable(w)
	for _, r := range rows {
		t.AppendRow(table.Row{Strong(r.Name), r.From, "→", ColorizeDiff(r.From, r.To)})
	}
	t.Render()
}

// IgnoredModules renders outdated modules together with the range and
// reason they are ignored for.
func IgnoredModules(w io.Writer, rows []IgnoredRow) {
	t := newTable(w)
	t.AppendHeader(table.Row{"", "From", "", "To", "Ignored versions", "Reason"})
	for _, r := range rows {
		t.AppendRow(table.Row{Strong(r.Name), r.From, "→", ColorizeDiff(r.From, r.To), Attention(r.Versions), r.Reason})
	}
	t.Render()
}

// IgnoreList renders the entries of the ignore list.
func IgnoreList(w io.Writer, rows []IgnoreEntryRow) {
	t := newTable(w)
	t.AppendHeader(table.Row{"", "Ignored versions", "Reason"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
	})
	for _, r := range rows {
		t.AppendRow(table.Row{Strong(r.Name), Attention(r.Versions), r.Reason})
	}
	t.Render()
}
