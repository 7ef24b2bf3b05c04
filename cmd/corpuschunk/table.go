package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// column describes one table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

// listing collects rows under a fixed set of columns. Short rows are padded
// and long rows are cut to the column count.
type listing struct {
	columns []column
	rows    []table.Row
	footer  table.Row
}

func newListing(columns ...column) *listing {
	return &listing{columns: columns}
}

func (l *listing) add(cells ...string) {
	l.rows = append(l.rows, l.fit(cells))
}

// total sets a footer row, typically plan or run totals
func (l *listing) total(cells ...string) {
	l.footer = l.fit(cells)
}

func (l *listing) fit(cells []string) table.Row {
	row := make(table.Row, len(l.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// render draws the listing. Terminals get rounded borders; pipes and files
// get plain ASCII.
func (l *listing) render(styled bool) string {
	if len(l.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleDefault)
	if styled {
		tw.SetStyle(table.StyleRounded)
	}

	header := make(table.Row, 0, len(l.columns))
	configs := make([]table.ColumnConfig, 0, len(l.columns))
	for i, col := range l.columns {
		header = append(header, col.title)
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignFooter: align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.AppendHeader(header)
	tw.AppendRows(l.rows)
	if l.footer != nil {
		tw.AppendFooter(l.footer)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// isTerminal reports whether writer is an interactive terminal
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
