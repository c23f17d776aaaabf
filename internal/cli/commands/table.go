package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/mlsmell/internal/cli/output"
)

// writeTable renders rows as a box table on terminals and as a markdown
// table otherwise.
func writeTable(r *output.Renderer, header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, cells := range rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
