package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/example/wfviz/internal/domain"
)

// LegendRows describes the palette: one row per status, then the
// parallel and serial formats.
func LegendRows(palette Palette, useColor bool) [][]string {
	s := newStyler(palette, useColor)

	rows := [][]string{{"Colours", ""}}
	for _, st := range domain.Statuses {
		style := palette.Statuses[st]
		rows = append(rows, []string{s.apply(string(style), style), st.String()})
	}
	rows = append(rows,
		[]string{"Format", ""},
		[]string{s.apply(styleName(palette.Parallel), palette.Parallel), "Parallel"},
		[]string{s.apply(styleName(palette.Serial), palette.Serial), "Serial"},
	)
	return rows
}

func styleName(s Style) string {
	if s == "" {
		return "standard"
	}
	return string(s)
}

// RenderLegend writes the legend table to w.
func RenderLegend(w io.Writer, palette Palette, useColor bool) error {
	if _, err := fmt.Fprintln(w, "Legend"); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Format", "Description"})
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(LegendRows(palette, useColor))
	table.Render()
	return nil
}
