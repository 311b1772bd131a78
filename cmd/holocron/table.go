package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one rendered table column.
type column struct {
	Header string
	Align  text.Align
}

var (
	packColumns = []column{
		{Header: "#", Align: text.AlignRight},
		{Header: "Card"},
		{Header: "Name"},
		{Header: "Rarity"},
		{Header: "Owned"},
		{Header: "Status"},
	}
	envelopeColumns = []column{
		{Header: "Envelope"},
		{Header: "Status"},
		{Header: "Ready In", Align: text.AlignRight},
	}
	albumStatsColumns = []column{
		{Header: "Category"},
		{Header: "Collected", Align: text.AlignRight},
		{Header: "Total", Align: text.AlignRight},
		{Header: "Complete", Align: text.AlignRight},
	}
	albumListColumns = []column{
		{Header: "Card"},
		{Header: "Name"},
		{Header: "Rarity"},
	}
	cardColumns = []column{
		{Header: "Field"},
		{Header: "Value"},
	}
)

type tableOptions struct {
	title  string
	footer []string
}

type tableOption func(*tableOptions)

func withTitle(title string) tableOption {
	return func(o *tableOptions) { o.title = title }
}

func withFooter(cells ...string) tableOption {
	return func(o *tableOptions) { o.footer = cells }
}

// renderTable draws rows under columns. Short rows are padded with blanks and
// extra cells are dropped.
func renderTable(columns []column, rows [][]string, opts ...tableOption) string {
	if len(columns) == 0 {
		return ""
	}
	var options tableOptions
	for _, opt := range opts {
		opt(&options)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if options.title != "" {
		tw.SetTitle(options.title)
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		align := col.Align
		if align == text.AlignDefault {
			align = text.AlignLeft
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		}
	}
	tw.SetColumnConfigs(configs)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	tw.AppendHeader(fitRow(len(columns), headers))
	for _, row := range rows {
		tw.AppendRow(fitRow(len(columns), row))
	}
	if len(options.footer) > 0 {
		tw.AppendFooter(fitRow(len(columns), options.footer))
	}
	return tw.Render()
}

func fitRow(width int, values []string) table.Row {
	row := make(table.Row, width)
	for i := range width {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
