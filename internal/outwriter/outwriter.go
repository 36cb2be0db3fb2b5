// Package outwriter renders pipeline results as text tables, CSV, JSON or Parquet.
package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// newTable creates a table with right aligned cells, the layout every view shares.
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// renderTable writes all rows and renders the table.
func renderTable(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// reportParquet prints where a Parquet file was written.
func reportParquet(path string, rows int) {
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %d rows of Parquet to %s\n", rows, path)
}
