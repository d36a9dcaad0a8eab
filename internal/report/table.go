package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spigell/resume-matcher/internal/scoring"
)

// WriteTable renders one row per result, in the given order.
func WriteTable(w io.Writer, results []*scoring.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(columns)...)

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, row(r))
	}

	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("fill table: %w", err)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func toAny(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
