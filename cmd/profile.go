package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zalepa/permits/chart"
	"github.com/zalepa/permits/permit"
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Preview a permit sheet and print column statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		snap, err := loadSnapshot(args[0])
		if err != nil {
			return err
		}
		renderProfile(c.OutOrStdout(), permit.Describe(snap))
		return nil
	},
}

func renderProfile(w io.Writer, p permit.Profile) {
	fmt.Fprintf(w, "Rows: %s\n", chart.FormatInt(p.Rows))
	if p.Created != nil {
		fmt.Fprintf(w, "Created: %s to %s\n", p.Created.Start.Format(dayLayout), p.Created.End.Format(dayLayout))
	}
	fmt.Fprintln(w)
	renderTable(w, "Preview", p.Preview)
	fmt.Fprintln(w)

	cols := permit.Table{Header: []string{"COLUMN", "COUNT", "UNIQUE", "TOP", "FREQ"}}
	for _, c := range p.Columns {
		cols.Rows = append(cols.Rows, []any{c.Name, c.Count, c.Unique, c.Top, c.Freq})
	}
	renderTable(w, "Columns", cols)
	fmt.Fprintln(w)

	stats := permit.Table{Header: []string{"GROUPING", "GROUPS", "MEAN", "MEDIAN", "STDDEV", "MIN", "MAX"}}
	for _, g := range []struct {
		name string
		s    permit.CountStats
	}{
		{"Permits per department", p.PerDepartment},
		{"Permits per area", p.PerArea},
	} {
		stats.Rows = append(stats.Rows, []any{g.name, g.s.Groups,
			fmt.Sprintf("%.2f", g.s.Mean), fmt.Sprintf("%.2f", g.s.Median), fmt.Sprintf("%.2f", g.s.StdDev),
			fmt.Sprintf("%.0f", g.s.Min), fmt.Sprintf("%.0f", g.s.Max)})
	}
	renderTable(w, "Group sizes", stats)
}
