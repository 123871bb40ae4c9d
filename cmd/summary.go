package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/zalepa/permits/chart"
	"github.com/zalepa/permits/permit"
)

var summaryFlags queryFlags

var summaryCmd = &cobra.Command{
	Use:   "summary <file>",
	Short: "Print the permit dashboard to the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		q, err := summaryFlags.query()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(args[0])
		if err != nil {
			return err
		}
		d, err := permit.BuildDashboard(snap, q)
		if err != nil {
			return err
		}
		renderDashboard(c.OutOrStdout(), d)
		return nil
	},
}

func init() {
	summaryFlags.bind(summaryCmd)
}

const barWidth = 40

func renderDashboard(w io.Writer, d permit.Dashboard) {
	if !d.GlobalRange.IsZero() {
		fmt.Fprintf(w, "Date range:   %s to %s\n", d.GlobalRange.Start.Format(dayLayout), d.GlobalRange.End.Format(dayLayout))
		fmt.Fprintf(w, "Result range: %s to %s\n", d.ResultRange.Start.Format(dayLayout), d.ResultRange.End.Format(dayLayout))
	}
	fmt.Fprintf(w, "Total permits: %s\n\n", chart.FormatInt(d.TotalPermits))

	renderCounts(w, "Department-wise Permit Count", d.DepartmentCounts)
	fmt.Fprintln(w)
	renderCounts(w, "Workflow State Distribution - "+d.WorkflowDepartment, d.WorkflowStates)
	fmt.Fprintln(w)
	renderTable(w, "Custom Permit Summary", d.Summary.Table())

	switch {
	case d.Plant != nil:
		fmt.Fprintln(w)
		renderTable(w, "Plantwise Summary - "+d.Plant.Plant, d.Plant.Table())
	case d.PlantNoData:
		fmt.Fprintf(w, "\nPlantwise Summary: %s\n", permit.ErrNoData)
	}
}

// renderCounts prints one "<label>  <bar>" line per count, bars scaled to
// the largest count.
func renderCounts(w io.Writer, title string, counts []permit.Count) {
	fmt.Fprintln(w, title)
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	labelW, top := 10, 0
	for _, c := range counts {
		if n := utf8.RuneCountInString(c.Label()); n > labelW {
			labelW = n
		}
		if c.Count > top {
			top = c.Count
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", labelW+2+barWidth))
	for _, c := range counts {
		fmt.Fprintf(w, "%-*s  %s\n", labelW, c.Label(), bar(c.Count, top, barWidth))
	}
}

// bar draws n/top of width cells using eighth-block runes.
func bar(n, top, width int) string {
	if top <= 0 || n <= 0 {
		return ""
	}
	eighths := n * width * 8 / top
	if eighths == 0 {
		eighths = 1
	}
	partial := []rune(" ▏▎▍▌▋▊▉")
	return strings.Repeat("█", eighths/8) + strings.TrimSpace(string(partial[eighths%8]))
}

// renderTable prints t with the first column left aligned and the rest right
// aligned. A trailing TOTAL row is set off by a rule.
func renderTable(w io.Writer, title string, t permit.Table) {
	fmt.Fprintln(w, title)

	widths := make([]int, len(t.Header))
	cells := make([][]string, len(t.Rows))
	for i, h := range t.Header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for r, row := range t.Rows {
		cells[r] = make([]string, len(t.Header))
		for i := range t.Header {
			if i < len(row) {
				cells[r][i] = cellText(row[i])
			}
			if n := utf8.RuneCountInString(cells[r][i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	total := 0
	for _, n := range widths {
		total += n + 2
	}
	rule := strings.Repeat("─", total)

	printRow := func(vals []string) {
		var sb strings.Builder
		for i, v := range vals {
			if i == 0 {
				fmt.Fprintf(&sb, "%-*s  ", widths[i], v)
			} else {
				fmt.Fprintf(&sb, "%*s  ", widths[i], v)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}

	printRow(t.Header)
	fmt.Fprintln(w, rule)
	for r, vals := range cells {
		if r == len(cells)-1 && len(vals) > 0 && vals[0] == permit.TotalLabel {
			fmt.Fprintln(w, rule)
		}
		printRow(vals)
	}
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return chart.FormatInt(x)
	case string:
		return x
	case time.Time:
		return x.Format(dayLayout)
	default:
		return fmt.Sprint(x)
	}
}
