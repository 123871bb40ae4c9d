// Package chart draws the dashboard charts and the printable PDF report.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/permits/permit"
)

// ErrNoCounts is returned when a chart is requested for an empty distribution.
var ErrNoCounts = errors.New("nothing to chart")

// Default PNG size for the web dashboard.
const (
	PNGWidth  = 8 * vg.Inch
	PNGHeight = 5 * vg.Inch
)

var (
	chartBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	chartOrange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// DepartmentChart plots permit counts per department, one bar per
// department, labelled "<name> (<count>)".
func DepartmentChart(counts []permit.Count) (*plot.Plot, error) {
	return barChart("Department-wise Permit Count", counts, chartBlue)
}

// WorkflowChart plots the workflow state distribution for one department, or
// for all of them when dept is "" or "All".
func WorkflowChart(counts []permit.Count, dept string) (*plot.Plot, error) {
	if dept == "" {
		dept = "All"
	}
	return barChart("Workflow State Distribution - "+dept, counts, chartOrange)
}

func barChart(title string, counts []permit.Count, clr color.Color) (*plot.Plot, error) {
	if len(counts) == 0 {
		return nil, ErrNoCounts
	}

	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(counts)),
		Labels: make([]string, len(counts)),
	}
	top := 0
	for i, c := range counts {
		vals[i] = float64(c.Count)
		names[i] = c.Label()
		labels.XYs[i] = plotter.XY{X: float64(i), Y: float64(c.Count)}
		labels.Labels[i] = fmt.Sprint(c.Count)
		if c.Count > top {
			top = c.Count
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White

	bars, err := plotter.NewBarChart(vals, vg.Points(barWidth(len(counts))))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = clr
	bars.LineStyle.Width = 0

	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = draw.XCenter
		annotations.TextStyle[i].Font.Size = vg.Points(8)
	}
	annotations.Offset = vg.Point{Y: vg.Points(3)}

	p.Add(plotter.NewGrid(), bars, annotations)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	p.Y.Min = 0
	p.Y.Max = float64(top) * 1.15
	p.Y.Tick.Marker = countTicks{}
	p.Y.Label.Text = "Permits"
	return p, nil
}

// barWidth narrows bars as their number grows so long distributions fit.
func barWidth(n int) float64 {
	switch {
	case n <= 8:
		return 28
	case n <= 16:
		return 18
	default:
		return 10
	}
}

// countTicks labels only whole-number ticks; counts are never fractional.
type countTicks struct{}

func (countTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label == "" {
			continue
		}
		if ticks[i].Value != math.Trunc(ticks[i].Value) {
			ticks[i].Label = ""
			continue
		}
		ticks[i].Label = fmt.Sprintf("%.0f", ticks[i].Value)
	}
	return ticks
}

// WritePNG renders p as a PNG image of the given size.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
