package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/permits/permit"
)

// Report pages are US Letter, landscape.
const (
	pageWidth  = 11 * vg.Inch
	pageHeight = 8.5 * vg.Inch
	pdfMargin  = 0.6 * vg.Inch

	tableRowHeight = 0.26 * vg.Inch
	areaColWidth   = 1.7 * vg.Inch
	minFontSize    = 5
)

const dateLayout = "2006-01-02"

// Report writes the dashboard as a multi-page PDF: an overview page, the two
// charts, the composite summary table and the plant summary when one was
// requested. It returns the number of pages written.
func Report(w io.Writer, title string, d permit.Dashboard) (int, error) {
	r := &report{c: vgpdf.New(pageWidth, pageHeight)}

	r.overview(title, d)

	if p, err := DepartmentChart(d.DepartmentCounts); err == nil {
		r.plotPage(p)
	}
	if p, err := WorkflowChart(d.WorkflowStates, d.WorkflowDepartment); err == nil {
		r.plotPage(p)
	}

	r.table("Custom Permit Summary", d.Summary.Table())

	switch {
	case d.Plant != nil:
		r.table("Plantwise Summary - "+d.Plant.Plant, d.Plant.Table())
	case d.PlantNoData:
		area := r.newPage()
		fillText(area, "Plantwise Summary", vg.Points(14), area.Min.X, area.Max.Y-vg.Points(14), color.Black)
		fillText(area, permit.ErrNoData.Error(), vg.Points(10), area.Min.X, area.Max.Y-0.45*vg.Inch, color.Gray{Y: 100})
	}

	if _, err := r.c.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return r.pages, nil
}

type report struct {
	c     *vgpdf.Canvas
	pages int
}

// newPage starts a page and returns its drawable area inside the margins.
func (r *report) newPage() draw.Canvas {
	if r.pages > 0 {
		r.c.NextPage()
	}
	r.pages++
	dc := draw.New(r.c)
	return draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
}

func (r *report) plotPage(p *plot.Plot) {
	p.Draw(r.newPage())
}

func (r *report) overview(title string, d permit.Dashboard) {
	area := r.newPage()
	y := area.Max.Y - vg.Points(16)
	fillText(area, title, vg.Points(16), area.Min.X, y, color.Black)
	y -= 0.45 * vg.Inch

	gray := color.Gray{Y: 90}
	lines := []string{
		"Date range: " + formatRange(d.GlobalRange),
		"Result range: " + formatRange(d.ResultRange),
		"Total permits: " + FormatInt(d.TotalPermits),
	}
	for _, l := range lines {
		fillText(area, l, vg.Points(11), area.Min.X, y, gray)
		y -= 0.28 * vg.Inch
	}

	y -= 0.15 * vg.Inch
	fillText(area, "Departments", vg.Points(11), area.Min.X, y, color.Black)
	y -= vg.Points(6)
	strokeHLine(area, area.Min.X, area.Min.X+3*vg.Inch, y, color.Gray{Y: 180})
	y -= 0.24 * vg.Inch
	for _, c := range d.DepartmentCounts {
		if y < area.Min.Y+tableRowHeight {
			break
		}
		fillText(area, c.Name, vg.Points(10), area.Min.X, y, color.Black)
		fillText(area, FormatInt(c.Count), vg.Points(10), area.Min.X+2.2*vg.Inch, y, color.Black)
		y -= 0.22 * vg.Inch
	}

	for _, warn := range d.Warnings {
		y -= 0.1 * vg.Inch
		if y < area.Min.Y {
			break
		}
		fillText(area, "Note: "+warn, vg.Points(9), area.Min.X, y, color.RGBA{R: 170, G: 80, B: 0, A: 255})
		y -= 0.2 * vg.Inch
	}
}

// table draws t across as many pages as its rows need. The first column gets
// a fixed width; the rest share the remaining width equally.
func (r *report) table(title string, t permit.Table) {
	if len(t.Header) == 0 {
		return
	}
	usableW := pageWidth - 2*pdfMargin

	colX := make([]vg.Length, len(t.Header))
	colW := usableW
	if len(t.Header) > 1 {
		colW = (usableW - areaColWidth) / vg.Length(len(t.Header)-1)
		for i := 1; i < len(t.Header); i++ {
			colX[i] = areaColWidth + vg.Length(i-1)*colW
		}
	}

	rowIdx := 0
	for page := 0; page == 0 || rowIdx < len(t.Rows); page++ {
		area := r.newPage()
		y := area.Max.Y - vg.Points(14)
		heading := title
		if page > 0 {
			heading += " (continued)"
		}
		fillText(area, heading, vg.Points(14), area.Min.X, y, color.Black)
		y -= 0.45 * vg.Inch

		for i, h := range t.Header {
			w := colW
			if i == 0 {
				w = areaColWidth
			}
			fillFit(area, h, vg.Points(8), w-vg.Points(4), area.Min.X+colX[i], y, color.Gray{Y: 80})
		}
		y -= vg.Points(6)
		strokeHLine(area, area.Min.X, area.Min.X+usableW, y, color.Gray{Y: 180})
		y -= tableRowHeight * 0.7

		for rowIdx < len(t.Rows) && y > area.Min.Y {
			row := t.Rows[rowIdx]
			rowIdx++
			clr := color.Color(color.Black)
			if rowIdx == len(t.Rows) && cell(row, 0) == permit.TotalLabel {
				strokeHLine(area, area.Min.X, area.Min.X+usableW, y+tableRowHeight*0.55, color.Gray{Y: 120})
				clr = color.RGBA{R: 20, G: 60, B: 120, A: 255}
			}
			for i := range t.Header {
				w := colW
				if i == 0 {
					w = areaColWidth
				}
				fillFit(area, cell(row, i), vg.Points(9), w-vg.Points(4), area.Min.X+colX[i], y, clr)
			}
			y -= tableRowHeight
		}
	}
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case int:
		return FormatInt(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func formatRange(r permit.DateRange) string {
	if r.IsZero() {
		return "all dates"
	}
	return r.Start.Format(dateLayout) + " to " + r.End.Format(dateLayout)
}

func textStyle(size vg.Length, clr color.Color) draw.TextStyle {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	return sty
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	c.FillText(textStyle(size, clr), vg.Point{X: x, Y: y}, txt)
}

// fillFit draws txt shrinking the font, down to minFontSize, until it fits
// within width.
func fillFit(c draw.Canvas, txt string, size, width vg.Length, x, y vg.Length, clr color.Color) {
	sty := textStyle(size, clr)
	for sty.Font.Size > minFontSize && sty.Width(txt) > width {
		sty.Font.Size -= 0.5
	}
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}
