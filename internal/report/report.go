// Package report renders a printable PDF summary of a detour
// calculation with its net gain chart.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rubiojr/fueldetour/internal/detour"
	"github.com/rubiojr/fueldetour/internal/translations"
)

const (
	pageMargin   = 20.0
	contentWidth = 170.0
	chartHeight  = 90.0
	axisTicks    = 5
)

// ErrNoSeries is returned when there is no chart to draw, which happens
// while the inputs are invalid.
var ErrNoSeries = errors.New("no chart data")

// ErrNotFinite is returned when the result overflowed and cannot be drawn.
var ErrNotFinite = errors.New("result is not finite")

type Report struct {
	pdf *fpdf.Fpdf
	t   translations.Translations
	tr  func(string) string
	now func() time.Time
}

// New returns an empty A4 report in the language of t.
func New(t translations.Translations) *Report {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	return &Report{
		pdf: pdf,
		t:   t,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		now: time.Now,
	}
}

// Write renders the report for data to w.
func Write(w io.Writer, t translations.Translations, data detour.FuelData, result detour.Result, series []detour.ChartPoint) error {
	return New(t).Write(w, data, result, series)
}

func (r *Report) Write(w io.Writer, data detour.FuelData, result detour.Result, series []detour.ChartPoint) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	if !result.Finite() {
		return ErrNotFinite
	}

	r.pdf.AddPage()
	r.title()
	r.inputs(data)
	r.metrics(result)
	r.chart(result, series)

	if err := r.pdf.Error(); err != nil {
		return fmt.Errorf("error building pdf: %w", err)
	}
	return r.pdf.Output(w)
}

func (r *Report) title() {
	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.CellFormat(contentWidth, 12, r.tr(r.t.AdviceReportName), "", 1, "C", false, 0, "")
	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.CellFormat(contentWidth, 6, r.now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	r.pdf.Ln(6)
}

func (r *Report) inputs(data detour.FuelData) {
	rows := make([][2]string, 0, len(detour.Fields))
	for _, f := range detour.Fields {
		rows = append(rows, [2]string{r.t.Field(f), detour.FormatDisplay(data.Get(f))})
	}
	r.table(rows)
}

func (r *Report) metrics(result detour.Result) {
	p := r.t.Printer()
	r.table([][2]string{
		{r.t.Savings, p.Sprintf("%.2f €", result.SavingsEuro)},
		{r.t.CostPerKm, p.Sprintf("%.4f €", result.CostPerKm)},
		{r.t.ExtraKms, p.Sprintf("%.2f km", result.ExtraKms)},
		{r.t.MaxOneWay, p.Sprintf("%.2f km", result.MaxOneWayDistance)},
	})
}

func (r *Report) table(rows [][2]string) {
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetFillColor(245, 245, 245)
	for i, row := range rows {
		fill := i%2 == 0
		r.pdf.SetFont("Arial", "", 11)
		r.pdf.CellFormat(contentWidth*0.65, 7, r.tr(row[0]), "1", 0, "L", fill, 0, "")
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.CellFormat(contentWidth*0.35, 7, r.tr(row[1]), "1", 1, "R", fill, 0, "")
	}
	r.pdf.Ln(6)
}

// chart draws net gain against total detour distance, with the zero line
// and a dashed marker at the break-even distance.
func (r *Report) chart(result detour.Result, series []detour.ChartPoint) {
	left, top := pageMargin+10, r.pdf.GetY()+4
	width, height := contentWidth-10, chartHeight

	maxX := series[len(series)-1].TotalDist
	minY, maxY := series[0].NetGain, series[0].NetGain
	for _, p := range series {
		minY = math.Min(minY, p.NetGain)
		maxY = math.Max(maxY, p.NetGain)
	}
	if maxY == minY {
		maxY = minY + 1
	}

	x := func(v float64) float64 { return left + v/maxX*width }
	y := func(v float64) float64 { return top + (maxY-v)/(maxY-minY)*height }

	r.pdf.SetFont("Arial", "", 8)
	r.pdf.SetDrawColor(120, 120, 120)
	r.pdf.SetLineWidth(0.2)
	r.pdf.Rect(left, top, width, height, "D")

	p := r.t.Printer()
	for i := 0; i <= axisTicks; i++ {
		xv := maxX * float64(i) / axisTicks
		r.pdf.Text(x(xv)-3, top+height+4, p.Sprintf("%.1f", xv))
		yv := minY + (maxY-minY)*float64(i)/axisTicks
		r.pdf.Text(left-9, y(yv)+1, p.Sprintf("%.1f", yv))
	}

	if minY < 0 && maxY > 0 {
		r.pdf.SetDrawColor(180, 180, 180)
		r.pdf.Line(left, y(0), left+width, y(0))
	}

	if result.ExtraKms > 0 && result.ExtraKms <= maxX {
		r.pdf.SetDrawColor(200, 60, 60)
		r.pdf.SetDashPattern([]float64{1.5, 1}, 0)
		r.pdf.Line(x(result.ExtraKms), top, x(result.ExtraKms), top+height)
		r.pdf.SetDashPattern([]float64{}, 0)
		r.pdf.SetTextColor(200, 60, 60)
		r.pdf.Text(x(result.ExtraKms)+1, top+4, r.tr(r.t.BreakEven))
		r.pdf.SetTextColor(0, 0, 0)
	}

	r.pdf.SetDrawColor(30, 110, 200)
	r.pdf.SetLineWidth(0.6)
	for i := 1; i < len(series); i++ {
		a, b := series[i-1], series[i]
		r.pdf.Line(x(a.TotalDist), y(a.NetGain), x(b.TotalDist), y(b.NetGain))
	}
	r.pdf.SetLineWidth(0.2)

	r.pdf.SetY(top + height + 8)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.CellFormat(contentWidth, 5, r.tr(r.t.TotalDistance+"  /  "+r.t.NetGain), "", 1, "C", false, 0, "")
}
