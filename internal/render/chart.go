package render

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
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
)

// Chart formats accepted by SeriesChart.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

const (
	chartWidth    = 10 * vg.Inch
	chartHeight   = 5 * vg.Inch
	maxTickLabels = 12
)

var (
	// ErrUnsupportedFormat is returned for chart formats other than png and pdf.
	ErrUnsupportedFormat = errors.New("unsupported chart format")
	// ErrEmptySeries is returned when there is nothing to plot.
	ErrEmptySeries = errors.New("series has no points")
)

var chartBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// ContentType returns the MIME type of a chart format.
func ContentType(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// SeriesChart plots monthly case counts as a line with point markers, one tick
// per month label.
func SeriesChart(w io.Writer, s report.Series, title, format string) error {
	if format != FormatPNG && format != FormatPDF {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if len(s.Values) == 0 {
		return ErrEmptySeries
	}

	p, plotErr := seriesPlot(s, title)
	if plotErr != nil {
		return plotErr
	}

	if format == FormatPDF {
		c := vgpdf.New(chartWidth, chartHeight)
		p.Draw(draw.New(c))
		if _, writeErr := c.WriteTo(w); writeErr != nil {
			return fmt.Errorf("write pdf: %w", writeErr)
		}
		return nil
	}

	wt, writerErr := p.WriterTo(chartWidth, chartHeight, FormatPNG)
	if writerErr != nil {
		return fmt.Errorf("png writer: %w", writerErr)
	}
	if _, writeErr := wt.WriteTo(w); writeErr != nil {
		return fmt.Errorf("write png: %w", writeErr)
	}
	return nil
}

func seriesPlot(s report.Series, title string) (*plot.Plot, error) {
	pts := make(plotter.XYs, len(s.Values))
	for i, v := range s.Values {
		pts[i] = plotter.XY{X: float64(i), Y: float64(v)}
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.Y.Label.Text = "Cases"
	p.Y.Min = 0

	line, lineErr := plotter.NewLine(pts)
	if lineErr != nil {
		return nil, fmt.Errorf("line: %w", lineErr)
	}
	line.Color = chartBlue
	line.Width = vg.Points(2)

	scatter, scatterErr := plotter.NewScatter(pts)
	if scatterErr != nil {
		return nil, fmt.Errorf("scatter: %w", scatterErr)
	}
	scatter.Color = chartBlue
	scatter.Radius = vg.Points(3)
	scatter.Shape = draw.CircleGlyph{}

	p.Add(line, scatter, plotter.NewGrid())

	p.X.Tick.Marker = monthTicks(s.Labels)
	p.X.Min = -0.5
	p.X.Max = float64(len(s.Labels)) - 0.5
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return p, nil
}

// monthTicks labels every month, thinning labels to at most maxTickLabels.
type monthTicks []string

func (mt monthTicks) Ticks(_, _ float64) []plot.Tick {
	n := len(mt)
	step := 1
	if n > maxTickLabels {
		step = (n + maxTickLabels - 1) / maxTickLabels
	}

	ticks := make([]plot.Tick, 0, n)
	for i := range n {
		t := plot.Tick{Value: float64(i)}
		if i%step == 0 {
			t.Label = mt[i]
		}
		ticks = append(ticks, t)
	}
	return ticks
}
