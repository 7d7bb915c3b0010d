// Package preview renders quick-look overviews of file footprints: a PNG
// drawn with gonum/plot and an interactive HTML scatter from go-echarts.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// legendLimit caps the number of legend entries on the PNG.
const legendLimit = 12

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("no footprints to render")

// Footprint is one labelled X/Y extent.
type Footprint struct {
	Label string
	Box   r2.Box
}

// Area returns the footprint area in squared native units.
func (f Footprint) Area() float64 {
	return (f.Box.Max.X - f.Box.Min.X) * (f.Box.Max.Y - f.Box.Min.Y)
}

// Center returns the midpoint of the footprint.
func (f Footprint) Center() r2.Vec {
	return r2.Vec{X: (f.Box.Min.X + f.Box.Max.X) / 2, Y: (f.Box.Min.Y + f.Box.Max.Y) / 2}
}

func outline(b r2.Box) plotter.XYs {
	return plotter.XYs{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Min.Y},
	}
}

// WriteImage draws every footprint outline to w in format, which is any
// format gonum/plot can encode ("png", "svg", "pdf", ...).
func WriteImage(w io.Writer, format, title string, footprints []Footprint) error {
	if len(footprints) == 0 {
		return ErrEmpty
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	colors := generateColors(len(footprints))
	for i, fp := range footprints {
		line, err := plotter.NewLine(outline(fp.Box))
		if err != nil {
			return fmt.Errorf("outline %s: %w", fp.Label, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		if i < legendLimit {
			p.Legend.Add(fp.Label, line)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(10*vg.Inch, 10*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("render footprint plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write footprint plot: %w", err)
	}
	return nil
}

// WriteHTML renders footprint centres as a scatter chart whose third value
// dimension is the footprint area.
func WriteHTML(w io.Writer, title string, footprints []Footprint) error {
	if len(footprints) == 0 {
		return ErrEmpty
	}

	data := make([]opts.ScatterData, 0, len(footprints))
	minArea, maxArea := footprints[0].Area(), footprints[0].Area()
	extent := footprints[0].Box
	for _, fp := range footprints {
		c := fp.Center()
		a := fp.Area()
		minArea = min(minArea, a)
		maxArea = max(maxArea, a)
		extent.Min.X = min(extent.Min.X, fp.Box.Min.X)
		extent.Min.Y = min(extent.Min.Y, fp.Box.Min.Y)
		extent.Max.X = max(extent.Max.X, fp.Box.Max.X)
		extent.Max.Y = max(extent.Max.Y, fp.Box.Max.Y)
		data = append(data, opts.ScatterData{
			Name:  filepath.Base(fp.Label),
			Value: []interface{}{c.X, c.Y, a},
		})
	}
	if maxArea == minArea {
		maxArea = minArea + 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("files=%d", len(footprints))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: extent.Min.X, Max: extent.Max.X, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: extent.Min.Y, Max: extent.Max.Y, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minArea),
			Max:        float32(maxArea),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("footprints", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return fmt.Errorf("render footprint chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// generateColors creates a palette of distinct colors, one per footprint.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range).
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
