package minimap

import (
	"fmt"
	"image/color"
	"io"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mpapenbr/kartline/pkg/driveline"
)

// Marker is a kart shown on the minimap.
type Marker struct {
	ID  string
	Pos r2.Vec
}

type (
	RenderOption func(*renderConfig)
	renderConfig struct {
		width  float64
		height float64
		format string
		title  bool
	}
)

// WithSize sets the image size in points.
func WithSize(w, h float64) RenderOption {
	return func(c *renderConfig) {
		c.width = w
		c.height = h
	}
}

// WithFormat selects the image format, see plot.WriterTo. Default is png.
func WithFormat(format string) RenderOption {
	return func(c *renderConfig) {
		c.format = format
	}
}

func WithTitle(show bool) RenderOption {
	return func(c *renderConfig) {
		c.title = show
	}
}

var (
	trackColor = color.RGBA{A: 255}
	kartColor  = color.RGBA{R: 220, G: 30, B: 30, A: 255}
)

// Render draws the driveline as closed loop together with the markers.
func Render(w io.Writer, d *driveline.Driveline, markers []Marker, opts ...RenderOption) error {
	cfg := &renderConfig{width: 200, height: 200, format: "png", title: true}
	for _, opt := range opts {
		opt(cfg)
	}

	t := FitTransform(d, 0, 0, cfg.width, cfg.height)

	p := plot.New()
	if cfg.title {
		p.Title.Text = d.Name()
	}
	p.HideAxes()
	p.X.Min, p.X.Max = 0, cfg.width
	p.Y.Min, p.Y.Max = 0, cfg.height

	outline := Outline(d, t)
	loop := toXYs(append(outline, outline[0]))
	line, err := plotter.NewLine(loop)
	if err != nil {
		return fmt.Errorf("track outline: %w", err)
	}
	line.Color = trackColor
	line.Width = vg.Points(1)
	p.Add(line)

	if len(markers) > 0 {
		pts := toXYs(lo.Map(markers, func(m Marker, _ int) r2.Vec { return t.Apply(m.Pos) }))
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("kart markers: %w", err)
		}
		scatter.GlyphStyle.Color = kartColor
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)

		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    pts,
			Labels: lo.Map(markers, func(m Marker, _ int) string { return m.ID }),
		})
		if err != nil {
			return fmt.Errorf("kart labels: %w", err)
		}
		p.Add(labels)
	}

	wt, err := p.WriterTo(vg.Points(cfg.width), vg.Points(cfg.height), cfg.format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func toXYs(points []r2.Vec) plotter.XYs {
	ret := make(plotter.XYs, len(points))
	for i, p := range points {
		ret[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return ret
}
