package driveline

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
)

type (
	BuildOption func(*buildConfig)
	buildConfig struct {
		name          string
		displayWidth  float64
		displayHeight float64
		stretch       bool
		headingWindow int
		l             *log.Logger
	}
)

func WithName(name string) BuildOption {
	return func(c *buildConfig) {
		c.name = name
	}
}

// WithDisplaySize sets the minimap rectangle used for the scale factors.
func WithDisplaySize(w, h float64) BuildOption {
	return func(c *buildConfig) {
		c.displayWidth = w
		c.displayHeight = h
	}
}

// WithStretch allows different scale factors for x and y.
func WithStretch(stretch bool) BuildOption {
	return func(c *buildConfig) {
		c.stretch = stretch
	}
}

// WithHeadingWindow averages each heading with its preceding samples.
// A window of 1 (the default) disables smoothing.
func WithHeadingWindow(window int) BuildOption {
	return func(c *buildConfig) {
		c.headingWindow = window
	}
}

func WithBuildLogger(l *log.Logger) BuildOption {
	return func(c *buildConfig) {
		c.l = l
	}
}

// Build merges the left and right track boundaries into a driveline.
// If the boundaries differ in length the shorter one wins.
func Build(left, right []r2.Vec, opts ...BuildOption) (*Driveline, error) {
	cfg := &buildConfig{
		displayWidth:  100,
		displayHeight: 100,
		headingWindow: 1,
		l:             log.Default().Named("driveline.builder"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	n := min(len(left), len(right))
	if len(left) != len(right) {
		cfg.l.Warn("driveline sizes do not match",
			log.String("track", cfg.name),
			log.Int("left", len(left)),
			log.Int("right", len(right)),
			log.Int("used", n))
	}
	if n == 0 {
		return nil, ErrEmptyDriveline
	}

	d := &Driveline{
		name:     cfg.name,
		center:   make([]r2.Vec, n),
		width:    make([]float64, n),
		distance: make([]float64, n),
	}
	for i := range n {
		d.center[i] = r2.Scale(0.5, r2.Add(left[i], right[i]))
		d.width[i] = r2.Norm(r2.Sub(right[i], left[i]))
	}

	raw := make([]float64, n)
	for i := range n {
		raw[i] = heading(d.center[i], d.center[(i+1)%n])
	}
	d.heading = smooth(raw, cfg.headingWindow)

	for i := 1; i < n; i++ {
		d.distance[i] = d.distance[i-1] + r2.Norm(r2.Sub(d.center[i], d.center[i-1]))
	}
	d.total = d.distance[n-1] + r2.Norm(r2.Sub(d.center[0], d.center[n-1]))

	d.box = boundingBox(d.center)
	d.scale = scaleFactors(d.box, cfg.displayWidth, cfg.displayHeight, cfg.stretch)

	cfg.l.Debug("driveline built",
		log.String("track", cfg.name),
		log.Int("points", n),
		log.Float64("length", d.total))
	return d, nil
}

// heading returns the direction from -> to in degrees in [-180,180).
// Moving along +Y is 0, along +X is -90.
func heading(from, to r2.Vec) float64 {
	v := r2.Sub(to, from)
	theta := math.Atan2(v.Y, v.X)*180/math.Pi - 90
	if theta < -180 {
		theta += 360
	}
	return theta
}

// smooth applies a trailing moving average over window samples.
func smooth(vals []float64, window int) []float64 {
	if window <= 1 {
		return vals
	}
	out := make([]float64, len(vals))
	var sum float64
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		count := min(window, i+1)
		out[i] = sum / float64(count)
	}
	return out
}

func boundingBox(points []r2.Vec) BoundingBox {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	box := BoundingBox{
		Min: r2.Vec{X: floats.Min(xs), Y: floats.Min(ys)},
		Max: r2.Vec{X: floats.Max(xs), Y: floats.Max(ys)},
	}
	box.Center = r2.Scale(0.5, r2.Add(box.Min, box.Max))
	return box
}

// scaleFactors relates the display size to the half extent of the box.
// An axis without extent borrows the factor of the other axis.
func scaleFactors(box BoundingBox, w, h float64, stretch bool) ScaleFactors {
	hx := box.Max.X - box.Center.X
	hy := box.Max.Y - box.Center.Y

	var s ScaleFactors
	switch {
	case hx > 0 && hy > 0:
		s = ScaleFactors{X: w / hx, Y: h / hy}
	case hx > 0:
		s = ScaleFactors{X: w / hx, Y: w / hx}
	case hy > 0:
		s = ScaleFactors{X: h / hy, Y: h / hy}
	default:
		return ScaleFactors{X: 1, Y: 1}
	}
	if !stretch {
		m := math.Min(s.X, s.Y)
		s = ScaleFactors{X: m, Y: m}
	}
	return s
}
