// Package minimap maps drivelines into screen rectangles and renders them.
package minimap

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/pkg/driveline"
)

// horizontal space kept free on both sides by FitTransform
const FitMargin = 10.0

// Transform maps driveline coordinates to screen coordinates:
// Offset + (p - Min) * Scale.
type Transform struct {
	Offset r2.Vec
	Min    r2.Vec
	Scale  driveline.ScaleFactors
}

// NewTransform uses the scale factors computed when the driveline was built.
// This is the in-race minimap.
func NewTransform(d *driveline.Driveline, offset r2.Vec) Transform {
	return Transform{
		Offset: offset,
		Min:    d.Box().Min,
		Scale:  d.Scale(),
	}
}

// FitTransform fits the driveline into the rectangle x,y,w,h keeping its
// aspect ratio. The track is centered horizontally if the height limits the
// scale. Used for track previews.
func FitTransform(d *driveline.Driveline, x, y, w, h float64) Transform {
	box := d.Box()
	ext := r2.Sub(box.Max, box.Min)

	sx := math.Inf(1)
	if ext.X > 0 {
		sx = (w - 2*FitMargin) / ext.X
	}
	sy := math.Inf(1)
	if ext.Y > 0 {
		sy = h / ext.Y
	}
	s := math.Min(sx, sy)
	if math.IsInf(s, 1) {
		s = 1
	}

	offset := r2.Vec{X: x + FitMargin, Y: y}
	if sx > sy {
		offset.X = x + w/2 - ext.X*s/2
	}
	return Transform{
		Offset: offset,
		Min:    box.Min,
		Scale:  driveline.ScaleFactors{X: s, Y: s},
	}
}

func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: t.Offset.X + (p.X-t.Min.X)*t.Scale.X,
		Y: t.Offset.Y + (p.Y-t.Min.Y)*t.Scale.Y,
	}
}

// Outline returns the transformed centerline. The loop is not closed, the
// last point connects to the first.
func Outline(d *driveline.Driveline, t Transform) []r2.Vec {
	ret := d.Centers()
	for i := range ret {
		ret[i] = t.Apply(ret[i])
	}
	return ret
}
