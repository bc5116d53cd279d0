package driveline

import (
	"github.com/aarondl/opt/omit"
	"gonum.org/v1/gonum/spatial/r2"
)

// Locate projects p using the hint of a previous query.
// The returned index is the hint for the next query.
func (d *Driveline) Locate(hint int, p r2.Vec) (Result, int) {
	nearest := d.LocateNearest(hint, p)
	return d.Project(nearest, p), nearest
}

// LocateAbsolute projects p without a hint. Use it for the first query of a
// kart and after respawns or teleports.
func (d *Driveline) LocateAbsolute(p r2.Vec) (Result, int) {
	nearest := d.LocateNearestAbsolute(p)
	return d.Project(nearest, p), nearest
}

// Find projects p, using hint if it is set.
func (d *Driveline) Find(p r2.Vec, hint omit.Val[int]) (Result, int) {
	if h, ok := hint.Get(); ok {
		return d.Locate(h, p)
	}
	return d.LocateAbsolute(p)
}

// PointAt returns the centerline point at index (taken modulo Len).
func (d *Driveline) PointAt(index int) r2.Vec {
	return d.center[d.wrap(index)]
}

// OffsetRatio returns the lateral offset of r relative to the track width
// at its nearest index. 0.5 means the right edge, -0.5 the left one.
func (d *Driveline) OffsetRatio(r Result) float64 {
	w := d.width[d.wrap(r.NearestIndex)]
	if w == 0 {
		return 0
	}
	return r.LateralOffset / w
}
