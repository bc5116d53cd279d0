package driveline

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// progress values this close to the total distance are treated as 0
const progressEpsilon = 1e-9

// Result describes a position relative to the driveline.
type Result struct {
	// LateralOffset is the signed distance to the centerline,
	// positive on the right side in driving direction.
	LateralOffset float64 `json:"lateralOffset"`
	// Progress is the distance from index 0 along the driveline
	// in [0, TotalDistance).
	Progress     float64 `json:"progress"`
	NearestIndex int     `json:"nearestIndex"`
}

// Project computes the Result of p given its nearest driveline index.
//
// The segment used is chosen by comparing the distances from p to the
// neighbours of nearest, not by the distance to the segments themselves.
func (d *Driveline) Project(nearest int, p r2.Vec) Result {
	n := len(d.center)
	nearest = d.wrap(nearest)
	prev := (nearest - 1 + n) % n
	next := (nearest + 1) % n

	distPrev := r2.Norm(r2.Sub(d.center[prev], p))
	distNext := r2.Norm(r2.Sub(d.center[next], p))

	base, p1, p2 := prev, d.center[prev], d.center[nearest]
	if distNext < distPrev {
		base, p1, p2 = nearest, d.center[nearest], d.center[next]
	}

	seg := r2.Sub(p2, p1)
	length := r2.Norm(seg)
	if length == 0 {
		return Result{
			LateralOffset: r2.Norm(r2.Sub(p, p1)),
			Progress:      d.wrapProgress(d.distance[base]),
			NearestIndex:  nearest,
		}
	}

	dir := r2.Scale(1/length, seg)
	rel := r2.Sub(p, p1)
	offset := r2.Cross(rel, dir)
	// foot of the perpendicular from p onto the line p1,p2
	foot := r2.Sub(p, r2.Scale(offset, r2.Vec{X: dir.Y, Y: -dir.X}))

	return Result{
		LateralOffset: offset,
		Progress:      d.wrapProgress(d.distance[base] + r2.Norm(r2.Sub(foot, p1))),
		NearestIndex:  nearest,
	}
}

// wrapProgress maps values at or beyond the end of the lap back to its start.
func (d *Driveline) wrapProgress(v float64) float64 {
	if d.total <= 0 {
		return 0
	}
	if v >= d.total*(1-progressEpsilon) {
		v -= d.total
	}
	if v < 0 {
		v = 0
	}
	return v
}
