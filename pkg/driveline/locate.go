package driveline

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// number of indices checked on each side of a hint
const hintWindow = 2

// LocateNearest returns the driveline index nearest to p among the
// indices hint-2 .. hint+2.
//
// The result is only correct if the true nearest index is within that
// window, i.e. the hint stems from a recent query for the same kart.
// Use LocateNearestAbsolute otherwise.
func (d *Driveline) LocateNearest(hint int, p r2.Vec) int {
	hint = d.wrap(hint)
	nearest := hint
	best := math.Inf(1)
	for i := hint - hintWindow; i <= hint+hintWindow; i++ {
		idx := d.wrap(i)
		if dist := r2.Norm2(r2.Sub(d.center[idx], p)); dist < best {
			best = dist
			nearest = idx
		}
	}
	return nearest
}

// LocateNearestAbsolute scans the whole driveline for the index nearest to p.
func (d *Driveline) LocateNearestAbsolute(p r2.Vec) int {
	nearest := 0
	best := math.Inf(1)
	for i, c := range d.center {
		if dist := r2.Norm2(r2.Sub(c, p)); dist < best {
			best = dist
			nearest = i
		}
	}
	return nearest
}
