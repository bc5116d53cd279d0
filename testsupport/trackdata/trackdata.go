// Package trackdata provides synthetic tracks for tests.
package trackdata

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gonum.org/v1/gonum/spatial/r2"
)

// Square returns the boundaries of a track whose centerline is the unit
// square (0,0),(1,0),(1,1),(0,1). Driving direction is counterclockwise.
func Square() (left, right []r2.Vec) {
	center := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	return FromCenters(center, 0.2)
}

// FromCenters creates boundaries with a constant full width w. left and right
// are placed symmetrically on the y axis so the midpoint is exactly center.
func FromCenters(center []r2.Vec, w float64) (left, right []r2.Vec) {
	left = make([]r2.Vec, len(center))
	right = make([]r2.Vec, len(center))
	for i, c := range center {
		left[i] = r2.Vec{X: c.X, Y: c.Y + w/2}
		right[i] = r2.Vec{X: c.X, Y: c.Y - w/2}
	}
	return left, right
}

// Oval returns n boundary samples of an ellipse with radii rx, ry and full
// width w. Driving direction is counterclockwise, index 0 is at (rx,0).
func Oval(n int, rx, ry, w float64) (left, right []r2.Vec) {
	left = make([]r2.Vec, n)
	right = make([]r2.Vec, n)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		c := r2.Vec{X: rx * math.Cos(a), Y: ry * math.Sin(a)}
		// outward normal of the ellipse
		nrm := r2.Unit(r2.Vec{X: ry * math.Cos(a), Y: rx * math.Sin(a)})
		// counterclockwise: the inside is on the left
		left[i] = r2.Sub(c, r2.Scale(w/2, nrm))
		right[i] = r2.Add(c, r2.Scale(w/2, nrm))
	}
	return left, right
}

// Format renders points in the boundary file format.
func Format(points []r2.Vec) string {
	var sb strings.Builder
	sb.WriteString("# generated\n")
	for _, p := range points {
		fmt.Fprintf(&sb, "%g,%g,0\n", p.X, p.Y)
	}
	return sb.String()
}

// WriteTrack stores both boundary files of ident in dir.
func WriteTrack(fs afero.Fs, dir, ident string, left, right []r2.Vec) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, ident+".drvl"),
		[]byte(Format(left)), 0o644); err != nil {
		return err
	}
	return afero.WriteFile(fs, filepath.Join(dir, ident+".drvr"),
		[]byte(Format(right)), 0o644)
}
