// Package driveline builds the closed centerline of a track from its boundary
// samples and projects positions onto it.
//
// A Driveline is immutable once built. All query methods are read-only and
// may be called concurrently.
package driveline

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

type BoundingBox struct {
	Min    r2.Vec
	Max    r2.Vec
	Center r2.Vec
}

// ScaleFactors map driveline coordinates into the minimap rectangle.
type ScaleFactors struct {
	X float64
	Y float64
}

type Driveline struct {
	name     string
	center   []r2.Vec
	width    []float64
	heading  []float64 // degrees
	distance []float64 // from index 0 along the driveline
	total    float64
	box      BoundingBox
	scale    ScaleFactors
	// hash of the boundary files, empty if not loaded from files
	fingerprint string
}

func (d *Driveline) Name() string { return d.name }

// Fingerprint identifies the content of the files the driveline was
// loaded from.
func (d *Driveline) Fingerprint() string { return d.fingerprint }

func (d *Driveline) Len() int { return len(d.center) }

// Center returns the centerline point at index i (taken modulo Len).
func (d *Driveline) Center(i int) r2.Vec { return d.center[d.wrap(i)] }

// Centers returns a copy of all centerline points.
func (d *Driveline) Centers() []r2.Vec { return slices.Clone(d.center) }

// Width returns the full track width at index i.
func (d *Driveline) Width(i int) float64 { return d.width[d.wrap(i)] }

// Heading returns the driving direction at index i in degrees.
// 0 points along +Y, -90 along +X.
func (d *Driveline) Heading(i int) float64 { return d.heading[d.wrap(i)] }

// Distance returns the distance from index 0 to index i.
func (d *Driveline) Distance(i int) float64 { return d.distance[d.wrap(i)] }

// TotalDistance is the length of the closed loop.
func (d *Driveline) TotalDistance() float64 { return d.total }

func (d *Driveline) Box() BoundingBox { return d.box }

func (d *Driveline) Scale() ScaleFactors { return d.scale }

// wrap maps any index into [0, Len).
func (d *Driveline) wrap(i int) int {
	n := len(d.center)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
