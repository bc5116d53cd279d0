//nolint:funlen // ok for tests
package driveline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/testsupport/trackdata"
)

const eps = 1e-9

func buildSquare(t *testing.T, opts ...BuildOption) *Driveline {
	t.Helper()
	left, right := trackdata.Square()
	d, err := Build(left, right, opts...)
	require.NoError(t, err)
	return d
}

func TestBuildSquare(t *testing.T) {
	d := buildSquare(t, WithName("square"))

	assert.Equal(t, "square", d.Name())
	assert.Equal(t, 4, d.Len())
	assert.InDelta(t, 4.0, d.TotalDistance(), eps)

	wantCenter := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	wantDist := []float64{0, 1, 2, 3}
	wantHeading := []float64{-90, 0, 90, -180}
	for i := range 4 {
		assert.InDelta(t, wantCenter[i].X, d.Center(i).X, eps, "center x %d", i)
		assert.InDelta(t, wantCenter[i].Y, d.Center(i).Y, eps, "center y %d", i)
		assert.InDelta(t, wantDist[i], d.Distance(i), eps, "distance %d", i)
		assert.InDelta(t, wantHeading[i], d.Heading(i), eps, "heading %d", i)
		assert.InDelta(t, 0.2, d.Width(i), eps, "width %d", i)
	}

	box := d.Box()
	assert.InDelta(t, 0.0, box.Min.X, eps)
	assert.InDelta(t, 0.0, box.Min.Y, eps)
	assert.InDelta(t, 1.0, box.Max.X, eps)
	assert.InDelta(t, 1.0, box.Max.Y, eps)
	assert.InDelta(t, 0.5, box.Center.X, eps)
	assert.InDelta(t, 0.5, box.Center.Y, eps)
}

func TestBuildIndexWraps(t *testing.T) {
	d := buildSquare(t)
	assert.Equal(t, d.Center(0), d.Center(4))
	assert.Equal(t, d.Center(3), d.Center(-1))
	assert.Equal(t, d.PointAt(1), d.PointAt(-7))
}

func TestBuildCentersIsCopy(t *testing.T) {
	d := buildSquare(t)
	c := d.Centers()
	c[0] = r2.Vec{X: 42, Y: 42}
	assert.NotEqual(t, c[0], d.Center(0))
}

func TestBuildScaleFactors(t *testing.T) {
	tests := []struct {
		name string
		opts []BuildOption
		want ScaleFactors
	}{
		{
			name: "defaults",
			want: ScaleFactors{X: 200, Y: 200},
		},
		{
			name: "uniform uses the smaller factor",
			opts: []BuildOption{WithDisplaySize(100, 50)},
			want: ScaleFactors{X: 100, Y: 100},
		},
		{
			name: "stretched",
			opts: []BuildOption{WithDisplaySize(100, 50), WithStretch(true)},
			want: ScaleFactors{X: 200, Y: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildSquare(t, tt.opts...)
			assert.InDelta(t, tt.want.X, d.Scale().X, eps)
			assert.InDelta(t, tt.want.Y, d.Scale().Y, eps)
		})
	}
}

func TestBuildScaleFactorsFlatTrack(t *testing.T) {
	// all points on the x axis
	left, right := trackdata.FromCenters(
		[]r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}}, 1)
	d, err := Build(left, right, WithDisplaySize(100, 100))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, d.Scale().X, eps)
	assert.InDelta(t, 10.0, d.Scale().Y, eps)

	// a single point has no extent at all
	d, err = Build([]r2.Vec{{X: 1, Y: 1}}, []r2.Vec{{X: 1, Y: 1}})
	require.NoError(t, err)
	assert.Equal(t, ScaleFactors{X: 1, Y: 1}, d.Scale())
	assert.Equal(t, 0.0, d.TotalDistance())
}

func TestBuildSizeMismatch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := log.NewWithCore(core)

	left := []r2.Vec{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}}
	right := []r2.Vec{{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 2, Y: -1}, {X: 3, Y: -1}}
	d, err := Build(left, right, WithBuildLogger(l), WithName("mismatch"))
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())

	warnings := logs.FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 1, warnings.Len())
	ctx := warnings.All()[0].ContextMap()
	assert.Equal(t, "mismatch", ctx["track"])
	assert.EqualValues(t, 5, ctx["left"])
	assert.EqualValues(t, 4, ctx["right"])
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil, []r2.Vec{{X: 1, Y: 1}})
	assert.ErrorIs(t, err, ErrEmptyDriveline)
}

func TestHeading(t *testing.T) {
	tests := []struct {
		name string
		to   r2.Vec
		want float64
	}{
		{"north", r2.Vec{X: 0, Y: 1}, 0},
		{"east", r2.Vec{X: 1, Y: 0}, -90},
		{"south", r2.Vec{X: 0, Y: -1}, -180},
		{"west", r2.Vec{X: -1, Y: 0}, 90},
		{"north east", r2.Vec{X: 1, Y: 1}, -45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := heading(r2.Vec{}, tt.to)
			assert.InDelta(t, tt.want, got, eps)
			assert.GreaterOrEqual(t, got, -180.0)
			assert.Less(t, got, 180.0)
		})
	}
}

func TestSmooth(t *testing.T) {
	vals := []float64{0, 10, 20, 30}
	assert.Equal(t, vals, smooth(vals, 1))
	assert.Equal(t, []float64{0, 5, 15, 25}, smooth(vals, 2))
	assert.Equal(t, []float64{0, 5, 10, 20}, smooth(vals, 3))
}

func TestBuildHeadingWindow(t *testing.T) {
	d := buildSquare(t, WithHeadingWindow(2))
	assert.InDelta(t, -90.0, d.Heading(0), eps)
	assert.InDelta(t, -45.0, d.Heading(1), eps)
	assert.InDelta(t, 45.0, d.Heading(2), eps)
}
