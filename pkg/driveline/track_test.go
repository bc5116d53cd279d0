package driveline

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/kartline/pkg/asset"
	"github.com/mpapenbr/kartline/testsupport/trackdata"
)

func TestLoadTrack(t *testing.T) {
	fs := afero.NewMemMapFs()
	left, right := trackdata.Oval(64, 100, 60, 8)
	require.NoError(t, trackdata.WriteTrack(fs, "/tracks/oval", "oval", left, right))
	res := asset.NewSearchPathResolver(fs, "/other", "/tracks/oval")

	d, err := LoadTrack(context.Background(), fs, res, "oval", nil,
		WithDisplaySize(50, 50))
	require.NoError(t, err)
	assert.Equal(t, "oval", d.Name())
	assert.Equal(t, 64, d.Len())
	assert.InDelta(t, 0.5, d.Scale().X, 1e-9)
}

func TestLoadTrackNameOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	left, right := trackdata.Oval(32, 100, 60, 8)
	require.NoError(t, trackdata.WriteTrack(fs, "/t", "oval", left, right))

	d, err := LoadTrack(context.Background(), fs, asset.NewSearchPathResolver(fs, "/t"),
		"oval", []LoaderOption{WithMinSpacing(0)}, WithName("Oval Speedway"))
	require.NoError(t, err)
	assert.Equal(t, "Oval Speedway", d.Name())
}

func TestLoadTrackFingerprint(t *testing.T) {
	fs := afero.NewMemMapFs()
	left, right := trackdata.Oval(32, 100, 60, 8)
	require.NoError(t, trackdata.WriteTrack(fs, "/t", "oval", left, right))
	res := asset.NewSearchPathResolver(fs, "/t")
	ctx := context.Background()

	d1, err := LoadTrack(ctx, fs, res, "oval", nil)
	require.NoError(t, err)
	d2, err := LoadTrack(ctx, fs, res, "oval", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, d1.Fingerprint())
	assert.Equal(t, d1.Fingerprint(), d2.Fingerprint())

	// swapping the boundaries is a different track
	require.NoError(t, trackdata.WriteTrack(fs, "/t", "oval", right, left))
	d3, err := LoadTrack(ctx, fs, res, "oval", nil)
	require.NoError(t, err)
	assert.NotEqual(t, d1.Fingerprint(), d3.Fingerprint())

	// built in memory
	d4, err := Build(left, right)
	require.NoError(t, err)
	assert.Empty(t, d4.Fingerprint())
}

func TestLoadTrackErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	left, right := trackdata.Square()
	require.NoError(t, trackdata.WriteTrack(fs, "/t", "square", left, right))
	require.NoError(t, afero.WriteFile(fs, "/t/broken.drvl", []byte("0,0\nnope\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/t/broken.drvr", []byte("0,0\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/t/half.drvl", []byte("0,0\n"), 0o644))
	res := asset.NewSearchPathResolver(fs, "/t")

	_, err := LoadTrack(context.Background(), fs, res, "missing", nil)
	assert.ErrorIs(t, err, asset.ErrNotFound)

	_, err = LoadTrack(context.Background(), fs, res, "half", nil)
	assert.ErrorIs(t, err, asset.ErrNotFound)

	_, err = LoadTrack(context.Background(), fs, res, "broken", nil)
	assert.ErrorIs(t, err, ErrParse)

	// resolver and filesystem disagree
	ghost := asset.ResolverFunc(func(rel string) (string, error) { return "/ghost/" + rel, nil })
	_, err = LoadTrack(context.Background(), fs, ghost, "square", nil)
	assert.ErrorIs(t, err, asset.ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LoadTrack(ctx, fs, res, "square", []LoaderOption{WithMinSpacing(0)})
	assert.ErrorIs(t, err, context.Canceled)
}
