package minimap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/kartline/pkg/config"
	"github.com/mpapenbr/kartline/testsupport/trackdata"
)

func TestTarget(t *testing.T) {
	t.Cleanup(func() { outFile = "" })
	tests := []struct {
		out        string
		count      int
		wantName   string
		wantFormat string
	}{
		{"", 1, "oval.png", "png"},
		{"map.svg", 1, "map.svg", "svg"},
		{"maps", 1, filepath.Join("maps", "oval.png"), "png"},
		{"maps", 2, filepath.Join("maps", "oval.png"), "png"},
	}
	for _, tt := range tests {
		outFile = tt.out
		assert.Equal(t, tt.wantName, target("oval", tt.count))
		assert.Equal(t, tt.wantFormat, format(tt.count))
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	left, right := trackdata.Oval(40, 100, 60, 8)
	require.NoError(t, trackdata.WriteTrack(afero.NewOsFs(), dir, "oval", left, right))
	require.NoError(t, trackdata.WriteTrack(afero.NewOsFs(), dir, "wide", left, right))
	config.DataDirs = []string{dir}
	outFile = filepath.Join(dir, "out")
	width, height = 200, 150
	require.NoError(t, os.Mkdir(outFile, 0o755))
	t.Cleanup(func() {
		config.DataDirs = nil
		outFile = ""
		width, height = 0, 0
	})

	require.NoError(t, render(context.Background(), []string{"oval", "wide"}))
	for _, name := range []string{"oval.png", "wide.png"} {
		fi, err := os.Stat(filepath.Join(outFile, name))
		require.NoError(t, err)
		assert.Positive(t, fi.Size())
	}
}
