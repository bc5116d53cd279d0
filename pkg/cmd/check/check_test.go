package check

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/mpapenbr/kartline/pkg/config"
	"github.com/mpapenbr/kartline/testsupport/trackdata"
)

func TestCheckTrack(t *testing.T) {
	dir := t.TempDir()
	left, right := trackdata.Square()
	fs := afero.NewOsFs()
	assert.NilError(t, trackdata.WriteTrack(fs, dir, "square", left, right))
	config.DataDirs = []string{dir}
	config.MinSpacing = 0.5
	t.Cleanup(func() {
		config.DataDirs = nil
		config.MinSpacing = 0
		verbose = false
	})

	var buf bytes.Buffer
	verbose = true
	assert.NilError(t, checkTrack(context.Background(), &buf, "square"))
	out := buf.String()
	assert.Assert(t, is.Contains(out, "points:   4\n"))
	assert.Assert(t, is.Contains(out, "length:   4.00\n"))
	// header plus one line per point
	assert.Equal(t, 5, strings.Count(out[strings.Index(out, "idx"):], "\n"))

	err := checkTrack(context.Background(), &buf, "unknown")
	assert.ErrorContains(t, err, "not found")
}
