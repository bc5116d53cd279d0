package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromFlags(t *testing.T) {
	t.Cleanup(func() {
		DataDirs, MinSpacing, Workers, PreviewExpiration, Stretch = nil, 0, 0, "", false
	})

	assert.Equal(t, DefaultConfig(), FromFlags())

	DataDirs = []string{"/tracks"}
	MinSpacing = 2.5
	Workers = 8
	Stretch = true
	PreviewExpiration = "30s"

	cfg := FromFlags()
	assert.Equal(t, []string{"/tracks"}, cfg.DataDirs)
	assert.Equal(t, 2.5, cfg.MinSpacing)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Stretch)
	assert.Equal(t, 30*time.Second, cfg.PreviewExpiration)
	assert.Equal(t, 1, cfg.HeadingWindow)
}

func TestFromFlagsInvalidDuration(t *testing.T) {
	t.Cleanup(func() { PreviewExpiration = "" })
	PreviewExpiration = "soon"
	assert.Equal(t, 5*time.Minute, FromFlags().PreviewExpiration)
}
