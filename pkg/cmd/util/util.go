package util

import (
	"context"
	"strconv"

	"github.com/spf13/afero"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/config"
	"github.com/mpapenbr/kartline/pkg/session"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// NewSession creates a session configured by the CLI flags which uses the
// logger stored in ctx.
func NewSession(ctx context.Context, opts ...session.Option) *session.Session {
	base := []session.Option{
		session.WithFs(afero.NewOsFs()),
		session.WithConfig(config.FromFlags()),
		session.WithLogger(log.GetFromContext(ctx).Named("session")),
	}
	return session.New(append(base, opts...)...)
}

// ParsePoint parses the command line arguments x and y.
func ParsePoint(xArg, yArg string) (r2.Vec, error) {
	x, err := strconv.ParseFloat(xArg, 64)
	if err != nil {
		return r2.Vec{}, err
	}
	y, err := strconv.ParseFloat(yArg, 64)
	if err != nil {
		return r2.Vec{}, err
	}
	return r2.Vec{X: x, Y: y}, nil
}
