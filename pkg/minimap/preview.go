package minimap

import (
	"context"
	"io"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/driveline"
	"github.com/mpapenbr/kartline/pkg/utils/cache"
	"github.com/mpapenbr/kartline/pkg/utils/cache/loadercache"
)

// TrackLoader builds the driveline of a track.
type TrackLoader func(ctx context.Context, ident string) (*driveline.Driveline, error)

type (
	PreviewOption func(*Previewer)
	// Previewer renders track previews for the track selection.
	// Drivelines are cached per track.
	Previewer struct {
		tracks     cache.Cache[string, driveline.Driveline]
		expiration time.Duration
		renderOpts []RenderOption
		l          *log.Logger
	}
)

func WithExpiration(d time.Duration) PreviewOption {
	return func(p *Previewer) {
		p.expiration = d
	}
}

func WithRenderOptions(opts ...RenderOption) PreviewOption {
	return func(p *Previewer) {
		p.renderOpts = append(p.renderOpts, opts...)
	}
}

func WithLogger(l *log.Logger) PreviewOption {
	return func(p *Previewer) {
		p.l = l
	}
}

func NewPreviewer(loader TrackLoader, opts ...PreviewOption) *Previewer {
	ret := &Previewer{
		expiration: 5 * time.Minute,
		l:          log.Default().Named("minimap.preview"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.tracks = loadercache.New(
		loadercache.WithLoader(loadercache.LoaderFunc[string, driveline.Driveline](loader)),
		loadercache.WithExpiration[string, driveline.Driveline](ret.expiration),
		loadercache.WithLogger[string, driveline.Driveline](ret.l.Named("cache")),
	)
	return ret
}

// Driveline returns the (cached) driveline of ident.
func (p *Previewer) Driveline(ctx context.Context, ident string) (*driveline.Driveline, error) {
	return p.tracks.Get(ctx, ident)
}

// Outline returns the outline of ident fitted into x,y,w,h.
func (p *Previewer) Outline(
	ctx context.Context,
	ident string,
	x, y, w, h float64,
) ([]r2.Vec, error) {
	d, err := p.tracks.Get(ctx, ident)
	if err != nil {
		return nil, err
	}
	return Outline(d, FitTransform(d, x, y, w, h)), nil
}

// Render writes the preview image of ident.
func (p *Previewer) Render(ctx context.Context, w io.Writer, ident string) error {
	d, err := p.tracks.Get(ctx, ident)
	if err != nil {
		return err
	}
	return Render(w, d, nil, p.renderOpts...)
}

// Invalidate drops the cached driveline of ident, e.g. after its files changed.
func (p *Previewer) Invalidate(ctx context.Context, ident string) {
	p.tracks.Invalidate(ctx, ident)
}
