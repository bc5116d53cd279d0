// Package session holds the state of one race: the driveline of the
// current track and the karts driving on it.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/asset"
	"github.com/mpapenbr/kartline/pkg/config"
	"github.com/mpapenbr/kartline/pkg/driveline"
	"github.com/mpapenbr/kartline/pkg/processing"
	"github.com/mpapenbr/kartline/pkg/processing/kart"
	"github.com/mpapenbr/kartline/pkg/processing/race"
	"github.com/mpapenbr/kartline/pkg/utils/broadcast"
)

var ErrNoTrack = errors.New("no track loaded")

type loadedTrack struct {
	ident string
	d     *driveline.Driveline
}

type (
	Option  func(*Session)
	Session struct {
		id         uuid.UUID
		fs         afero.Fs
		resolver   asset.Resolver
		cfg        config.Config
		loaderOpts []driveline.LoaderOption
		buildOpts  []driveline.BuildOption
		l          *log.Logger

		track atomic.Pointer[loadedTrack]
		// serializes all access to proc and the standings feed
		mu   sync.Mutex
		proc *processing.Processor
		feed chan []race.Standing
		bcst broadcast.Server[[]race.Standing]
	}
)

// feedSize is the number of standings buffered for subscribers.
const feedSize = 16

func WithFs(fs afero.Fs) Option {
	return func(s *Session) {
		s.fs = fs
	}
}

// WithResolver overrides the default resolver which searches the configured
// data dirs.
func WithResolver(r asset.Resolver) Option {
	return func(s *Session) {
		s.resolver = r
	}
}

func WithConfig(cfg config.Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithLoaderOptions are applied after the options derived from the config.
func WithLoaderOptions(opts ...driveline.LoaderOption) Option {
	return func(s *Session) {
		s.loaderOpts = append(s.loaderOpts, opts...)
	}
}

// WithBuildOptions are applied after the options derived from the config.
func WithBuildOptions(opts ...driveline.BuildOption) Option {
	return func(s *Session) {
		s.buildOpts = append(s.buildOpts, opts...)
	}
}

func WithProcessor(p *processing.Processor) Option {
	return func(s *Session) {
		s.proc = p
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.l = l
	}
}

func New(opts ...Option) *Session {
	ret := &Session{
		id:  uuid.New(),
		fs:  afero.NewOsFs(),
		cfg: config.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.l == nil {
		ret.l = log.Default().Named("session")
	}
	ret.l = ret.l.With(log.String("session", ret.id.String()))
	if ret.resolver == nil {
		ret.resolver = asset.NewSearchPathResolver(ret.fs, ret.cfg.DataDirs...)
	}
	if ret.proc == nil {
		ret.proc = processing.NewProcessor(
			processing.WithWorkers(ret.cfg.Workers),
			processing.WithKartOptions(kart.WithLaps(ret.cfg.Laps)),
			processing.WithLogger(ret.l.Named("processing")),
		)
	}
	return ret
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Config() config.Config { return s.cfg }

// Load builds the driveline of the track ident and starts a new race on it.
// If loading fails the session has no track afterwards.
func (s *Session) Load(ctx context.Context, ident string) error {
	d, err := s.Build(ctx, ident)
	if err != nil {
		s.track.Store(nil)
		s.l.Error("track cannot be used",
			log.String("track", ident),
			log.ErrorField(err))
		return err
	}
	s.track.Store(&loadedTrack{ident: ident, d: d})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proc.Reset()
	s.l.Info("track loaded",
		log.String("track", ident),
		log.Int("points", d.Len()),
		log.Float64("length", d.TotalDistance()))
	return nil
}

// Reload rebuilds the driveline of the current track. The race continues,
// all hints are dropped. On error the previous driveline stays in use.
func (s *Session) Reload(ctx context.Context) error {
	cur := s.track.Load()
	if cur == nil {
		return ErrNoTrack
	}
	d, err := s.Build(ctx, cur.ident)
	if err != nil {
		s.l.Error("track reload failed, keeping previous driveline",
			log.String("track", cur.ident),
			log.ErrorField(err))
		return err
	}
	if d.Fingerprint() == cur.d.Fingerprint() {
		s.l.Debug("track unchanged", log.String("track", cur.ident))
		return nil
	}
	// another Load may have replaced the track in the meantime
	if !s.track.CompareAndSwap(cur, &loadedTrack{ident: cur.ident, d: d}) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proc.InvalidateHints()
	s.l.Info("track reloaded",
		log.String("track", cur.ident),
		log.Int("points", d.Len()))
	return nil
}

// Build loads the driveline of ident with the settings of the session
// without making it the current track.
func (s *Session) Build(ctx context.Context, ident string) (*driveline.Driveline, error) {
	loaderOpts := append([]driveline.LoaderOption{
		driveline.WithMinSpacing(s.cfg.MinSpacing),
		driveline.WithLoaderLogger(s.l.Named("loader")),
	}, s.loaderOpts...)
	buildOpts := append([]driveline.BuildOption{
		driveline.WithDisplaySize(s.cfg.DisplayWidth, s.cfg.DisplayHeight),
		driveline.WithStretch(s.cfg.Stretch),
		driveline.WithHeadingWindow(s.cfg.HeadingWindow),
		driveline.WithBuildLogger(s.l.Named("builder")),
	}, s.buildOpts...)
	return driveline.LoadTrack(ctx, s.fs, s.resolver, ident, loaderOpts, buildOpts...)
}

// Driveline returns the driveline of the current track.
func (s *Session) Driveline() (*driveline.Driveline, error) {
	if cur := s.track.Load(); cur != nil {
		return cur.d, nil
	}
	return nil, ErrNoTrack
}

// Ident returns the current track or "" if none is loaded.
func (s *Session) Ident() string {
	if cur := s.track.Load(); cur != nil {
		return cur.ident
	}
	return ""
}

// Tick processes the kart positions of one frame.
func (s *Session) Tick(ctx context.Context, positions map[string]r2.Vec) ([]race.Standing, error) {
	d, err := s.Driveline()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	standings, err := s.proc.Tick(ctx, d, positions)
	if err != nil {
		return nil, err
	}
	s.publish(standings)
	return standings, nil
}

// Subscribe returns a channel receiving the standings of every following
// tick. Subscribers that do not keep up miss standings.
func (s *Session) Subscribe() <-chan []race.Standing {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bcst == nil {
		s.feed = make(chan []race.Standing, feedSize)
		s.bcst = broadcast.NewServer("standings", s.feed,
			broadcast.WithLogger[[]race.Standing](s.l.Named("broadcast")))
	}
	return s.bcst.Subscribe()
}

func (s *Session) Unsubscribe(ch <-chan []race.Standing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bcst != nil {
		s.bcst.CancelSubscription(ch)
	}
}

// Close stops the standings feed. All subscriptions are closed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bcst != nil {
		s.bcst.Close()
		s.bcst = nil
		s.feed = nil
	}
}

func (s *Session) publish(standings []race.Standing) {
	if s.feed == nil {
		return
	}
	select {
	case s.feed <- standings:
	default:
		s.l.Debug("standings feed full, dropping tick")
	}
}

// Respawn puts the kart id back on the track at pos.
func (s *Session) Respawn(id string, pos r2.Vec) (kart.State, error) {
	d, err := s.Driveline()
	if err != nil {
		return kart.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc.Respawn(d, id, pos)
}

// SpawnPoint returns the start position for grid slot gridIndex.
// Karts line up behind index 0 of the driveline.
func (s *Session) SpawnPoint(gridIndex int) (r2.Vec, error) {
	d, err := s.Driveline()
	if err != nil {
		return r2.Vec{}, err
	}
	return d.PointAt(-(gridIndex + 1) * s.cfg.SpawnSpacing), nil
}

func (s *Session) RaceOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc.RaceOrder()
}

func (s *Session) States() []kart.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc.States()
}
