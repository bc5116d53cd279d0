package processing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/driveline"
	"github.com/mpapenbr/kartline/pkg/processing/kart"
	"github.com/mpapenbr/kartline/pkg/processing/race"
)

var ErrUnknownKart = errors.New("unknown kart")

// Processor tracks all karts of a race on one driveline.
// It is not safe for concurrent use. Tick fans out the per kart work itself.
type Processor struct {
	karts         map[string]*kart.Processor
	raceProcessor *race.Processor
	kartOpts      []kart.ProcessorOption
	workers       int
	ticks         int
	l             *log.Logger
	mp            metric.MeterProvider
	tickCount     metric.Int64Counter
	tickDuration  metric.Float64Histogram
}

type ProcessorOption func(proc *Processor)

// WithWorkers limits the number of karts processed in parallel.
func WithWorkers(n int) ProcessorOption {
	return func(proc *Processor) {
		proc.workers = n
	}
}

// WithKartOptions are applied to every kart processor created.
func WithKartOptions(opts ...kart.ProcessorOption) ProcessorOption {
	return func(proc *Processor) {
		proc.kartOpts = append(proc.kartOpts, opts...)
	}
}

func WithRaceProcessor(rp *race.Processor) ProcessorOption {
	return func(proc *Processor) {
		proc.raceProcessor = rp
	}
}

func WithLogger(l *log.Logger) ProcessorOption {
	return func(proc *Processor) {
		proc.l = l
	}
}

func WithMeterProvider(mp metric.MeterProvider) ProcessorOption {
	return func(proc *Processor) {
		proc.mp = mp
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	ret := &Processor{
		karts:   make(map[string]*kart.Processor),
		workers: 4,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.l == nil {
		ret.l = log.Default().Named("processing")
	}
	if ret.raceProcessor == nil {
		ret.raceProcessor = race.NewProcessor(race.WithLogger(ret.l.Named("race")))
	}
	if ret.mp == nil {
		ret.mp = otel.GetMeterProvider()
	}
	ret.setupMetrics()
	return ret
}

func (p *Processor) setupMetrics() {
	meter := p.mp.Meter("kartline.processing")
	var err error
	if p.tickCount, err = meter.Int64Counter("kartline.processing.ticks",
		metric.WithDescription("Number of processed ticks"),
		metric.WithUnit("{count}")); err != nil {
		p.l.Error("failed to register metric", log.ErrorField(err))
	}
	if p.tickDuration, err = meter.Float64Histogram("kartline.processing.tick.duration",
		metric.WithDescription("Time needed to process one tick"),
		metric.WithUnit("s")); err != nil {
		p.l.Error("failed to register metric", log.ErrorField(err))
	}
}

// AddKart registers a kart. Adding a known kart returns its processor.
func (p *Processor) AddKart(id string) *kart.Processor {
	if kp, ok := p.karts[id]; ok {
		return kp
	}
	opts := append([]kart.ProcessorOption{kart.WithLogger(p.l.Named("kart"))}, p.kartOpts...)
	kp := kart.NewProcessor(id, opts...)
	p.karts[id] = kp
	return kp
}

// Tick processes the positions of one frame and returns the new standings.
// Karts not seen before are added. Karts missing in positions keep their
// previous state.
func (p *Processor) Tick(
	ctx context.Context,
	d *driveline.Driveline,
	positions map[string]r2.Vec,
) ([]race.Standing, error) {
	start := time.Now()
	ids := lo.Keys(positions)
	slices.Sort(ids)
	procs := make([]*kart.Processor, len(ids))
	for i, id := range ids {
		procs[i] = p.AddKart(id)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.workers, 1))
	for i := range procs {
		kp, pos := procs[i], positions[ids[i]]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			kp.Process(d, pos)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.ticks++
	standings := p.raceProcessor.Process(p.ticks, d.TotalDistance(), p.States())

	attrs := metric.WithAttributes(attribute.String("track", d.Name()))
	if p.tickCount != nil {
		p.tickCount.Add(ctx, 1, attrs)
	}
	if p.tickDuration != nil {
		p.tickDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	return standings, nil
}

// Respawn places the kart id at pos without using its hint.
func (p *Processor) Respawn(d *driveline.Driveline, id string, pos r2.Vec) (kart.State, error) {
	kp, ok := p.karts[id]
	if !ok {
		return kart.State{}, ErrUnknownKart
	}
	return kp.Reset(d, pos), nil
}

// InvalidateHints drops the hints of all karts, for example after the
// driveline was rebuilt.
func (p *Processor) InvalidateHints() {
	for _, kp := range p.karts {
		kp.Invalidate()
	}
	p.l.Debug("hints invalidated", log.Int("karts", len(p.karts)))
}

// Reset removes all karts and standings.
func (p *Processor) Reset() {
	p.karts = make(map[string]*kart.Processor)
	p.raceProcessor.Reset()
	p.ticks = 0
}

// States returns the states of all karts ordered by id.
func (p *Processor) States() []kart.State {
	ret := make([]kart.State, 0, len(p.karts))
	for _, kp := range p.karts {
		ret = append(ret, kp.State())
	}
	slices.SortFunc(ret, func(a, b kart.State) int {
		return strings.Compare(a.ID, b.ID)
	})
	return ret
}

func (p *Processor) RaceOrder() []string {
	return slices.Clone(p.raceProcessor.RaceOrder)
}

func (p *Processor) Race() *race.Processor {
	return p.raceProcessor
}

func (p *Processor) Ticks() int {
	return p.ticks
}
