package kart

import (
	"github.com/aarondl/opt/omit"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/driveline"
)

const (
	// a lap is counted when progress moves from beyond WrapHigh*total to
	// below WrapLow*total
	DefaultWrapHigh = 0.8
	DefaultWrapLow  = 0.2
	// lap value until the start line is crossed the first time
	LapNotStarted = -1
)

type State struct {
	ID       string           `json:"id"`
	Pos      r2.Vec           `json:"pos"`
	Result   driveline.Result `json:"result"`
	Lap      int              `json:"lap"`
	Finished bool             `json:"finished"`
	// OffsetRatio is the lateral offset relative to the track width
	OffsetRatio float64 `json:"offsetRatio"`
	Updates     int     `json:"updates"`
}

type Processor struct {
	id       string
	laps     int
	wrapHigh float64
	wrapLow  float64
	hint     omit.Val[int]
	state    State
	l        *log.Logger
}

type ProcessorOption func(p *Processor)

// WithLaps sets the number of laps needed to finish. 0 means endless.
func WithLaps(laps int) ProcessorOption {
	return func(p *Processor) {
		p.laps = laps
	}
}

func WithLapWrap(high, low float64) ProcessorOption {
	return func(p *Processor) {
		p.wrapHigh = high
		p.wrapLow = low
	}
}

func WithLogger(l *log.Logger) ProcessorOption {
	return func(p *Processor) {
		p.l = l
	}
}

func NewProcessor(id string, opts ...ProcessorOption) *Processor {
	ret := &Processor{
		id:       id,
		wrapHigh: DefaultWrapHigh,
		wrapLow:  DefaultWrapLow,
		state:    State{ID: id, Lap: LapNotStarted},
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.l == nil {
		ret.l = log.Default().Named("processing.kart")
	}
	ret.l = ret.l.With(log.String("kart", id))
	return ret
}

func (p *Processor) ID() string { return p.id }

// State returns the result of the latest update.
func (p *Processor) State() State { return p.state }

// Hint returns the driveline index used for the next query, if any.
func (p *Processor) Hint() omit.Val[int] { return p.hint }

// Invalidate drops the hint. The next update scans the whole driveline.
func (p *Processor) Invalidate() {
	p.hint = omit.Val[int]{}
}

// Process locates the kart at pos and updates the lap count.
func (p *Processor) Process(d *driveline.Driveline, pos r2.Vec) State {
	first := p.state.Updates == 0
	prev := p.state.Result.Progress
	res := p.locate(d, pos)
	if !first && !p.state.Finished {
		p.countLaps(d.TotalDistance(), prev, res.Progress)
	}
	return p.state
}

// Reset places the kart at pos after a respawn or teleport.
// The jump is not taken into account for lap counting.
func (p *Processor) Reset(d *driveline.Driveline, pos r2.Vec) State {
	p.Invalidate()
	p.locate(d, pos)
	p.l.Debug("kart reset",
		log.Int("index", p.state.Result.NearestIndex),
		log.Float64("progress", p.state.Result.Progress))
	return p.state
}

func (p *Processor) locate(d *driveline.Driveline, pos r2.Vec) driveline.Result {
	res, next := d.Find(pos, p.hint)
	p.hint = omit.From(next)
	p.state.Pos = pos
	p.state.Result = res
	p.state.OffsetRatio = d.OffsetRatio(res)
	p.state.Updates++
	return res
}

func (p *Processor) countLaps(total, prev, curr float64) {
	switch {
	case prev > p.wrapHigh*total && curr < p.wrapLow*total:
		p.state.Lap++
		p.l.Debug("lap started", log.Int("lap", p.state.Lap))
		if p.laps > 0 && p.state.Lap >= p.laps {
			p.state.Finished = true
			p.l.Info("kart finished", log.Int("laps", p.state.Lap))
		}
	case curr > p.wrapHigh*total && prev < p.wrapLow*total:
		p.state.Lap--
		p.l.Debug("crossed start line backwards", log.Int("lap", p.state.Lap))
	}
}
