package race

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/processing/kart"
)

type Standing struct {
	Pos      int     `json:"pos"`
	ID       string  `json:"id"`
	Lap      int     `json:"lap"`
	Progress float64 `json:"progress"`
	Finished bool    `json:"finished"`
	// distance behind the leader, 0 for finished karts
	Gap float64 `json:"gap"`
}

// LapInfo records the tick in which a kart started a lap.
type LapInfo struct {
	Lap  int `json:"lap"`
	Tick int `json:"tick"`
}

type GapInfo struct {
	ID  string  `json:"id"`
	Lap int     `json:"lap"`
	Pos int     `json:"pos"`
	Gap float64 `json:"gap"`
}

// GraphEntry holds the gaps of all karts when the leader was in Lap.
type GraphEntry struct {
	Lap  int       `json:"lap"`
	Gaps []GapInfo `json:"gaps"`
}

type Processor struct {
	RaceOrder   []string             // kart ids
	FinishOrder []string             // kart ids in order of finishing
	KartLaps    map[string][]LapInfo // key: kart id
	RaceGraph   []GraphEntry
	l           *log.Logger
}

type ProcessorOption func(rp *Processor)

func WithLogger(l *log.Logger) ProcessorOption {
	return func(rp *Processor) {
		rp.l = l
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	ret := &Processor{
		RaceOrder:   make([]string, 0),
		FinishOrder: make([]string, 0),
		KartLaps:    make(map[string][]LapInfo),
		RaceGraph:   make([]GraphEntry, 0),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.l == nil {
		ret.l = log.Default().Named("processing.race")
	}
	return ret
}

// Process computes the standings for the given kart states.
// total is the length of the driveline the states refer to.
// The states must be already processed by their kart processors.
func (p *Processor) Process(tick int, total float64, states []kart.State) []Standing {
	p.processFinishers(states)

	sorted := slices.Clone(states)
	slices.SortStableFunc(sorted, p.compare)
	p.RaceOrder = lo.Map(sorted, func(s kart.State, _ int) string { return s.ID })

	ret := make([]Standing, len(sorted))
	var leaderDist float64
	for i := range sorted {
		s := sorted[i]
		dist := float64(s.Lap)*total + s.Result.Progress
		if i == 0 {
			leaderDist = dist
		}
		ret[i] = Standing{
			Pos:      i + 1,
			ID:       s.ID,
			Lap:      s.Lap,
			Progress: s.Result.Progress,
			Finished: s.Finished,
		}
		if !s.Finished {
			ret[i].Gap = max(leaderDist-dist, 0)
		}
	}

	p.processKartLaps(tick, states)
	p.processRaceGraph(ret)
	return ret
}

// Position returns the 1-based position of the kart id in the latest
// standings or 0 if it is unknown.
func (p *Processor) Position(id string) int {
	return lo.IndexOf(p.RaceOrder, id) + 1
}

// Reset forgets all standings, for example when a new race starts.
func (p *Processor) Reset() {
	p.RaceOrder = make([]string, 0)
	p.FinishOrder = make([]string, 0)
	p.KartLaps = make(map[string][]LapInfo)
	p.RaceGraph = make([]GraphEntry, 0)
}

// finished karts first (in order of finishing), then more laps, then greater
// progress. Kart ids break ties.
func (p *Processor) compare(a, b kart.State) int {
	switch {
	case a.Finished && b.Finished:
		return lo.IndexOf(p.FinishOrder, a.ID) - lo.IndexOf(p.FinishOrder, b.ID)
	case a.Finished:
		return -1
	case b.Finished:
		return 1
	case a.Lap != b.Lap:
		return b.Lap - a.Lap
	case a.Result.Progress > b.Result.Progress:
		return -1
	case a.Result.Progress < b.Result.Progress:
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// processFinishers appends karts which finished since the last call.
// Karts finishing in the same tick are ordered by progress.
func (p *Processor) processFinishers(states []kart.State) {
	newcomers := lo.Filter(states, func(s kart.State, _ int) bool {
		return s.Finished && !lo.Contains(p.FinishOrder, s.ID)
	})
	slices.SortStableFunc(newcomers, func(a, b kart.State) int {
		switch {
		case a.Result.Progress > b.Result.Progress:
			return -1
		case a.Result.Progress < b.Result.Progress:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	for _, s := range newcomers {
		p.FinishOrder = append(p.FinishOrder, s.ID)
		p.l.Info("kart crossed finish line",
			log.String("kart", s.ID),
			log.Int("pos", len(p.FinishOrder)))
	}
}

func (p *Processor) processKartLaps(tick int, states []kart.State) {
	for i := range states {
		s := states[i]
		if s.Lap == kart.LapNotStarted {
			continue
		}
		laps := p.KartLaps[s.ID]
		if idx := slices.IndexFunc(laps,
			func(item LapInfo) bool { return item.Lap == s.Lap }); idx != -1 {
			// lap already recorded
			continue
		}
		// crossing the start line backwards and forward again replaces
		// the entries of the repeated laps
		laps = lo.Filter(laps, func(item LapInfo, _ int) bool { return item.Lap < s.Lap })
		p.KartLaps[s.ID] = append(laps, LapInfo{Lap: s.Lap, Tick: tick})
	}
}

func (p *Processor) processRaceGraph(standings []Standing) {
	if len(standings) == 0 || standings[0].Lap == kart.LapNotStarted {
		return
	}
	entry := GraphEntry{
		Lap: standings[0].Lap,
		Gaps: lo.Map(standings, func(s Standing, _ int) GapInfo {
			return GapInfo{ID: s.ID, Lap: s.Lap, Pos: s.Pos, Gap: s.Gap}
		}),
	}
	if idx := slices.IndexFunc(p.RaceGraph,
		func(item GraphEntry) bool { return item.Lap == entry.Lap }); idx != -1 {
		p.RaceGraph[idx] = entry
	} else {
		p.RaceGraph = append(p.RaceGraph, entry)
	}
}
