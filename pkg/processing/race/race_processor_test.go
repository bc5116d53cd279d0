//nolint:funlen,dupl // ok for tests
package race

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/kartline/pkg/driveline"
	"github.com/mpapenbr/kartline/pkg/processing/kart"
)

func st(id string, lap int, progress float64, finished bool) kart.State {
	return kart.State{
		ID:       id,
		Lap:      lap,
		Finished: finished,
		Result:   driveline.Result{Progress: progress},
	}
}

func TestRaceProcessor_Order(t *testing.T) {
	tests := []struct {
		name   string
		states []kart.State
		want   []string
	}{
		{
			name:   "by progress",
			states: []kart.State{st("a", 0, 10, false), st("b", 0, 20, false)},
			want:   []string{"b", "a"},
		},
		{
			name:   "laps before progress",
			states: []kart.State{st("a", 1, 10, false), st("b", 0, 90, false)},
			want:   []string{"a", "b"},
		},
		{
			name:   "not started behind started",
			states: []kart.State{st("a", kart.LapNotStarted, 95, false), st("b", 0, 1, false)},
			want:   []string{"b", "a"},
		},
		{
			name:   "finished first",
			states: []kart.State{st("a", 2, 50, false), st("b", 2, 5, true)},
			want:   []string{"b", "a"},
		},
		{
			name: "equal values by id",
			states: []kart.State{
				st("c", 0, 10, false), st("a", 0, 10, false), st("b", 0, 10, false),
			},
			want: []string{"a", "b", "c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor()
			standings := p.Process(1, 100, tt.states)
			assert.Equal(t, tt.want, p.RaceOrder)
			for i, s := range standings {
				assert.Equal(t, i+1, s.Pos)
				assert.Equal(t, tt.want[i], s.ID)
				assert.Equal(t, i+1, p.Position(s.ID))
			}
		})
	}
}

func TestRaceProcessor_FinishOrderIsKept(t *testing.T) {
	p := NewProcessor()
	p.Process(1, 100, []kart.State{
		st("a", 2, 99, false), st("b", 3, 1, true), st("c", 2, 98, false),
	})
	// c finishes ahead of a in the same tick, b is still first
	p.Process(2, 100, []kart.State{
		st("a", 3, 1, true), st("b", 3, 30, true), st("c", 3, 2, true),
	})
	assert.Equal(t, []string{"b", "c", "a"}, p.FinishOrder)
	assert.Equal(t, []string{"b", "c", "a"}, p.RaceOrder)
	assert.Equal(t, 3, p.Position("a"))
	assert.Equal(t, 0, p.Position("unknown"))
}

func TestRaceProcessor_Gaps(t *testing.T) {
	p := NewProcessor()
	standings := p.Process(1, 100, []kart.State{
		st("a", 1, 10, false), st("b", 0, 80, false), st("c", 1, 5, false),
	})
	assert.Equal(t, []Standing{
		{Pos: 1, ID: "a", Lap: 1, Progress: 10, Gap: 0},
		{Pos: 2, ID: "c", Lap: 1, Progress: 5, Gap: 5},
		{Pos: 3, ID: "b", Lap: 0, Progress: 80, Gap: 30},
	}, standings)
}

func TestRaceProcessor_KartLapsAndGraph(t *testing.T) {
	p := NewProcessor()
	ticks := [][]kart.State{
		{st("a", kart.LapNotStarted, 95, false), st("b", kart.LapNotStarted, 90, false)},
		{st("a", 0, 1, false), st("b", kart.LapNotStarted, 96, false)},
		{st("a", 0, 6, false), st("b", 0, 1, false)},
		{st("a", 1, 2, false), st("b", 0, 97, false)},
	}
	for i, states := range ticks {
		p.Process(i+1, 100, states)
	}

	assert.Equal(t, map[string][]LapInfo{
		"a": {{Lap: 0, Tick: 2}, {Lap: 1, Tick: 4}},
		"b": {{Lap: 0, Tick: 3}},
	}, p.KartLaps)

	assert.Equal(t, []GraphEntry{
		{Lap: 0, Gaps: []GapInfo{
			{ID: "a", Lap: 0, Pos: 1, Gap: 0},
			{ID: "b", Lap: 0, Pos: 2, Gap: 5},
		}},
		{Lap: 1, Gaps: []GapInfo{
			{ID: "a", Lap: 1, Pos: 1, Gap: 0},
			{ID: "b", Lap: 0, Pos: 2, Gap: 5},
		}},
	}, p.RaceGraph)
}

func TestRaceProcessor_Reset(t *testing.T) {
	p := NewProcessor()
	p.Process(1, 100, []kart.State{st("a", 3, 1, true)})
	p.Reset()
	assert.Empty(t, p.RaceOrder)
	assert.Empty(t, p.FinishOrder)
	assert.Empty(t, p.KartLaps)
	assert.Empty(t, p.RaceGraph)
}
