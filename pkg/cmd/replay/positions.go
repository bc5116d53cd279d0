package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r2"
)

// Sample is one line of a positions file: tick,kart,x,y[,R]
// R marks a respawn (the kart was placed at x,y).
type Sample struct {
	Tick    int
	Kart    string
	Pos     r2.Vec
	Respawn bool
}

// Frame holds all samples of one tick.
type Frame struct {
	Tick     int
	Pos      map[string]r2.Vec
	Respawns []string
}

func ReadSamples(r io.Reader) ([]Sample, error) {
	var ret []Sample
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := parseSample(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		ret = append(ret, s)
	}
	return ret, scanner.Err()
}

func parseSample(line string) (Sample, error) {
	fields := lo.Map(strings.Split(line, ","),
		func(f string, _ int) string { return strings.TrimSpace(f) })
	if len(fields) != 4 && len(fields) != 5 {
		return Sample{}, fmt.Errorf("expected tick,kart,x,y[,R]: %q", line)
	}
	tick, err := strconv.Atoi(fields[0])
	if err != nil {
		return Sample{}, err
	}
	x, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Sample{}, err
	}
	y, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Sample{}, err
	}
	s := Sample{Tick: tick, Kart: fields[1], Pos: r2.Vec{X: x, Y: y}}
	if len(fields) == 5 {
		if !strings.EqualFold(fields[4], "R") {
			return Sample{}, fmt.Errorf("unknown flag %q", fields[4])
		}
		s.Respawn = true
	}
	return s, nil
}

// Frames groups samples by tick in ascending tick order.
func Frames(samples []Sample) []Frame {
	byTick := lo.GroupBy(samples, func(s Sample) int { return s.Tick })
	ticks := lo.Keys(byTick)
	slices.Sort(ticks)
	return lo.Map(ticks, func(tick int, _ int) Frame {
		f := Frame{Tick: tick, Pos: make(map[string]r2.Vec)}
		for _, s := range byTick[tick] {
			if s.Respawn {
				f.Respawns = append(f.Respawns, s.Kart)
			}
			f.Pos[s.Kart] = s.Pos
		}
		return f
	})
}
