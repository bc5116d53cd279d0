package driveline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
)

// DefaultMinSpacing is roughly the length of a kart.
const DefaultMinSpacing = 1.5

// added to the min spacing for the initial accumulator so the first point
// of a file is always accepted
const spacingSeed = 0.01

type (
	LoaderOption func(*loaderConfig)
	loaderConfig struct {
		minSpacing float64
		l          *log.Logger
	}
)

func WithMinSpacing(v float64) LoaderOption {
	return func(c *loaderConfig) {
		c.minSpacing = v
	}
}

func WithLoaderLogger(l *log.Logger) LoaderOption {
	return func(c *loaderConfig) {
		c.l = l
	}
}

// ReadPoints parses boundary samples from r. name is only used for
// diagnostics.
//
// Every sample adds its distance to the last accepted point to an
// accumulator. A sample is accepted once the accumulator exceeds the min
// spacing, which is then subtracted from the accumulator.
func ReadPoints(r io.Reader, name string, opts ...LoaderOption) ([]r2.Vec, error) {
	cfg := &loaderConfig{
		minSpacing: DefaultMinSpacing,
		l:          log.Default().Named("driveline.loader"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		points []r2.Vec
		acc    = cfg.minSpacing + spacingSeed
		lineNo int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if isComment(line) {
			continue
		}
		p, ok := parsePoint(line)
		if !ok {
			return nil, &ParseError{Name: name, Line: lineNo, Text: line}
		}
		if len(points) > 0 {
			acc += r2.Norm(r2.Sub(p, points[len(points)-1]))
		}

		switch {
		case cfg.minSpacing <= 0:
			points = append(points, p)
		case acc > cfg.minSpacing:
			points = append(points, p)
			acc -= cfg.minSpacing
		default:
			cfg.l.Warn("point too close to previous point, dropped",
				log.String("file", name),
				log.Int("line", lineNo),
				log.Float64("distance", acc),
				log.Float64("minSpacing", cfg.minSpacing))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyDriveline)
	}
	return points, nil
}

func isComment(line string) bool {
	return line == "" || line[0] == '#' || line[0] <= ' '
}

// parsePoint accepts "x,y" and "x,y,z". z is discarded.
func parsePoint(line string) (r2.Vec, bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 && len(fields) != 3 {
		return r2.Vec{}, false
	}
	var v [3]float64
	for i, f := range fields {
		val, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return r2.Vec{}, false
		}
		v[i] = val
	}
	return r2.Vec{X: v[0], Y: v[1]}, true
}
