package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/cmd/util"
	"github.com/mpapenbr/kartline/pkg/processing/race"
	"github.com/mpapenbr/kartline/pkg/session"
)

var (
	speed   int
	asJSON  bool
	watch   bool
	summary bool
)

func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay ident positions-file",
		Short: "feed recorded kart positions through a race session",
		Long: `Reads lines of tick,kart,x,y[,R] and prints the standings after each tick.
A trailing R marks a respawn of the kart at x,y.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			//nolint:errcheck // read only
			defer f.Close()
			samples, err := ReadSamples(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			s := util.NewSession(cmd.Context())
			return replay(cmd.Context(), cmd.OutOrStdout(), s, args[0], Frames(samples))
		},
	}
	cmd.Flags().IntVar(&speed, "speed", 0,
		"ticks per second (0 means: go as fast as possible)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print standings as JSON lines")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the track when its files change")
	cmd.Flags().BoolVar(&summary, "summary", true, "print lap and finish summary at the end")
	return cmd
}

type tickOutput struct {
	Tick      int              `json:"tick"`
	Standings []race.Standing `json:"standings"`
}

//nolint:funlen // sequential steps
func replay(
	ctx context.Context,
	out io.Writer,
	s *session.Session,
	ident string,
	frames []Frame,
) error {
	logger := log.GetFromContext(ctx).Named("replay")
	if err := s.Load(ctx, ident); err != nil {
		return err
	}
	if watch {
		stop, err := s.Watch(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	var ticker *time.Ticker
	if speed > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(speed))
		defer ticker.Stop()
	}

	enc := json.NewEncoder(out)
	known := make(map[string]bool)
	for _, frame := range frames {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		positions := make(map[string]r2.Vec, len(frame.Pos))
		for id, pos := range frame.Pos {
			if lo.Contains(frame.Respawns, id) && known[id] {
				if _, err := s.Respawn(id, pos); err != nil {
					return err
				}
				logger.Debug("kart respawned", log.String("kart", id), log.Int("tick", frame.Tick))
				continue
			}
			positions[id] = pos
			known[id] = true
		}
		standings, err := s.Tick(ctx, positions)
		if err != nil {
			return err
		}
		if asJSON {
			if err := enc.Encode(tickOutput{Tick: frame.Tick, Standings: standings}); err != nil {
				return err
			}
		} else {
			printStandings(out, frame.Tick, standings)
		}
	}
	if summary && !asJSON {
		printSummary(out, s)
	}
	logger.Info("replay done", log.Int("ticks", len(frames)))
	return nil
}

func printStandings(out io.Writer, tick int, standings []race.Standing) {
	parts := lo.Map(standings, func(st race.Standing, _ int) string {
		if st.Finished {
			return fmt.Sprintf("%d.%s(fin)", st.Pos, st.ID)
		}
		return fmt.Sprintf("%d.%s(L%d %.1f)", st.Pos, st.ID, st.Lap, st.Progress)
	})
	fmt.Fprintf(out, "%6d %s\n", tick, strings.Join(parts, " "))
}

func printSummary(out io.Writer, s *session.Session) {
	fmt.Fprintln(out, "final order:", strings.Join(s.RaceOrder(), ", "))
	for _, st := range s.States() {
		fmt.Fprintf(out, "  %-10s lap %3d finished %-5v offset %6.2f\n",
			st.ID, st.Lap, st.Finished, st.Result.LateralOffset)
	}
}
