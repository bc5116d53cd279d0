package check

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/cmd/util"
	"github.com/mpapenbr/kartline/pkg/driveline"
)

var verbose bool

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check ident",
		Short: "load a track and print its driveline summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkTrack(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every driveline point")
	return cmd
}

func checkTrack(ctx context.Context, out io.Writer, ident string) error {
	logger := log.GetFromContext(ctx).Named("check")
	s := util.NewSession(ctx)
	if err := s.Load(ctx, ident); err != nil {
		return err
	}
	d, err := s.Driveline()
	if err != nil {
		return err
	}
	logger.Debug("track checked", log.String("track", ident))
	printSummary(out, d)
	if verbose {
		printPoints(out, d)
	}
	return nil
}

func printSummary(out io.Writer, d *driveline.Driveline) {
	box, scale := d.Box(), d.Scale()
	fmt.Fprintf(out, "track:    %s\n", d.Name())
	fmt.Fprintf(out, "points:   %d\n", d.Len())
	fmt.Fprintf(out, "length:   %.2f\n", d.TotalDistance())
	fmt.Fprintf(out, "box:      (%.2f,%.2f) - (%.2f,%.2f)\n",
		box.Min.X, box.Min.Y, box.Max.X, box.Max.Y)
	fmt.Fprintf(out, "center:   (%.2f,%.2f)\n", box.Center.X, box.Center.Y)
	fmt.Fprintf(out, "scale:    %.4f x %.4f\n", scale.X, scale.Y)
}

func printPoints(out io.Writer, d *driveline.Driveline) {
	fmt.Fprintf(out, "%5s %10s %10s %8s %8s %10s\n",
		"idx", "x", "y", "width", "heading", "distance")
	for i := range d.Len() {
		c := d.Center(i)
		fmt.Fprintf(out, "%5d %10.2f %10.2f %8.2f %8.1f %10.2f\n",
			i, c.X, c.Y, d.Width(i), d.Heading(i), d.Distance(i))
	}
}
