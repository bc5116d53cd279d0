package locate

import (
	"context"
	"encoding/json"
	"io"

	"github.com/aarondl/opt/omit"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/pkg/cmd/util"
	"github.com/mpapenbr/kartline/pkg/driveline"
)

var hint int

type output struct {
	Track       string           `json:"track"`
	Result      driveline.Result `json:"result"`
	NextHint    int              `json:"nextHint"`
	OffsetRatio float64          `json:"offsetRatio"`
	Heading     float64          `json:"heading"`
}

func NewLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate ident x y",
		Short: "project a position onto the driveline of a track",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := util.ParsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			var h omit.Val[int]
			if cmd.Flags().Changed("hint") {
				h = omit.From(hint)
			}
			return locate(cmd.Context(), cmd.OutOrStdout(), args[0], p, h)
		},
	}
	cmd.Flags().IntVar(&hint, "hint", 0,
		"driveline index of a previous query (default: search the whole driveline)")
	return cmd
}

func locate(ctx context.Context, out io.Writer, ident string, p r2.Vec, h omit.Val[int]) error {
	s := util.NewSession(ctx)
	if err := s.Load(ctx, ident); err != nil {
		return err
	}
	d, err := s.Driveline()
	if err != nil {
		return err
	}
	res, next := d.Find(p, h)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Track:       ident,
		Result:      res,
		NextHint:    next,
		OffsetRatio: d.OffsetRatio(res),
		Heading:     d.Heading(res.NearestIndex),
	})
}
