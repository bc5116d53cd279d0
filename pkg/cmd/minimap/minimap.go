package minimap

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/cmd/util"
	"github.com/mpapenbr/kartline/pkg/minimap"
)

var (
	outFile string
	width   float64
	height  float64
)

func NewMinimapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minimap ident [ident...]",
		Short: "render track previews",
		Long: `Renders the driveline of each track into an image.
With a single track --out names the file, otherwise --out is a directory
receiving <ident>.png for each track.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file or directory")
	cmd.Flags().Float64Var(&width, "width", 200, "image width in points")
	cmd.Flags().Float64Var(&height, "height", 200, "image height in points")
	return cmd
}

func render(ctx context.Context, idents []string) error {
	logger := log.GetFromContext(ctx).Named("minimap")
	s := util.NewSession(ctx)
	cfg := s.Config()
	p := minimap.NewPreviewer(s.Build,
		minimap.WithExpiration(cfg.PreviewExpiration),
		minimap.WithRenderOptions(
			minimap.WithSize(width, height),
			minimap.WithFormat(format(len(idents)))),
		minimap.WithLogger(logger),
	)

	for _, ident := range idents {
		name := target(ident, len(idents))
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		err = p.Render(ctx, f, ident)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		logger.Info("minimap written", log.String("track", ident), log.String("file", name))
	}
	return nil
}

func target(ident string, count int) string {
	switch {
	case outFile == "":
		return ident + ".png"
	case count == 1 && filepath.Ext(outFile) != "":
		return outFile
	default:
		return filepath.Join(outFile, ident+".png")
	}
}

// format derives the image format from the output file, png by default
func format(count int) string {
	if count > 1 {
		return "png"
	}
	if ext := strings.TrimPrefix(filepath.Ext(outFile), "."); ext != "" {
		return ext
	}
	return "png"
}
