package driveline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mpapenbr/kartline/pkg/asset"
	"github.com/mpapenbr/kartline/pkg/utils"
)

const (
	LeftExt  = ".drvl"
	RightExt = ".drvr"
)

// TrackFiles resolves the left and right boundary files of a track.
func TrackFiles(res asset.Resolver, ident string) (left, right string, err error) {
	if left, err = res.Resolve(ident + LeftExt); err != nil {
		return "", "", err
	}
	if right, err = res.Resolve(ident + RightExt); err != nil {
		return "", "", err
	}
	return left, right, nil
}

// LoadTrack reads both boundary files of the track ident and builds its
// driveline. The track name of the result is ident unless buildOpts
// override it.
func LoadTrack(
	ctx context.Context,
	afs afero.Fs,
	res asset.Resolver,
	ident string,
	loaderOpts []LoaderOption,
	buildOpts ...BuildOption,
) (*Driveline, error) {
	leftFile, rightFile, err := TrackFiles(res, ident)
	if err != nil {
		return nil, err
	}

	var left, right []r2.Vec
	var leftData, rightData []byte
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		left, leftData, err = readFile(afs, leftFile, loaderOpts)
		return err
	})
	g.Go(func() (err error) {
		right, rightData, err = readFile(afs, rightFile, loaderOpts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := append([]BuildOption{WithName(ident)}, buildOpts...)
	d, err := Build(left, right, opts...)
	if err != nil {
		return nil, err
	}
	d.fingerprint = utils.HashContent(leftData, rightData)
	return d, nil
}

func readFile(afs afero.Fs, name string, opts []LoaderOption) ([]r2.Vec, []byte, error) {
	data, err := afero.ReadFile(afs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", asset.ErrNotFound, name)
		}
		return nil, nil, err
	}
	points, err := ReadPoints(bytes.NewReader(data), name, opts...)
	return points, data, err
}
