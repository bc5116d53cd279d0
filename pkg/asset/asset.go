// Package asset resolves relative asset names (like track boundary files)
// to paths on a filesystem.
package asset

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("asset not found")

type Resolver interface {
	// Resolve returns the path of rel or an error wrapping ErrNotFound.
	Resolve(rel string) (string, error)
}

type ResolverFunc func(rel string) (string, error)

func (f ResolverFunc) Resolve(rel string) (string, error) {
	return f(rel)
}

// SearchPathResolver looks up assets in an ordered list of root directories.
// The first root containing a regular file with the requested name wins.
type SearchPathResolver struct {
	fs    afero.Fs
	roots []string
}

func NewSearchPathResolver(fs afero.Fs, roots ...string) *SearchPathResolver {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return &SearchPathResolver{fs: fs, roots: roots}
}

func (r *SearchPathResolver) Resolve(rel string) (string, error) {
	for _, root := range r.roots {
		p := filepath.Join(root, rel)
		if fi, err := r.fs.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %v)", ErrNotFound, rel, r.roots)
}

func (r *SearchPathResolver) Fs() afero.Fs {
	return r.fs
}
