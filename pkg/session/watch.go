package session

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/mpapenbr/kartline/log"
	"github.com/mpapenbr/kartline/pkg/driveline"
)

// editors usually write a file in several steps
const reloadDelay = 100 * time.Millisecond

// Watch reloads the current track whenever one of its boundary files
// changes. The files must be on the OS filesystem.
// Watching ends when ctx is done or stop is called.
func (s *Session) Watch(ctx context.Context) (stop func(), err error) {
	cur := s.track.Load()
	if cur == nil {
		return nil, ErrNoTrack
	}
	left, right, err := driveline.TrackFiles(s.resolver, cur.ident)
	if err != nil {
		return nil, err
	}
	files := map[string]bool{
		filepath.Clean(left):  true,
		filepath.Clean(right): true,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watching the directories survives editors replacing the files
	for _, dir := range lo.Uniq([]string{filepath.Dir(left), filepath.Dir(right)}) {
		if err := watcher.Add(dir); err != nil {
			//nolint:errcheck // already failing
			watcher.Close()
			return nil, err
		}
	}

	l := s.l.Named("watch").With(log.String("track", cur.ident))
	wctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		//nolint:errcheck // nothing left to do
		defer watcher.Close()

		timer := time.NewTimer(reloadDelay)
		timer.Stop()
		defer timer.Stop()
		for {
			select {
			case <-wctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !files[filepath.Clean(ev.Name)] ||
					(!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
					continue
				}
				l.Debug("boundary file changed", log.String("file", ev.Name))
				timer.Reset(reloadDelay)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.Warn("watcher error", log.ErrorField(err))
			case <-timer.C:
				if s.Ident() != cur.ident {
					l.Debug("track changed, ignoring file change")
					continue
				}
				// errors are logged by Reload
				//nolint:errcheck // see above
				s.Reload(wctx)
			}
		}
	}()
	l.Info("watching track files", log.Any("files", lo.Keys(files)))

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}
