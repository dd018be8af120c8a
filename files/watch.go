package files

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JonathonMSmith/pysat/internal/logging"
)

// Watch refreshes the index whenever files appear, vanish, or are renamed
// under the data path. Events are debounced so bulk downloads trigger one
// refresh. The returned channel is closed once the watcher has shut down
// after ctx is cancelled.
func (f *Files) Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = time.Second
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(f.DataPath); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Create) &&
					!event.Op.Has(fsnotify.Remove) &&
					!event.Op.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
					fire = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.log.Warn(ctx, "file watcher error", logging.Any("err", err))
			case <-fire:
				timer = nil
				fire = nil
				if err := f.Refresh(); err != nil {
					f.log.Warn(ctx, "refresh after file change failed",
						logging.Any("err", err))
				}
			}
		}
	}()
	return done, nil
}
