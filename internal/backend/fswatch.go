package backend

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"

	"github.com/unitdeck/unitdeck/internal/logging"
)

// DefaultWatchDir is where systemd records runtime unit state; changes there
// indicate unit activity worth a refresh.
const DefaultWatchDir = "/run/systemd/units"

// watchUnitDir triggers a refresh whenever the unit state directory changes.
// Notifications are coalesced by a quiet window so bursts of unit churn cost
// one refresh. Watch failures are logged and polling carries on alone.
func watchUnitDir(sctx *stopper.Context, dir string, notify func()) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error(err)
		return
	}
	if err := fsw.Add(dir); err != nil {
		logging.Error(err)
		_ = fsw.Close()
		return
	}
	sctx.Go(func(sctx *stopper.Context) error {
		defer fsw.Close()
		debounce := newThrottle(500 * time.Millisecond)
		for {
			select {
			case <-sctx.Stopping():
				return nil
			case _, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				debounce.wait()
				drainEvents(fsw)
				notify()
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				logging.Error(err)
			}
		}
	})
}

// drainEvents discards notifications accumulated during the quiet window.
func drainEvents(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-fsw.Events:
		default:
			return
		}
	}
}
