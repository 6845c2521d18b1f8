/*
autosave.go - Debounced cloud upload on every mutation

BEHAVIOR:
  Each mutation restarts a quiet-period timer; when the timer fires, the
  latest full state is uploaded once. Intermediate states are
  intentionally skipped: only the final state matters.

IN-FLIGHT RULE:
  A mutation arriving while an upload is running does not queue a second
  upload and does not cancel the running one. It marks the autosaver
  dirty; when the upload finishes, the quiet-period timer restarts so
  the newer state goes out in exactly one more upload.
*/
package backup

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultQuietPeriod is how long after the last mutation the upload fires.
const DefaultQuietPeriod = 4 * time.Second

// Autosaver schedules debounced uploads through a Coordinator.
type Autosaver struct {
	coord *Coordinator
	quiet time.Duration
	log   zerolog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	inFlight bool
	dirty    bool
	stopped  bool
}

func NewAutosaver(coord *Coordinator, quiet time.Duration, log zerolog.Logger) *Autosaver {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Autosaver{coord: coord, quiet: quiet, log: log}
}

// Trigger notes a mutation. No-op while disconnected or while a conflict
// awaits resolution; otherwise the quiet-period timer is cancelled and
// rescheduled so only the latest state is uploaded.
func (a *Autosaver) Trigger() {
	if !a.coord.Connected() || a.coord.PendingConflict() != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.inFlight {
		a.dirty = true
		return
	}
	a.rescheduleLocked()
}

func (a *Autosaver) rescheduleLocked() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.quiet, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.inFlight = true
	a.mu.Unlock()

	if err := a.coord.BackupNow(context.Background()); err != nil {
		a.log.Warn().Err(err).Msg("autosave upload failed")
	}

	a.mu.Lock()
	a.inFlight = false
	redo := a.dirty && !a.stopped
	a.dirty = false
	if redo {
		a.rescheduleLocked()
	}
	a.mu.Unlock()
}

// Stop cancels any pending timer. An upload already in flight finishes.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
	}
}

// Flush uploads immediately, bypassing the quiet period. Used on
// graceful shutdown.
func (a *Autosaver) Flush(ctx context.Context) error {
	if !a.coord.Connected() || a.coord.PendingConflict() != nil {
		return nil
	}
	return a.coord.BackupNow(ctx)
}
