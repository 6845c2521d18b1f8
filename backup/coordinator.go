/*
coordinator.go - Connect-time conflict protocol and manual backup/restore

PROTOCOL (on connect):
  1. Fetch remote metadata only, no content.
  2. No remote backup        -> upload local state immediately, done.
  3. No local data           -> download and apply remote, done.
  4. Both exist              -> download remote, surface a pending
     Conflict (counts + dates on both sides) and mutate NOTHING until
     the caller resolves with UseRemote or KeepLocal.

SYNC STATUS:
  idle | saving | saved | error. Failures set the status and are logged;
  they never block local editing and are never retried beyond the next
  debounced attempt.
*/
package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/statera/budget-engine/ledger"
)

// SyncStatus is the user-facing indicator of the cloud sync state.
type SyncStatus string

const (
	StatusIdle   SyncStatus = "idle"
	StatusSaving SyncStatus = "saving"
	StatusSaved  SyncStatus = "saved"
	StatusError  SyncStatus = "error"
)

// Choice resolves a pending conflict.
type Choice string

const (
	UseRemote Choice = "use_remote"
	KeepLocal Choice = "keep_local"
)

// ErrNoConflict is returned when Resolve is called with nothing pending.
var ErrNoConflict = errors.New("no pending conflict")

// ErrConflictPending is returned by operations that refuse to run while
// a conflict awaits a human decision.
var ErrConflictPending = errors.New("conflict pending: resolve it first")

// Conflict describes the local-vs-remote divergence surfaced to the
// operator. Both counts and dates are shown; nothing is mutated until a
// side is picked.
type Conflict struct {
	LocalOperations  int       `json:"localOperations"`
	LocalLastSave    time.Time `json:"localLastSave"`
	RemoteOperations int       `json:"remoteOperations"`
	RemoteExportedAt time.Time `json:"remoteExportedAt"`
	RemoteModified   time.Time `json:"remoteModified"`

	payload Payload
}

// Coordinator owns the cloud-file lifecycle: connect, conflict
// resolution, manual backup and restore, and the last-save timestamp.
type Coordinator struct {
	svc      FileService
	store    *ledger.Store
	cols     *ledger.Collections
	persist  ledger.Persistence
	fileName string
	mimeType string
	now      func() time.Time
	log      zerolog.Logger

	mu        sync.Mutex
	connected bool
	status    SyncStatus
	pending   *Conflict
}

// NewCoordinator wires the coordinator; the session starts disconnected.
func NewCoordinator(svc FileService, store *ledger.Store, cols *ledger.Collections, persist ledger.Persistence, fileName string, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		svc:      svc,
		store:    store,
		cols:     cols,
		persist:  persist,
		fileName: fileName,
		mimeType: "application/json",
		now:      time.Now,
		log:      log,
		status:   StatusIdle,
	}
}

func (c *Coordinator) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Coordinator) Status() SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Coordinator) setStatus(s SyncStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// PendingConflict returns the unresolved conflict, if any.
func (c *Coordinator) PendingConflict() *Conflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	snapshot := *c.pending
	return &snapshot
}

// Connect runs the conflict protocol. The returned Conflict is nil when
// the situation resolved automatically (fresh remote upload or clean
// restore); otherwise it awaits Resolve.
func (c *Coordinator) Connect(ctx context.Context) (*Conflict, error) {
	meta, err := c.svc.FindByName(ctx, c.fileName)
	if err != nil {
		c.setStatus(StatusError)
		return nil, fmt.Errorf("fetching backup metadata: %w", err)
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	// No remote backup: seed the cloud with the local state.
	if meta == nil {
		if err := c.upload(ctx); err != nil {
			return nil, err
		}
		c.log.Info().Str("file", c.fileName).Msg("no remote backup found, uploaded local state")
		return nil, nil
	}

	// Categories always hold defaults after load, so only the operation
	// count tells whether the user has real local data.
	hasLocal := c.store.Len() > 0

	// No local data: restore the remote snapshot unconditionally.
	if !hasLocal {
		if err := c.Restore(ctx); err != nil {
			return nil, err
		}
		c.log.Info().Str("file", c.fileName).Msg("empty local state, restored remote backup")
		return nil, nil
	}

	// Both sides have data: download once, then wait for the human.
	raw, err := c.svc.Download(ctx, c.fileName)
	if err != nil {
		c.setStatus(StatusError)
		return nil, fmt.Errorf("downloading backup: %w", err)
	}
	payload, err := Decode(raw)
	if err != nil {
		c.setStatus(StatusError)
		return nil, err
	}

	lastSave, err := c.persist.LoadLastSave(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("loading last-save timestamp failed")
	}

	conflict := &Conflict{
		LocalOperations:  c.store.Len(),
		LocalLastSave:    lastSave,
		RemoteOperations: len(payload.Data.Operations),
		RemoteExportedAt: payload.ExportedAt,
		RemoteModified:   meta.ModifiedTime,
		payload:          payload,
	}

	c.mu.Lock()
	c.pending = conflict
	c.mu.Unlock()

	out := *conflict
	return &out, nil
}

// Resolve applies the operator's decision on a pending conflict.
func (c *Coordinator) Resolve(ctx context.Context, choice Choice) error {
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()
	if pending == nil {
		return ErrNoConflict
	}

	switch choice {
	case UseRemote:
		if err := ApplyPayload(ctx, pending.payload, c.store, c.cols); err != nil {
			return err
		}
	case KeepLocal:
		if err := c.upload(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown conflict choice %q", choice)
	}

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	return nil
}

// BackupNow uploads the current state immediately. Refused while a
// conflict is pending so an unresolved remote is never clobbered.
func (c *Coordinator) BackupNow(ctx context.Context) error {
	if c.PendingConflict() != nil {
		return ErrConflictPending
	}
	return c.upload(ctx)
}

// Restore downloads and applies the remote snapshot, overwriting local
// state.
func (c *Coordinator) Restore(ctx context.Context) error {
	raw, err := c.svc.Download(ctx, c.fileName)
	if err != nil {
		c.setStatus(StatusError)
		return fmt.Errorf("downloading backup: %w", err)
	}
	payload, err := Decode(raw)
	if err != nil {
		c.setStatus(StatusError)
		return err
	}
	if err := ApplyPayload(ctx, payload, c.store, c.cols); err != nil {
		return err
	}
	c.setStatus(StatusIdle)
	return nil
}

// upload serializes the full state and replaces the cloud file, then
// records the last-saved timestamp for the next conflict comparison.
func (c *Coordinator) upload(ctx context.Context) error {
	c.setStatus(StatusSaving)

	payload := BuildPayload(c.store, c.cols, c.now())
	raw, err := Encode(payload)
	if err != nil {
		c.setStatus(StatusError)
		return err
	}
	if err := c.svc.Upload(ctx, c.fileName, c.mimeType, raw); err != nil {
		c.setStatus(StatusError)
		return fmt.Errorf("uploading backup: %w", err)
	}
	if err := c.persist.SaveLastSave(ctx, c.now()); err != nil {
		c.log.Warn().Err(err).Msg("recording last-save timestamp failed")
	}
	c.setStatus(StatusSaved)
	return nil
}
