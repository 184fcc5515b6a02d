// Package audit records what the service did with which data: uploads,
// anonymization runs, cleanups, and sample generation. Every entry is always
// written to the structured log; when a database is configured, entries are
// additionally persisted for later review.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of operation being audited.
type Action string

const (
	ActionFileUpload             Action = "file_upload"
	ActionAnonymizationStarted   Action = "anonymization_started"
	ActionAnonymizationCompleted Action = "anonymization_completed"
	ActionAnonymizationFailed    Action = "anonymization_failed"
	ActionCleanup                Action = "cleanup"
	ActionSampleGenerate         Action = "sample_generate"
)

// Entry is a single audit record. The hash binds action, details, and time
// so an entry can be checked for after-the-fact modification.
type Entry struct {
	ID        string         `json:"id"`
	Action    Action         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Hash      string         `json:"hash"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewEntry builds a hashed entry for the given action.
func NewEntry(action Action, details map[string]any) Entry {
	now := time.Now().UTC()
	id := uuid.NewString()
	return Entry{
		ID:        id,
		Action:    action,
		Details:   details,
		Hash:      operationHash(id, action, details, now),
		CreatedAt: now,
	}
}

func operationHash(id string, action Action, details map[string]any, at time.Time) string {
	content := fmt.Sprintf("%s%s%v%d", id, action, details, at.UnixNano())
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Recorder writes audit entries. The structured log is the always-on sink;
// a persistent store is optional.
type Recorder struct {
	store *Store
}

// NewRecorder creates a recorder. A nil store means log-only auditing.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Record creates and emits an entry for the given action. Persistence
// failures are logged but never propagate; an audit problem must not fail
// the operation being audited.
func (r *Recorder) Record(ctx context.Context, action Action, details map[string]any) Entry {
	entry := NewEntry(action, details)

	slog.Info("audit",
		"audit_id", entry.ID,
		"action", entry.Action,
		"details", entry.Details,
	)

	if r.store != nil {
		if err := r.store.Insert(ctx, entry); err != nil {
			slog.Error("audit entry not persisted", "audit_id", entry.ID, "error", err)
		}
	}
	return entry
}

// Recent returns the newest persisted entries, or nil when running log-only.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.Recent(ctx, limit)
}

// Persistent reports whether entries are stored beyond the log.
func (r *Recorder) Persistent() bool {
	return r.store != nil
}
