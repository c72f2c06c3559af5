package fan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/muurk/blauberg/internal/protocol"
)

// ErrNoAnswer is returned when a snapshot read gets no values back.
var ErrNoAnswer = errors.New("fan returned no values")

// Snapshot is a set of parameter values saved before a change
type Snapshot struct {
	// Params holds the values read from the fan; invalid ones are left out
	Params protocol.Params

	// Timestamp when this snapshot was taken
	Timestamp time.Time

	// Description of the change the snapshot was taken before
	Description string
}

// RollbackManager keeps snapshots of a fan's parameters and restores them
type RollbackManager struct {
	client *Client

	// snapshots, oldest first, limited to maxSnapshots
	snapshots    []*Snapshot
	maxSnapshots int

	mutex sync.RWMutex
}

// NewRollbackManager creates a new rollback manager for a client
func NewRollbackManager(client *Client) *RollbackManager {
	return &RollbackManager{
		client:       client,
		snapshots:    make([]*Snapshot, 0, 10),
		maxSnapshots: 10,
	}
}

// SaveSnapshot reads ids from the fan and keeps their values. Values the
// fan reports beyond ids are dropped so a rollback writes only ids. Call it
// before writing ids.
func (rm *RollbackManager) SaveSnapshot(ctx context.Context, description string, ids ...protocol.ParamID) (*Snapshot, error) {
	values, err := rm.client.ReadParams(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters for snapshot: %w", err)
	}

	wanted := make(map[protocol.ParamID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	kept := make(protocol.Params, len(ids))
	for id, v := range values {
		if wanted[id] && v.IsKnown() {
			kept[id] = v
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoAnswer
	}

	snapshot := &Snapshot{
		Params:      kept,
		Timestamp:   time.Now(),
		Description: description,
	}

	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = append(rm.snapshots, snapshot)
	if len(rm.snapshots) > rm.maxSnapshots {
		rm.snapshots = rm.snapshots[1:]
	}
	return snapshot, nil
}

// GetLatestSnapshot returns the most recent snapshot, or nil
func (rm *RollbackManager) GetLatestSnapshot() *Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	if len(rm.snapshots) == 0 {
		return nil
	}
	return rm.snapshots[len(rm.snapshots)-1]
}

// GetSnapshots returns all snapshots, oldest first
func (rm *RollbackManager) GetSnapshots() []*Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	result := make([]*Snapshot, len(rm.snapshots))
	copy(result, rm.snapshots)
	return result
}

// ClearSnapshots removes all saved snapshots
func (rm *RollbackManager) ClearSnapshots() {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = make([]*Snapshot, 0, 10)
}

// RollbackToSnapshot writes the snapshot values back and verifies them
func (rm *RollbackManager) RollbackToSnapshot(ctx context.Context, snapshot *Snapshot, opts *VerificationOptions) *VerificationResult {
	if snapshot == nil {
		return &VerificationResult{Error: errors.New("snapshot is nil")}
	}
	return rm.client.WriteAndVerify(ctx, snapshot.Params, opts)
}

// RollbackToLatest restores the most recent snapshot
func (rm *RollbackManager) RollbackToLatest(ctx context.Context, opts *VerificationOptions) *VerificationResult {
	snapshot := rm.GetLatestSnapshot()
	if snapshot == nil {
		return &VerificationResult{Error: errors.New("no snapshots available for rollback")}
	}
	return rm.RollbackToSnapshot(ctx, snapshot, opts)
}

// WriteWithRollback snapshots the parameters of values, writes and
// verifies them, and restores the snapshot if verification fails. The
// returned result is that of the write; the rollback result is non-nil
// only when a rollback ran.
func (rm *RollbackManager) WriteWithRollback(ctx context.Context, values protocol.Params, opts *VerificationOptions) (result, rollback *VerificationResult) {
	snapshot, err := rm.SaveSnapshot(ctx, "before write", values.IDs()...)
	if err != nil {
		return &VerificationResult{Error: fmt.Errorf("snapshot failed, nothing written: %w", err)}, nil
	}

	result = rm.client.WriteAndVerify(ctx, values, opts)
	if result.Success {
		return result, nil
	}
	return result, rm.RollbackToSnapshot(ctx, snapshot, opts)
}
