// Package engine is the job lifecycle state machine. It is the only
// component permitted to transition a job to closed, and it owns the single
// mutual-exclusion boundary that serializes all mutating operations, so the
// gate re-check at commit time can never race another close attempt.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"field-service-compliance/internal/models"
	"field-service-compliance/internal/persist"
	"field-service-compliance/internal/store"
	"field-service-compliance/internal/telemetry"
)

// Engine wraps the entity store with compliance gating and snapshots the
// whole store to the sink after every successful mutation.
type Engine struct {
	mu    sync.Mutex // serializes all mutating operations
	store *store.Store
	sink  persist.Sink
}

// Gate is the result of a compliance evaluation for one job.
type Gate struct {
	Blocked      bool `json:"blocked"`
	MissingCount int  `json:"missing_count"`
}

// New constructs the engine. A nil sink disables durability (tests).
func New(st *store.Store, sink persist.Sink) *Engine {
	return &Engine{store: st, sink: sink}
}

// EvaluateGate reports how many required checklist items are still
// incomplete for the job. Read-only; callers may render the result before
// attempting closure, but CloseJob never trusts a stale evaluation.
func (e *Engine) EvaluateGate(jobID string) (Gate, error) {
	missing, err := e.store.RequiredMissing(jobID)
	if err != nil {
		return Gate{}, err
	}
	return Gate{Blocked: missing > 0, MissingCount: missing}, nil
}

// CreateTemplate registers a template and snapshots.
func (e *Engine) CreateTemplate(ctx context.Context, name string, jobType models.JobType) (models.JobTemplate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.store.CreateTemplate(name, jobType)
	if err != nil {
		return models.JobTemplate{}, err
	}
	return t, e.save(ctx)
}

// AddChecklistItem appends an item definition to a template and snapshots.
// Already-created jobs keep their frozen checklist.
func (e *Engine) AddChecklistItem(ctx context.Context, templateID, description string, required bool) (models.ChecklistItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, err := e.store.AddChecklistItem(templateID, description, required)
	if err != nil {
		return models.ChecklistItem{}, err
	}
	return item, e.save(ctx)
}

// CreateJob dispatches a job from a template and snapshots.
func (e *Engine) CreateJob(ctx context.Context, templateID, techID, customerName, location string) (models.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	job, err := e.store.CreateJob(templateID, techID, customerName, location)
	if err != nil {
		return models.Job{}, err
	}
	telemetry.JobsCreated.Inc()
	return job, e.save(ctx)
}

// ToggleChecklistItem flips one checklist item on an open job, emitting an
// audit entry, then snapshots.
func (e *Engine) ToggleChecklistItem(ctx context.Context, jobID, itemID string, completed bool, actorID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.SetChecklistCompletion(jobID, itemID, completed, actorID); err != nil {
		return err
	}
	telemetry.ChecklistToggles.Inc()
	return e.save(ctx)
}

// CloseJob re-runs the gate and, only if it passes, flips the job to closed
// with its terminal audit entry, then snapshots. A denied close performs no
// mutation and returns ComplianceLockedError carrying the missing count. A
// second close of the same job fails with ErrInvalidState; it never silently
// succeeds and never double-appends the closure entry.
func (e *Engine) CloseJob(ctx context.Context, jobID, actorID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	job, err := e.store.Job(jobID)
	if err != nil {
		return err
	}
	if job.Status == models.StatusClosed {
		return fmt.Errorf("job %s already closed: %w", jobID, models.ErrInvalidState)
	}
	missing, err := e.store.RequiredMissing(jobID)
	if err != nil {
		return err
	}
	if missing > 0 {
		telemetry.CloseLocked.Inc()
		return &models.ComplianceLockedError{Missing: missing}
	}
	if _, err := e.store.CloseJobRecord(jobID, actorID); err != nil {
		return err
	}
	telemetry.JobsClosed.Inc()
	return e.save(ctx)
}

// AddVendor registers an inventory supplier and snapshots.
func (e *Engine) AddVendor(ctx context.Context, name, contact string) (models.Vendor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.store.AddVendor(name, contact)
	if err != nil {
		return models.Vendor{}, err
	}
	return v, e.save(ctx)
}

// AddPart registers a stocked part and snapshots.
func (e *Engine) AddPart(ctx context.Context, name string, quantity int, vendorID string) (models.Part, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.store.AddPart(name, quantity, vendorID)
	if err != nil {
		return models.Part{}, err
	}
	return p, e.save(ctx)
}

// UpdatePartQuantity sets a part's stocked quantity and snapshots.
func (e *Engine) UpdatePartQuantity(ctx context.Context, partID string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.UpdatePartQuantity(partID, quantity); err != nil {
		return err
	}
	return e.save(ctx)
}

// save writes the whole document to the sink. On failure the in-memory
// mutation has already been applied; the caller is warned with a
// PersistenceError and a crash loses at most this one mutation.
func (e *Engine) save(ctx context.Context) error {
	if e.sink == nil {
		return nil
	}
	if err := e.sink.Save(ctx, e.store.Snapshot()); err != nil {
		telemetry.SnapshotSaveFailures.Inc()
		var pe *models.PersistenceError
		if errors.As(err, &pe) {
			return err
		}
		return &models.PersistenceError{Op: "save", Err: err}
	}
	telemetry.SnapshotSaves.Inc()
	return nil
}
