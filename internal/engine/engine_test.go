package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"field-service-compliance/internal/models"
	"field-service-compliance/internal/persist"
	"field-service-compliance/internal/store"
)

// recordingSink counts saves and can be told to fail.
type recordingSink struct {
	saves int
	fail  bool
	last  persist.Snapshot
}

func (s *recordingSink) Save(_ context.Context, snap persist.Snapshot) error {
	if s.fail {
		return fmt.Errorf("sink unavailable")
	}
	s.saves++
	s.last = snap
	return nil
}

func (s *recordingSink) Load(_ context.Context) (persist.Snapshot, bool, error) {
	return s.last, s.saves > 0, nil
}

func newEngine(sink persist.Sink) (*Engine, *store.Store) {
	st := store.New("c1", persist.Snapshot{}, persist.Snapshot{})
	return New(st, sink), st
}

func auditCountFor(st *store.Store, jobID string) int {
	n := 0
	for _, entry := range st.AuditLogs() {
		if entry.JobID == jobID {
			n++
		}
	}
	return n
}

func TestCloseGateScenario(t *testing.T) {
	ctx := context.Background()
	eng, st := newEngine(nil)

	tpl, err := eng.CreateTemplate(ctx, "Standard AC Repair", models.JobTypeRepair)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	checkA, _ := eng.AddChecklistItem(ctx, tpl.ID, "check A", true)
	checkB, _ := eng.AddChecklistItem(ctx, tpl.ID, "check B", true)

	job, err := eng.CreateJob(ctx, tpl.ID, "u2", "John Smith", "123 Maple St")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	gate, err := eng.EvaluateGate(job.ID)
	if err != nil {
		t.Fatalf("evaluate gate: %v", err)
	}
	if !gate.Blocked || gate.MissingCount != 2 {
		t.Fatalf("expected blocked with 2 missing, got %+v", gate)
	}

	if err := eng.ToggleChecklistItem(ctx, job.ID, checkA.ID, true, "u2"); err != nil {
		t.Fatalf("toggle check A: %v", err)
	}
	gate, _ = eng.EvaluateGate(job.ID)
	if gate.MissingCount != 1 {
		t.Fatalf("expected 1 missing after first toggle, got %d", gate.MissingCount)
	}

	err = eng.CloseJob(ctx, job.ID, "u2")
	var locked *models.ComplianceLockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected ComplianceLockedError, got %v", err)
	}
	if locked.Missing != 1 {
		t.Fatalf("expected 1 missing in lock error, got %d", locked.Missing)
	}
	got, _ := st.Job(job.ID)
	if got.Status != models.StatusOpen {
		t.Fatalf("denied close must not mutate; status=%s", got.Status)
	}

	if err := eng.ToggleChecklistItem(ctx, job.ID, checkB.ID, true, "u2"); err != nil {
		t.Fatalf("toggle check B: %v", err)
	}
	if err := eng.CloseJob(ctx, job.ID, "u2"); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, _ = st.Job(job.ID)
	if got.Status != models.StatusClosed {
		t.Fatalf("expected closed, got %s", got.Status)
	}

	// Two toggles plus one closure entry; the denied close added nothing.
	if n := auditCountFor(st, job.ID); n != 3 {
		t.Fatalf("expected 3 audit entries for job, got %d", n)
	}
}

func TestCloseJobOptionalItemsIgnored(t *testing.T) {
	ctx := context.Background()
	eng, _ := newEngine(nil)

	tpl, _ := eng.CreateTemplate(ctx, "Maintenance", models.JobTypeMaintenance)
	required, _ := eng.AddChecklistItem(ctx, tpl.ID, "safety check", true)
	if _, err := eng.AddChecklistItem(ctx, tpl.ID, "tidy up", false); err != nil {
		t.Fatalf("add optional item: %v", err)
	}
	job, _ := eng.CreateJob(ctx, tpl.ID, "u2", "Jane", "loc")

	if err := eng.ToggleChecklistItem(ctx, job.ID, required.ID, true, "u2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	// Optional item still incomplete; the gate must pass anyway.
	if err := eng.CloseJob(ctx, job.ID, "u2"); err != nil {
		t.Fatalf("close with incomplete optional item: %v", err)
	}
}

func TestCloseJobDoubleCloseRejected(t *testing.T) {
	ctx := context.Background()
	eng, st := newEngine(nil)

	tpl, _ := eng.CreateTemplate(ctx, "Repair", models.JobTypeRepair)
	job, _ := eng.CreateJob(ctx, tpl.ID, "u2", "Jane", "loc")

	if err := eng.CloseJob(ctx, job.ID, "u2"); err != nil {
		t.Fatalf("first close: %v", err)
	}
	before := auditCountFor(st, job.ID)

	err := eng.CloseJob(ctx, job.ID, "u2")
	if !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double close, got %v", err)
	}
	if after := auditCountFor(st, job.ID); after != before {
		t.Fatalf("double close appended audit entries: %d -> %d", before, after)
	}
}

func TestCloseJobUnknown(t *testing.T) {
	eng, _ := newEngine(nil)
	if err := eng.CloseJob(context.Background(), "ghost", "u2"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotSavedAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	eng, _ := newEngine(sink)

	tpl, _ := eng.CreateTemplate(ctx, "Repair", models.JobTypeRepair)
	item, _ := eng.AddChecklistItem(ctx, tpl.ID, "inspect", true)
	job, _ := eng.CreateJob(ctx, tpl.ID, "u2", "Jane", "loc")
	_ = eng.ToggleChecklistItem(ctx, job.ID, item.ID, true, "u2")
	if err := eng.CloseJob(ctx, job.ID, "u2"); err != nil {
		t.Fatalf("close: %v", err)
	}

	if sink.saves != 5 {
		t.Fatalf("expected 5 saves (one per mutation), got %d", sink.saves)
	}
	if len(sink.last.Jobs) != 1 || sink.last.Jobs[0].Status != models.StatusClosed {
		t.Fatalf("last snapshot missing closed job: %+v", sink.last.Jobs)
	}
	if len(sink.last.AuditLogs) != 2 {
		t.Fatalf("expected 2 audit entries in snapshot, got %d", len(sink.last.AuditLogs))
	}
}

func TestFailedSaveSurfacesPersistenceError(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{fail: true}
	eng, st := newEngine(sink)

	_, err := eng.CreateTemplate(ctx, "Repair", models.JobTypeRepair)
	var pe *models.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	// The in-memory mutation stays; only durability is at risk.
	if len(st.Templates()) != 1 {
		t.Fatalf("expected template kept in memory")
	}
}

func TestRejectedMutationDoesNotSave(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	eng, _ := newEngine(sink)

	if _, err := eng.CreateJob(ctx, "ghost", "u2", "Jane", "loc"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if sink.saves != 0 {
		t.Fatalf("rejected operation must not snapshot, got %d saves", sink.saves)
	}
}
