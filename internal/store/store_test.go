package store

import (
	"errors"
	"testing"
	"time"

	"field-service-compliance/internal/models"
	"field-service-compliance/internal/persist"
)

func emptyStore() *Store {
	return New("c1", persist.Snapshot{}, persist.Snapshot{})
}

func TestCreateTemplateValidation(t *testing.T) {
	st := emptyStore()

	if _, err := st.CreateTemplate("", models.JobTypeRepair); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}
	if _, err := st.CreateTemplate("AC Service", "demolition"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad type, got %v", err)
	}

	tpl, err := st.CreateTemplate("AC Service", models.JobTypeRepair)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if tpl.ID == "" || tpl.CompanyID != "c1" {
		t.Fatalf("unexpected template %+v", tpl)
	}
}

func TestAddChecklistItemUnknownTemplate(t *testing.T) {
	st := emptyStore()
	if _, err := st.AddChecklistItem("nope", "step", true); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateJobSnapshotsChecklist(t *testing.T) {
	st := emptyStore()
	tpl, _ := st.CreateTemplate("Furnace Install", models.JobTypeInstall)
	first, _ := st.AddChecklistItem(tpl.ID, "Level concrete pad", true)
	second, _ := st.AddChecklistItem(tpl.ID, "Customer walkthrough", false)

	job, err := st.CreateJob(tpl.ID, "u2", "Jane Doe", "1 Elm St")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	entries, err := st.JobChecklist(job.ID)
	if err != nil {
		t.Fatalf("job checklist: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Fatalf("checklist not in item insertion order: %+v", entries)
	}
	for _, e := range entries {
		if e.Completed {
			t.Fatalf("expected all entries initially incomplete, got %+v", e)
		}
	}

	// Items added to the template after dispatch must not appear on the
	// already-created job.
	if _, err := st.AddChecklistItem(tpl.ID, "Added later", true); err != nil {
		t.Fatalf("add item: %v", err)
	}
	entries, _ = st.JobChecklist(job.ID)
	if len(entries) != 2 {
		t.Fatalf("frozen checklist grew to %d entries", len(entries))
	}
}

func TestCreateJobUnknownTemplate(t *testing.T) {
	st := emptyStore()
	if _, err := st.CreateJob("ghost", "u2", "Jane", "loc"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetChecklistCompletion(t *testing.T) {
	st := emptyStore()
	tpl, _ := st.CreateTemplate("Repair", models.JobTypeRepair)
	item, _ := st.AddChecklistItem(tpl.ID, "Inspect unit", true)
	job, _ := st.CreateJob(tpl.ID, "u2", "Jane", "loc")

	if err := st.SetChecklistCompletion(job.ID, "ghost", true, "u2"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown item, got %v", err)
	}
	if err := st.SetChecklistCompletion(job.ID, item.ID, true, "u2"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	entries, _ := st.JobChecklist(job.ID)
	if !entries[0].Completed {
		t.Fatalf("expected item completed")
	}
	logs := st.AuditLogs()
	if len(logs) != 1 || logs[0].UserID != "u2" {
		t.Fatalf("expected one audit entry attributed to u2, got %+v", logs)
	}

	if _, err := st.CloseJobRecord(job.ID, "u1"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := st.SetChecklistCompletion(job.ID, item.ID, false, "u2"); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on closed job, got %v", err)
	}
}

func TestCloseJobRecordStates(t *testing.T) {
	st := emptyStore()
	tpl, _ := st.CreateTemplate("Repair", models.JobTypeRepair)
	job, _ := st.CreateJob(tpl.ID, "u2", "Jane", "loc")

	if _, err := st.CloseJobRecord("ghost", "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	closed, err := st.CloseJobRecord(job.ID, "u1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != models.StatusClosed {
		t.Fatalf("expected closed status, got %s", closed.Status)
	}
	if _, err := st.CloseJobRecord(job.ID, "u1"); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double close, got %v", err)
	}
}

func TestJobsSortedNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	snap := persist.Snapshot{
		Jobs: []models.Job{
			{ID: "old", Status: models.StatusOpen, CreatedAt: now.Add(-2 * time.Hour)},
			{ID: "new", Status: models.StatusOpen, CreatedAt: now},
		},
	}
	st := New("c1", snap, persist.Snapshot{})
	jobs := st.Jobs()
	if jobs[0].ID != "new" || jobs[1].ID != "old" {
		t.Fatalf("jobs not sorted newest first: %+v", jobs)
	}
}

func TestAuditLogsNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	snap := persist.Snapshot{
		AuditLogs: []models.AuditLog{
			{ID: "a1", Timestamp: now.Add(-time.Minute)},
			{ID: "a2", Timestamp: now},
		},
	}
	st := New("c1", snap, persist.Snapshot{})
	logs := st.AuditLogs()
	if logs[0].ID != "a2" || logs[1].ID != "a1" {
		t.Fatalf("audit logs not sorted newest first: %+v", logs)
	}
}

func TestPartialSnapshotFallsBackPerCollection(t *testing.T) {
	seed := Seed("c1")
	// Document with only jobs present: every other collection must fall
	// back to its seed default independently.
	partial := persist.Snapshot{
		Jobs: []models.Job{{ID: "solo", Status: models.StatusOpen, CreatedAt: time.Now().UTC()}},
	}
	st := New("c1", partial, seed)

	if got := st.Jobs(); len(got) != 1 || got[0].ID != "solo" {
		t.Fatalf("expected document jobs preserved, got %+v", got)
	}
	if got := st.Templates(); len(got) != len(seed.Templates) {
		t.Fatalf("expected seeded templates, got %d", len(got))
	}
	if got := st.Vendors(); len(got) != len(seed.Vendors) {
		t.Fatalf("expected seeded vendors, got %d", len(got))
	}
	if got := st.Users(); len(got) != len(seed.Users) {
		t.Fatalf("expected seeded users, got %d", len(got))
	}
}

func TestInventoryPassThrough(t *testing.T) {
	st := emptyStore()
	if _, err := st.AddPart("Capacitor", 3, "ghost"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown vendor, got %v", err)
	}
	v, err := st.AddVendor("Carrier", "support@carrier.example")
	if err != nil {
		t.Fatalf("add vendor: %v", err)
	}
	p, err := st.AddPart("Capacitor", 3, v.ID)
	if err != nil {
		t.Fatalf("add part: %v", err)
	}
	if err := st.UpdatePartQuantity(p.ID, 7); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if got := st.Parts(); got[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", got[0].Quantity)
	}
}
