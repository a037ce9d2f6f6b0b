package persist

import (
	"context"

	"field-service-compliance/internal/models"
)

// Snapshot is the whole-document persisted state for one organization.
// Collections absent from a stored document decode as nil and fall back to
// their seed defaults independently at load time.
type Snapshot struct {
	Jobs              []models.Job                `json:"jobs"`
	Templates         []models.JobTemplate        `json:"templates"`
	ChecklistItems    []models.ChecklistItem      `json:"checklistItems"`
	ChecklistStatuses []models.JobChecklistStatus `json:"checklistStatuses"`
	Vendors           []models.Vendor             `json:"vendors"`
	Parts             []models.Part               `json:"parts"`
	Users             []models.User               `json:"users,omitempty"`
	AuditLogs         []models.AuditLog           `json:"auditLogs"`
}

// Sink stores and retrieves the snapshot document. Save overwrites any prior
// snapshot wholesale; Load returns found=false on first run (no snapshot).
type Sink interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (snap Snapshot, found bool, err error)
}
