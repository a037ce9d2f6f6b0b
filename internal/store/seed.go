package store

import (
	"time"

	"field-service-compliance/internal/models"
	"field-service-compliance/internal/persist"
)

// Seed returns the baseline bootstrap document used on first run, before any
// snapshot exists. Purely a convenience fixture set, not a correctness
// requirement.
func Seed(orgID string) persist.Snapshot {
	now := time.Now().UTC()
	return persist.Snapshot{
		Users: []models.User{
			{ID: "u1", Name: "Alex Foreman", Email: "alex@example.com", CompanyID: orgID, Role: models.RoleAdmin},
			{ID: "u2", Name: "John Tech", Email: "tech@example.com", CompanyID: orgID, Role: models.RoleTech},
		},
		Templates: []models.JobTemplate{
			{ID: "t1", CompanyID: orgID, Name: "Standard AC Repair", Type: models.JobTypeRepair},
			{ID: "t2", CompanyID: orgID, Name: "New Furnace Installation", Type: models.JobTypeInstall},
		},
		ChecklistItems: []models.ChecklistItem{
			{ID: "ci1", JobTemplateID: "t1", Description: "Visual inspection of condenser", Required: true},
			{ID: "ci2", JobTemplateID: "t1", Description: "Check refrigerant levels", Required: true},
			{ID: "ci3", JobTemplateID: "t1", Description: "Clean debris from unit", Required: false},
			{ID: "ci4", JobTemplateID: "t2", Description: "Level concrete pad", Required: true},
			{ID: "ci5", JobTemplateID: "t2", Description: "Connect gas lines", Required: true},
			{ID: "ci6", JobTemplateID: "t2", Description: "Test safety valves", Required: true},
			{ID: "ci7", JobTemplateID: "t2", Description: "Customer walkthrough", Required: true},
		},
		Jobs: []models.Job{
			{
				ID: "j1", JobTemplateID: "t1", AssignedTechID: "u2", Status: models.StatusOpen,
				CreatedAt: now.Add(-24 * time.Hour), CustomerName: "John Smith", Location: "123 Maple St, Springfield",
			},
			{
				ID: "j2", JobTemplateID: "t2", AssignedTechID: "u1", Status: models.StatusClosed,
				CreatedAt: now.Add(-48 * time.Hour), CustomerName: "Sarah Connor", Location: "742 Terrace Dr, Oak Ridge",
			},
		},
		ChecklistStatuses: []models.JobChecklistStatus{
			{ID: "s1", JobID: "j1", ChecklistItemID: "ci1", Completed: true, UpdatedAt: now},
			{ID: "s2", JobID: "j1", ChecklistItemID: "ci2", Completed: false, UpdatedAt: now},
			{ID: "s3", JobID: "j1", ChecklistItemID: "ci3", Completed: false, UpdatedAt: now},
			{ID: "s4", JobID: "j2", ChecklistItemID: "ci4", Completed: true, UpdatedAt: now},
			{ID: "s5", JobID: "j2", ChecklistItemID: "ci5", Completed: true, UpdatedAt: now},
			{ID: "s6", JobID: "j2", ChecklistItemID: "ci6", Completed: true, UpdatedAt: now},
			{ID: "s7", JobID: "j2", ChecklistItemID: "ci7", Completed: true, UpdatedAt: now},
		},
		Vendors: []models.Vendor{
			{ID: "v1", Name: "Carrier Global", Contact: "support@carrier.example | 1-800-555-0150"},
			{ID: "v2", Name: "Honeywell Home", Contact: "sales@honeywell.example | 1-800-555-0175"},
		},
		Parts: []models.Part{
			{ID: "p1", Name: "Capacitor 45/5 MFD 370V", Quantity: 24, VendorID: "v1"},
			{ID: "p2", Name: "Smart Thermostat T6 Pro", Quantity: 12, VendorID: "v2"},
			{ID: "p3", Name: "Draft Inducer Motor", Quantity: 5, VendorID: "v1"},
		},
		AuditLogs: []models.AuditLog{},
	}
}
