package models

import (
	"time"
)

// Role distinguishes administrative users from field technicians.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTech  Role = "tech"
)

// JobType classifies the kind of work a template describes.
type JobType string

const (
	JobTypeInstall     JobType = "install"
	JobTypeRepair      JobType = "repair"
	JobTypeMaintenance JobType = "maintenance"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeInstall, JobTypeRepair, JobTypeMaintenance:
		return true
	}
	return false
}

// JobStatus enumerates the job lifecycle. The only transition is
// open -> closed, and closed is terminal.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// User is a member of the organization's actor directory.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
	Role      Role   `json:"role"`
}

// JobTemplate is a reusable named checklist definition for a class of job.
// Templates are never updated or deleted once created.
type JobTemplate struct {
	ID        string  `json:"id"`
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Type      JobType `json:"type"`
}

// ChecklistItem is a single pass/fail step belonging to a template.
// The required flag is fixed at creation.
type ChecklistItem struct {
	ID            string `json:"id"`
	JobTemplateID string `json:"job_template_id"`
	Description   string `json:"description"`
	Required      bool   `json:"required"`
}

// Job is one dispatched unit of work instantiated from a template. It
// carries a frozen checklist snapshot taken at creation time.
type Job struct {
	ID             string    `json:"id"`
	JobTemplateID  string    `json:"job_template_id"`
	AssignedTechID string    `json:"assigned_tech_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	CustomerName   string    `json:"customer_name"`
	Location       string    `json:"location"`
}

// JobChecklistStatus tracks completion of one checklist item for one job.
// Exactly one row exists per (job, item) pair, created when the job is.
type JobChecklistStatus struct {
	ID              string    `json:"id"`
	JobID           string    `json:"job_id"`
	ChecklistItemID string    `json:"checklist_item_id"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AuditLog is an immutable record of a checklist toggle or job closure.
// Rows are append-only and never mutated after creation.
type AuditLog struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// ChecklistEntry is an item definition joined with its completion state for
// a particular job.
type ChecklistEntry struct {
	ChecklistItem
	Completed bool `json:"completed"`
}

// Vendor is an inventory supplier. Outside the compliance core; carried so
// the snapshot document round-trips whole.
type Vendor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Part is a stocked inventory item supplied by a vendor.
type Part struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	VendorID string `json:"vendor_id"`
}
