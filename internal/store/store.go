package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"field-service-compliance/internal/models"
	"field-service-compliance/internal/persist"
)

// Store owns the authoritative in-memory collections for one organization:
// templates, checklist item definitions, jobs, per-job checklist statuses,
// the audit log, the actor directory, and the inventory pass-through.
//
// All identifiers are generated here. Collections keep insertion order.
// Reads take the read lock so a read immediately following a committed write
// observes it; mutating operations either fully apply or reject before any
// mutation.
type Store struct {
	mu    sync.RWMutex
	orgID string

	templates []models.JobTemplate
	items     []models.ChecklistItem
	jobs      []models.Job
	statuses  []models.JobChecklistStatus
	audits    []models.AuditLog
	users     []models.User
	vendors   []models.Vendor
	parts     []models.Part
}

// New builds a store from a snapshot document. Each collection missing from
// the document independently falls back to the matching collection in
// defaults, so a partial document never corrupts the whole load.
func New(orgID string, snap, defaults persist.Snapshot) *Store {
	if snap.Templates == nil {
		snap.Templates = defaults.Templates
	}
	if snap.ChecklistItems == nil {
		snap.ChecklistItems = defaults.ChecklistItems
	}
	if snap.Jobs == nil {
		snap.Jobs = defaults.Jobs
	}
	if snap.ChecklistStatuses == nil {
		snap.ChecklistStatuses = defaults.ChecklistStatuses
	}
	if snap.AuditLogs == nil {
		snap.AuditLogs = defaults.AuditLogs
	}
	if snap.Vendors == nil {
		snap.Vendors = defaults.Vendors
	}
	if snap.Parts == nil {
		snap.Parts = defaults.Parts
	}
	if snap.Users == nil {
		snap.Users = defaults.Users
	}
	return &Store{
		orgID:     orgID,
		templates: append([]models.JobTemplate(nil), snap.Templates...),
		items:     append([]models.ChecklistItem(nil), snap.ChecklistItems...),
		jobs:      append([]models.Job(nil), snap.Jobs...),
		statuses:  append([]models.JobChecklistStatus(nil), snap.ChecklistStatuses...),
		audits:    append([]models.AuditLog(nil), snap.AuditLogs...),
		users:     append([]models.User(nil), snap.Users...),
		vendors:   append([]models.Vendor(nil), snap.Vendors...),
		parts:     append([]models.Part(nil), snap.Parts...),
	}
}

func newID() string { return uuid.New().String() }

// Snapshot copies every persisted collection into a document for the sink.
func (s *Store) Snapshot() persist.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return persist.Snapshot{
		Jobs:              append([]models.Job(nil), s.jobs...),
		Templates:         append([]models.JobTemplate(nil), s.templates...),
		ChecklistItems:    append([]models.ChecklistItem(nil), s.items...),
		ChecklistStatuses: append([]models.JobChecklistStatus(nil), s.statuses...),
		Vendors:           append([]models.Vendor(nil), s.vendors...),
		Parts:             append([]models.Part(nil), s.parts...),
		Users:             append([]models.User(nil), s.users...),
		AuditLogs:         append([]models.AuditLog(nil), s.audits...),
	}
}

// CreateTemplate registers a reusable checklist template.
func (s *Store) CreateTemplate(name string, jobType models.JobType) (models.JobTemplate, error) {
	if name == "" {
		return models.JobTemplate{}, fmt.Errorf("template name is required: %w", models.ErrValidation)
	}
	if !jobType.Valid() {
		return models.JobTemplate{}, fmt.Errorf("unknown job type %q: %w", jobType, models.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.JobTemplate{
		ID:        newID(),
		CompanyID: s.orgID,
		Name:      name,
		Type:      jobType,
	}
	s.templates = append(s.templates, t)
	return t, nil
}

// Templates lists all templates in creation order.
func (s *Store) Templates() []models.JobTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.JobTemplate(nil), s.templates...)
}

// Template fetches a template by id.
func (s *Store) Template(id string) (models.JobTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return models.JobTemplate{}, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
}

// AddChecklistItem appends an item definition to a template. The required
// flag is fixed at creation.
func (s *Store) AddChecklistItem(templateID, description string, required bool) (models.ChecklistItem, error) {
	if description == "" {
		return models.ChecklistItem{}, fmt.Errorf("item description is required: %w", models.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.templateExistsLocked(templateID) {
		return models.ChecklistItem{}, fmt.Errorf("template %s: %w", templateID, models.ErrNotFound)
	}
	item := models.ChecklistItem{
		ID:            newID(),
		JobTemplateID: templateID,
		Description:   description,
		Required:      required,
	}
	s.items = append(s.items, item)
	return item, nil
}

// ChecklistItems lists a template's item definitions in insertion order.
func (s *Store) ChecklistItems(templateID string) []models.ChecklistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChecklistItem
	for _, item := range s.items {
		if item.JobTemplateID == templateID {
			out = append(out, item)
		}
	}
	return out
}

// CreateJob dispatches a job from a template, eagerly snapshotting the
// template's current item set into fresh status rows, all incomplete. Items
// added to the template afterwards never appear on this job.
func (s *Store) CreateJob(templateID, techID, customerName, location string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.templateExistsLocked(templateID) {
		return models.Job{}, fmt.Errorf("template %s: %w", templateID, models.ErrNotFound)
	}
	now := time.Now().UTC()
	job := models.Job{
		ID:             newID(),
		JobTemplateID:  templateID,
		AssignedTechID: techID,
		Status:         models.StatusOpen,
		CreatedAt:      now,
		CustomerName:   customerName,
		Location:       location,
	}
	s.jobs = append(s.jobs, job)
	for _, item := range s.items {
		if item.JobTemplateID != templateID {
			continue
		}
		s.statuses = append(s.statuses, models.JobChecklistStatus{
			ID:              newID(),
			JobID:           job.ID,
			ChecklistItemID: item.ID,
			Completed:       false,
			UpdatedAt:       now,
		})
	}
	return job, nil
}

// Jobs lists all jobs, most recently created first.
func (s *Store) Jobs() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Job(nil), s.jobs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Job fetches a job by id.
func (s *Store) Job(id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobLocked(id)
}

// JobChecklist returns the job's frozen checklist: one entry per status row
// captured at creation, in item definition insertion order.
func (s *Store) JobChecklist(jobID string) ([]models.ChecklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.jobLocked(jobID); err != nil {
		return nil, err
	}
	var out []models.ChecklistEntry
	for _, st := range s.statuses {
		if st.JobID != jobID {
			continue
		}
		item, ok := s.itemLocked(st.ChecklistItemID)
		if !ok {
			continue
		}
		out = append(out, models.ChecklistEntry{ChecklistItem: item, Completed: st.Completed})
	}
	return out, nil
}

// SetChecklistCompletion flips a checklist item's completion on an open job,
// stamps the status row, and appends one audit entry attributed to actorID.
func (s *Store) SetChecklistCompletion(jobID, itemID string, completed bool, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, err := s.jobLocked(jobID)
	if err != nil {
		return err
	}
	if job.Status == models.StatusClosed {
		return fmt.Errorf("job %s is closed: %w", jobID, models.ErrInvalidState)
	}
	for i := range s.statuses {
		st := &s.statuses[i]
		if st.JobID != jobID || st.ChecklistItemID != itemID {
			continue
		}
		now := time.Now().UTC()
		st.Completed = completed
		st.UpdatedAt = now
		verb := "Unchecked"
		if completed {
			verb = "Completed"
		}
		s.appendAuditLocked(jobID, actorID, fmt.Sprintf("%s checklist item %s", verb, itemID), now)
		return nil
	}
	return fmt.Errorf("checklist status for job %s item %s: %w", jobID, itemID, models.ErrNotFound)
}

// RequiredMissing counts the job's required checklist items whose status row
// is not completed. Read-only; the close gate is built on it.
func (s *Store) RequiredMissing(jobID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.jobLocked(jobID); err != nil {
		return 0, err
	}
	missing := 0
	for _, st := range s.statuses {
		if st.JobID != jobID || st.Completed {
			continue
		}
		if item, ok := s.itemLocked(st.ChecklistItemID); ok && item.Required {
			missing++
		}
	}
	return missing, nil
}

// CloseJobRecord flips an open job to closed and appends the terminal audit
// entry in the same critical section. The compliance decision belongs to the
// engine; this is only the commit primitive.
func (s *Store) CloseJobRecord(jobID, actorID string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID != jobID {
			continue
		}
		if s.jobs[i].Status == models.StatusClosed {
			return models.Job{}, fmt.Errorf("job %s already closed: %w", jobID, models.ErrInvalidState)
		}
		s.jobs[i].Status = models.StatusClosed
		s.appendAuditLocked(jobID, actorID, "Closed job successfully", time.Now().UTC())
		return s.jobs[i], nil
	}
	return models.Job{}, fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
}

// AuditLogs returns the whole audit trail, most recent first. Equal
// timestamps keep append order.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.AuditLog(nil), s.audits...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// Users lists the actor directory.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...)
}

// UserByID resolves an actor id against the directory.
func (s *Store) UserByID(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Vendors lists inventory suppliers.
func (s *Store) Vendors() []models.Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Vendor(nil), s.vendors...)
}

// AddVendor registers an inventory supplier.
func (s *Store) AddVendor(name, contact string) (models.Vendor, error) {
	if name == "" {
		return models.Vendor{}, fmt.Errorf("vendor name is required: %w", models.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := models.Vendor{ID: newID(), Name: name, Contact: contact}
	s.vendors = append(s.vendors, v)
	return v, nil
}

// Parts lists stocked inventory items.
func (s *Store) Parts() []models.Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Part(nil), s.parts...)
}

// AddPart registers a stocked part against an existing vendor.
func (s *Store) AddPart(name string, quantity int, vendorID string) (models.Part, error) {
	if name == "" {
		return models.Part{}, fmt.Errorf("part name is required: %w", models.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, v := range s.vendors {
		if v.ID == vendorID {
			found = true
			break
		}
	}
	if !found {
		return models.Part{}, fmt.Errorf("vendor %s: %w", vendorID, models.ErrNotFound)
	}
	p := models.Part{ID: newID(), Name: name, Quantity: quantity, VendorID: vendorID}
	s.parts = append(s.parts, p)
	return p, nil
}

// UpdatePartQuantity sets the stocked quantity for a part.
func (s *Store) UpdatePartQuantity(partID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.parts {
		if s.parts[i].ID == partID {
			s.parts[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("part %s: %w", partID, models.ErrNotFound)
}

func (s *Store) templateExistsLocked(id string) bool {
	for _, t := range s.templates {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) jobLocked(id string) (models.Job, error) {
	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return models.Job{}, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
}

func (s *Store) itemLocked(id string) (models.ChecklistItem, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.ChecklistItem{}, false
}

func (s *Store) appendAuditLocked(jobID, actorID, action string, ts time.Time) {
	s.audits = append(s.audits, models.AuditLog{
		ID:        newID(),
		JobID:     jobID,
		UserID:    actorID,
		Action:    action,
		Timestamp: ts,
	})
}
