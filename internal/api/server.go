// Package api exposes the compliance core to the external collaborator
// layer over HTTP. All user-facing messaging and role restriction happens
// here; the core below only attributes and classifies failures.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"field-service-compliance/internal/config"
	"field-service-compliance/internal/engine"
	"field-service-compliance/internal/identity"
	"field-service-compliance/internal/models"
	"field-service-compliance/internal/ratelimit"
	"field-service-compliance/internal/report"
	"field-service-compliance/internal/store"
	"field-service-compliance/internal/telemetry"
)

// actorHeader carries the caller identity resolved by the external identity
// provider. The core attributes mutations to it; it is not authentication.
const actorHeader = "X-Actor-ID"

// Server wires HTTP handlers over the engine, store reads, and reporting.
type Server struct {
	cfg     config.Config
	engine  *engine.Engine
	store   *store.Store
	reports *report.Aggregator
	ids     identity.Provider
	limiter *ratelimit.WriteLimiter
}

// New constructs the API server. limiter may be nil to disable write
// rate limiting.
func New(cfg config.Config, eng *engine.Engine, st *store.Store, reports *report.Aggregator, ids identity.Provider, limiter *ratelimit.WriteLimiter) *Server {
	return &Server{
		cfg:     cfg,
		engine:  eng,
		store:   st,
		reports: reports,
		ids:     ids,
		limiter: limiter,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/metrics", telemetry.Handler())

	r.Get("/dashboard/stats", s.handleDashboardStats)
	r.Get("/audit", s.handleAuditLogs)
	r.Get("/users", s.handleListUsers)

	r.Get("/templates", s.handleListTemplates)
	r.Post("/templates", s.handleCreateTemplate)
	r.Get("/templates/{id}/items", s.handleListChecklistItems)
	r.Post("/templates/{id}/items", s.handleAddChecklistItem)

	r.Get("/jobs", s.handleListJobs)
	r.Post("/jobs", s.handleCreateJob)
	r.Get("/jobs/{id}", s.handleGetJob)
	r.Get("/jobs/{id}/checklist", s.handleGetChecklist)
	r.Get("/jobs/{id}/gate", s.handleEvaluateGate)
	r.Post("/jobs/{id}/checklist/{itemID}", s.handleToggleItem)
	r.Post("/jobs/{id}/close", s.handleCloseJob)

	r.Get("/vendors", s.handleListVendors)
	r.Post("/vendors", s.handleAddVendor)
	r.Get("/parts", s.handleListParts)
	r.Post("/parts", s.handleAddPart)
	r.Put("/parts/{id}/quantity", s.handleUpdatePartQuantity)

	return r
}

// actor resolves the caller and applies the write limiter for mutating
// routes. adminOnly additionally requires the admin role; the engine itself
// stays trusted-caller.
func (s *Server) actor(w http.ResponseWriter, r *http.Request, mutating, adminOnly bool) (models.User, bool) {
	id := r.Header.Get(actorHeader)
	if id == "" {
		http.Error(w, "missing "+actorHeader+" header", http.StatusUnauthorized)
		return models.User{}, false
	}
	user, ok := s.ids.Resolve(id)
	if !ok {
		http.Error(w, "unknown actor", http.StatusUnauthorized)
		return models.User{}, false
	}
	if adminOnly && user.Role != models.RoleAdmin {
		http.Error(w, "admin role required", http.StatusForbidden)
		return models.User{}, false
	}
	if mutating && s.limiter != nil {
		allowed, _, err := s.limiter.Allow(r.Context(), user.ID)
		if err != nil {
			http.Error(w, "rate limit error", http.StatusInternalServerError)
			return models.User{}, false
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return models.User{}, false
		}
	}
	return user, true
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.DashboardStats())
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.AuditTrail())
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Users())
}

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Templates())
}

type createTemplateRequest struct {
	Name string         `json:"name"`
	Type models.JobType `json:"type"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r, true, true); !ok {
		return
	}
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	t, err := s.engine.CreateTemplate(r.Context(), req.Name, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListChecklistItems(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.store.Template(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	items := s.store.ChecklistItems(tpl.ID)
	if items == nil {
		items = []models.ChecklistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

type addChecklistItemRequest struct {
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

func (s *Server) handleAddChecklistItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r, true, true); !ok {
		return
	}
	var req addChecklistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	item, err := s.engine.AddChecklistItem(r.Context(), chi.URLParam(r, "id"), req.Description, req.Required)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Jobs())
}

type createJobRequest struct {
	TemplateID   string `json:"template_id"`
	TechID       string `json:"tech_id"`
	CustomerName string `json:"customer_name"`
	Location     string `json:"location"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r, true, true); !ok {
		return
	}
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	job, err := s.engine.CreateJob(r.Context(), req.TemplateID, req.TechID, req.CustomerName, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Job(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.JobChecklist(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ChecklistEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleEvaluateGate(w http.ResponseWriter, r *http.Request) {
	gate, err := s.engine.EvaluateGate(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gate)
}

type toggleItemRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	user, ok := s.actor(w, r, true, false)
	if !ok {
		return
	}
	var req toggleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	err := s.engine.ToggleChecklistItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), req.Completed, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type closeJobResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleCloseJob(w http.ResponseWriter, r *http.Request) {
	user, ok := s.actor(w, r, true, false)
	if !ok {
		return
	}
	err := s.engine.CloseJob(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err == nil {
		writeJSON(w, http.StatusOK, closeJobResponse{Success: true})
		return
	}
	var locked *models.ComplianceLockedError
	if errors.As(err, &locked) {
		// Expected user-facing outcome, not a fault: report the missing
		// count so the caller can render a precise message.
		writeJSON(w, http.StatusConflict, closeJobResponse{Success: false, Message: locked.Error()})
		return
	}
	writeError(w, err)
}

func (s *Server) handleListVendors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Vendors())
}

type addVendorRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

func (s *Server) handleAddVendor(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r, true, true); !ok {
		return
	}
	var req addVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	v, err := s.engine.AddVendor(r.Context(), req.Name, req.Contact)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListParts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Parts())
}

type addPartRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	VendorID string `json:"vendor_id"`
}

func (s *Server) handleAddPart(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r, true, true); !ok {
		return
	}
	var req addPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	p, err := s.engine.AddPart(r.Context(), req.Name, req.Quantity, req.VendorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleUpdatePartQuantity(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.actor(w, r, true, true); !ok {
		return
	}
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := s.engine.UpdatePartQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps the core's failure classes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var pe *models.PersistenceError
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &pe):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
