package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"solar-portal/internal/audit"
	"solar-portal/internal/auth"
	meteringapp "solar-portal/internal/metering/application"
	metering "solar-portal/internal/metering/domain"
)

// Handler provides the metering application HTTP endpoints.
type Handler struct {
	service     *meteringapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *meteringapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("metering handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/applications and /api/v1/applications/{ref}/...
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/applications")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleSubmit(w, r)
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasSuffix(path, "/transition") && r.Method == http.MethodPost:
		h.handleTransition(w, r, strings.TrimSuffix(path, "/transition"))
	case strings.HasSuffix(path, "/export.pdf") && r.Method == http.MethodGet:
		h.handleExport(w, r, strings.TrimSuffix(path, "/export.pdf"), formatPDF)
	case strings.HasSuffix(path, "/export.xlsx") && r.Method == http.MethodGet:
		h.handleExport(w, r, strings.TrimSuffix(path, "/export.xlsx"), formatXLSX)
	case path != "" && r.Method == http.MethodGet:
		h.handleGet(w, r, path)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req meteringapp.SubmitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if subject := auth.SubjectFromContext(r.Context()); subject != "" {
		req.ApplicantID = subject
	}

	app, err := h.service.Submit(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(applicationView(app))

	h.logAudit(r, "application.submit", app.ReferenceCode)
}

type transitionBody struct {
	Transition string `json:"transition"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, referenceCode string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req transitionBody
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	transition, ok := metering.ParseTransition(req.Transition)
	if !ok {
		http.Error(w, "unknown transition", http.StatusBadRequest)
		return
	}

	app, err := h.service.Transition(r.Context(), meteringapp.TransitionRequest{
		ReferenceCode: referenceCode,
		Transition:    transition,
		Actor:         auth.SubjectFromContext(r.Context()),
		ActorRole:     auth.RoleFromContext(r.Context()),
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(applicationView(app))

	h.logAudit(r, "application."+req.Transition, referenceCode)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, referenceCode string) {
	app, err := h.service.Get(r.Context(), referenceCode)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(applicationView(app))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var status metering.Status
	if value := r.URL.Query().Get("status"); value != "" && value != "all" {
		parsed, ok := metering.ParseStatus(value)
		if !ok {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		status = parsed
	}
	list, err := h.service.List(r.Context(), status)
	if err != nil {
		respondError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(list))
	for _, app := range list {
		views = append(views, applicationView(app))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

func (h *Handler) logAudit(r *http.Request, action, referenceCode string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "metering_application",
		ResourceID:   referenceCode,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

// applicationView is the reviewer-facing projection, including notes and
// history.
func applicationView(app *metering.Application) map[string]any {
	history := make([]map[string]any, 0, len(app.History))
	for _, change := range app.History {
		history = append(history, map[string]any{
			"from":       string(change.From),
			"to":         string(change.To),
			"actor":      change.Actor,
			"actor_role": change.ActorRole,
			"notes":      change.Notes,
			"at":         change.At,
		})
	}
	return map[string]any{
		"reference_code":        app.ReferenceCode,
		"applicant_id":          app.ApplicantID,
		"type":                  string(app.Type),
		"requested_capacity_kw": app.RequestedCapacityKw,
		"consumption_units":     app.ConsumptionUnits,
		"property_type":         app.PropertyType,
		"property_address":      app.PropertyAddress,
		"ownership":             string(app.Ownership),
		"estimated_cost":        app.EstimatedCost,
		"status":                string(app.Status),
		"reviewer_notes":        app.ReviewerNotes,
		"submitted_at":          app.SubmittedAt,
		"last_updated_at":       app.LastUpdatedAt,
		"history":               history,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metering.ErrNotFound):
		http.Error(w, "application not found", http.StatusNotFound)
	case errors.Is(err, metering.ErrInvalidTransition):
		http.Error(w, "invalid transition", http.StatusConflict)
	case errors.Is(err, metering.ErrConflict):
		http.Error(w, "concurrent update, retry", http.StatusConflict)
	case errors.Is(err, metering.ErrForbiddenActor):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, metering.ErrAllocationExhausted):
		http.Error(w, "reference allocation exhausted", http.StatusServiceUnavailable)
	case errors.Is(err, metering.ErrInvalidApplication), errors.Is(err, metering.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
