package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"solar-portal/internal/auth"
	maintenanceapp "solar-portal/internal/maintenance/application"
	maintenance "solar-portal/internal/maintenance/domain"
)

// Handler provides the maintenance request HTTP endpoints.
type Handler struct {
	service *maintenanceapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *maintenanceapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("maintenance handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/maintenance and /api/v1/maintenance/{id}/...
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/maintenance")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleSubmit(w, r)
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasSuffix(path, "/transition") && r.Method == http.MethodPost:
		h.handleTransition(w, r, strings.TrimSuffix(path, "/transition"))
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

	var req maintenanceapp.SubmitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if subject := auth.SubjectFromContext(r.Context()); subject != "" {
		req.RequesterID = subject
	}

	request, err := h.service.Submit(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(requestView(request))
}

type transitionBody struct {
	Transition string `json:"transition"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, id string) {
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
	transition, ok := maintenance.ParseTransition(req.Transition)
	if !ok {
		http.Error(w, "unknown transition", http.StatusBadRequest)
		return
	}

	request, err := h.service.Transition(r.Context(), maintenanceapp.TransitionRequest{
		ID:         id,
		Transition: transition,
		ActorRole:  auth.RoleFromContext(r.Context()),
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(requestView(request))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	request, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(requestView(request))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var status maintenance.Status
	if value := r.URL.Query().Get("status"); value != "" && value != "all" {
		parsed, ok := maintenance.ParseStatus(value)
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
	for _, request := range list {
		views = append(views, requestView(request))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

func requestView(request *maintenance.Request) map[string]any {
	view := map[string]any{
		"id":                 request.ID,
		"requester_id":       request.RequesterID,
		"request_type":       string(request.RequestType),
		"system_capacity_kw": request.SystemCapacityKw,
		"issue_description":  request.IssueDescription,
		"status":             string(request.Status),
		"admin_notes":        request.AdminNotes,
		"created_at":         request.CreatedAt,
		"last_updated_at":    request.LastUpdatedAt,
	}
	if !request.PreferredDate.IsZero() {
		view["preferred_date"] = request.PreferredDate.Format("2006-01-02")
	}
	return view
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, maintenance.ErrNotFound):
		http.Error(w, "maintenance request not found", http.StatusNotFound)
	case errors.Is(err, maintenance.ErrInvalidTransition):
		http.Error(w, "invalid transition", http.StatusConflict)
	case errors.Is(err, maintenance.ErrForbiddenActor):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, maintenance.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
