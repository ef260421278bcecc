package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solar-portal/internal/auth"
	meteringapp "solar-portal/internal/metering/application"
	metering "solar-portal/internal/metering/domain"
	"solar-portal/internal/metering/infrastructure/memory"
	sizing "solar-portal/internal/sizing/domain"
)

func newTestHandler(t *testing.T) (*Handler, *meteringapp.Service, *memory.ApplicationRepository) {
	t.Helper()
	repo := memory.NewApplicationRepository()
	allocator := metering.NewReferenceAllocator(repo.Exists)
	calculator, err := sizing.NewCalculator(sizing.DefaultParameters())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	service, err := meteringapp.NewService(repo, allocator, calculator, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, service, repo
}

func submitTestApplication(t *testing.T, service *meteringapp.Service) *metering.Application {
	t.Helper()
	app, err := service.Submit(context.Background(), meteringapp.SubmitRequest{
		ApplicantID:         "customer-1",
		ApplicationType:     "net",
		RequestedCapacityKw: 10,
		PropertyAddress:     "12 Sunrise Lane",
		Ownership:           "owner",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return app
}

func asRole(r *http.Request, role auth.Role, subject string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), role, subject))
}

func TestHandleSubmit(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := `{"application_type":"net","requested_capacity_kw":10,"property_address":"12 Sunrise Lane","ownership":"owner"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", strings.NewReader(body))
	req = asRole(req, auth.RoleCustomer, "customer-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var view map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view["status"] != "submitted" {
		t.Fatalf("expected submitted, got %v", view["status"])
	}
	if view["applicant_id"] != "customer-1" {
		t.Fatalf("applicant should come from the token subject, got %v", view["applicant_id"])
	}
	code, _ := view["reference_code"].(string)
	if !strings.HasPrefix(code, "NET-") {
		t.Fatalf("unexpected reference code %q", code)
	}
}

func TestHandleSubmit_InvalidPayload(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", strings.NewReader("{not json"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandleTransition(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	app := submitTestApplication(t, service)

	body := `{"transition":"begin_review","notes":"looks complete"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+app.ReferenceCode+"/transition", strings.NewReader(body))
	req = asRole(req, auth.RoleReviewer, "reviewer-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var view map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view["status"] != "under_review" {
		t.Fatalf("expected under_review, got %v", view["status"])
	}
}

func TestHandleTransition_IllegalEdge(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	app := submitTestApplication(t, service)

	body := `{"transition":"complete"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+app.ReferenceCode+"/transition", strings.NewReader(body))
	req = asRole(req, auth.RoleReviewer, "reviewer-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestHandleTransition_UnknownTransition(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	app := submitTestApplication(t, service)

	body := `{"transition":"escalate"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+app.ReferenceCode+"/transition", strings.NewReader(body))
	req = asRole(req, auth.RoleReviewer, "reviewer-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandleTransition_CustomerRole(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	app := submitTestApplication(t, service)

	body := `{"transition":"begin_review"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/"+app.ReferenceCode+"/transition", strings.NewReader(body))
	req = asRole(req, auth.RoleCustomer, "customer-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/NET-20260830-ZZZZZ", nil)
	req = asRole(req, auth.RoleReviewer, "reviewer-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandleList_StatusFilter(t *testing.T) {
	handler, service, _ := newTestHandler(t)
	submitTestApplication(t, service)
	submitTestApplication(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications?status=submitted", nil)
	req = asRole(req, auth.RoleReviewer, "reviewer-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var views []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(views))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/applications?status=bogus", nil)
	req = asRole(req, auth.RoleReviewer, "reviewer-1")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.Code)
	}
}

func TestStatusHandler_PublicLookup(t *testing.T) {
	_, service, repo := newTestHandler(t)
	app := submitTestApplication(t, service)

	tracker, err := meteringapp.NewStatusTracker(repo)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	statusHandler, err := NewStatusHandler(tracker)
	if err != nil {
		t.Fatalf("new status handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/application-status/"+app.ReferenceCode, nil)
	resp := httptest.NewRecorder()
	statusHandler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, leaked := snapshot["reviewer_notes"]; leaked {
		t.Fatal("public snapshot must not expose reviewer notes")
	}
	if snapshot["status"] != "submitted" {
		t.Fatalf("expected submitted, got %v", snapshot["status"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/application-status/NET-20260830-ZZZZZ", nil)
	resp = httptest.NewRecorder()
	statusHandler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "application not found") {
		t.Fatalf("expected json error body, got %q", resp.Body.String())
	}
}
