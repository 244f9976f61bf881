package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

type fakeRequestService struct {
	createReq  *domain.ParticipationRequest
	createErr  error
	cancelReq  *domain.ParticipationRequest
	cancelErr  error
	listOwn    []*domain.ParticipationRequest
	listOwnErr error
	listEvent  []*domain.ParticipationRequest
	updateRes  *domain.RequestStatusResult
	updateErr  error
	gotUpdate  *domain.RequestStatusUpdate
}

func (f *fakeRequestService) CreateRequest(ctx context.Context, requesterID, eventID string) (*domain.ParticipationRequest, error) {
	return f.createReq, f.createErr
}

func (f *fakeRequestService) CancelRequest(ctx context.Context, requesterID, requestID string) (*domain.ParticipationRequest, error) {
	return f.cancelReq, f.cancelErr
}

func (f *fakeRequestService) ListOwnRequests(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	return f.listOwn, f.listOwnErr
}

func (f *fakeRequestService) ListEventRequests(ctx context.Context, initiatorID, eventID string) ([]*domain.ParticipationRequest, error) {
	return f.listEvent, nil
}

func (f *fakeRequestService) UpdateRequestStatus(ctx context.Context, initiatorID, eventID string, upd *domain.RequestStatusUpdate) (*domain.RequestStatusResult, error) {
	f.gotUpdate = upd
	return f.updateRes, f.updateErr
}

func authedRequest(method, target, userID string, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.SetPathValue("userID", userID)
	return r.WithContext(middleware.SetAuth(r.Context(), userID, []string{domain.RoleUser}))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestRequestController_CreateRequest(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		pathUser   string
		authUser   string
		svc        *fakeRequestService
		wantStatus int
		wantCode   string
	}{
		{
			name:     "created",
			target:   "/users/u1/requests?eventId=e1",
			pathUser: "u1", authUser: "u1",
			svc: &fakeRequestService{createReq: &domain.ParticipationRequest{
				ID: "r1", EventID: "e1", RequesterID: "u1", Status: domain.RequestStatusPending,
			}},
			wantStatus: http.StatusCreated,
		},
		{
			name:     "missing eventId",
			target:   "/users/u1/requests",
			pathUser: "u1", authUser: "u1",
			svc:        &fakeRequestService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:     "acting for another user",
			target:   "/users/u2/requests?eventId=e1",
			pathUser: "u2", authUser: "u1",
			svc:        &fakeRequestService{},
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:     "capacity conflict",
			target:   "/users/u1/requests?eventId=e1",
			pathUser: "u1", authUser: "u1",
			svc:        &fakeRequestService{createErr: fmt.Errorf("participant limit reached: %w", domain.ErrConflict)},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:     "event missing",
			target:   "/users/u1/requests?eventId=missing",
			pathUser: "u1", authUser: "u1",
			svc:        &fakeRequestService{createErr: fmt.Errorf("event not found: %w", domain.ErrNotFound)},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewRequestController(slog.Default(), tt.svc)
			r := httptest.NewRequest(http.MethodPost, tt.target, nil)
			r.SetPathValue("userID", tt.pathUser)
			r = r.WithContext(middleware.SetAuth(r.Context(), tt.authUser, []string{domain.RoleUser}))
			w := httptest.NewRecorder()

			c.CreateRequest(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("error = %+v, want code %s", resp.Error, tt.wantCode)
				}
			} else if resp.Error != nil {
				t.Fatalf("unexpected error: %+v", resp.Error)
			}
		})
	}
}

func TestRequestController_CancelRequest(t *testing.T) {
	svc := &fakeRequestService{cancelReq: &domain.ParticipationRequest{
		ID: "r1", Status: domain.RequestStatusCanceled,
	}}
	c := NewRequestController(slog.Default(), svc)

	r := authedRequest(http.MethodPatch, "/users/u1/requests/r1/cancel", "u1", "")
	r.SetPathValue("requestID", "r1")
	w := httptest.NewRecorder()

	c.CancelRequest(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
}

func TestRequestController_UpdateRequestStatus(t *testing.T) {
	t.Run("valid batch", func(t *testing.T) {
		svc := &fakeRequestService{updateRes: &domain.RequestStatusResult{
			ConfirmedRequests: []*domain.ParticipationRequest{{ID: "r1", Status: domain.RequestStatusConfirmed}},
			RejectedRequests:  []*domain.ParticipationRequest{{ID: "r2", Status: domain.RequestStatusRejected}},
		}}
		c := NewRequestController(slog.Default(), svc)

		body := `{"request_ids":["r1","r2"],"status":"CONFIRMED"}`
		r := authedRequest(http.MethodPatch, "/users/u1/events/e1/requests", "u1", body)
		r.SetPathValue("eventID", "e1")
		w := httptest.NewRecorder()

		c.UpdateRequestStatus(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}
		if svc.gotUpdate == nil || len(svc.gotUpdate.RequestIDs) != 2 {
			t.Fatalf("service got %+v", svc.gotUpdate)
		}
		if svc.gotUpdate.Status != domain.RequestStatusConfirmed {
			t.Fatalf("status = %s, want CONFIRMED", svc.gotUpdate.Status)
		}
	})

	t.Run("invalid target status", func(t *testing.T) {
		c := NewRequestController(slog.Default(), &fakeRequestService{})
		body := `{"request_ids":["r1"],"status":"CANCELED"}`
		r := authedRequest(http.MethodPatch, "/users/u1/events/e1/requests", "u1", body)
		r.SetPathValue("eventID", "e1")
		w := httptest.NewRecorder()

		c.UpdateRequestStatus(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("empty ids", func(t *testing.T) {
		c := NewRequestController(slog.Default(), &fakeRequestService{})
		body := `{"request_ids":[],"status":"REJECTED"}`
		r := authedRequest(http.MethodPatch, "/users/u1/events/e1/requests", "u1", body)
		r.SetPathValue("eventID", "e1")
		w := httptest.NewRecorder()

		c.UpdateRequestStatus(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("batch with non-pending request conflicts", func(t *testing.T) {
		svc := &fakeRequestService{updateErr: fmt.Errorf("request must have status PENDING: %w", domain.ErrConflict)}
		c := NewRequestController(slog.Default(), svc)
		body := `{"request_ids":["r1"],"status":"CONFIRMED"}`
		r := authedRequest(http.MethodPatch, "/users/u1/events/e1/requests", "u1", body)
		r.SetPathValue("eventID", "e1")
		w := httptest.NewRecorder()

		c.UpdateRequestStatus(w, r)

		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
	})
}

func TestRequestController_ListOwnRequests_Unauthenticated(t *testing.T) {
	c := NewRequestController(slog.Default(), &fakeRequestService{})
	r := httptest.NewRequest(http.MethodGet, "/users/u1/requests", nil)
	r.SetPathValue("userID", "u1")
	w := httptest.NewRecorder()

	c.ListOwnRequests(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
