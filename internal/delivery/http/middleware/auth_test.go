package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventboard/internal/domain"
)

type stubVerifier struct {
	userID string
	roles  []string
	err    error
}

func (v *stubVerifier) Verify(token string) (string, []string, error) {
	return v.userID, v.roles, v.err
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		verifier   *stubVerifier
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good-token",
			verifier:   &stubVerifier{userID: "u1", roles: []string{domain.RoleUser}},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "missing header",
			authHeader: "",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token",
			authHeader: "Bearer ",
			verifier:   &stubVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad-token",
			verifier:   &stubVerifier{err: errors.New("expired")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nextCalled bool
			var gotUserID string
			handler := RequireAuth(tt.verifier)(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/users/u1/requests", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if nextCalled != tt.wantNext {
				t.Fatalf("next called = %v, want %v", nextCalled, tt.wantNext)
			}
			if tt.wantNext && gotUserID != "u1" {
				t.Fatalf("user id in context = %q, want u1", gotUserID)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin role passes", func(t *testing.T) {
		verifier := &stubVerifier{userID: "a1", roles: []string{domain.RoleAdmin}}
		var nextCalled bool
		handler := RequireAdmin(verifier)(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
		})

		r := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
		r.Header.Set("Authorization", "Bearer token")
		w := httptest.NewRecorder()
		handler(w, r)

		if !nextCalled {
			t.Fatal("next was not called for an admin")
		}
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		verifier := &stubVerifier{userID: "u1", roles: []string{domain.RoleUser}}
		handler := RequireAdmin(verifier)(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next must not be called")
		})

		r := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
		r.Header.Set("Authorization", "Bearer token")
		w := httptest.NewRecorder()
		handler(w, r)

		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})
}
