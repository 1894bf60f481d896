package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"serenecare/internal/domain/entity"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role *entity.Role
		want int
	}{
		{"no role in context", nil, http.StatusUnauthorized},
		{"patient allowed", rolePtr(entity.RolePatient), http.StatusOK},
		{"doctor allowed", rolePtr(entity.RoleDoctor), http.StatusOK},
		{"admin forbidden", rolePtr(entity.RoleAdmin), http.StatusForbidden},
	}

	h := RequirePatientOrDoctor(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), RoleKey, *tt.role))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func rolePtr(r entity.Role) *entity.Role {
	return &r
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	h := NewCORSMiddleware("").Handle(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected *, got %q", got)
	}
	if rec.Header().Get("Vary") != "" {
		t.Error("wildcard origin should not vary")
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	h := NewCORSMiddleware("https://app.serenecare.test").Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if called {
		t.Error("preflight should not reach the handler")
	}
	if rec.Header().Get("Vary") != "Origin" {
		t.Errorf("expected Vary: Origin, got %q", rec.Header().Get("Vary"))
	}
}
