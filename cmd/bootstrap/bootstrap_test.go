package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"serenecare/config"
	"serenecare/internal/domain/entity"
	"serenecare/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func (s *memoryTokenStore) Save(_ context.Context, userID uuid.UUID, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID.String()+":"+tokenID] = struct{}{}
	return nil
}

func (s *memoryTokenStore) Exists(_ context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[userID.String()+":"+tokenID]
	return ok, nil
}

func (s *memoryTokenStore) Delete(_ context.Context, userID uuid.UUID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID.String()+":"+tokenID)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	handler http.Handler
	repos   Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigin: "https://app.serenecare.test"},
		JWT: config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour},
		Directory: config.DirectoryConfig{
			CacheSize: 16,
			CacheTTL:  time.Minute,
		},
	}

	store := memory.NewStore()
	repos := Repositories{
		Users:        memory.NewUserRepository(store),
		Availability: memory.NewAvailabilityRepository(store),
		Appointments: memory.NewAppointmentRepository(store),
		AuditLogs:    memory.NewAuditLogRepository(store),
	}
	tokens := &memoryTokenStore{tokens: make(map[string]struct{})}

	return &testServer{
		handler: NewHandler(cfg, log, repos, tokens, nil),
		repos:   repos,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

// register creates an account and returns its id and a fresh access token.
func (s *testServer) register(t *testing.T, role, email string) (uuid.UUID, string) {
	t.Helper()

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "secret123",
		"full_name": "Test " + role,
		"role":      role,
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: status %d, message %q", email, code, env.Message)
	}
	var user struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}

	return user.ID, s.login(t, email, "secret123")
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d, message %q", email, code, env.Message)
	}
	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return token.AccessToken
}

func nextWeek() string {
	return time.Now().AddDate(0, 0, 7).Format(entity.DateLayout)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "patient", "pat@example.com")

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{
			name: "admin self-registration is forbidden",
			body: map[string]string{"email": "root@example.com", "password": "secret123", "full_name": "Root", "role": "admin"},
			want: http.StatusForbidden,
		},
		{
			name: "duplicate email",
			body: map[string]string{"email": "PAT@example.com", "password": "secret123", "full_name": "Again", "role": "patient"},
			want: http.StatusConflict,
		},
		{
			name: "unknown role",
			body: map[string]string{"email": "nurse@example.com", "password": "secret123", "full_name": "Nurse", "role": "nurse"},
			want: http.StatusBadRequest,
		},
		{
			name: "short password",
			body: map[string]string{"email": "short@example.com", "password": "123", "full_name": "Short", "role": "patient"},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if code != tt.want {
				t.Errorf("expected %d, got %d (%q)", tt.want, code, env.Message)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "patient", "pat@example.com")

	code, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "pat@example.com",
		"password": "wrong-password",
	})
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "patient", "pat@example.com")

	if code, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil); code != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", code)
	}
	if code, _ := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil); code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", code)
	}
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	doctorID, doctorToken := s.register(t, "doctor", "doc@example.com")
	_, patientToken := s.register(t, "patient", "pat@example.com")
	_, otherToken := s.register(t, "patient", "other@example.com")
	date := nextWeek()

	code, env := s.do(t, http.MethodPost, "/api/v1/availability", doctorToken, map[string]interface{}{
		"date":       date,
		"time_slots": []string{"09:00", "10:00"},
	})
	if code != http.StatusCreated {
		t.Fatalf("create availability: status %d (%q)", code, env.Message)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/availability", doctorToken, map[string]interface{}{
		"date":       date,
		"time_slots": []string{"11:00"},
	})
	if code != http.StatusConflict {
		t.Errorf("second availability for the same date: expected 409, got %d", code)
	}

	code, env = s.do(t, http.MethodGet, "/api/v1/availability?doctor_id="+doctorID.String(), patientToken, nil)
	if code != http.StatusOK {
		t.Fatalf("list availability: status %d", code)
	}
	var list struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("expected 1 availability, got %d", list.Total)
	}

	booking := map[string]string{
		"doctor_id": doctorID.String(),
		"date":      date,
		"time":      "09:00",
		"reason":    "Checkup",
	}
	code, env = s.do(t, http.MethodPost, "/api/v1/appointments", patientToken, booking)
	if code != http.StatusCreated {
		t.Fatalf("request appointment: status %d (%q)", code, env.Message)
	}
	var appointment struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &appointment); err != nil {
		t.Fatalf("decode appointment: %v", err)
	}
	if appointment.Status != "pending" {
		t.Errorf("expected pending, got %q", appointment.Status)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/appointments", otherToken, booking)
	if code != http.StatusConflict {
		t.Errorf("double booking: expected 409, got %d", code)
	}

	path := "/api/v1/appointments/" + appointment.ID.String()
	code, env = s.do(t, http.MethodPut, path, doctorToken, map[string]string{"status": "approved", "notes": "See you"})
	if code != http.StatusOK {
		t.Fatalf("approve: status %d (%q)", code, env.Message)
	}

	code, _ = s.do(t, http.MethodPut, path, doctorToken, map[string]string{"status": "rejected"})
	if code != http.StatusConflict {
		t.Errorf("second decision: expected 409, got %d", code)
	}

	code, env = s.do(t, http.MethodGet, "/api/v1/appointments", patientToken, nil)
	if code != http.StatusOK {
		t.Fatalf("list appointments: status %d", code)
	}
	var mine struct {
		Appointments []struct {
			Status string `json:"status"`
		} `json:"appointments"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &mine); err != nil {
		t.Fatalf("decode appointments: %v", err)
	}
	if mine.Total != 1 || mine.Appointments[0].Status != "approved" {
		t.Errorf("expected one approved appointment, got %+v", mine)
	}
}

func TestSchedulingErrorsMapToStatus(t *testing.T) {
	s := newTestServer(t)
	doctorID, doctorToken := s.register(t, "doctor", "doc@example.com")
	_, patientToken := s.register(t, "patient", "pat@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{
			name:   "past date booking",
			method: http.MethodPost,
			path:   "/api/v1/appointments",
			token:  patientToken,
			body:   map[string]string{"doctor_id": doctorID.String(), "date": "2001-01-01", "time": "09:00", "reason": "Old"},
			want:   http.StatusBadRequest,
		},
		{
			name:   "malformed date",
			method: http.MethodPost,
			path:   "/api/v1/availability",
			token:  doctorToken,
			body:   map[string]interface{}{"date": "next tuesday", "time_slots": []string{"09:00"}},
			want:   http.StatusBadRequest,
		},
		{
			name:   "slot without availability",
			method: http.MethodPost,
			path:   "/api/v1/appointments",
			token:  patientToken,
			body:   map[string]string{"doctor_id": doctorID.String(), "date": nextWeek(), "time": "09:00", "reason": "Checkup"},
			want:   http.StatusConflict,
		},
		{
			name:   "unknown appointment",
			method: http.MethodPut,
			path:   "/api/v1/appointments/" + uuid.NewString(),
			token:  doctorToken,
			body:   map[string]string{"status": "approved"},
			want:   http.StatusNotFound,
		},
		{
			name:   "status outside approved and rejected",
			method: http.MethodPut,
			path:   "/api/v1/appointments/" + uuid.NewString(),
			token:  doctorToken,
			body:   map[string]string{"status": "pending"},
			want:   http.StatusBadRequest,
		},
		{
			name:   "invalid availability id",
			method: http.MethodDelete,
			path:   "/api/v1/availability/not-a-uuid",
			token:  doctorToken,
			want:   http.StatusBadRequest,
		},
		{
			name:   "missing availability is a no-op",
			method: http.MethodDelete,
			path:   "/api/v1/availability/" + uuid.NewString(),
			token:  doctorToken,
			want:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, tt.method, tt.path, tt.token, tt.body)
			if code != tt.want {
				t.Errorf("expected %d, got %d (%q)", tt.want, code, env.Message)
			}
		})
	}
}

func TestRoleGating(t *testing.T) {
	s := newTestServer(t)
	_, doctorToken := s.register(t, "doctor", "doc@example.com")
	_, patientToken := s.register(t, "patient", "pat@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/availability", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/availability", "not-a-jwt", http.StatusUnauthorized},
		{"patient cannot publish availability", http.MethodPost, "/api/v1/availability", patientToken, http.StatusForbidden},
		{"doctor cannot request appointments", http.MethodPost, "/api/v1/appointments", doctorToken, http.StatusForbidden},
		{"patient cannot decide appointments", http.MethodPut, "/api/v1/appointments/" + uuid.NewString(), patientToken, http.StatusForbidden},
		{"patient cannot read audit logs", http.MethodGet, "/api/v1/admin/audit-logs", patientToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := s.do(t, tt.method, tt.path, tt.token, map[string]string{})
			if code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestAdminAuditLogs(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "patient", "pat@example.com")

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := &entity.User{
		Role:     entity.RoleAdmin,
		Email:    "admin@example.com",
		Password: string(hash),
		FullName: "Admin",
		IsActive: true,
	}
	if err := s.repos.Users.Create(context.Background(), admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	token := s.login(t, "admin@example.com", "admin-secret")

	code, env := s.do(t, http.MethodGet, "/api/v1/admin/audit-logs", token, nil)
	if code != http.StatusOK {
		t.Fatalf("list audit logs: status %d", code)
	}
	var logs struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &logs); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if logs.Total == 0 {
		t.Error("expected registration and login to be audited")
	}

	if code, _ := s.do(t, http.MethodGet, "/api/v1/admin/audit-logs/1", token, nil); code != http.StatusOK {
		t.Errorf("get audit log: expected 200, got %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/v1/admin/audit-logs/99999", token, nil); code != http.StatusNotFound {
		t.Errorf("missing audit log: expected 404, got %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, "/api/v1/admin/audit-logs/abc", token, nil); code != http.StatusBadRequest {
		t.Errorf("invalid id: expected 400, got %d", code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/appointments", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.serenecare.test" {
		t.Errorf("unexpected allow-origin %q", got)
	}
}
