package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/botworkspace/googlelink/internal/auth"
	"github.com/botworkspace/googlelink/internal/identity"
	"github.com/botworkspace/googlelink/internal/store"
)

var testSecret = []byte("test-signing-secret")

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := auth.NewService(auth.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://bot.example.com/oauth/callback",
	}, mem, identity.NewHMACValidator(testSecret))
	return New(":0", svc), mem
}

func get(t *testing.T, mux http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func TestHandleAuthURL(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Handler()

	token, err := identity.GenerateToken("+5551234", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generating identity token: %v", err)
	}

	rec := get(t, mux, "/auth/url?token="+url.QueryEscape(token)+"&session_id=sid-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}

	var body struct {
		URL       string `json:"url"`
		SessionID string `json:"session_id"`
	}
	decodeBody(t, rec, &body)

	if body.SessionID != "sid-1" {
		t.Errorf("session_id = %q, want sid-1", body.SessionID)
	}
	u, err := url.Parse(body.URL)
	if err != nil {
		t.Fatalf("parsing consent URL: %v", err)
	}
	if u.Query().Get("prompt") != "consent" {
		t.Errorf("consent URL missing prompt=consent: %s", body.URL)
	}
}

func TestHandleAuthURLGeneratesSessionID(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Handler()

	token, err := identity.GenerateToken("+5551234", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generating identity token: %v", err)
	}

	rec := get(t, mux, "/auth/url?token="+url.QueryEscape(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, rec, &body)
	if body.SessionID == "" {
		t.Error("expected a generated session_id")
	}
}

func TestHandleAuthURLBearerHeader(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Handler()

	token, err := identity.GenerateToken("+5551234", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generating identity token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/url", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
}

func TestHandleAuthURLRejections(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Handler()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing token", "/auth/url", http.StatusBadRequest},
		{"invalid token", "/auth/url?token=not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, mux, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleCallbackRejections(t *testing.T) {
	srv, mem := newTestServer(t)
	mux := srv.Handler()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"user denied consent", "/oauth/callback?error=access_denied", http.StatusBadRequest},
		{"missing code", "/oauth/callback?state=abc", http.StatusBadRequest},
		{"missing state", "/oauth/callback?code=abc", http.StatusBadRequest},
		{"malformed state", "/oauth/callback?code=abc&state=!!!bad!!!", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, mux, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if mem.Len() != 0 {
		t.Errorf("store has %d records after rejected callbacks, want 0", mem.Len())
	}
}

func TestHandleFirstInteraction(t *testing.T) {
	srv, mem := newTestServer(t)
	mux := srv.Handler()

	rec := get(t, mux, "/users/first-interaction?phone=%2B5551234")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		First bool `json:"first_interaction"`
	}
	decodeBody(t, rec, &body)
	if !body.First {
		t.Error("first_interaction = false for unknown phone, want true")
	}

	if err := mem.UpsertRefreshToken(t.Context(), "+5551234", "refresh-1"); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	rec = get(t, mux, "/users/first-interaction?phone=%2B5551234")
	decodeBody(t, rec, &body)
	if body.First {
		t.Error("first_interaction = true for known phone, want false")
	}
}

func TestHandleFirstInteractionMissingPhone(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Handler()

	rec := get(t, mux, "/users/first-interaction")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Handler()

	if rec := get(t, mux, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", rec.Code)
	}
	if rec := get(t, mux, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("/readyz status = %d, want 200", rec.Code)
	}

	srv.health.SetShuttingDown()

	if rec := get(t, mux, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/readyz status during shutdown = %d, want 503", rec.Code)
	}
	// Liveness stays green while draining; only readiness flips.
	if rec := get(t, mux, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("/healthz status during shutdown = %d, want 200", rec.Code)
	}
}
