package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openagora/agora/pkg/auth"
	"github.com/openagora/agora/pkg/ibis"
	"github.com/openagora/agora/pkg/store"
)

const testJWTSecret = "deliberation-test-secret-with-length"

// newAuthServer builds a server with JWT auth enabled and two seeded
// users, one facilitator and one participant.
func newAuthServer(t *testing.T) *Server {
	t.Helper()
	jwtManager, err := auth.NewJWTManager(testJWTSecret, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	users := auth.NewUserStore()
	if _, err := users.CreateUser("frida", "facilitate-well", auth.RoleFacilitator); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := users.CreateUser("pat", "participate1", auth.RoleParticipant); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	srv, err := NewServer(Options{
		Store:      store.NewMemoryStore(),
		JWTManager: jwtManager,
		UserStore:  users,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

func login(t *testing.T, h http.Handler, username, password string) TokenResponse {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/auth/login", LoginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("Login status = %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[TokenResponse](t, rec)
}

func doAuthed(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginAndRefresh(t *testing.T) {
	srv := newAuthServer(t)
	h := srv.Handler()

	tokens := login(t, h, "frida", "facilitate-well")
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("Login returned empty tokens")
	}
	if tokens.Role != auth.RoleFacilitator {
		t.Errorf("Role = %q, want facilitator", tokens.Role)
	}

	rec := doJSON(t, h, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: tokens.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("Refresh status = %d: %s", rec.Code, rec.Body.String())
	}
	refreshed := decodeBody[TokenResponse](t, rec)
	if refreshed.AccessToken == "" {
		t.Error("Refresh returned empty access token")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newAuthServer(t)
	h := srv.Handler()

	// Unknown user and wrong password produce the same response.
	for _, tc := range []struct{ user, pass string }{
		{"nobody", "whatever-pass"},
		{"frida", "wrong-password"},
	} {
		rec := doJSON(t, h, http.MethodPost, "/auth/login", LoginRequest{Username: tc.user, Password: tc.pass})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Login(%s) status = %d, want 401", tc.user, rec.Code)
		}
	}
}

func TestLoginUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/auth/login", LoginRequest{Username: "a", Password: "b"})
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Status = %d, want 501", rec.Code)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	srv := newAuthServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/deliberations", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	srv := newAuthServer(t)
	rec := doAuthed(t, srv.Handler(), http.MethodGet, "/deliberations", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}
}

func TestFacilitatorGating(t *testing.T) {
	srv := newAuthServer(t)
	h := srv.Handler()

	facilitator := login(t, h, "frida", "facilitate-well")
	participant := login(t, h, "pat", "participate1")

	// Facilitators can create deliberations.
	rec := doAuthed(t, h, http.MethodPost, "/deliberations", facilitator.AccessToken,
		ibis.DeliberationRequest{Title: "Budget"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Facilitator create status = %d: %s", rec.Code, rec.Body.String())
	}
	d := decodeBody[ibis.Deliberation](t, rec)

	// Participants cannot.
	rec = doAuthed(t, h, http.MethodPost, "/deliberations", participant.AccessToken,
		ibis.DeliberationRequest{Title: "Denied"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Participant create status = %d, want 403", rec.Code)
	}

	// Participants can still read and add nodes.
	rec = doAuthed(t, h, http.MethodGet, "/deliberations", participant.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Participant list status = %d, want 200", rec.Code)
	}
	rec = doAuthed(t, h, http.MethodPost, "/deliberations/"+d.ID+"/nodes", participant.AccessToken,
		ibis.NodeRequest{Title: "A concern", Category: "issue"})
	if rec.Code != http.StatusCreated {
		t.Errorf("Participant node create status = %d, want 201", rec.Code)
	}

	// Layout computation is facilitator-only.
	rec = doAuthed(t, h, http.MethodPost, "/deliberations/"+d.ID+"/layout", participant.AccessToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Participant layout status = %d, want 403", rec.Code)
	}
	rec = doAuthed(t, h, http.MethodPost, "/deliberations/"+d.ID+"/layout", facilitator.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Facilitator layout status = %d, want 200", rec.Code)
	}
}

func TestTokenQueryParameter(t *testing.T) {
	srv := newAuthServer(t)
	h := srv.Handler()
	tokens := login(t, h, "pat", "participate1")

	req := httptest.NewRequest(http.MethodGet, "/deliberations?token="+tokens.AccessToken, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Query token status = %d, want 200", rec.Code)
	}
}
