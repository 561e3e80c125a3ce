package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meltforce/repforge/internal/models"
	"tailscale.com/client/tailscale/apitype"
	"tailscale.com/tailcfg"
)

// TestDevIdentity verifies that the dev identity middleware sets the
// local user for all requests, enabling development without Tailscale.
func TestDevIdentity(t *testing.T) {
	var got models.Principal
	handler := DevIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = principalFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got.UserID != 1 || got.Login != "local" {
		t.Errorf("principal = %+v, want local dev user", got)
	}
}

// TestPrincipalFromContextDefault verifies the fallback identity when
// no middleware has set a value.
func TestPrincipalFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	p := principalFromContext(req)
	if p.UserID != 1 {
		t.Errorf("user id = %d, want 1", p.UserID)
	}
	if p.DisplayName != "Local Dev User" {
		t.Errorf("display name = %q, want %q", p.DisplayName, "Local Dev User")
	}
}

// TestPrincipalFromContextSet verifies the value stored by identity
// middleware is returned.
func TestPrincipalFromContextSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withPrincipal(req, models.Principal{UserID: 42, Login: "alice@example.com"})

	p := principalFromContext(req)
	if p.UserID != 42 || p.Login != "alice@example.com" {
		t.Errorf("principal = %+v, want user 42", p)
	}
}

type fakeWhoIs struct {
	login   string
	display string
	err     error
}

func (f *fakeWhoIs) WhoIs(_ context.Context, _ string) (*apitype.WhoIsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &apitype.WhoIsResponse{
		UserProfile: &tailcfg.UserProfile{LoginName: f.login, DisplayName: f.display},
	}, nil
}

type fakeUserStore struct {
	principal models.Principal
	err       error
	gotLogin  string
}

func (f *fakeUserStore) GetOrCreateUser(_ context.Context, login, _ string) (models.Principal, error) {
	f.gotLogin = login
	return f.principal, f.err
}

// TestTailscaleIdentity verifies the tailnet login is mapped to a user
// row and stored on the request context.
func TestTailscaleIdentity(t *testing.T) {
	whois := &fakeWhoIs{login: "alice@example.com", display: "Alice"}
	users := &fakeUserStore{principal: models.Principal{UserID: 7, Login: "alice@example.com", DisplayName: "Alice"}}

	var got models.Principal
	handler := TailscaleIdentity(whois, users, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = principalFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if users.gotLogin != "alice@example.com" {
		t.Errorf("store queried with login %q", users.gotLogin)
	}
	if got.UserID != 7 {
		t.Errorf("principal user id = %d, want 7", got.UserID)
	}
}

// TestTailscaleIdentityWhoIsFailure verifies unidentifiable callers are
// refused rather than falling back to the dev user.
func TestTailscaleIdentityWhoIsFailure(t *testing.T) {
	whois := &fakeWhoIs{err: errors.New("no match for IP")}
	handler := TailscaleIdentity(whois, &fakeUserStore{}, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestTailscaleIdentityStoreFailure verifies a user-store failure is a
// server error, not an identity fallback.
func TestTailscaleIdentityStoreFailure(t *testing.T) {
	whois := &fakeWhoIs{login: "alice@example.com"}
	users := &fakeUserStore{err: errors.New("db down")}
	handler := TailscaleIdentity(whois, users, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

// TestAPIKeyAuth verifies the X-API-Key checks.
func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusForbidden},
		{"correct", "secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.key != "" {
				req.Header.Set("X-API-Key", tc.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

// TestRequestLogging verifies that the logging middleware calls the next handler and records status.
func TestRequestLogging(t *testing.T) {
	log := slog.Default()
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

// TestCORSPreflight verifies that OPTIONS requests get 204 with CORS headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
}
