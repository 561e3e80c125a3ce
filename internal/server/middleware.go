package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/meltforce/repforge/internal/models"
	"tailscale.com/client/tailscale/apitype"
)

type ctxKey int

const principalKey ctxKey = 0

// devPrincipal is the identity used when no identity middleware ran,
// enabling local development without Tailscale.
var devPrincipal = models.Principal{UserID: 1, Login: "local", DisplayName: "Local Dev User"}

// principalFromContext returns the caller identity set by the identity
// middleware, falling back to the local dev user.
func principalFromContext(r *http.Request) models.Principal {
	if p, ok := r.Context().Value(principalKey).(models.Principal); ok {
		return p
	}
	return devPrincipal
}

// withPrincipal stores the caller identity on the request context.
func withPrincipal(r *http.Request, p models.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// DevIdentity sets the local dev user for all requests.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, withPrincipal(r, devPrincipal))
	})
}

// WhoIsClient resolves a remote address to a tailnet identity.
// tsnet's LocalClient satisfies it.
type WhoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// UserStore maps a login to a persistent user row.
// *storage.DB satisfies it via GetOrCreateUser.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (models.Principal, error)
}

// TailscaleIdentity resolves the caller through the tailnet and maps the
// login onto a user row. Requests that cannot be identified are refused;
// the tailnet is the only authentication layer in this mode.
func TailscaleIdentity(whois WhoIsClient, users UserStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp, err := whois.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || resp.UserProfile == nil || resp.UserProfile.LoginName == "" {
				log.Warn("tailscale whois failed", "remote", r.RemoteAddr, "error", err)
				http.Error(w, `{"error":"could not identify caller"}`, http.StatusUnauthorized)
				return
			}
			principal, err := users.GetOrCreateUser(r.Context(), resp.UserProfile.LoginName, resp.UserProfile.DisplayName)
			if err != nil {
				log.Error("resolving user failed", "login", resp.UserProfile.LoginName, "error", err)
				http.Error(w, `{"error":"could not resolve user"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, withPrincipal(r, principal))
		})
	}
}

// APIKeyAuth returns middleware that validates the X-API-Key header.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				http.Error(w, `{"error":"missing API key"}`, http.StatusUnauthorized)
				return
			}
			if key != apiKey {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
