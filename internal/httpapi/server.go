// Package httpapi exposes the ledger over a JSON HTTP API. Handlers
// are thin: they parse requests, resolve the caller's identity, call
// the service layer, and map domain errors to status codes. All
// monetary values cross this boundary as integers in minor currency
// units.
package httpapi

import (
	"net/http"

	"github.com/grouptab/grouptab/internal/auth"
	"github.com/grouptab/grouptab/internal/identity"
	"github.com/grouptab/grouptab/internal/middleware"
	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/service"
)

// guestCookieMaxAge keeps a guest session alive for 30 days, matching
// the lifetime of the magic link it was minted from.
const guestCookieMaxAge = 30 * 24 * 60 * 60

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	tabs          *service.TabService
	resolver      *identity.Resolver
	authenticator *auth.PasswordAuthenticator
	jwt           *auth.JWTManager
}

// NewServer creates the HTTP API server.
func NewServer(tabs *service.TabService, resolver *identity.Resolver, authenticator *auth.PasswordAuthenticator, jwt *auth.JWTManager) *Server {
	return &Server{
		tabs:          tabs,
		resolver:      resolver,
		authenticator: authenticator,
		jwt:           jwt,
	}
}

// Register mounts all routes on the mux. Auth middleware is applied
// per route: tab creation and listing require a session, everything
// under a tab id works for members, guests, and (read-only) anonymous
// viewers.
func (s *Server) Register(mux *http.ServeMux) {
	requireAuth := middleware.RequireAuth(s.jwt)
	optionalAuth := middleware.OptionalAuth(s.jwt)

	mux.HandleFunc("GET /healthz", s.health)

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)

	mux.Handle("POST /api/tabs", requireAuth(http.HandlerFunc(s.createTab)))
	mux.Handle("GET /api/tabs", requireAuth(http.HandlerFunc(s.listTabs)))
	mux.Handle("GET /api/tabs/{id}", optionalAuth(http.HandlerFunc(s.getTab)))
	mux.Handle("POST /api/tabs/{id}/join", optionalAuth(http.HandlerFunc(s.join)))
	mux.Handle("POST /api/tabs/{id}/expenses", optionalAuth(http.HandlerFunc(s.addExpense)))
	mux.Handle("POST /api/tabs/{id}/payments", optionalAuth(http.HandlerFunc(s.addPayment)))
	mux.Handle("GET /api/tabs/{id}/settlement", optionalAuth(http.HandlerFunc(s.settlement)))
	mux.Handle("POST /api/tabs/{id}/close", requireAuth(http.HandlerFunc(s.closeTab)))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// credentials builds the resolver input from the request: the
// authenticated user id if present, otherwise the guest session cookie.
// At most one credential kind is ever passed on.
func credentials(r *http.Request) identity.Credentials {
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return identity.Credentials{UserID: userID}
	}
	if token := middleware.GuestToken(r); token != "" {
		return identity.Credentials{GuestToken: token}
	}
	return identity.Credentials{}
}

// resolveCaller resolves the request to a participant of the tab, or
// nil for an anonymous caller.
func (s *Server) resolveCaller(r *http.Request, tabID string) (*models.Participant, error) {
	return s.resolver.Resolve(r.Context(), tabID, credentials(r))
}

// setGuestCookie delivers a guest's magic-link token as a persistent
// HttpOnly cookie.
func setGuestCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.GuestCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   guestCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
