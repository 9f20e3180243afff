package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/model"
)

// SessionCookie carries the session token for browser clients
const SessionCookie = "session_token"

type contextKey string

const claimsKey contextKey = "session"

// Accounts looks up the account behind a session
type Accounts interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// Sessions authenticates requests by session cookie or Bearer token.
// When accounts is set the account is re-read on every request: a
// deactivated customer is locked out at once and the role comes from the
// account, not from the token.
type Sessions struct {
	tokens   *auth.JWTService
	accounts Accounts
}

func NewSessions(tokens *auth.JWTService, accounts Accounts) *Sessions {
	return &Sessions{tokens: tokens, accounts: accounts}
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken reads the session cookie, falling back to the Authorization header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Require rejects requests without a live session on an active account
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		claims, err := s.tokens.ValidateSessionToken(token)
		if err != nil {
			respondError(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}

		if s.accounts != nil {
			u, err := s.accounts.Get(r.Context(), claims.UserID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				respondError(w, "invalid or expired session", http.StatusUnauthorized)
				return
			case err != nil:
				log.Printf("[API] Session lookup for %s failed: %v", claims.UserID, err)
				respondError(w, "internal server error", http.StatusInternalServerError)
				return
			case !u.IsActive:
				respondError(w, "account is deactivated", http.StatusForbidden)
				return
			}
			claims.Role = u.Role
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin lets administrators through. It runs after Require.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetUserFromContext(r.Context())
		if !ok {
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			respondError(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetUserFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// GetUserID returns the session's user id, or "" outside a session
func GetUserID(ctx context.Context) string {
	if claims, ok := GetUserFromContext(ctx); ok {
		return claims.UserID
	}
	return ""
}
