package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"go-medicamp/logging"
	"go-medicamp/models"
	"go-medicamp/store"
	"go-medicamp/utils"

	"github.com/goccy/go-json"
)

// Key type for context
type contextKey string

const (
	UserContextKey    = contextKey("user")
	AccountContextKey = contextKey("account")
)

// CookieName is the cookie that carries the session token
const CookieName = "token"

// UserFinder loads the stored user record for an email
type UserFinder interface {
	FindUser(ctx context.Context, email string) (*models.User, error)
}

// Guard builds the authentication and role middleware
type Guard struct {
	tokens *utils.TokenManager
	users  UserFinder
}

// NewGuard creates a Guard
func NewGuard(tokens *utils.TokenManager, users UserFinder) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate verifies the token cookie and attaches its claims to the context
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			writeMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}

		claims, err := g.tokens.ParseJWT(cookie.Value)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected session token")
			writeMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets the request through only when the caller's stored role is
// one of roles. The user record is read on every request. Must run after
// Authenticate.
func (g *Guard) RequireRole(roles ...string) func(http.Handler) http.Handler {
	message := fmt.Sprintf("forbidden access: %s only", strings.Join(roles, " or "))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			user, err := g.users.FindUser(r.Context(), claims.Email)
			if errors.Is(err, store.ErrNotFound) {
				writeMessage(w, http.StatusForbidden, message)
				return
			}
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Str("email", claims.Email).Msg("role lookup failed")
				writeMessage(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !slices.Contains(roles, user.Role) {
				writeMessage(w, http.StatusForbidden, message)
				return
			}

			ctx := context.WithValue(r.Context(), AccountContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims set by Authenticate
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// AccountFromContext returns the user record loaded by RequireRole
func AccountFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(AccountContextKey).(*models.User)
	return user, ok
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
