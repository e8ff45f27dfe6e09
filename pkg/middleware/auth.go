package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/dabba/pkg/auth"
	"github.com/shashiranjanraj/dabba/pkg/response"
	"github.com/shashiranjanraj/dabba/pkg/session"
)

// Principal identifies the authenticated caller for the rest of the request.
type Principal struct {
	UserID uint
	Role   string
}

type principalKey struct{}

// WithPrincipal stores the principal in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal set by the Auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserID is a shorthand for the authenticated user's ID (0 when anonymous).
func UserID(ctx context.Context) uint {
	p, _ := PrincipalFrom(ctx)
	return p.UserID
}

// Auth authenticates the request and injects a Principal. Two schemes are
// accepted, in order:
//
//  1. Authorization: Bearer <jwt> — for API clients.
//  2. The "user_id" key of the cookie session — for browser clients.
//
// Requests matching neither get a 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{UserID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		sess := session.FromCtx(r)
		userID, ok := sess.GetUint("user_id")
		if !ok || userID == 0 {
			response.Unauthorized(w)
			return
		}

		role, _ := sess.GetString("role")
		if role == "" {
			role = "user"
		}

		ctx := WithPrincipal(r.Context(), Principal{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the principal's role. Wire after Auth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			if p.Role != role {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
