package middleware

import (
	"context"
	"net/http"
	"strings"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

type contextKey string

const (
	UserIDKey contextKey = "userId"
	RoleKey   contextKey = "role"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireUser accepts any valid admin or participant token
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return m.require(next, "")
}

// RequireAdmin accepts admin tokens only
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require(next, model.RoleAdmin)
}

func (m *AuthMiddleware) require(next http.Handler, role string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		if role != "" && claims.Role != role {
			http.Error(w, `{"error":"insufficient role"}`, http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, RoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the caller's user ID from context
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// IsAdmin reports whether the caller authenticated with an admin token
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(RoleKey).(string)
	return v == model.RoleAdmin
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
