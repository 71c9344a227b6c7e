package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-bikemart/models"
	"go-bikemart/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// AuthMiddleware verifies JWT bearer tokens and attaches the decoded claims
// to the request context. Requests without a valid token are closed here.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.Error(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		claims, err := utils.ParseJWT(parts[1])
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware ensures that the authenticated user has the admin role.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(UserContextKey).(*utils.Claims)
		if !ok || claims.Role != models.RoleAdmin {
			utils.Error(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromRequest extracts the authenticated claims placed in the request
// context by AuthMiddleware.
func ClaimsFromRequest(r *http.Request) (*utils.Claims, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*utils.Claims)
	return claims, ok
}
