package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
)

// WithUser adds the authenticated user's ID and name to the request context
func WithUser(r *http.Request, userID int64, username string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, usernameKey, username)
	return r.WithContext(ctx)
}

// GetUserID retrieves the user ID from context, returns 0 if not found
func GetUserID(r *http.Request) int64 {
	userID, _ := r.Context().Value(userIDKey).(int64)
	return userID
}

// GetUsername retrieves the username from context, returns empty string if not found
func GetUsername(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey).(string)
	return username
}
