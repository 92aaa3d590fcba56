package auth

import (
	"context"
	"net/http"
)

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyUserID is the key for the authenticated user ID in the context
	ContextKeyUserID ContextKey = "userID"
	// ContextKeyUsername is the key for the authenticated username in the context
	ContextKeyUsername ContextKey = "username"
)

// WithClaims returns a copy of ctx carrying the identity from verified claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
	return context.WithValue(ctx, ContextKeyUsername, claims.Username)
}

// GetUserID retrieves the authenticated user ID from the request context.
func GetUserID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyUserID).(string); ok {
		return id
	}
	return ""
}

// GetUsername retrieves the authenticated username from the request context.
func GetUsername(r *http.Request) string {
	if name, ok := r.Context().Value(ContextKeyUsername).(string); ok {
		return name
	}
	return ""
}
