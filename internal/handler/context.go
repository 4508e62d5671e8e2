package handlers

import (
	"context"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "userID"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func CurrentUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// requireUser writes 401 when the request carries no authenticated user.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := CurrentUserID(r.Context())
	if !ok {
		WriteError(w, "Not authorized", http.StatusUnauthorized)
	}
	return userID, ok
}
