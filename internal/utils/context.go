package utils

import (
	"context"
	"time"
)

type contextKey string

const ContextUserIDKey contextKey = "userID"

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

// SessionData is the per-request view of an authenticated session, exposed
// to middleware without importing the auth package.
type SessionData struct {
	UserID    string
	ExpiresAt time.Time
}
