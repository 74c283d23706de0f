// Package identity carries the owning user of a request through its context.
//
// There is no authentication layer yet: the user is taken from the request
// itself, falling back to a configured placeholder.
package identity

import (
	"context"
	"strconv"
	"strings"

	"github.com/GemmaRyan/FoodManagementApp-server/internal/apperr"
)

type contextKey struct{}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the user stored in ctx.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok && id > 0
}

// ParseID parses a client supplied identifier. Identifiers must be positive
// integers.
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(field + " must be a positive integer")
	}
	return id, nil
}
