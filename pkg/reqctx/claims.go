package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// Caller is the authenticated principal of a request: who they are, which
// session they hold and which role their account has.
type Caller struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      string
}

// WithCaller stores the authenticated caller in the context.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, keyCaller, c)
}

// CallerFromContext retrieves the caller.
// Returns nil if the request is not authenticated.
func CallerFromContext(ctx context.Context) *Caller {
	c, _ := ctx.Value(keyCaller).(*Caller)
	return c
}

// MustCaller retrieves the caller from the context.
// Panics if it is not present.
func MustCaller(ctx context.Context) *Caller {
	c := CallerFromContext(ctx)
	if c == nil {
		panic("reqctx: caller not found in context")
	}
	return c
}

// IsAuthenticated returns true if a caller is present.
func IsAuthenticated(ctx context.Context) bool {
	return CallerFromContext(ctx) != nil
}

// UserIDFromContext extracts the caller's user ID.
// Returns uuid.Nil and false if not authenticated.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	c := CallerFromContext(ctx)
	if c == nil {
		return uuid.Nil, false
	}
	return c.UserID, true
}
