package utils

import (
	"context"
	"net/http"

	"recipebook/globals"
	"recipebook/models"
)

// WithIdentity returns ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, globals.IdentityKey, identity)
}

// IdentityFromRequest returns the identity the session middleware stored,
// or nil for anonymous requests.
func IdentityFromRequest(r *http.Request) *models.Identity {
	identity, ok := r.Context().Value(globals.IdentityKey).(*models.Identity)
	if !ok || !identity.Authenticated() {
		return nil
	}
	return identity
}

// RequestID returns the id the logging middleware assigned, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(globals.RequestIDKey).(string)
	return id
}
