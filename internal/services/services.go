// Package services holds the business rules that sit between the HTTP
// handlers and the repositories.
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/auth"
	"github.com/rs/zerolog"
)

// loggerFor returns the request logger tagged with the service component.
func loggerFor(ctx context.Context, component string) zerolog.Logger {
	return zerolog.Ctx(ctx).With().Str("component", component).Logger()
}

// authorizeOwner lets the owner and admins through. Calls without an
// identity come from trusted code paths such as the CLI.
func authorizeOwner(ctx context.Context, ownerID uuid.UUID) error {
	identity := auth.IdentityFrom(ctx)
	if identity == nil || identity.IsAdmin() || identity.Owns(ownerID) {
		return nil
	}
	return ErrNotOwner
}

// authorizeOwnerOr also admits callers holding capability.
func authorizeOwnerOr(ctx context.Context, ownerID uuid.UUID, capability auth.Capability) error {
	identity := auth.IdentityFrom(ctx)
	if identity == nil || identity.Owns(ownerID) || identity.Can(capability) {
		return nil
	}
	return ErrNotOwner
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
