package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/models"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

func (i *Identity) Can(capability Capability) bool {
	return i != nil && Can(i.Role, capability)
}

// Owns reports whether the caller is the given user.
func (i *Identity) Owns(userID uuid.UUID) bool {
	return i != nil && i.UserID == userID
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns nil for anonymous requests.
func IdentityFrom(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityKey{}).(*Identity)
	return identity
}
