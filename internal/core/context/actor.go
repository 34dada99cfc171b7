// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Roles available in the system.
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// Actor contains the authenticated user information used for attribution.
// The domain layer trusts this value; authorization happens in the HTTP
// middleware before it is ever set.
type Actor struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

type actorKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns Actor from context, or nil.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetUserID returns the actor's user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}

// IsAdmin checks whether the context actor has the admin role.
func IsAdmin(ctx context.Context) bool {
	if a := GetActor(ctx); a != nil {
		return a.Role == RoleAdmin
	}
	return false
}
