package authgate

import (
	"context"
)

var authStateCtxKey = &contextKey{"auth_state"}
var rolesCtxKey = &contextKey{"roles"}

type contextKey struct {
	name string
}

// WithAuthState sets the AuthState snapshot in the given context
func WithAuthState(ctx context.Context, state AuthState) context.Context {
	return context.WithValue(ctx, authStateCtxKey, state)
}

// AuthStateFromContext finds the AuthState snapshot from the context.
func AuthStateFromContext(ctx context.Context) (AuthState, bool) {
	raw, ok := ctx.Value(authStateCtxKey).(AuthState)
	return raw, ok
}

// WithRoles sets the RolesState snapshot in the given context
func WithRoles(ctx context.Context, roles RolesState) context.Context {
	return context.WithValue(ctx, rolesCtxKey, roles)
}

// RolesFromContext finds the RolesState snapshot from the context.
func RolesFromContext(ctx context.Context) (RolesState, bool) {
	raw, ok := ctx.Value(rolesCtxKey).(RolesState)
	return raw, ok
}

// IsAdmin is a convenience check over the context-carried snapshots. It is
// authoritative only when the roles snapshot has settled.
func IsAdmin(ctx context.Context) bool {
	roles, ok := RolesFromContext(ctx)
	if !ok || roles.Loading {
		return false
	}
	return roles.IsAdmin()
}
