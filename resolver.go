package authgate

import (
	"context"
	"sync"
)

// RolesState is an immutable snapshot of the resolver output. Loading must
// be checked before trusting an empty set as authoritative; consumers
// treat (IsAdmin, Loading) as a pair, never IsAdmin alone.
type RolesState struct {
	Roles   RoleSet
	Loading bool
}

// HasRole checks the snapshot for a specific role.
func (s RolesState) HasRole(role Role) bool {
	return s.Roles.Has(role)
}

// IsAdmin reports whether the snapshot carries the admin role.
func (s RolesState) IsAdmin() bool {
	return s.Roles.IsAdmin()
}

// IsModerator reports whether the snapshot carries the moderator role.
func (s RolesState) IsModerator() bool {
	return s.Roles.IsModerator()
}

// Resolver fetches the role set for the current user identity and keeps it
// isolated across identity changes: a response keyed to a superseded
// identity is discarded, and a store failure degrades to the empty set
// (least privilege) rather than propagating.
type Resolver struct {
	store  RoleStore
	logger Logger

	mu      sync.Mutex
	gen     uint64
	roles   RoleSet
	loading bool
}

// NewResolver returns a resolver in its pending state; the first Resolve
// call settles it.
func NewResolver(store RoleStore) *Resolver {
	return &Resolver{
		store:   store,
		logger:  defLogger{},
		loading: true,
	}
}

func (r *Resolver) WithLogger(logger Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Resolve re-derives the role set for the given user identity. A nil user
// settles immediately to the empty set without touching the store. The
// generation captured at request time guards the commit: if another
// identity arrived while the query was in flight, the response is dropped
// and the newer state stands.
func (r *Resolver) Resolve(ctx context.Context, user *User) RolesState {
	r.mu.Lock()
	r.gen++
	gen := r.gen

	if user == nil {
		r.roles = RoleSet{}
		r.loading = false
		state := r.snapshotLocked()
		r.mu.Unlock()
		return state
	}

	r.loading = true
	userID := user.ID
	r.mu.Unlock()

	rows, err := r.store.ListRoles(ctx, userID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		// a newer identity owns the state now
		r.logger.Debug("discarding stale role response", "user_id", userID.String())
		return r.snapshotLocked()
	}

	if err != nil {
		// fail closed: least privilege beats a crash or a default grant
		r.logger.Error("role lookup failed, failing closed", "user_id", userID.String(), "error", err)
		r.roles = RoleSet{}
		r.loading = false
		return r.snapshotLocked()
	}

	set := make(RoleSet, 0, len(rows))
	for _, raw := range rows {
		role, ok := ParseRole(raw)
		if !ok {
			r.logger.Debug("dropping unrecognized role", "user_id", userID.String(), "role", raw)
			continue
		}
		set = append(set, role)
	}

	r.roles = set
	r.loading = false
	return r.snapshotLocked()
}

// Snapshot returns the current RolesState.
func (r *Resolver) Snapshot() RolesState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Resolver) snapshotLocked() RolesState {
	roles := make(RoleSet, len(r.roles))
	copy(roles, r.roles)
	return RolesState{Roles: roles, Loading: r.loading}
}
