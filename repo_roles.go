package authgate

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleRepository implements RoleStore using Bun.
type RoleRepository struct {
	db *bun.DB
}

var _ RoleStore = (*RoleRepository)(nil)

// NewRoleRepository creates a new repository.
func NewRoleRepository(db *bun.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// ListRoles implements RoleStore. Raw role strings are returned as stored;
// the resolver decides which values it recognizes.
func (r *RoleRepository) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var models []UserRoleModel
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "role lookup failed")
	}

	roles := make([]string, len(models))
	for i, m := range models {
		roles[i] = m.Role
	}
	return roles, nil
}

// Assign grants a role to a user. Repeated grants are no-ops.
func (r *RoleRepository) Assign(ctx context.Context, userID uuid.UUID, role Role) error {
	model := &UserRoleModel{
		ID:     uuid.New(),
		UserID: userID,
		Role:   string(role),
	}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (user_id, role) DO NOTHING").
		Exec(ctx)
	if err != nil {
		if IsConflictError(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "role assignment failed")
	}
	return nil
}

// Revoke removes a role grant from a user.
func (r *RoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role Role) error {
	_, err := r.db.NewDelete().
		Model((*UserRoleModel)(nil)).
		Where("user_id = ? AND role = ?", userID, string(role)).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "role revocation failed")
	}
	return nil
}
