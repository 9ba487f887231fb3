package authgate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProfileRepository implements ProfileStore using Bun.
type ProfileRepository struct {
	db *bun.DB
}

var _ ProfileStore = (*ProfileRepository)(nil)

// NewProfileRepository creates a new repository.
func NewProfileRepository(db *bun.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetProfile implements ProfileStore. A missing row is (nil, nil), not an
// error.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var model Profile
	err := r.db.NewSelect().
		Model(&model).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "profile lookup failed")
	}
	return &model, nil
}

// UpsertProfile implements ProfileStore. The row id derives
// deterministically from the user identity, so concurrent first visits
// target the same row and the conflict clause resolves the race.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, userID uuid.UUID, fields ProfileFields) (*Profile, error) {
	id, err := hashid.NewUUID(userID.String())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not derive profile id")
	}

	now := time.Now()
	model := &Profile{
		ID:                  id,
		UserID:              userID,
		FullName:            fields.FullName,
		Email:               fields.Email,
		CompanyName:         fields.CompanyName,
		Phone:               fields.Phone,
		OnboardingCompleted: fields.OnboardingCompleted,
		UpdatedAt:           &now,
	}

	_, err = r.db.NewInsert().
		Model(model).
		On("CONFLICT (user_id) DO UPDATE").
		Set("full_name = EXCLUDED.full_name").
		Set("email = EXCLUDED.email").
		Set("company_name = EXCLUDED.company_name").
		Set("phone_number = EXCLUDED.phone_number").
		Set("onboarding_completed = EXCLUDED.onboarding_completed").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "profile upsert failed")
	}

	return r.GetProfile(ctx, userID)
}
