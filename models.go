package authgate

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is the per-user profile model. Created lazily on first dashboard
// visit when absent; the onboarding form flips OnboardingCompleted.
type Profile struct {
	bun.BaseModel       `bun:"table:profiles,alias:prf"`
	ID                  uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID              uuid.UUID  `bun:"user_id,notnull,unique,type:uuid" json:"user_id,omitempty"`
	FullName            string     `bun:"full_name" json:"full_name,omitempty"`
	Email               string     `bun:"email" json:"email,omitempty"`
	CompanyName         string     `bun:"company_name" json:"company_name,omitempty"`
	Phone               string     `bun:"phone_number" json:"phone_number,omitempty"`
	OnboardingCompleted bool       `bun:"onboarding_completed,notnull" json:"onboarding_completed"`
	CreatedAt           *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt           *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// ProfileFields is the writable subset of a profile used by upserts.
type ProfileFields struct {
	FullName            string `json:"full_name,omitempty"`
	Email               string `json:"email,omitempty"`
	CompanyName         string `json:"company_name,omitempty"`
	Phone               string `json:"phone_number,omitempty"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

// UserRoleModel is a single role grant row keyed by user identity.
type UserRoleModel struct {
	bun.BaseModel `bun:"table:user_roles,alias:url"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid,unique:user_role" json:"user_id,omitempty"`
	Role          string     `bun:"role,notnull,unique:user_role" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
