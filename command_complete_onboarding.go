package authgate

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// CompleteOnboardingMessage carries the onboarding form submission that
// finalizes a profile.
type CompleteOnboardingMessage struct {
	UserID      string `json:"user_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone_number"`
}

func (e CompleteOnboardingMessage) Type() string { return "profile.onboarding.complete" }

// Validate checks the submission before anything touches the store.
func (e CompleteOnboardingMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.UserID, validation.Required, is.UUID),
		validation.Field(&e.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.CompanyName, validation.Length(0, 200)),
		validation.Field(&e.Phone, validation.By(validatePhoneNumber)),
	)
}

func validatePhoneNumber(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	num, err := phonenumbers.Parse(raw, "US")
	if err != nil {
		return err
	}
	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}

// CompleteOnboardingHandler persists the finalized profile and marks
// onboarding done.
type CompleteOnboardingHandler struct {
	profiles ProfileStore
	logger   Logger
	sink     ActivitySink
}

func NewCompleteOnboardingHandler(profiles ProfileStore) *CompleteOnboardingHandler {
	return &CompleteOnboardingHandler{
		profiles: profiles,
		logger:   defLogger{},
		sink:     noopActivitySink{},
	}
}

func (h *CompleteOnboardingHandler) WithLogger(logger Logger) *CompleteOnboardingHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *CompleteOnboardingHandler) WithActivitySink(sink ActivitySink) *CompleteOnboardingHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *CompleteOnboardingHandler) Execute(ctx context.Context, event CompleteOnboardingMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during onboarding completion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CompleteOnboardingHandler) execute(ctx context.Context, event CompleteOnboardingMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid onboarding submission")
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	profile, err := h.profiles.UpsertProfile(ctx, userID, ProfileFields{
		FullName:            event.FullName,
		Email:               event.Email,
		CompanyName:         event.CompanyName,
		Phone:               event.Phone,
		OnboardingCompleted: true,
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "could not persist onboarding profile")
	}

	activityEvent := ActivityEvent{
		EventType: ActivityEventOnboardingCompleted,
		UserID:    userID.String(),
		Metadata: map[string]any{
			"profile_id": profile.ID.String(),
		},
		OccurredAt: time.Now(),
	}
	if err := h.sink.Record(ctx, activityEvent); err != nil {
		h.logger.Error("activity sink record error", "event", string(activityEvent.EventType), "error", err)
	}

	return nil
}
