package authgate

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// OnboardingPolicy controls what happens when a signed-in user reaches the
// dashboard without a profile row.
type OnboardingPolicy struct {
	// CompleteOnMissingProfile marks a lazily created profile as already
	// onboarded, letting that visit skip the onboarding form. The default
	// (false) sends brand-new users through onboarding.
	CompleteOnMissingProfile bool
}

// OnboardingGate is the dashboard entry guard: a RequireSession
// specialization that additionally consults the profile store and routes
// incomplete profiles to the onboarding form.
type OnboardingGate struct {
	profiles ProfileStore
	cfg      Config
	policy   OnboardingPolicy
	logger   Logger
	sink     ActivitySink
}

func NewOnboardingGate(profiles ProfileStore, cfg Config) *OnboardingGate {
	return &OnboardingGate{
		profiles: profiles,
		cfg:      cfg,
		logger:   defLogger{},
		sink:     noopActivitySink{},
	}
}

// WithPolicy overrides the missing-profile policy.
func (g *OnboardingGate) WithPolicy(policy OnboardingPolicy) *OnboardingGate {
	g.policy = policy
	return g
}

func (g *OnboardingGate) WithLogger(logger Logger) *OnboardingGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

func (g *OnboardingGate) WithActivitySink(sink ActivitySink) *OnboardingGate {
	g.sink = normalizeActivitySink(sink)
	return g
}

// Admit decides the dashboard entry for the current auth state.
//
// A missing profile row is created through an idempotent upsert keyed on
// the user identity, so two tabs racing the first visit converge on the
// same row instead of surfacing a duplicate-row failure. An unreachable
// profile store keeps the loading decision and returns the error so the
// caller can retry; the dashboard is never rendered on an unreadable
// profile.
func (g *OnboardingGate) Admit(ctx context.Context, auth AuthState) (Decision, error) {
	if auth.Loading {
		return showLoading(), nil
	}
	if auth.User == nil {
		return redirect(g.cfg.GetLoginPath()), nil
	}

	profile, err := g.profiles.GetProfile(ctx, auth.User.ID)
	if err != nil {
		g.logger.Error("profile lookup failed", "user_id", auth.User.ID.String(), "error", err)
		return showLoading(), goerrors.Wrap(err, goerrors.CategoryOperation, "could not load profile")
	}

	if profile == nil {
		profile, err = g.profiles.UpsertProfile(ctx, auth.User.ID, ProfileFields{
			Email:               auth.User.Email,
			OnboardingCompleted: g.policy.CompleteOnMissingProfile,
		})
		if err != nil {
			g.logger.Error("profile creation failed", "user_id", auth.User.ID.String(), "error", err)
			return showLoading(), goerrors.Wrap(err, goerrors.CategoryOperation, "could not create profile")
		}
		g.recordCreated(ctx, auth.User, profile)
	}

	if !profile.OnboardingCompleted {
		return redirect(g.cfg.GetOnboardingPath()), nil
	}
	return render(), nil
}

func (g *OnboardingGate) recordCreated(ctx context.Context, user *User, profile *Profile) {
	event := ActivityEvent{
		EventType: ActivityEventProfileCreated,
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"profile_id":           profile.ID.String(),
			"onboarding_completed": profile.OnboardingCompleted,
		},
		OccurredAt: time.Now(),
	}
	if err := g.sink.Record(ctx, event); err != nil {
		g.logger.Error("activity sink record error", "event", string(event.EventType), "error", err)
	}
}
