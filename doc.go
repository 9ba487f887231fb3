// Package authgate tracks whether a visitor is anonymous, authenticated,
// mid-onboarding, or privileged, and gates access to protected views
// accordingly.
//
// Session lifecycle:
//   - Controller owns the in-process AuthState. Start subscribes to the
//     session store's change stream before pulling the current session, so
//     no sign-in event can be lost in the gap; Close releases the
//     subscription. Controllers are explicit, disposable values meant for
//     dependency injection, never hidden globals.
//   - Resolver derives the RoleSet for the current identity, discarding
//     out-of-order responses keyed to superseded identities and failing
//     closed (empty set) when the role store is unreachable.
//
// Guards:
//   - Guard produces pure three-way decisions (render, redirect, loading)
//     over controller and resolver snapshots. RequireRole refuses to decide
//     until both the session and the role set have settled.
//   - OnboardingGate specializes the session guard for the dashboard entry
//     point, creating missing profiles through an idempotent upsert and
//     routing incomplete profiles to the onboarding form.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter fed by the controller,
//     the guards, and the onboarding flow. Sinks run best-effort (errors
//     are logged) so denial audits can be forwarded without blocking
//     navigation.
package authgate
