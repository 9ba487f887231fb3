package authgate

import (
	"context"
	"time"
)

// GuardAction is the three-way outcome of a route guard.
type GuardAction string

const (
	// ActionRender lets the protected view through.
	ActionRender GuardAction = "render"
	// ActionRedirect sends the visitor to Decision.Target instead.
	ActionRedirect GuardAction = "redirect"
	// ActionShowLoading means the inputs have not settled yet.
	ActionShowLoading GuardAction = "loading"
)

// Decision is a guard verdict. Target is set only for ActionRedirect.
type Decision struct {
	Action GuardAction
	Target string
}

func render() Decision {
	return Decision{Action: ActionRender}
}

func redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

func showLoading() Decision {
	return Decision{Action: ActionShowLoading}
}

// Guard evaluates pure access decisions over controller and resolver
// snapshots. It holds no state of its own.
type Guard struct {
	cfg    Config
	logger Logger
	sink   ActivitySink
}

func NewGuard(cfg Config) *Guard {
	return &Guard{
		cfg:    cfg,
		logger: defLogger{},
		sink:   noopActivitySink{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithActivitySink configures the sink receiving access-denial events.
func (g *Guard) WithActivitySink(sink ActivitySink) *Guard {
	g.sink = normalizeActivitySink(sink)
	return g
}

// RequireSession gates a protected view on a resolved, signed-in session.
func (g *Guard) RequireSession(auth AuthState) Decision {
	if auth.Loading {
		return showLoading()
	}
	if auth.User == nil {
		return redirect(g.cfg.GetLoginPath())
	}
	return render()
}

// RequireRole gates a view on a resolved session AND a resolved role set
// carrying the given role. Both loading flags must settle before the empty
// set can be trusted; checking only one opens a window where auth has
// resolved but roles have not.
//
// A denied attempt by an authenticated user is recorded through the
// activity sink with the requesting identity.
func (g *Guard) RequireRole(ctx context.Context, auth AuthState, roles RolesState, role Role) Decision {
	if auth.Loading || roles.Loading {
		return showLoading()
	}
	if auth.User == nil {
		g.logger.Warn("unauthenticated access attempt to gated route", "role", string(role))
		return redirect(g.cfg.GetLoginPath())
	}
	if !roles.HasRole(role) {
		g.recordDenied(ctx, auth.User, role)
		return redirect(g.cfg.GetDashboardPath())
	}
	return render()
}

func (g *Guard) recordDenied(ctx context.Context, user *User, role Role) {
	g.logger.Warn("access denied to gated route", "role", string(role), "user_id", user.ID.String())

	event := ActivityEvent{
		EventType: ActivityEventAccessDenied,
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"required_role": string(role),
		},
		OccurredAt: time.Now(),
	}
	if err := g.sink.Record(ctx, event); err != nil {
		g.logger.Error("activity sink record error", "event", string(event.EventType), "error", err)
	}
}
