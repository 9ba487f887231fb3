package authgate

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteGuard adapts guard decisions to HTTP navigation for go-router
// applications. Render falls through to the handler, Redirect records the
// rejected route and issues the redirect, and an unsettled state is routed
// through ErrorHandler.
type RouteGuard struct {
	controller   *Controller
	resolver     *Resolver
	guard        *Guard
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewRouteGuard(controller *Controller, resolver *Resolver, cfg Config) *RouteGuard {
	g := &RouteGuard{
		controller: controller,
		resolver:   resolver,
		guard:      NewGuard(cfg),
		cfg:        cfg,
		Logger:     defLogger{},
	}
	g.ErrorHandler = g.defaultErrHandler
	return g
}

// WithActivitySink forwards the sink to the underlying guard so denials
// are audited regardless of transport.
func (g *RouteGuard) WithActivitySink(sink ActivitySink) *RouteGuard {
	g.guard.WithActivitySink(sink)
	return g
}

// RequireSession protects a route behind a signed-in session.
func (g *RouteGuard) RequireSession() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := g.guard.RequireSession(g.controller.Snapshot())
			return g.apply(c, decision, next)
		}
	}
}

// RequireRole protects a route behind a role grant.
func (g *RouteGuard) RequireRole(role Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := g.guard.RequireRole(
				c.Context(),
				g.controller.Snapshot(),
				g.resolver.Snapshot(),
				role,
			)
			return g.apply(c, decision, next)
		}
	}
}

// SignOut terminates the session through the controller and sends the
// visitor to the signed-out landing page. A store failure is routed
// through ErrorHandler and leaves the session in place.
func (g *RouteGuard) SignOut(c router.Context) error {
	if err := g.controller.SignOut(c.Context()); err != nil {
		return g.ErrorHandler(c, err)
	}
	g.cookieDel(c, g.cfg.GetRejectedRouteKey())
	return c.Redirect(g.cfg.GetSignedOutPath(), http.StatusSeeOther)
}

func (g *RouteGuard) apply(c router.Context, decision Decision, next router.HandlerFunc) error {
	switch decision.Action {
	case ActionRender:
		return next(c)
	case ActionRedirect:
		g.SetRedirect(c)
		statusCode := http.StatusSeeOther
		if c.Method() == string(router.GET) {
			statusCode = http.StatusFound
		}
		return c.Redirect(decision.Target, statusCode)
	default:
		err := errors.New("session state not yet resolved", errors.CategoryOperation).
			WithCode(errors.CodeInternal)
		return g.ErrorHandler(c, err)
	}
}

// SetRedirect remembers the rejected route so the visitor can be sent back
// after authenticating.
func (g *RouteGuard) SetRedirect(c router.Context) {
	rejectedRoute := g.cfg.GetRejectedRouteKey()

	g.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", c.OriginalURL())

	c.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect returns the recorded rejected route, falling back to def or
// the dashboard path when nothing was recorded.
func (g *RouteGuard) GetRedirect(c router.Context, def ...string) string {
	rejectedRoute := g.cfg.GetRejectedRouteKey()
	r := c.Cookies(rejectedRoute)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return g.cfg.GetDashboardPath()
	}
	g.cookieDel(c, rejectedRoute)
	return r
}

func (g *RouteGuard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (g *RouteGuard) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	g.Logger.Info(
		"Route guard error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	g.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(g.cfg.GetLoginPath(), statusCode)
}
