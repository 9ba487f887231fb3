package authgate

// SimpleConfig is a plain-struct Config with sensible fallbacks for every
// unset path.
type SimpleConfig struct {
	LoginPath        string
	DashboardPath    string
	OnboardingPath   string
	SignedOutPath    string
	RejectedRouteKey string
}

var _ Config = SimpleConfig{}

func (c SimpleConfig) GetLoginPath() string {
	if c.LoginPath == "" {
		return "/login"
	}
	return c.LoginPath
}

func (c SimpleConfig) GetDashboardPath() string {
	if c.DashboardPath == "" {
		return "/dashboard"
	}
	return c.DashboardPath
}

func (c SimpleConfig) GetOnboardingPath() string {
	if c.OnboardingPath == "" {
		return "/onboarding"
	}
	return c.OnboardingPath
}

func (c SimpleConfig) GetSignedOutPath() string {
	if c.SignedOutPath == "" {
		return "/"
	}
	return c.SignedOutPath
}

func (c SimpleConfig) GetRejectedRouteKey() string {
	if c.RejectedRouteKey == "" {
		return "rejected_route"
	}
	return c.RejectedRouteKey
}
