// Package shell is the application shell: the auth gate that decides what
// screen is visible, the onboarding overlay, and the tab/route controller
// for the signed-in app. It renders nothing itself — screen components are
// external leaves that read the gate's state and call back into it.
package shell

import (
	"sync"
	"time"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/profiles"
	"go.uber.org/zap"
)

const (
	splashDuration = 2500 * time.Millisecond
	mountDelay     = 100 * time.Millisecond
)

// SessionState is the slice of the session store the gate reads.
type SessionState interface {
	Identity() *auth.Identity
	Profile() *profiles.Profile
	Loading() bool
}

// History pushes navigation entries to the host's location stack. External
// back/forward navigation flows the other way, into HandleLocationChange.
type History interface {
	Push(path string)
}

type authMode int

const (
	authNone authMode = iota
	authSignIn
	authSignUp
)

// Gate is the screen-routing state machine. It owns the splash timer, the
// welcome/auth-form switching, the new-user onboarding hand-off, and the
// admin path branch. Wire store.OnChange to Refresh so the gate re-evaluates
// on every session change.
type Gate struct {
	// SplashDelay and MountDelay override the fixed timings when set
	// before Start. Zero means the defaults (2500ms and 100ms).
	SplashDelay time.Duration
	MountDelay  time.Duration

	// History, when set, receives Navigate pushes.
	History History

	state  SessionState
	logger *zap.Logger
	tabs   *Tabs

	mu             sync.Mutex
	splashDone     bool
	splashTimer    *time.Timer
	mountTimer     *time.Timer
	welcomeVisible bool
	mode           authMode
	newUser        bool
	showOnboarding bool
	onboarding     *Onboarding
	path           string
	onChange       []func()
}

// NewGate creates a Gate over the given session state. Call Start to begin
// the splash countdown.
func NewGate(state SessionState, logger *zap.Logger) *Gate {
	return &Gate{
		state:  state,
		logger: logger,
		tabs:   NewTabs(),
		path:   "/",
	}
}

// Tabs returns the bottom-tab controller.
func (g *Gate) Tabs() *Tabs { return g.tabs }

// OnChange registers fn to run after every visible state change.
func (g *Gate) OnChange(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = append(g.onChange, fn)
}

// Start arms the one-shot splash timer. The timer firing is necessary but
// not sufficient to leave the splash screen: session hydration must also
// have completed (loading takes priority over the timer's elapsing).
func (g *Gate) Start() {
	delay := g.SplashDelay
	if delay == 0 {
		delay = splashDuration
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.splashTimer != nil {
		return
	}
	g.splashTimer = time.AfterFunc(delay, g.splashElapsed)
}

// Close cancels pending timers and tears down the sub-controllers.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.splashTimer != nil {
		g.splashTimer.Stop()
	}
	if g.mountTimer != nil {
		g.mountTimer.Stop()
	}
	onboarding := g.onboarding
	g.mu.Unlock()
	if onboarding != nil {
		onboarding.Close()
	}
	g.tabs.Close()
}

func (g *Gate) splashElapsed() {
	g.mu.Lock()
	g.splashDone = true
	if g.state.Identity() == nil {
		g.welcomeVisible = true
	}
	g.mu.Unlock()
	g.notify()
}

// Screen computes the single active screen from the current state.
func (g *Gate) Screen() Screen {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.splashDone || g.state.Loading() {
		return ScreenSplash
	}

	identity := g.state.Identity()
	profile := g.state.Profile()

	if identity == nil || profile == nil {
		if g.welcomeVisible && g.mode == authNone {
			return ScreenWelcome
		}
		if g.mode == authSignUp {
			return ScreenSignUp
		}
		return ScreenSignIn
	}

	if g.showOnboarding {
		return ScreenOnboarding
	}

	if isAdminPath(g.path) {
		if !profile.IsAdmin {
			return ScreenAccessDenied
		}
		return adminScreenFor(g.path)
	}

	return ScreenMain
}

// Refresh re-evaluates state-derived decisions. Wire it to the session
// store's change hook. A signed-in new user with a loaded profile gets the
// onboarding overlay exactly once.
func (g *Gate) Refresh() {
	g.mu.Lock()
	if g.newUser && !g.showOnboarding &&
		g.state.Identity() != nil && g.state.Profile() != nil {
		g.showOnboarding = true
		g.onboarding = NewOnboarding(g.onboardingComplete)
	}
	g.mu.Unlock()
	g.notify()
}

// GetStarted leaves the welcome screen and mounts the sign-up form after
// the fixed exit-animation delay.
func (g *Gate) GetStarted() {
	g.toAuthForm(authSignUp)
}

// HaveAccount leaves the welcome screen and mounts the sign-in form.
func (g *Gate) HaveAccount() {
	g.toAuthForm(authSignIn)
}

func (g *Gate) toAuthForm(mode authMode) {
	delay := g.MountDelay
	if delay == 0 {
		delay = mountDelay
	}
	g.mu.Lock()
	g.welcomeVisible = false
	if g.mountTimer != nil {
		g.mountTimer.Stop()
	}
	g.mountTimer = time.AfterFunc(delay, func() {
		g.mu.Lock()
		g.mode = mode
		g.mu.Unlock()
		g.notify()
	})
	g.mu.Unlock()
	g.notify()
}

// SwitchToSignIn toggles the auth form without the mount delay (the
// in-form "already have an account" link).
func (g *Gate) SwitchToSignIn() {
	g.mu.Lock()
	g.mode = authSignIn
	g.mu.Unlock()
	g.notify()
}

// SwitchToSignUp toggles the auth form to sign-up.
func (g *Gate) SwitchToSignUp() {
	g.mu.Lock()
	g.mode = authSignUp
	g.mu.Unlock()
	g.notify()
}

// SignUpSucceeded marks the account as freshly registered and routes into
// the sign-in form: a new user authenticates explicitly, never lands in
// the app straight from registration.
func (g *Gate) SignUpSucceeded() {
	g.mu.Lock()
	g.newUser = true
	g.mode = authSignIn
	g.mu.Unlock()
	g.notify()
}

// NewUser reports whether the freshly-registered flag is set.
func (g *Gate) NewUser() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.newUser
}

// Onboarding returns the active onboarding controller, or nil when the
// overlay is not showing.
func (g *Gate) Onboarding() *Onboarding {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.onboarding
}

func (g *Gate) onboardingComplete(prefs Preferences) {
	g.mu.Lock()
	g.showOnboarding = false
	g.newUser = false
	g.onboarding = nil
	g.mu.Unlock()
	g.logger.Info("onboarding completed",
		zap.Strings("cuisines", prefs.Cuisines),
		zap.Strings("nutrition_categories", prefs.NutritionCategories),
	)
	g.notify()
}

// Navigate moves to path and records it in the host history.
func (g *Gate) Navigate(path string) {
	g.mu.Lock()
	g.path = path
	history := g.History
	g.mu.Unlock()
	if history != nil {
		history.Push(path)
	}
	g.notify()
}

// HandleLocationChange mirrors an externally-driven location change
// (back/forward, deep link) into the gate. The active tab is untouched, so
// leaving the admin tree returns to whatever tab was active before.
func (g *Gate) HandleLocationChange(path string) {
	g.mu.Lock()
	g.path = path
	g.mu.Unlock()
	g.notify()
}

// Path returns the current location path.
func (g *Gate) Path() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path
}

func (g *Gate) notify() {
	g.mu.Lock()
	fns := make([]func(), len(g.onChange))
	copy(fns, g.onChange)
	g.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
