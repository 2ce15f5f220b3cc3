package shell

import (
	"sync"
	"testing"
	"time"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/profiles"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubState struct {
	mu       sync.Mutex
	identity *auth.Identity
	profile  *profiles.Profile
	loading  bool
}

func (s *stubState) Identity() *auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *stubState) Profile() *profiles.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *stubState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *stubState) set(identity *auth.Identity, profile *profiles.Profile, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.profile = profile
	s.loading = loading
}

type stubHistory struct {
	mu    sync.Mutex
	paths []string
}

func (h *stubHistory) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
}

func signedIn(admin bool) (*auth.Identity, *profiles.Profile) {
	id := uuid.New()
	return &auth.Identity{ID: id, Email: "kumari@example.com"},
		&profiles.Profile{ID: id, Username: "kumari", IsAdmin: admin}
}

func waitForScreen(t *testing.T, g *Gate, want Screen) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.Screen() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("screen = %v, want %v", g.Screen(), want)
}

func newTestGate(t *testing.T, state SessionState) *Gate {
	t.Helper()
	g := NewGate(state, zap.NewNop())
	g.SplashDelay = 10 * time.Millisecond
	g.MountDelay = 5 * time.Millisecond
	t.Cleanup(g.Close)
	return g
}

func TestScreen_SplashUntilTimerElapses(t *testing.T) {
	state := &stubState{}
	g := newTestGate(t, state)
	g.SplashDelay = 50 * time.Millisecond
	g.Start()

	if got := g.Screen(); got != ScreenSplash {
		t.Fatalf("screen before timer = %v, want splash", got)
	}
	waitForScreen(t, g, ScreenWelcome)
}

func TestScreen_SplashOutlastsTimerWhileLoading(t *testing.T) {
	state := &stubState{loading: true}
	g := newTestGate(t, state)
	g.Start()

	time.Sleep(50 * time.Millisecond)
	if got := g.Screen(); got != ScreenSplash {
		t.Fatalf("screen while loading = %v, want splash", got)
	}

	state.set(nil, nil, false)
	waitForScreen(t, g, ScreenWelcome)
}

func TestScreen_SignedInSkipsWelcome(t *testing.T) {
	identity, profile := signedIn(false)
	state := &stubState{identity: identity, profile: profile}
	g := newTestGate(t, state)
	g.Start()

	waitForScreen(t, g, ScreenMain)
}

func TestGetStarted_MountsSignUpAfterDelay(t *testing.T) {
	state := &stubState{}
	g := newTestGate(t, state)
	g.Start()
	waitForScreen(t, g, ScreenWelcome)

	g.GetStarted()
	waitForScreen(t, g, ScreenSignUp)
}

func TestHaveAccount_MountsSignIn(t *testing.T) {
	state := &stubState{}
	g := newTestGate(t, state)
	g.Start()
	waitForScreen(t, g, ScreenWelcome)

	g.HaveAccount()
	waitForScreen(t, g, ScreenSignIn)
}

// Registration never lands in the app directly: success routes back to the
// sign-in form, and only an explicit sign-in (plus the onboarding pass for
// the fresh account) reaches the main screen.
func TestSignUpSucceeded_RoutesToSignInThenOnboarding(t *testing.T) {
	state := &stubState{}
	g := newTestGate(t, state)
	g.Start()
	waitForScreen(t, g, ScreenWelcome)
	g.GetStarted()
	waitForScreen(t, g, ScreenSignUp)

	g.SignUpSucceeded()
	if got := g.Screen(); got != ScreenSignIn {
		t.Fatalf("screen after signup = %v, want signin", got)
	}
	if !g.NewUser() {
		t.Fatal("NewUser = false after signup")
	}

	identity, profile := signedIn(false)
	state.set(identity, profile, false)
	g.Refresh()
	if got := g.Screen(); got != ScreenOnboarding {
		t.Fatalf("screen after first sign-in = %v, want onboarding", got)
	}

	g.Onboarding().Skip()
	if got := g.Screen(); got != ScreenMain {
		t.Fatalf("screen after onboarding = %v, want main", got)
	}
	if g.NewUser() {
		t.Fatal("NewUser still set after onboarding")
	}
}

func TestRefresh_ReturningUserSkipsOnboarding(t *testing.T) {
	identity, profile := signedIn(false)
	state := &stubState{identity: identity, profile: profile}
	g := newTestGate(t, state)
	g.Start()
	waitForScreen(t, g, ScreenMain)

	g.Refresh()
	if got := g.Screen(); got != ScreenMain {
		t.Fatalf("screen = %v, want main", got)
	}
}

func TestNavigate_AdminScreens(t *testing.T) {
	identity, profile := signedIn(true)
	state := &stubState{identity: identity, profile: profile}
	g := newTestGate(t, state)
	g.Start()
	waitForScreen(t, g, ScreenMain)

	cases := []struct {
		path string
		want Screen
	}{
		{"/admin/recipes/new", ScreenAdminRecipeNew},
		{"/admin/recipes", ScreenAdminRecipes},
		{"/admin/categories", ScreenAdminCategories},
		{"/admin", ScreenAdminDashboard},
		{"/admin/unknown", ScreenAdminDashboard},
	}
	for _, tc := range cases {
		g.Navigate(tc.path)
		if got := g.Screen(); got != tc.want {
			t.Errorf("Navigate(%q): screen = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestNavigate_NonAdminDenied(t *testing.T) {
	identity, profile := signedIn(false)
	state := &stubState{identity: identity, profile: profile}
	g := newTestGate(t, state)
	g.Start()
	waitForScreen(t, g, ScreenMain)

	g.Navigate("/admin/recipes")
	if got := g.Screen(); got != ScreenAccessDenied {
		t.Fatalf("screen = %v, want access-denied", got)
	}
}

// Entering and leaving the admin tree must not disturb the bottom tabs:
// the tab that was active before stays active after.
func TestAdminRoundTrip_PreservesActiveTab(t *testing.T) {
	identity, profile := signedIn(true)
	state := &stubState{identity: identity, profile: profile}
	g := newTestGate(t, state)
	g.Start()
	waitForScreen(t, g, ScreenMain)

	tabs := g.Tabs()
	tabs.SwapDelay = time.Millisecond
	tabs.SettleDelay = time.Millisecond
	tabs.Change(TabRecipes)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tabs.Current() == TabRecipes && !tabs.Transitioning() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	g.Navigate("/admin")
	if got := g.Screen(); got != ScreenAdminDashboard {
		t.Fatalf("screen = %v, want admin-dashboard", got)
	}
	g.HandleLocationChange("/")
	if got := g.Screen(); got != ScreenMain {
		t.Fatalf("screen = %v, want main", got)
	}
	if got := tabs.Current(); got != TabRecipes {
		t.Fatalf("active tab = %v, want recipes", got)
	}
}

func TestNavigate_PushesHistory(t *testing.T) {
	identity, profile := signedIn(true)
	state := &stubState{identity: identity, profile: profile}
	g := newTestGate(t, state)
	history := &stubHistory{}
	g.History = history
	g.Start()
	waitForScreen(t, g, ScreenMain)

	g.Navigate("/admin/categories")
	g.HandleLocationChange("/")

	history.mu.Lock()
	defer history.mu.Unlock()
	if len(history.paths) != 1 || history.paths[0] != "/admin/categories" {
		t.Fatalf("history = %v, want [/admin/categories]", history.paths)
	}
}
