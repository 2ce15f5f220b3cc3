package shell

// Screen identifies what the app shell is currently presenting. Exactly one
// screen is active at a time; Splash pre-empts everything while active.
type Screen int

const (
	ScreenSplash Screen = iota
	ScreenWelcome
	ScreenSignIn
	ScreenSignUp
	ScreenOnboarding
	ScreenMain
	ScreenAdminDashboard
	ScreenAdminRecipes
	ScreenAdminRecipeNew
	ScreenAdminCategories
	ScreenAccessDenied
)

// String returns a human-readable screen name for logs.
func (s Screen) String() string {
	switch s {
	case ScreenSplash:
		return "splash"
	case ScreenWelcome:
		return "welcome"
	case ScreenSignIn:
		return "signin"
	case ScreenSignUp:
		return "signup"
	case ScreenOnboarding:
		return "onboarding"
	case ScreenMain:
		return "main"
	case ScreenAdminDashboard:
		return "admin-dashboard"
	case ScreenAdminRecipes:
		return "admin-recipes"
	case ScreenAdminRecipeNew:
		return "admin-recipe-new"
	case ScreenAdminCategories:
		return "admin-categories"
	case ScreenAccessDenied:
		return "access-denied"
	}
	return "unknown"
}
