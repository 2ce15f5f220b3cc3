package shell

import "strings"

// route maps a browser path to a screen. Exact entries match the whole
// path; prefix entries match any path that starts with the pattern. The
// table is consulted in order, so specific admin paths come before the
// dashboard catch-all. Keeping this an enumerated table (instead of
// switching on a history API) keeps the controller portable to
// non-browser hosts.
type route struct {
	pattern string
	prefix  bool
	screen  Screen
}

var adminRoutes = []route{
	{pattern: "/admin/recipes/new", screen: ScreenAdminRecipeNew},
	{pattern: "/admin/recipes", screen: ScreenAdminRecipes},
	{pattern: "/admin/categories", screen: ScreenAdminCategories},
	{pattern: "/admin", prefix: true, screen: ScreenAdminDashboard},
}

// isAdminPath reports whether the path belongs to the admin sub-tree.
func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/admin")
}

// adminScreenFor resolves an /admin... path against the route table.
// Unknown admin paths fall through to the dashboard default.
func adminScreenFor(path string) Screen {
	for _, r := range adminRoutes {
		if r.prefix {
			if strings.HasPrefix(path, r.pattern) {
				return r.screen
			}
			continue
		}
		if path == r.pattern {
			return r.screen
		}
	}
	return ScreenAdminDashboard
}
