package shell

import "testing"

func TestAdminScreenFor(t *testing.T) {
	cases := []struct {
		path string
		want Screen
	}{
		{"/admin/recipes/new", ScreenAdminRecipeNew},
		{"/admin/recipes", ScreenAdminRecipes},
		{"/admin/categories", ScreenAdminCategories},
		{"/admin", ScreenAdminDashboard},
		{"/admin/", ScreenAdminDashboard},
		{"/admin/users", ScreenAdminDashboard},
		{"/admin/recipes/123/edit", ScreenAdminDashboard},
	}
	for _, tc := range cases {
		if got := adminScreenFor(tc.path); got != tc.want {
			t.Errorf("adminScreenFor(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestIsAdminPath(t *testing.T) {
	if !isAdminPath("/admin/categories") {
		t.Error("isAdminPath(/admin/categories) = false")
	}
	if isAdminPath("/") {
		t.Error("isAdminPath(/) = true")
	}
	if isAdminPath("/recipes") {
		t.Error("isAdminPath(/recipes) = true")
	}
}
