package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ceylonbites/ceylonbites/internal/catalog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// seed populates demo content for development. Running twice is safe:
// rows are matched on their fixed IDs and updated in place.

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo content for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := seedAdmin(ctx, db); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if err := seedCategories(ctx, db); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		if err := seedRecipes(ctx, db); err != nil {
			return fmt.Errorf("seed recipes: %w", err)
		}
		fmt.Println("seed complete")
		return nil
	},
}

var (
	seedAdminID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

	seedCategoryIDs = map[string]uuid.UUID{
		"rice-and-curry": uuid.MustParse("00000000-0000-0000-0001-000000000001"),
		"street-food":    uuid.MustParse("00000000-0000-0000-0001-000000000002"),
		"sweets":         uuid.MustParse("00000000-0000-0000-0001-000000000003"),
	}
)

func seedAdmin(ctx context.Context, db *pgxpool.Pool) error {
	const password = "bites_dev"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	const identityQ = `
		INSERT INTO identities (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET password_hash = EXCLUDED.password_hash`
	if _, err := db.Exec(ctx, identityQ, seedAdminID, "admin@ceylonbites.app", string(hash)); err != nil {
		return err
	}

	const profileQ = `
		INSERT INTO profiles (id, username, full_name, subscription_tier, skill_level, is_admin, created_at, updated_at)
		VALUES ($1, 'admin', 'Demo Admin', 'free', 'expert', true, now(), now())
		ON CONFLICT (id) DO UPDATE SET is_admin = true`
	if _, err := db.Exec(ctx, profileQ, seedAdminID); err != nil {
		return err
	}

	fmt.Printf("  admin  admin@ceylonbites.app  password: %s\n", password)
	return nil
}

func seedCategories(ctx context.Context, db *pgxpool.Pool) error {
	cats := []catalog.Category{
		{Name: "Rice & Curry", Slug: "rice-and-curry", Icon: "bowl", SortOrder: 1},
		{Name: "Street Food", Slug: "street-food", Icon: "cart", SortOrder: 2},
		{Name: "Sweets", Slug: "sweets", Icon: "cake", SortOrder: 3},
	}

	const q = `
		INSERT INTO categories (id, name, slug, description, image_url, icon, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, '', '', $4, $5, true, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name       = EXCLUDED.name,
			icon       = EXCLUDED.icon,
			sort_order = EXCLUDED.sort_order`

	for _, c := range cats {
		id := seedCategoryIDs[c.Slug]
		if _, err := db.Exec(ctx, q, id, c.Name, c.Slug, c.Icon, c.SortOrder); err != nil {
			return fmt.Errorf("insert category %s: %w", c.Slug, err)
		}
		fmt.Printf("  category  %s\n", c.Slug)
	}
	return nil
}

func seedRecipes(ctx context.Context, db *pgxpool.Pool) error {
	repo := catalog.NewRecipeRepository(db)

	recipes := []*catalog.Recipe{
		{
			ID:          uuid.MustParse("00000000-0000-0000-0002-000000000001"),
			Title:       "Jackfruit Curry (Polos)",
			Slug:        "jackfruit-curry-polos",
			Description: "Young jackfruit simmered in roasted curry powder and coconut milk.",
			Ingredients: []catalog.Ingredient{
				{Name: "young jackfruit", Quantity: "500", Unit: "g"},
				{Name: "coconut milk", Quantity: "400", Unit: "ml"},
				{Name: "roasted curry powder", Quantity: "2", Unit: "tbsp"},
			},
			Instructions: []string{
				"Cut the jackfruit into bite-sized pieces.",
				"Simmer with spices and thin coconut milk for 40 minutes.",
				"Finish with thick coconut milk and adjust salt.",
			},
			PrepMinutes: 20,
			CookMinutes: 50,
			Servings:    4,
			Difficulty:  catalog.DifficultyMedium,
			Tags:        []string{"vegan", "curry"},
			CuisineType: "Sri Lankan",
			CategoryID:  seedCategoryIDs["rice-and-curry"],
			IsFeatured:  true,
			CreatedBy:   seedAdminID,
		},
		{
			ID:          uuid.MustParse("00000000-0000-0000-0002-000000000002"),
			Title:       "Kottu Roti",
			Slug:        "kottu-roti",
			Description: "Chopped godamba roti stir-fried with vegetables, egg, and curry sauce.",
			Ingredients: []catalog.Ingredient{
				{Name: "godamba roti", Quantity: "4", Unit: ""},
				{Name: "eggs", Quantity: "2", Unit: ""},
				{Name: "leeks", Quantity: "1", Unit: "cup"},
			},
			Instructions: []string{
				"Shred the roti into strips.",
				"Stir-fry the vegetables and egg on a hot griddle.",
				"Add the roti and curry sauce, chopping as you mix.",
			},
			PrepMinutes: 15,
			CookMinutes: 15,
			Servings:    2,
			Difficulty:  catalog.DifficultyEasy,
			Tags:        []string{"street-food"},
			CuisineType: "Sri Lankan",
			CategoryID:  seedCategoryIDs["street-food"],
			CreatedBy:   seedAdminID,
		},
		{
			ID:          uuid.MustParse("00000000-0000-0000-0002-000000000003"),
			Title:       "Watalappan",
			Slug:        "watalappan",
			Description: "Steamed coconut custard sweetened with kithul jaggery.",
			Ingredients: []catalog.Ingredient{
				{Name: "kithul jaggery", Quantity: "250", Unit: "g"},
				{Name: "coconut milk", Quantity: "400", Unit: "ml"},
				{Name: "eggs", Quantity: "5", Unit: ""},
			},
			Instructions: []string{
				"Melt the jaggery and whisk into the coconut milk.",
				"Beat in the eggs and spices, then strain.",
				"Steam for 45 minutes until just set.",
			},
			PrepMinutes: 15,
			CookMinutes: 45,
			Servings:    6,
			Difficulty:  catalog.DifficultyMedium,
			Tags:        []string{"dessert"},
			CuisineType: "Sri Lankan",
			CategoryID:  seedCategoryIDs["sweets"],
			CreatedBy:   seedAdminID,
		},
	}

	now := time.Now().UTC()
	for _, r := range recipes {
		r.IsPublished = true
		publishedAt := now
		r.PublishedAt = &publishedAt
		r.CreatedAt = now
		r.UpdatedAt = now

		err := repo.Create(ctx, r)
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			err = repo.Update(ctx, r)
		}
		if err != nil {
			return fmt.Errorf("insert recipe %s: %w", r.Slug, err)
		}
		fmt.Printf("  recipe  %s\n", r.Slug)
	}
	return nil
}
