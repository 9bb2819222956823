package seed

import (
	"context"
	"fmt"

	"givelocal/internal/store"
	"givelocal/pkg/types"
)

// SeedCategories syncs the database with the category definitions below.
// This file is the source of truth for categories:
// - Inserts new categories that don't exist
// - Updates existing categories that have changed
// - Deletes categories from DB that aren't in this list
//
// To generate new IDs: `go run ./cmd/givelocal nanoid`
//
// Category names are denormalized into listings, requests and organization
// preferences, so renaming one here does not rewrite historical rows.
func SeedCategories(ctx context.Context, repo *store.CategoryRepository) error {
	categories := []types.Category{
		{
			ID:            "fXp2nQ7VbLk8RwYtJc3HsMzD5gA1eTu0",
			Name:          "Clothing",
			Subcategories: []string{"Men's Wear", "Women's Wear", "Children's Wear", "Shoes", "Accessories"},
		},
		{
			ID:            "Kd9sWm4XcRv1TyBqPz6LhNfE8jG2aUo5",
			Name:          "Food Items",
			Subcategories: []string{"Canned Food", "Dry Goods", "Beverages", "Baby Food", "Halal Food"},
		},
		{
			ID:            "Zt5yHn8PmQw2VxCkDb4RjSfL9uE3iAo7",
			Name:          "Furniture",
			Subcategories: []string{"Beds & Mattresses", "Tables & Chairs", "Sofas", "Storage", "Office Furniture"},
		},
		{
			ID:            "Qw7uJm3KfXt9NbYvRc5PzHdS2gL8eAi4",
			Name:          "Electronics",
			Subcategories: []string{"Mobile Phones", "Laptops & Computers", "Kitchen Appliances", "Fans & Cooling", "Televisions"},
		},
		{
			ID:            "Vb2xPq6TnMw4KcZyJf8RhDsE7uG3iAo9",
			Name:          "Books & Stationery",
			Subcategories: []string{"Textbooks", "Storybooks", "Assessment Books", "Stationery", "Art Supplies"},
		},
		{
			ID:            "Lm8cRt4WqXv6PbNyKz2JhFdS9uE5iAo1",
			Name:          "Toys & Games",
			Subcategories: []string{"Educational Toys", "Board Games", "Outdoor Play", "Soft Toys"},
		},
		{
			ID:            "Hs3fTn7YbQw9VcXkMz5RjPdL2uE8iAo6",
			Name:          "Household Items",
			Subcategories: []string{"Kitchenware", "Bedding & Linen", "Cleaning Supplies", "Home Decor"},
		},
		{
			ID:            "Gx6dVm2PqRw8TcYkNb4JhZfS7uE9iAo3",
			Name:          "Medical Supplies",
			Subcategories: []string{"Mobility Aids", "First Aid", "Personal Care", "Health Monitors"},
		},
	}

	existing, err := repo.AllCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load existing categories: %w", err)
	}

	wanted := make(map[string]bool, len(categories))
	for i := range categories {
		wanted[categories[i].ID] = true
		if err := repo.UpsertCategory(ctx, &categories[i]); err != nil {
			return fmt.Errorf("failed to upsert category %q: %w", categories[i].Name, err)
		}
	}

	for _, category := range existing {
		if wanted[category.ID] {
			continue
		}
		if err := repo.DeleteCategory(ctx, category.ID); err != nil {
			return fmt.Errorf("failed to delete stale category %q: %w", category.Name, err)
		}
	}

	return nil
}
