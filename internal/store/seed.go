package store

import (
	"time"

	"thallipoli/internal/models"
)

// DefaultOperatingFunds is the opening balance of a freshly seeded store
const DefaultOperatingFunds = 5000.0

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultSeed returns the opening inventory, menu and funds of the restaurant.
// Each call returns fresh slices.
func DefaultSeed() SeedData {
	return SeedData{
		Inventory: defaultInventory(),
		Menu:      defaultMenu(),
		Funds:     models.FundsState{OperatingFunds: DefaultOperatingFunds},
	}
}

func defaultInventory() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: "inv-1", SKU: "BEEF-001", Name: "Premium Ground Beef", Quantity: 50, Unit: "kg", Threshold: 10, PricePerUnit: 12.50, Category: string(models.CategoryMeat), LastRestocked: day("2025-01-01")},
		{ID: "inv-2", SKU: "BUN-002", Name: "Brioche Buns", Quantity: 100, Unit: "pcs", Threshold: 20, PricePerUnit: 0.50, Category: string(models.CategoryPantry), LastRestocked: day("2025-01-02")},
		{ID: "inv-3", SKU: "CHS-003", Name: "Cheddar Cheese", Quantity: 40, Unit: "slices", Threshold: 15, PricePerUnit: 0.30, Category: string(models.CategoryDairy), LastRestocked: day("2025-01-01")},
		{ID: "inv-4", SKU: "TOM-004", Name: "Fresh Tomatoes", Quantity: 20, Unit: "kg", Threshold: 5, PricePerUnit: 2.00, Category: string(models.CategoryProduce), LastRestocked: day("2025-01-02")},
		{ID: "inv-5", SKU: "LET-005", Name: "Iceberg Lettuce", Quantity: 15, Unit: "heads", Threshold: 5, PricePerUnit: 1.50, Category: string(models.CategoryProduce), LastRestocked: day("2025-01-01")},
		{ID: "inv-6", SKU: "POT-006", Name: "Russet Potatoes", Quantity: 80, Unit: "kg", Threshold: 25, PricePerUnit: 0.80, Category: string(models.CategoryProduce), LastRestocked: day("2024-12-30")},
		{ID: "inv-7", SKU: "OIL-007", Name: "Frying Oil", Quantity: 40, Unit: "L", Threshold: 10, PricePerUnit: 2.20, Category: string(models.CategoryPantry), LastRestocked: day("2025-01-01")},
		{ID: "inv-8", SKU: "MUSH-008", Name: "Wild Mushrooms", Quantity: 15, Unit: "kg", Threshold: 5, PricePerUnit: 8.00, Category: string(models.CategoryProduce), LastRestocked: day("2025-01-02")},
		{ID: "inv-9", SKU: "TRUF-009", Name: "Truffle Oil", Quantity: 5, Unit: "L", Threshold: 1, PricePerUnit: 25.00, Category: string(models.CategoryPantry), LastRestocked: day("2024-12-25")},
		{ID: "inv-10", SKU: "CHK-010", Name: "Chicken Breast", Quantity: 30, Unit: "kg", Threshold: 10, PricePerUnit: 7.50, Category: string(models.CategoryMeat), LastRestocked: day("2025-01-02")},
		{ID: "inv-11", SKU: "PICK-011", Name: "Pickles", Quantity: 20, Unit: "jars", Threshold: 5, PricePerUnit: 3.50, Category: string(models.CategoryPantry), LastRestocked: day("2025-01-01")},
		{ID: "inv-12", SKU: "SLAW-012", Name: "Coleslaw Mix", Quantity: 10, Unit: "kg", Threshold: 3, PricePerUnit: 2.00, Category: string(models.CategoryProduce), LastRestocked: day("2025-01-02")},
		{ID: "inv-13", SKU: "ONION-013", Name: "Onions", Quantity: 40, Unit: "kg", Threshold: 10, PricePerUnit: 0.60, Category: string(models.CategoryProduce), LastRestocked: day("2024-12-30")},
		{ID: "inv-14", SKU: "RANCH-014", Name: "Ranch Sauce", Quantity: 10, Unit: "L", Threshold: 2, PricePerUnit: 4.00, Category: string(models.CategoryPantry), LastRestocked: day("2025-01-01")},
		{ID: "inv-15", SKU: "MILK-015", Name: "Whole Milk", Quantity: 30, Unit: "L", Threshold: 10, PricePerUnit: 1.20, Category: string(models.CategoryDairy), LastRestocked: day("2025-01-02")},
		{ID: "inv-16", SKU: "VAN-016", Name: "Vanilla Bean Ice Cream", Quantity: 20, Unit: "tubs", Threshold: 5, PricePerUnit: 6.00, Category: string(models.CategoryDairy), LastRestocked: day("2025-01-01")},
		{ID: "inv-17", SKU: "CHOC-017", Name: "Dark Chocolate", Quantity: 15, Unit: "kg", Threshold: 5, PricePerUnit: 9.00, Category: string(models.CategoryPantry), LastRestocked: day("2024-12-20")},
		{ID: "inv-18", SKU: "FLOUR-018", Name: "Cake Flour", Quantity: 50, Unit: "kg", Threshold: 10, PricePerUnit: 1.00, Category: string(models.CategoryPantry), LastRestocked: day("2024-12-15")},
		{ID: "inv-19", SKU: "PARM-019", Name: "Parmesan Cheese", Quantity: 10, Unit: "kg", Threshold: 2, PricePerUnit: 14.00, Category: string(models.CategoryDairy), LastRestocked: day("2025-01-01")},
		{ID: "inv-20", SKU: "CROUT-020", Name: "Croutons", Quantity: 15, Unit: "bags", Threshold: 5, PricePerUnit: 2.50, Category: string(models.CategoryPantry), LastRestocked: day("2025-01-01")},
		{ID: "inv-21", SKU: "DRESS-021", Name: "Caesar Dressing", Quantity: 10, Unit: "L", Threshold: 2, PricePerUnit: 5.00, Category: string(models.CategoryPantry), LastRestocked: day("2025-01-01")},
		{ID: "inv-22", SKU: "BBQ-022", Name: "BBQ Sauce", Quantity: 15, Unit: "L", Threshold: 5, PricePerUnit: 3.50, Category: string(models.CategoryPantry), LastRestocked: day("2025-01-01")},
		{ID: "inv-23", SKU: "BAC-023", Name: "Smoked Bacon", Quantity: 25, Unit: "kg", Threshold: 5, PricePerUnit: 9.50, Category: string(models.CategoryMeat), LastRestocked: day("2025-01-02")},
	}
}

func recipe(menuID string, lines ...models.RecipeIngredient) []models.RecipeIngredient {
	for i := range lines {
		lines[i].MenuItemID = menuID
	}
	return lines
}

func defaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{
			ID:          "menu-1",
			Name:        "Classic Cheeseburger",
			Description: "Juicy 200g beef patty with melted cheddar, fresh lettuce, and tomatoes on a toasted brioche bun.",
			Price:       14.99,
			PrepTime:    "12 min",
			Category:    string(models.MenuCategoryMain),
			Rating:      4.5,
			RatingCount: 120,
			Chef:        "Chef Marco",
			Ingredients: recipe("menu-1",
				models.RecipeIngredient{InventoryID: "inv-1", Quantity: 0.2},
				models.RecipeIngredient{InventoryID: "inv-2", Quantity: 1},
				models.RecipeIngredient{InventoryID: "inv-3", Quantity: 2},
				models.RecipeIngredient{InventoryID: "inv-4", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-5", Quantity: 0.1},
			),
		},
		{
			ID:          "menu-2",
			Name:        "Double Smash Burger",
			Description: "Two smashed patties for maximum crust, triple cheese, and secret sauce.",
			Price:       18.99,
			PrepTime:    "15 min",
			Category:    string(models.MenuCategoryMain),
			Rating:      4.8,
			RatingCount: 85,
			Chef:        "Chef Sarah",
			Ingredients: recipe("menu-2",
				models.RecipeIngredient{InventoryID: "inv-1", Quantity: 0.3},
				models.RecipeIngredient{InventoryID: "inv-2", Quantity: 1},
				models.RecipeIngredient{InventoryID: "inv-3", Quantity: 3},
			),
		},
		{
			ID:          "menu-3",
			Name:        "Crispy Fries",
			Description: "Hand-cut russet potatoes, double fried for ultimate crunch.",
			Price:       5.99,
			PrepTime:    "8 min",
			Category:    string(models.MenuCategoryAppetizer),
			Rating:      4.2,
			RatingCount: 200,
			Chef:        "Chef Leo",
			Ingredients: recipe("menu-3",
				models.RecipeIngredient{InventoryID: "inv-6", Quantity: 0.3},
				models.RecipeIngredient{InventoryID: "inv-7", Quantity: 0.1},
			),
		},
		{
			ID:          "menu-4",
			Name:        "Truffle Mushroom Swiss",
			Description: "Sautéed wild mushrooms, truffle aioli, and melted Swiss cheese on a brioche bun.",
			Price:       16.50,
			PrepTime:    "14 min",
			Category:    string(models.MenuCategoryMain),
			Rating:      4.7,
			RatingCount: 45,
			Chef:        "Chef Marco",
			Ingredients: recipe("menu-4",
				models.RecipeIngredient{InventoryID: "inv-8", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-9", Quantity: 0.01},
				models.RecipeIngredient{InventoryID: "inv-3", Quantity: 1},
				models.RecipeIngredient{InventoryID: "inv-2", Quantity: 1},
			),
		},
		{
			ID:          "menu-5",
			Name:        "Spicy Chicken Sandwich",
			Description: "Crispy fried chicken breast dipped in Nashville hot oil, with pickles and slaw.",
			Price:       13.99,
			PrepTime:    "10 min",
			Category:    string(models.MenuCategoryMain),
			Rating:      4.4,
			RatingCount: 92,
			Chef:        "Chef Sarah",
			Ingredients: recipe("menu-5",
				models.RecipeIngredient{InventoryID: "inv-10", Quantity: 0.2},
				models.RecipeIngredient{InventoryID: "inv-2", Quantity: 1},
				models.RecipeIngredient{InventoryID: "inv-11", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-12", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-7", Quantity: 0.2},
			),
		},
		{
			ID:          "menu-6",
			Name:        "Onion Rings",
			Description: "Beer-battered onion rings served with zesty ranch dipping sauce.",
			Price:       6.99,
			PrepTime:    "7 min",
			Category:    string(models.MenuCategoryAppetizer),
			Rating:      4.1,
			RatingCount: 65,
			Chef:        "Chef Leo",
			Ingredients: recipe("menu-6",
				models.RecipeIngredient{InventoryID: "inv-13", Quantity: 0.2},
				models.RecipeIngredient{InventoryID: "inv-7", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-14", Quantity: 0.05},
			),
		},
		{
			ID:          "menu-7",
			Name:        "Vanilla Bean Shake",
			Description: "Hand-spun milkshake made with real vanilla bean ice cream.",
			Price:       5.50,
			PrepTime:    "4 min",
			Category:    string(models.MenuCategoryDrink),
			Rating:      4.6,
			RatingCount: 150,
			Chef:        "Barista Mike",
			Ingredients: recipe("menu-7",
				models.RecipeIngredient{InventoryID: "inv-15", Quantity: 0.2},
				models.RecipeIngredient{InventoryID: "inv-16", Quantity: 0.3},
			),
		},
		{
			ID:          "menu-8",
			Name:        "Chocolate Fudge Cake",
			Description: "Decadent three-layer chocolate cake with fudge frosting.",
			Price:       8.99,
			PrepTime:    "2 min",
			Category:    string(models.MenuCategoryDessert),
			Rating:      4.9,
			RatingCount: 210,
			Chef:        "Baker Anna",
			Ingredients: recipe("menu-8",
				models.RecipeIngredient{InventoryID: "inv-17", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-18", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-15", Quantity: 0.05},
			),
		},
		{
			ID:          "menu-9",
			Name:        "Caesar Salad",
			Description: "Crisp romaine lettuce, parmesan cheese, croutons, and house-made Caesar dressing.",
			Price:       10.99,
			PrepTime:    "6 min",
			Category:    string(models.MenuCategoryAppetizer),
			Rating:      4.3,
			RatingCount: 55,
			Chef:        "Chef Marco",
			Ingredients: recipe("menu-9",
				models.RecipeIngredient{InventoryID: "inv-5", Quantity: 1},
				models.RecipeIngredient{InventoryID: "inv-19", Quantity: 0.05},
				models.RecipeIngredient{InventoryID: "inv-20", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-21", Quantity: 0.05},
			),
		},
		{
			ID:          "menu-10",
			Name:        "BBQ Bacon Burger",
			Description: "Smoky BBQ sauce, crispy onion straws, cheddar cheese, and bacon.",
			Price:       15.99,
			PrepTime:    "13 min",
			Category:    string(models.MenuCategoryMain),
			Rating:      4.7,
			RatingCount: 78,
			Chef:        "Chef Sarah",
			Ingredients: recipe("menu-10",
				models.RecipeIngredient{InventoryID: "inv-1", Quantity: 0.2},
				models.RecipeIngredient{InventoryID: "inv-2", Quantity: 1},
				models.RecipeIngredient{InventoryID: "inv-3", Quantity: 1},
				models.RecipeIngredient{InventoryID: "inv-23", Quantity: 0.1},
				models.RecipeIngredient{InventoryID: "inv-22", Quantity: 0.05},
				models.RecipeIngredient{InventoryID: "inv-13", Quantity: 0.05},
			),
		},
	}
}
