package models

// MenuItem represents a dish on the menu together with its recipe
type MenuItem struct {
	ID          string             `gorm:"primary_key" json:"id"`
	Name        string             `gorm:"not null" json:"name"`
	Description string             `json:"description"`
	Price       float64            `gorm:"not null" json:"price"`
	PrepTime    string             `json:"prepTime"`
	Category    string             `gorm:"not null" json:"category"`
	Rating      float64            `json:"rating"`
	RatingCount int                `json:"ratingCount"`
	Chef        string             `json:"chef,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignkey:MenuItemID" json:"ingredients"`
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuCategory represents the category of a menu item
type MenuCategory string

const (
	// Menu categories
	MenuCategoryMain      MenuCategory = "main"
	MenuCategoryAppetizer MenuCategory = "appetizer"
	MenuCategoryDessert   MenuCategory = "dessert"
	MenuCategoryDrink     MenuCategory = "drink"
)

// MenuCategories lists the categories in display order
var MenuCategories = []MenuCategory{
	MenuCategoryMain,
	MenuCategoryAppetizer,
	MenuCategoryDessert,
	MenuCategoryDrink,
}

// HasIngredient checks if the recipe consumes a specific inventory item
func (mi *MenuItem) HasIngredient(inventoryID string) bool {
	for _, ing := range mi.Ingredients {
		if ing.InventoryID == inventoryID {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the recipe slice
func (mi MenuItem) Clone() MenuItem {
	if mi.Ingredients != nil {
		ingredients := make([]RecipeIngredient, len(mi.Ingredients))
		copy(ingredients, mi.Ingredients)
		mi.Ingredients = ingredients
	}
	return mi
}
