package kitchen

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"thallipoli/internal/models"
)

const (
	popularRating  = 4.5
	popularReviews = 100
	forecastFactor = 2.5

	raiseRating = 4.6
	raiseSales  = 2000.0
)

// ForecastEntry suggests a target stock level for one ingredient
type ForecastEntry struct {
	ItemID         string  `json:"itemId"`
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	Quantity       float64 `json:"quantity"`
	SuggestedStock float64 `json:"suggestedStock"`
	Reason         string  `json:"reason"`
}

// ChefStats aggregates the dishes credited to one chef
type ChefStats struct {
	Name           string  `json:"name"`
	Rating         float64 `json:"rating"`
	Sales          float64 `json:"sales"`
	Dishes         int     `json:"dishes"`
	RaiseSuggested bool    `json:"raiseSuggested"`
}

// MenuOverview counts dishes per category and lists the best rated ones
type MenuOverview struct {
	TotalItems int               `json:"totalItems"`
	Categories map[string]int    `json:"categories"`
	TopRated   []models.MenuItem `json:"topRated"`
}

// StrategicSummary is a short operational digest
type StrategicSummary struct {
	RecentOrderCount int      `json:"recentOrderCount"`
	LowStockCount    int      `json:"lowStockCount"`
	LowStockItems    []string `json:"lowStockItems"`
	TopMenuItems     []string `json:"topMenuItems"`
	Insights         []string `json:"insights"`
}

// MenuItemDetails is a dish with its ingredient names resolved
type MenuItemDetails struct {
	models.MenuItem
	IngredientNames []string `json:"ingredientNames"`
}

// ListMenu returns every dish with its recipe
func (e *Engine) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	menu, err := e.store.ListMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return menu, nil
}

// FindMenuItem looks a dish up by id, or else by case-insensitive name fragment
func (e *Engine) FindMenuItem(ctx context.Context, query string) (*MenuItemDetails, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInput("A menu item name is required")
	}
	menu, err := e.ListMenu(ctx)
	if err != nil {
		return nil, err
	}

	var found *models.MenuItem
	for i := range menu {
		if menu[i].ID == query {
			found = &menu[i]
			break
		}
	}
	if found == nil {
		needle := strings.ToLower(query)
		for i := range menu {
			if strings.Contains(strings.ToLower(menu[i].Name), needle) {
				found = &menu[i]
				break
			}
		}
	}
	if found == nil {
		return nil, &Error{Kind: KindNotFound, Message: fmt.Sprintf("Menu item %q not found", query)}
	}

	details := &MenuItemDetails{MenuItem: *found}
	for _, ing := range found.Ingredients {
		name := "Unknown"
		if item, err := e.store.GetInventoryItem(ctx, ing.InventoryID); err == nil {
			name = item.Name
		}
		details.IngredientNames = append(details.IngredientNames, name)
	}
	return details, nil
}

func isPopular(m *models.MenuItem) bool {
	return m.Rating >= popularRating || m.RatingCount > popularReviews
}

// DemandForecast suggests stock for every ingredient of a popular dish.
// The first popular dish using an ingredient supplies the reason.
func (e *Engine) DemandForecast(ctx context.Context) ([]ForecastEntry, error) {
	menu, err := e.ListMenu(ctx)
	if err != nil {
		return nil, err
	}
	inventory, err := e.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.InventoryItem, len(inventory))
	for _, item := range inventory {
		byID[item.ID] = item
	}

	forecast := make([]ForecastEntry, 0)
	seen := make(map[string]bool)
	for i := range menu {
		dish := &menu[i]
		if !isPopular(dish) {
			continue
		}
		for _, ing := range dish.Ingredients {
			item, ok := byID[ing.InventoryID]
			if !ok || seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			forecast = append(forecast, ForecastEntry{
				ItemID:         item.ID,
				Name:           item.Name,
				Unit:           item.Unit,
				Quantity:       item.Quantity,
				SuggestedStock: math.Ceil(item.Threshold * forecastFactor),
				Reason:         fmt.Sprintf("High demand for %s (%.1f★)", dish.Name, dish.Rating),
			})
		}
	}
	return forecast, nil
}

// ChefPerformance aggregates ratings and estimated sales per chef, sorted
// by name. Sales are estimated as review count times price.
func (e *Engine) ChefPerformance(ctx context.Context) ([]ChefStats, error) {
	menu, err := e.ListMenu(ctx)
	if err != nil {
		return nil, err
	}

	type acc struct {
		ratingSum float64
		count     int
		sales     float64
		dishes    int
	}
	stats := make(map[string]*acc)
	for _, dish := range menu {
		if dish.Chef == "" {
			continue
		}
		a, ok := stats[dish.Chef]
		if !ok {
			a = &acc{}
			stats[dish.Chef] = a
		}
		a.ratingSum += dish.Rating * float64(dish.RatingCount)
		a.count += dish.RatingCount
		a.sales += float64(dish.RatingCount) * dish.Price
		a.dishes++
	}

	out := make([]ChefStats, 0, len(stats))
	for name, a := range stats {
		var avg float64
		if a.count > 0 {
			avg = a.ratingSum / float64(a.count)
		}
		sales := roundCents(a.sales)
		out = append(out, ChefStats{
			Name:           name,
			Rating:         avg,
			Sales:          sales,
			Dishes:         a.dishes,
			RaiseSuggested: avg > raiseRating && sales > raiseSales,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MenuOverview counts dishes per category and picks the three best rated
func (e *Engine) MenuOverview(ctx context.Context) (*MenuOverview, error) {
	menu, err := e.ListMenu(ctx)
	if err != nil {
		return nil, err
	}

	overview := &MenuOverview{TotalItems: len(menu), Categories: make(map[string]int)}
	for _, c := range models.MenuCategories {
		overview.Categories[string(c)] = 0
	}
	for _, dish := range menu {
		overview.Categories[dish.Category]++
	}

	ranked := append([]models.MenuItem(nil), menu...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rating > ranked[j].Rating })
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	overview.TopRated = ranked
	return overview, nil
}

// StrategicSummary reports recent order volume, low stock and the most
// reviewed dishes along with the current insights feed
func (e *Engine) StrategicSummary(ctx context.Context) (*StrategicSummary, error) {
	orders, err := e.RecentOrders(ctx, 10)
	if err != nil {
		return nil, err
	}
	low, err := e.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	menu, err := e.ListMenu(ctx)
	if err != nil {
		return nil, err
	}

	summary := &StrategicSummary{
		RecentOrderCount: len(orders),
		LowStockCount:    len(low),
		LowStockItems:    make([]string, 0, len(low)),
		TopMenuItems:     make([]string, 0, 3),
		Insights:         e.Insights(),
	}
	for _, item := range low {
		summary.LowStockItems = append(summary.LowStockItems, item.Name)
	}
	sort.SliceStable(menu, func(i, j int) bool { return menu[i].RatingCount > menu[j].RatingCount })
	for i := 0; i < len(menu) && i < 3; i++ {
		summary.TopMenuItems = append(summary.TopMenuItems, menu[i].Name)
	}
	return summary, nil
}
