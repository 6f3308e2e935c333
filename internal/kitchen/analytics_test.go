package kitchen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thallipoli/internal/store"
)

func seededEngine(t *testing.T) *Engine {
	t.Helper()
	s := store.NewMemoryStore()
	_, err := s.Seed(context.Background(), store.DefaultSeed())
	require.NoError(t, err)
	return New(s, WithLogger(quietLogger()))
}

func TestDemandForecast(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())

	forecast, err := e.DemandForecast(context.Background())
	require.NoError(t, err)

	// only the cheeseburger is popular: rating 4.5 and 120 reviews
	require.Len(t, forecast, 3)
	assert.Equal(t, "beef", forecast[0].ItemID)
	assert.Equal(t, 25.0, forecast[0].SuggestedStock)
	assert.Equal(t, 50.0, forecast[1].SuggestedStock)
	assert.Equal(t, 38.0, forecast[2].SuggestedStock) // ceil(37.5)
	assert.Equal(t, "High demand for Cheeseburger (4.5★)", forecast[0].Reason)
}

func TestDemandForecastDeduplicates(t *testing.T) {
	e := seededEngine(t)

	forecast, err := e.DemandForecast(context.Background())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, f := range forecast {
		assert.False(t, seen[f.ItemID], "duplicate %s", f.ItemID)
		seen[f.ItemID] = true
	}
	// parmesan and croutons are only used by the Caesar Salad, which is not popular
	assert.False(t, seen["inv-19"])
	assert.False(t, seen["inv-20"])
	assert.True(t, seen["inv-1"])
}

func TestChefPerformance(t *testing.T) {
	e := seededEngine(t)

	chefs, err := e.ChefPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, chefs, 5)

	names := make([]string, len(chefs))
	for i, c := range chefs {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Baker Anna", "Barista Mike", "Chef Leo", "Chef Marco", "Chef Sarah"}, names)

	anna := chefs[0]
	assert.InDelta(t, 4.9, anna.Rating, 1e-9)
	assert.InDelta(t, 1887.9, anna.Sales, 1e-9)
	assert.False(t, anna.RaiseSuggested)

	sarah := chefs[4]
	// (4.8*85 + 4.4*92 + 4.7*78) / 255
	assert.InDelta(t, 4.6251, sarah.Rating, 1e-4)
	assert.InDelta(t, 4148.45, sarah.Sales, 1e-9)
	assert.True(t, sarah.RaiseSuggested)
	assert.Equal(t, 3, sarah.Dishes)
}

func TestChefPerformanceWithoutRatings(t *testing.T) {
	s := store.NewMemoryStore()
	data := fixture()
	data.Menu[2].Chef = "Chef New"
	_, err := s.Seed(context.Background(), data)
	require.NoError(t, err)
	e := New(s, WithLogger(quietLogger()))

	chefs, err := e.ChefPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, chefs, 2)
	assert.Equal(t, "Chef New", chefs[1].Name)
	assert.Equal(t, 0.0, chefs[1].Rating)
	assert.Equal(t, 0.0, chefs[1].Sales)
}

func TestMenuOverview(t *testing.T) {
	e := seededEngine(t)

	overview, err := e.MenuOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, overview.TotalItems)
	assert.Equal(t, map[string]int{"main": 5, "appetizer": 3, "dessert": 1, "drink": 1}, overview.Categories)
	require.Len(t, overview.TopRated, 3)
	assert.Equal(t, "Chocolate Fudge Cake", overview.TopRated[0].Name)
	assert.Equal(t, "Double Smash Burger", overview.TopRated[1].Name)
}

func TestStrategicSummary(t *testing.T) {
	e := seededEngine(t)
	ctx := context.Background()

	_, err := e.Sell(ctx, "menu-1", SaleRequest{})
	require.NoError(t, err)

	summary, err := e.StrategicSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RecentOrderCount)
	assert.Equal(t, 0, summary.LowStockCount)
	assert.Equal(t, []string{"Chocolate Fudge Cake", "Crispy Fries", "Vanilla Bean Shake"}, summary.TopMenuItems)
}

func TestFindMenuItem(t *testing.T) {
	e := seededEngine(t)
	ctx := context.Background()

	details, err := e.FindMenuItem(ctx, "smash")
	require.NoError(t, err)
	assert.Equal(t, "menu-2", details.ID)
	assert.Equal(t, []string{"Premium Ground Beef", "Brioche Buns", "Cheddar Cheese"}, details.IngredientNames)

	details, err = e.FindMenuItem(ctx, "menu-3")
	require.NoError(t, err)
	assert.Equal(t, "Crispy Fries", details.Name)
	assert.Contains(t, details.IngredientNames, "Frying Oil")

	_, err = e.FindMenuItem(ctx, "lobster")
	assert.Equal(t, KindNotFound, KindOf(err))
}
