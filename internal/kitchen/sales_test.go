package kitchen

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

func TestSellDeductsRecipeAndCreditsFunds(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	res, err := e.Sell(ctx, "cheeseburger", SaleRequest{})
	require.NoError(t, err)

	assert.InDelta(t, 49.8, quantity(t, e, "beef"), 1e-9)
	assert.InDelta(t, 99, quantity(t, e, "bun"), 1e-9)
	assert.InDelta(t, 38, quantity(t, e, "cheese"), 1e-9)
	assert.InDelta(t, 5014.99, funds(t, e).OperatingFunds, 1e-9)
	assert.InDelta(t, 14.99, funds(t, e).TotalRevenue, 1e-9)
	assert.Equal(t, 14.99, res.Total)

	require.NotNil(t, res.Order)
	assert.Equal(t, string(models.OrderStatusPending), res.Order.Status)
	assert.Equal(t, models.DefaultCustomerName, res.Order.CustomerName)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, "Cheeseburger", res.Order.Items[0].MenuItemName)
	assert.Equal(t, 14.99, res.Order.Items[0].Price)

	sales := logsOfType(t, e, models.LogTypeSale)
	require.Len(t, sales, 1)
	assert.Equal(t, 14.99, sales[0].Amount)
	assert.Contains(t, sales[0].Message, "1x Cheeseburger")
	assert.Empty(t, res.Warnings)
}

func TestSellOutOfStockChangesNothing(t *testing.T) {
	s := store.NewMemoryStore()
	e := newTestEngine(t, s)
	ctx := context.Background()
	setQuantity(t, s, "beef", 0.1)

	_, err := e.Sell(ctx, "cheeseburger", SaleRequest{})
	require.Error(t, err)
	assert.Equal(t, KindOutOfStock, KindOf(err))
	assert.Contains(t, err.Error(), "Premium Ground Beef")

	var kerr *Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, []string{"Premium Ground Beef"}, kerr.Missing)

	assert.Equal(t, 0.1, quantity(t, e, "beef"))
	assert.Equal(t, 100.0, quantity(t, e, "bun"))
	assert.Equal(t, 5000.0, funds(t, e).OperatingFunds)
	assert.Empty(t, logsOfType(t, e, models.LogTypeSale))

	orders, err := e.RecentOrders(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSellRemovalsAreSubstringMatched(t *testing.T) {
	s := store.NewMemoryStore()
	e := newTestEngine(t, s)
	ctx := context.Background()
	// removed ingredients are not required to be in stock
	setQuantity(t, s, "cheese", 0)

	res, err := e.Sell(ctx, "cheeseburger", SaleRequest{Remove: []string{" CHEDDAR "}})
	require.NoError(t, err)

	assert.Equal(t, 0.0, quantity(t, e, "cheese"))
	assert.InDelta(t, 49.8, quantity(t, e, "beef"), 1e-9)
	assert.Equal(t, "CHEDDAR", res.Order.Items[0].RemovedIngredients)

	sales := logsOfType(t, e, models.LogTypeSale)
	require.Len(t, sales, 1)
	assert.Contains(t, sales[0].Message, "(Mods: -CHEDDAR)")
}

func TestSellTokenMatchingSeveralIngredients(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	// "e" appears in every ingredient name of the salad
	_, err := e.Sell(ctx, "salad", SaleRequest{Remove: []string{"e"}})
	require.NoError(t, err)
	assert.Equal(t, 15.0, quantity(t, e, "lettuce"))
	assert.Equal(t, 10.0, quantity(t, e, "parm"))
}

func TestSellWithIDResolver(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore(), WithResolver(IDResolver{}))
	ctx := context.Background()

	_, err := e.Sell(ctx, "cheeseburger", SaleRequest{Remove: []string{"cheese"}})
	require.NoError(t, err)
	assert.Equal(t, 40.0, quantity(t, e, "cheese"))

	_, err = e.Sell(ctx, "cheeseburger", SaleRequest{Remove: []string{"Cheddar"}})
	require.NoError(t, err)
	assert.Equal(t, 38.0, quantity(t, e, "cheese"))
}

func TestSellQuantityAndAddons(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	res, err := e.Sell(ctx, "cheeseburger", SaleRequest{
		Quantity:     2,
		Add:          []string{"bacon"},
		CustomerName: "Ada",
		Allergies:    "peanuts",
	})
	require.NoError(t, err)

	assert.InDelta(t, 33.98, res.Total, 1e-9)
	assert.InDelta(t, 49.6, quantity(t, e, "beef"), 1e-9)
	assert.InDelta(t, 5033.98, funds(t, e).OperatingFunds, 1e-9)

	item := res.Order.Items[0]
	assert.Equal(t, 14.99, item.Price)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, models.StringSlice{"bacon"}, item.AddedIngredients)
	assert.Equal(t, "Ada", res.Order.CustomerName)
	assert.Equal(t, "peanuts", res.Order.Allergies)

	sales := logsOfType(t, e, models.LogTypeSale)
	require.Len(t, sales, 1)
	assert.Contains(t, sales[0].Message, "2x Cheeseburger (Mods: +bacon) for Ada")
}

func TestSellQuantityIsAllOrNothing(t *testing.T) {
	s := store.NewMemoryStore()
	e := newTestEngine(t, s)
	setQuantity(t, s, "beef", 0.5)

	_, err := e.Sell(context.Background(), "cheeseburger", SaleRequest{Quantity: 3})
	assert.Equal(t, KindOutOfStock, KindOf(err))
	assert.Equal(t, 0.5, quantity(t, e, "beef"))
	assert.Equal(t, 40.0, quantity(t, e, "cheese"))
}

func TestSellRejectsBadInput(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := e.Sell(ctx, "nope", SaleRequest{})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Menu item nope not found", err.Error())

	_, err = e.Sell(ctx, "cheeseburger", SaleRequest{Quantity: -1})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestSellMissingInventoryItemIsOutOfStock(t *testing.T) {
	s := store.NewMemoryStore()
	data := fixture()
	data.Menu[0].Ingredients = append(data.Menu[0].Ingredients, models.RecipeIngredient{InventoryID: "oil", Quantity: 0.1})
	_, err := s.Seed(context.Background(), data)
	require.NoError(t, err)
	e := New(s, WithLogger(quietLogger()))

	_, err = e.Sell(context.Background(), "cheeseburger", SaleRequest{})
	assert.Equal(t, KindOutOfStock, KindOf(err))
	assert.Equal(t, 50.0, quantity(t, e, "beef"))
}

func TestSellLogFailureKeepsSale(t *testing.T) {
	s := brokenLogStore{store.NewMemoryStore()}
	e := newTestEngine(t, s)

	res, err := e.Sell(context.Background(), "cheeseburger", SaleRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)
	assert.InDelta(t, 49.8, quantity(t, e, "beef"), 1e-9)
	assert.InDelta(t, 5014.99, funds(t, e).OperatingFunds, 1e-9)
}

func TestSellRaisesLowStockAlertOnce(t *testing.T) {
	s := store.NewMemoryStore()
	e := newTestEngine(t, s)
	ctx := context.Background()
	setQuantity(t, s, "cheese", 17)

	_, err := e.Sell(ctx, "cheeseburger", SaleRequest{})
	require.NoError(t, err)
	_, err = e.Sell(ctx, "cheeseburger", SaleRequest{})
	require.NoError(t, err)

	var alerts []string
	for _, l := range logsOfType(t, e, models.LogTypeEmail) {
		if strings.HasPrefix(l.Message, "ALERT: Cheddar Cheese is LOW STOCK") {
			alerts = append(alerts, l.Message)
		}
	}
	require.Len(t, alerts, 1)
	assert.Equal(t, "ALERT: Cheddar Cheese is LOW STOCK (15.00 slices remaining)", alerts[0])
}

func TestSaleSumsMatchRecipes(t *testing.T) {
	s := store.NewMemoryStore()
	_, err := s.Seed(context.Background(), store.DefaultSeed())
	require.NoError(t, err)
	e := New(s, WithLogger(quietLogger()))
	ctx := context.Background()

	menu, err := e.ListMenu(ctx)
	require.NoError(t, err)
	for _, dish := range menu {
		before := make(map[string]float64)
		expected := make(map[string]float64)
		for _, ing := range dish.Ingredients {
			before[ing.InventoryID] = quantity(t, e, ing.InventoryID)
			expected[ing.InventoryID] += ing.Quantity
		}

		_, err := e.Sell(ctx, dish.ID, SaleRequest{})
		require.NoError(t, err, dish.Name)

		for id, amount := range expected {
			assert.InDelta(t, before[id]-amount, quantity(t, e, id), 1e-9, "%s / %s", dish.Name, id)
		}
	}
}

func TestCheckoutIsPartial(t *testing.T) {
	s := store.NewMemoryStore()
	e := newTestEngine(t, s)
	setQuantity(t, s, "lettuce", 0)

	res, err := e.Checkout(context.Background(), []CartLine{
		{MenuItemID: "cheeseburger"},
		{MenuItemID: "salad"},
		{MenuItemID: "cheeseburger", SaleRequest: SaleRequest{Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	assert.InDelta(t, 44.97, res.Total, 1e-9)
	require.Len(t, res.Lines, 3)
	assert.True(t, res.Lines[0].Success)
	assert.False(t, res.Lines[1].Success)
	assert.Equal(t, KindOutOfStock, res.Lines[1].Kind)
	assert.Contains(t, res.Lines[1].Error, "Iceberg Lettuce")
	assert.True(t, res.Lines[2].Success)
	assert.InDelta(t, 49.4, quantity(t, e, "beef"), 1e-9)
	assert.Equal(t, 1, e.PendingBatch())
}

func TestCheckoutContinuesPastStoreFailure(t *testing.T) {
	s := &flakyAtomicStore{MemoryStore: store.NewMemoryStore(), failOn: 2}
	e := newTestEngine(t, s)

	res, err := e.Checkout(context.Background(), []CartLine{
		{MenuItemID: "cheeseburger"},
		{MenuItemID: "cheeseburger"},
		{MenuItemID: "cheeseburger"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	require.Len(t, res.Lines, 3)
	assert.True(t, res.Lines[0].Success)
	assert.False(t, res.Lines[1].Success)
	assert.Equal(t, KindInternal, res.Lines[1].Kind)
	assert.NotContains(t, res.Lines[1].Error, "database is locked")
	assert.True(t, res.Lines[2].Success)
	assert.InDelta(t, 29.98, res.Total, 1e-9)
	assert.InDelta(t, 49.6, quantity(t, e, "beef"), 1e-9)
	assert.Equal(t, 1, e.PendingBatch())

	orders, err := e.RecentOrders(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestCheckoutWithNothingSoldSkipsBatch(t *testing.T) {
	s := store.NewMemoryStore()
	e := newTestEngine(t, s)
	setQuantity(t, s, "beef", 0)

	res, err := e.Checkout(context.Background(), []CartLine{{MenuItemID: "cheeseburger"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SuccessCount)
	assert.Equal(t, 0, e.PendingBatch())

	_, err = e.Checkout(context.Background(), nil)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestBatchInsightEveryTenCheckouts(t *testing.T) {
	obs := &captureObserver{}
	e := newTestEngine(t, store.NewMemoryStore(), WithObserver(obs))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := e.Checkout(ctx, []CartLine{{MenuItemID: "cheeseburger"}})
		require.NoError(t, err)
	}

	insights := e.Insights()
	require.Len(t, insights, 1)
	assert.Equal(t,
		"BATCH ANALYSIS (Last 10 Orders): Avg Order Value: $14.99. Top Seller: Cheeseburger (10 sold). Restock priority: Cheeseburger ingredients.",
		insights[0])
	assert.Equal(t, 0, e.PendingBatch())
	assert.Equal(t, insights, obs.insights)

	_, err := e.Checkout(ctx, []CartLine{{MenuItemID: "salad"}})
	require.NoError(t, err)
	assert.Equal(t, 1, e.PendingBatch())
	assert.Len(t, e.Insights(), 1)
}

func TestBatchTopSellerTieBreaksOnFirstSeen(t *testing.T) {
	insight := batchInsight([]checkoutSummary{
		{items: []string{"Fries", "Shake"}, total: 10},
		{items: []string{"Shake", "Fries"}, total: 20},
	})
	assert.Equal(t, "BATCH ANALYSIS (Last 2 Orders): Avg Order Value: $15.00. Top Seller: Fries (2 sold). Restock priority: Fries ingredients.", insight)
}

func TestCheckoutLowFundsInsight(t *testing.T) {
	s := store.NewMemoryStore()
	e := newTestEngine(t, s)
	require.NoError(t, s.Atomic(context.Background(), func(tx store.Tx) error {
		return tx.SaveFunds(models.FundsState{OperatingFunds: 500})
	}))

	res, err := e.Checkout(context.Background(), []CartLine{{MenuItemID: "cheeseburger"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"CRITICAL: Operating funds low (<$1000). Restock carefully."}, res.Insights)
	assert.Equal(t, res.Insights, e.Insights())
}

func TestInsightsAreCapped(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		e.pushInsight(s)
	}
	assert.Equal(t, []string{"g", "f", "e", "d", "c"}, e.Insights())
}

func TestConcurrentSalesNeverOverdraw(t *testing.T) {
	gs, err := store.OpenGorm(store.DriverSQLite, ":memory:", nil, false)
	require.NoError(t, err)
	t.Cleanup(func() { gs.Close() })

	for name, s := range map[string]store.Store{"memory": store.NewMemoryStore(), "sqlite": gs} {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, s)
			// enough beef for exactly five burgers
			setQuantity(t, s, "beef", 1.0)

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				sold    int
				blocked int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := e.Sell(context.Background(), "cheeseburger", SaleRequest{})
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						sold++
					} else if KindOf(err) == KindOutOfStock {
						blocked++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 5, sold)
			assert.Equal(t, 15, blocked)
			assert.InDelta(t, 0, quantity(t, e, "beef"), 1e-9)
			assert.InDelta(t, 5000+5*14.99, funds(t, e).OperatingFunds, 1e-6)
		})
	}
}

func TestAdvanceOrder(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryStore())
	ctx := context.Background()

	res, err := e.Sell(ctx, "cheeseburger", SaleRequest{})
	require.NoError(t, err)

	order, err := e.AdvanceOrder(ctx, res.Order.ID, "preparing")
	require.NoError(t, err)
	assert.Equal(t, "preparing", order.Status)

	_, err = e.AdvanceOrder(ctx, res.Order.ID, "eaten")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = e.AdvanceOrder(ctx, 999, "completed")
	assert.Equal(t, KindNotFound, KindOf(err))
}
