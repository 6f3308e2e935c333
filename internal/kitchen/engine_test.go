package kitchen

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"thallipoli/internal/models"
	"thallipoli/internal/store"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fixture is a small kitchen: one burger and one salad
func fixture() store.SeedData {
	return store.SeedData{
		Inventory: []models.InventoryItem{
			{ID: "beef", SKU: "BEEF-001", Name: "Premium Ground Beef", Quantity: 50, Unit: "kg", Threshold: 10, PricePerUnit: 12.50, Category: "meat"},
			{ID: "bun", SKU: "BUN-002", Name: "Brioche Buns", Quantity: 100, Unit: "pcs", Threshold: 20, PricePerUnit: 0.50, Category: "pantry"},
			{ID: "cheese", SKU: "CHS-003", Name: "Cheddar Cheese", Quantity: 40, Unit: "slices", Threshold: 15, PricePerUnit: 0.30, Category: "dairy"},
			{ID: "lettuce", SKU: "LET-005", Name: "Iceberg Lettuce", Quantity: 15, Unit: "heads", Threshold: 5, PricePerUnit: 1.50, Category: "produce"},
			{ID: "parm", SKU: "PARM-019", Name: "Parmesan Cheese", Quantity: 10, Unit: "kg", Threshold: 2, PricePerUnit: 14.00, Category: "dairy"},
		},
		Menu: []models.MenuItem{
			{
				ID: "cheeseburger", Name: "Cheeseburger", Price: 14.99, Category: "main",
				Rating: 4.5, RatingCount: 120, Chef: "Chef Marco",
				Ingredients: []models.RecipeIngredient{
					{InventoryID: "beef", Quantity: 0.2},
					{InventoryID: "bun", Quantity: 1},
					{InventoryID: "cheese", Quantity: 2},
				},
			},
			{
				ID: "salad", Name: "Caesar Salad", Price: 10.99, Category: "appetizer",
				Rating: 4.3, RatingCount: 55, Chef: "Chef Marco",
				Ingredients: []models.RecipeIngredient{
					{InventoryID: "lettuce", Quantity: 1},
					{InventoryID: "parm", Quantity: 0.05},
				},
			},
			{
				ID: "fresh", Name: "Daily Special", Price: 9.00, Category: "main",
				Ingredients: []models.RecipeIngredient{
					{InventoryID: "bun", Quantity: 1},
					{InventoryID: "lettuce", Quantity: 0.5},
				},
			},
		},
		Funds: models.FundsState{OperatingFunds: 5000},
	}
}

func newTestEngine(t *testing.T, s store.Store, opts ...Option) *Engine {
	t.Helper()
	_, err := s.Seed(context.Background(), fixture())
	require.NoError(t, err)
	opts = append([]Option{WithLogger(quietLogger()), WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(s, opts...)
}

func quantity(t *testing.T, e *Engine, id string) float64 {
	t.Helper()
	item, err := e.store.GetInventoryItem(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func threshold(t *testing.T, e *Engine, id string) float64 {
	t.Helper()
	item, err := e.store.GetInventoryItem(context.Background(), id)
	require.NoError(t, err)
	return item.Threshold
}

func funds(t *testing.T, e *Engine) models.FundsState {
	t.Helper()
	f, err := e.store.Funds(context.Background())
	require.NoError(t, err)
	return f
}

func logsOfType(t *testing.T, e *Engine, typ models.LogType) []models.LogEntry {
	t.Helper()
	logs, err := e.RecentLogs(context.Background(), 0)
	require.NoError(t, err)
	var out []models.LogEntry
	for _, l := range logs {
		if l.Type == string(typ) {
			out = append(out, l)
		}
	}
	return out
}

func setQuantity(t *testing.T, s store.Store, id string, q float64) {
	t.Helper()
	err := s.Atomic(context.Background(), func(tx store.Tx) error {
		item, err := tx.GetInventoryItem(id)
		if err != nil {
			return err
		}
		item.Quantity = q
		return tx.SaveInventoryItem(item)
	})
	require.NoError(t, err)
}

// brokenLogStore accepts every mutation but cannot append logs
type brokenLogStore struct {
	*store.MemoryStore
}

func (brokenLogStore) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	return errors.New("disk full")
}

// flakyAtomicStore fails exactly one Atomic call, counted from 1
type flakyAtomicStore struct {
	*store.MemoryStore
	failOn int

	mu    sync.Mutex
	calls int
}

func (s *flakyAtomicStore) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls == s.failOn
	s.mu.Unlock()
	if fail {
		return errors.New("database is locked")
	}
	return s.MemoryStore.Atomic(ctx, fn)
}

type captureObserver struct {
	mu       sync.Mutex
	logs     []models.LogEntry
	insights []string
}

func (c *captureObserver) OnLog(entry models.LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, entry)
}

func (c *captureObserver) OnInsight(insight string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insights = append(c.insights, insight)
}
