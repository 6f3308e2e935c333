// Package store persists the restaurant entity graph: inventory, menu and
// recipes, funds, orders, the activity log and assistant conversations.
package store

import (
	"context"
	"errors"

	"thallipoli/internal/models"
)

var (
	// ErrNotFound is returned when an entity id is unknown
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique business key is already taken
	ErrConflict = errors.New("conflict")
)

// MaxLogs bounds RecentLogs regardless of the requested limit
const MaxLogs = 500

// Store is the repository the kitchen engine and its callers work against.
// Every mutation that must stay consistent with others goes through Atomic.
type Store interface {
	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error)
	AddInventoryItem(ctx context.Context, item *models.InventoryItem) error
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	Funds(ctx context.Context) (models.FundsState, error)

	// Atomic runs fn against a transactional view. If fn returns an error
	// nothing it wrote is kept.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	AppendLog(ctx context.Context, entry *models.LogEntry) error
	RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error)

	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error)

	// Seed loads data only when the store has no inventory. It reports
	// whether anything was written.
	Seed(ctx context.Context, data SeedData) (bool, error)

	CreateConversation(ctx context.Context, title string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	DeleteConversation(ctx context.Context, id uint) error
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)

	Close() error
}

// Tx is the view handed to an Atomic closure
type Tx interface {
	GetInventoryItem(id string) (*models.InventoryItem, error)
	GetMenuItem(id string) (*models.MenuItem, error)
	Funds() (models.FundsState, error)
	SaveInventoryItem(item *models.InventoryItem) error
	// SaveMenuItem persists the rating fields of a menu item
	SaveMenuItem(item *models.MenuItem) error
	SaveFunds(funds models.FundsState) error
	// CreateOrder stores the order with its items and assigns its id
	CreateOrder(order *models.Order) error
}

// SeedData is the initial entity graph
type SeedData struct {
	Inventory []models.InventoryItem
	Menu      []models.MenuItem
	Funds     models.FundsState
}
