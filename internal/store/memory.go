package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"thallipoli/internal/models"
)

// MemoryStore keeps the entity graph in process memory. A single lock
// serializes Atomic calls; writes made inside a closure are staged and
// only applied when the closure succeeds.
type MemoryStore struct {
	mu sync.RWMutex

	inventory map[string]models.InventoryItem
	menu      map[string]models.MenuItem
	funds     models.FundsState
	logs      []models.LogEntry
	orders    []models.Order
	nextOrder uint
	nextItem  uint

	conversations []models.Conversation
	messages      []models.Message
	nextConv      uint
	nextMsg       uint

	now func() time.Time
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inventory: make(map[string]models.InventoryItem),
		menu:      make(map[string]models.MenuItem),
		nextOrder: 1,
		nextItem:  1,
		nextConv:  1,
		nextMsg:   1,
		now:       time.Now,
	}
}

func (s *MemoryStore) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.InventoryItem, 0, len(s.inventory))
	for _, item := range s.inventory {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *MemoryStore) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.inventory[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	return &item, nil
}

func (s *MemoryStore) AddInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inventory[item.ID]; ok {
		return fmt.Errorf("inventory item %s: %w", item.ID, ErrConflict)
	}
	for _, existing := range s.inventory {
		if existing.SKU == item.SKU {
			return fmt.Errorf("sku %s: %w", item.SKU, ErrConflict)
		}
	}
	s.inventory[item.ID] = *item
	return nil
}

func (s *MemoryStore) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(s.menu))
	for _, item := range s.menu {
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *MemoryStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menu[id]
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	item = item.Clone()
	return &item, nil
}

func (s *MemoryStore) Funds(ctx context.Context) (models.FundsState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.funds, nil
}

func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		s:         s,
		inventory: make(map[string]models.InventoryItem),
		menu:      make(map[string]models.MenuItem),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *MemoryStore) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *MemoryStore) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > MaxLogs {
		limit = MaxLogs
	}
	if limit > len(s.logs) {
		limit = len(s.logs)
	}
	out := make([]models.LogEntry, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

func (s *MemoryStore) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.orders) {
		limit = len(s.orders)
	}
	out := make([]models.Order, 0, limit)
	for i := len(s.orders) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.orders[i].Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders {
		if order.ID == id {
			o := order.Clone()
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			o := s.orders[i].Clone()
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
}

func (s *MemoryStore) Seed(ctx context.Context, data SeedData) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inventory) > 0 {
		return false, nil
	}
	for _, item := range data.Inventory {
		s.inventory[item.ID] = item
	}
	for _, item := range data.Menu {
		s.menu[item.ID] = item.Clone()
	}
	s.funds = data.Funds
	return true, nil
}

func (s *MemoryStore) CreateConversation(ctx context.Context, title string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := models.Conversation{ID: s.nextConv, Title: title, CreatedAt: s.now()}
	s.nextConv++
	s.conversations = append(s.conversations, conv)
	return &conv, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conv := range s.conversations {
		if conv.ID == id {
			c := conv
			return &c, nil
		}
	}
	return nil, fmt.Errorf("conversation %d: %w", id, ErrNotFound)
}

func (s *MemoryStore) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Conversation, 0, len(s.conversations))
	for i := len(s.conversations) - 1; i >= 0; i-- {
		out = append(out, s.conversations[i])
	}
	return out, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("conversation %d: %w", id, ErrNotFound)
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	kept := s.messages[:0]
	for _, msg := range s.messages {
		if msg.ConversationID != id {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
	return nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, conv := range s.conversations {
		if conv.ID == msg.ConversationID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("conversation %d: %w", msg.ConversationID, ErrNotFound)
	}
	msg.ID = s.nextMsg
	s.nextMsg++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Message
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// memoryTx stages writes over the store's committed state. It is only
// used while the store lock is held.
type memoryTx struct {
	s         *MemoryStore
	inventory map[string]models.InventoryItem
	menu      map[string]models.MenuItem
	funds     *models.FundsState
	orders    []models.Order
	items     uint
}

func (tx *memoryTx) GetInventoryItem(id string) (*models.InventoryItem, error) {
	if item, ok := tx.inventory[id]; ok {
		return &item, nil
	}
	item, ok := tx.s.inventory[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	return &item, nil
}

func (tx *memoryTx) GetMenuItem(id string) (*models.MenuItem, error) {
	item, ok := tx.menu[id]
	if !ok {
		item, ok = tx.s.menu[id]
	}
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	item = item.Clone()
	return &item, nil
}

func (tx *memoryTx) Funds() (models.FundsState, error) {
	if tx.funds != nil {
		return *tx.funds, nil
	}
	return tx.s.funds, nil
}

func (tx *memoryTx) SaveInventoryItem(item *models.InventoryItem) error {
	if _, err := tx.GetInventoryItem(item.ID); err != nil {
		return err
	}
	tx.inventory[item.ID] = *item
	return nil
}

func (tx *memoryTx) SaveMenuItem(item *models.MenuItem) error {
	current, err := tx.GetMenuItem(item.ID)
	if err != nil {
		return err
	}
	current.Rating = item.Rating
	current.RatingCount = item.RatingCount
	tx.menu[item.ID] = *current
	return nil
}

func (tx *memoryTx) SaveFunds(funds models.FundsState) error {
	tx.funds = &funds
	return nil
}

func (tx *memoryTx) CreateOrder(order *models.Order) error {
	order.ID = tx.s.nextOrder + uint(len(tx.orders))
	if order.CreatedAt.IsZero() {
		order.CreatedAt = tx.s.now()
	}
	for i := range order.Items {
		order.Items[i].ID = tx.s.nextItem + tx.items
		order.Items[i].OrderID = order.ID
		tx.items++
	}
	tx.orders = append(tx.orders, order.Clone())
	return nil
}

func (tx *memoryTx) commit() {
	s := tx.s
	for id, item := range tx.inventory {
		s.inventory[id] = item
	}
	for id, item := range tx.menu {
		s.menu[id] = item
	}
	if tx.funds != nil {
		s.funds = *tx.funds
	}
	s.orders = append(s.orders, tx.orders...)
	s.nextOrder += uint(len(tx.orders))
	s.nextItem += tx.items
}
