package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/sirupsen/logrus"

	"thallipoli/internal/models"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// GormStore persists the entity graph through jinzhu/gorm
type GormStore struct {
	db     *gorm.DB
	driver string
}

// OpenGorm connects to the database, configures the pool and migrates the schema
func OpenGorm(driver, dsn string, logger *logrus.Entry, debug bool) (*GormStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if logger != nil {
		db.SetLogger(logger)
	}
	db.LogMode(debug)

	if driver == DriverSQLite {
		// sqlite serializes writers; one connection also keeps :memory: databases alive
		db.DB().SetMaxOpenConns(1)
		db.DB().SetMaxIdleConns(1)
	} else {
		db.DB().SetMaxIdleConns(10)
		db.DB().SetMaxOpenConns(100)
		db.DB().SetConnMaxLifetime(time.Hour)
	}

	s := &GormStore{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *GormStore) migrate() error {
	err := s.db.AutoMigrate(
		&models.InventoryItem{},
		&models.MenuItem{},
		&models.RecipeIngredient{},
		&models.LogEntry{},
		&models.Order{},
		&models.OrderItem{},
		&models.Setting{},
		&models.Conversation{},
		&models.Message{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func notFound(err error, what string) error {
	if gorm.IsRecordNotFoundError(err) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *GormStore) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.Order("name asc, id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (s *GormStore) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "inventory item "+id)
	}
	return &item, nil
}

func (s *GormStore) AddInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	var count int
	if err := s.db.Model(&models.InventoryItem{}).Where("id = ? OR sku = ?", item.ID, item.SKU).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check inventory item: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("inventory item %s (%s): %w", item.ID, item.SKU, ErrConflict)
	}
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (s *GormStore) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.Preload("Ingredients").Order("category asc, name asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return items, nil
}

func (s *GormStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.Preload("Ingredients").First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "menu item "+id)
	}
	return &item, nil
}

func (s *GormStore) Funds(ctx context.Context) (models.FundsState, error) {
	return readFunds(s.db)
}

// Atomic runs fn inside one database transaction. On postgres the rows fn
// reads are locked FOR UPDATE until commit.
func (s *GormStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	db := s.db.BeginTx(ctx, &sql.TxOptions{})
	if db.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", db.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			db.Rollback()
			panic(r)
		}
	}()

	if s.driver == DriverPostgres {
		db = db.Set("gorm:query_option", "FOR UPDATE")
	}

	if err := fn(&gormTx{db: db}); err != nil {
		db.Rollback()
		return err
	}
	if err := db.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *GormStore) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append log: %w", err)
	}
	return nil
}

func (s *GormStore) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	if limit <= 0 || limit > MaxLogs {
		limit = MaxLogs
	}
	var entries []models.LogEntry
	if err := s.db.Order("timestamp desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return entries, nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}

func (s *GormStore) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	q := s.db.Preload("Items", orderedItems).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items", orderedItems).First(&order, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("order %d", id))
	}
	return &order, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	res := s.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return s.GetOrder(ctx, id)
}

func (s *GormStore) Seed(ctx context.Context, data SeedData) (bool, error) {
	var count int
	if err := s.db.Model(&models.InventoryItem{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count inventory: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx := s.db.BeginTx(ctx, &sql.TxOptions{})
	if tx.Error != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	for i := range data.Inventory {
		item := data.Inventory[i]
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return false, fmt.Errorf("failed to seed inventory item %s: %w", item.ID, err)
		}
	}
	for i := range data.Menu {
		item := data.Menu[i].Clone()
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return false, fmt.Errorf("failed to seed menu item %s: %w", item.ID, err)
		}
	}
	if err := writeFunds(tx, data.Funds); err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}

func (s *GormStore) CreateConversation(ctx context.Context, title string) (*models.Conversation, error) {
	conv := models.Conversation{Title: title}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

func (s *GormStore) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("conversation %d", id))
	}
	return &conv, nil
}

func (s *GormStore) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := s.db.Order("id desc").Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *GormStore) DeleteConversation(ctx context.Context, id uint) error {
	tx := s.db.BeginTx(ctx, &sql.TxOptions{})
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	res := tx.Where("id = ?", id).Delete(&models.Conversation{})
	if res.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("conversation %d: %w", id, ErrNotFound)
	}
	return tx.Commit().Error
}

func (s *GormStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if _, err := s.GetConversation(ctx, msg.ConversationID); err != nil {
		return err
	}
	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (s *GormStore) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.db.Where("conversation_id = ?", conversationID).Order("id asc").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// Close closes the database connection
func (s *GormStore) Close() error {
	return s.db.Close()
}

// gormTx is the transactional view backing GormStore.Atomic
type gormTx struct {
	db *gorm.DB
}

func (tx *gormTx) GetInventoryItem(id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := tx.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "inventory item "+id)
	}
	return &item, nil
}

func (tx *gormTx) GetMenuItem(id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := tx.db.Preload("Ingredients").First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "menu item "+id)
	}
	return &item, nil
}

func (tx *gormTx) Funds() (models.FundsState, error) {
	return readFunds(tx.db)
}

func (tx *gormTx) SaveInventoryItem(item *models.InventoryItem) error {
	res := tx.db.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"quantity":       item.Quantity,
		"threshold":      item.Threshold,
		"last_restocked": item.LastRestocked,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to save inventory item %s: %w", item.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("inventory item %s: %w", item.ID, ErrNotFound)
	}
	return nil
}

func (tx *gormTx) SaveMenuItem(item *models.MenuItem) error {
	res := tx.db.Model(&models.MenuItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"rating":       item.Rating,
		"rating_count": item.RatingCount,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to save menu item %s: %w", item.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu item %s: %w", item.ID, ErrNotFound)
	}
	return nil
}

func (tx *gormTx) SaveFunds(funds models.FundsState) error {
	return writeFunds(tx.db, funds)
}

func (tx *gormTx) CreateOrder(order *models.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if err := tx.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func readFunds(db *gorm.DB) (models.FundsState, error) {
	var settings []models.Setting
	keys := []string{models.SettingOperatingFunds, models.SettingTotalRevenue, models.SettingTotalCost}
	if err := db.Where("key IN (?)", keys).Find(&settings).Error; err != nil {
		return models.FundsState{}, fmt.Errorf("failed to read funds: %w", err)
	}

	var funds models.FundsState
	for _, setting := range settings {
		v, err := strconv.ParseFloat(setting.Value, 64)
		if err != nil {
			return models.FundsState{}, fmt.Errorf("setting %s: %w", setting.Key, err)
		}
		switch setting.Key {
		case models.SettingOperatingFunds:
			funds.OperatingFunds = v
		case models.SettingTotalRevenue:
			funds.TotalRevenue = v
		case models.SettingTotalCost:
			funds.TotalCost = v
		}
	}
	return funds, nil
}

func writeFunds(db *gorm.DB, funds models.FundsState) error {
	values := map[string]float64{
		models.SettingOperatingFunds: funds.OperatingFunds,
		models.SettingTotalRevenue:   funds.TotalRevenue,
		models.SettingTotalCost:      funds.TotalCost,
	}
	for key, v := range values {
		value := strconv.FormatFloat(v, 'f', -1, 64)
		err := db.Where(models.Setting{Key: key}).
			Assign(models.Setting{Value: value}).
			FirstOrCreate(&models.Setting{}).Error
		if err != nil {
			return fmt.Errorf("failed to write setting %s: %w", key, err)
		}
	}
	return nil
}
