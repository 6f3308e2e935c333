package models

import (
	"fmt"
	"time"
)

// InventoryItem represents a stocked ingredient in the kitchen inventory
type InventoryItem struct {
	ID            string    `gorm:"primary_key" json:"id"`
	SKU           string    `gorm:"unique_index;not null" json:"sku"`
	Name          string    `gorm:"not null" json:"name"`
	Quantity      float64   `gorm:"not null" json:"quantity"`
	Unit          string    `gorm:"not null" json:"unit"`
	Threshold     float64   `gorm:"not null" json:"threshold"`
	PricePerUnit  float64   `gorm:"not null" json:"pricePerUnit"`
	Category      string    `gorm:"not null" json:"category"`
	LastRestocked time.Time `json:"lastRestocked"`
}

// TableName sets the table name for InventoryItem
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// InventoryCategory represents the category of an inventory item
type InventoryCategory string

const (
	// Inventory categories
	CategoryProduce  InventoryCategory = "produce"
	CategoryMeat     InventoryCategory = "meat"
	CategoryDairy    InventoryCategory = "dairy"
	CategoryPantry   InventoryCategory = "pantry"
	CategoryBeverage InventoryCategory = "beverage"
)

// InventoryStatus represents the stock status of an inventory item
type InventoryStatus string

const (
	StatusInStock  InventoryStatus = "IN STOCK"
	StatusLow      InventoryStatus = "LOW STOCK"
	StatusDepleted InventoryStatus = "DEPLETED"
)

// IsLow reports whether the item has reached its reorder point
func (i *InventoryItem) IsLow() bool {
	return i.Quantity <= i.Threshold
}

// Status returns the stock status used by low-stock alerts
func (i *InventoryItem) Status() InventoryStatus {
	switch {
	case i.Quantity <= 0:
		return StatusDepleted
	case i.IsLow():
		return StatusLow
	default:
		return StatusInStock
	}
}

// Value returns the cost basis of the units on hand
func (i *InventoryItem) Value() float64 {
	return i.Quantity * i.PricePerUnit
}

// ValidateInventoryItem validates an inventory item before it is added
func ValidateInventoryItem(item *InventoryItem) error {
	if item.ID == "" {
		return fmt.Errorf("inventory item id is required")
	}
	if item.SKU == "" {
		return fmt.Errorf("inventory item sku is required")
	}
	if item.Name == "" {
		return fmt.Errorf("inventory item name is required")
	}
	if item.Unit == "" {
		return fmt.Errorf("inventory item unit is required")
	}
	if item.Quantity < 0 {
		return fmt.Errorf("inventory item quantity cannot be negative")
	}
	if item.Threshold < 0 {
		return fmt.Errorf("inventory item threshold cannot be negative")
	}
	if item.PricePerUnit < 0 {
		return fmt.Errorf("inventory item price per unit cannot be negative")
	}
	switch InventoryCategory(item.Category) {
	case CategoryProduce, CategoryMeat, CategoryDairy, CategoryPantry, CategoryBeverage:
	default:
		return fmt.Errorf("unknown inventory category %q", item.Category)
	}
	return nil
}
