package models

import (
	"time"
)

// DefaultCustomerName is used when an order is placed without a name
const DefaultCustomerName = "Walk-in"

// Order represents a customer order sent to the kitchen
type Order struct {
	ID           uint        `gorm:"primary_key" json:"id"`
	Total        float64     `gorm:"not null" json:"total"`
	CustomerName string      `json:"customerName"`
	Allergies    string      `json:"allergies,omitempty"`
	Status       string      `gorm:"not null" json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	Items        []OrderItem `gorm:"foreignkey:OrderID" json:"items"`
}

// OrderItem represents a line of an order. Name and price are snapshots
// taken when the order was created.
type OrderItem struct {
	ID                  uint        `gorm:"primary_key" json:"id"`
	OrderID             uint        `gorm:"index;not null" json:"orderId"`
	MenuItemID          string      `gorm:"not null" json:"menuItemId"`
	MenuItemName        string      `gorm:"not null" json:"menuItemName"`
	Price               float64     `gorm:"not null" json:"price"`
	Quantity            int         `gorm:"not null" json:"quantity"`
	RemovedIngredients  string      `json:"removedIngredients,omitempty"`
	AddedIngredients    StringSlice `gorm:"type:text" json:"addedIngredients,omitempty"`
	SpecialInstructions string      `json:"specialInstructions,omitempty"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s names a known order status
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Clone returns a copy that does not share the items slice
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]OrderItem, len(o.Items))
		for i, item := range o.Items {
			if item.AddedIngredients != nil {
				item.AddedIngredients = append(StringSlice{}, item.AddedIngredients...)
			}
			items[i] = item
		}
		o.Items = items
	}
	return o
}
