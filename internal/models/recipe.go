package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// RecipeIngredient is one line of a dish's recipe: the amount of an
// inventory item consumed per unit sold
type RecipeIngredient struct {
	ID          uint    `gorm:"primary_key" json:"-"`
	MenuItemID  string  `gorm:"index;not null" json:"-"`
	InventoryID string  `gorm:"not null" json:"inventoryId"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
}

// TableName sets the table name for RecipeIngredient
func (RecipeIngredient) TableName() string {
	return "menu_ingredients"
}
