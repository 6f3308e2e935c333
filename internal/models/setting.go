package models

import "time"

// Setting is a persisted key/value pair
type Setting struct {
	Key       string `gorm:"primary_key"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Setting keys backing FundsState
const (
	SettingOperatingFunds = "operating_funds"
	SettingTotalRevenue   = "total_revenue"
	SettingTotalCost      = "total_cost"
)

// FundsState is the restaurant's shared money position
type FundsState struct {
	OperatingFunds float64 `json:"operatingFunds"`
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalCost      float64 `json:"totalCost"`
}
