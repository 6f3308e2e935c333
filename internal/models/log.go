package models

import "time"

// LogEntry is an append-only activity record. Amount is the signed
// financial impact: positive for revenue, negative for expense.
type LogEntry struct {
	ID        string    `gorm:"primary_key" json:"id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Type      string    `gorm:"not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Amount    float64   `json:"amount"`
}

// TableName sets the table name for LogEntry
func (LogEntry) TableName() string {
	return "logs"
}

// LogType represents the kind of activity recorded
type LogType string

const (
	LogTypeSale    LogType = "sale"
	LogTypeRestock LogType = "restock"
	LogTypeWaste   LogType = "waste"
	LogTypeSystem  LogType = "system"
	LogTypeEmail   LogType = "email"
)
