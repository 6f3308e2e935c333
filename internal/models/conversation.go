package models

import "time"

// Conversation groups assistant chat messages
type Conversation struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is one turn of an assistant conversation
type Message struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversationId"`
	Role           string    `gorm:"not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
