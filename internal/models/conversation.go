package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation groups the messages exchanged between one user and the bot.
// A user has at most one ACTIVE conversation at a time; archived
// conversations are kept forever.
type Conversation struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	UserID         string     `json:"user_id" gorm:"index"`
	Title          string     `json:"title"`
	Status         string     `json:"status" gorm:"default:ACTIVE;index"` // "ACTIVE", "ARCHIVED"
	LastActivityAt time.Time  `json:"last_activity_at"`
	EndedAt        *time.Time `json:"ended_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Conversation status constants
const (
	ConversationActive   = "ACTIVE"
	ConversationArchived = "ARCHIVED"
)

// BeforeCreate hook to auto-generate the conversation ID
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LastActivityAt.IsZero() {
		c.LastActivityAt = time.Now()
	}
	return nil
}
