package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one chat message inside a conversation. Messages are immutable
// once created and strictly ordered by timestamp within their conversation.
type Message struct {
	ID             string              `json:"id" gorm:"primaryKey"`
	ConversationID string              `json:"conversation_id" gorm:"index"`
	UserID         string              `json:"user_id"` // empty for bot messages
	Author         string              `json:"author"`  // "USER", "BOT"
	Content        string              `json:"content"`
	Intent         string              `json:"intent,omitempty"`
	Confidence     float64             `json:"confidence,omitempty"`
	Entities       map[string][]string `json:"entities,omitempty" gorm:"serializer:json"`
	Actions        []SuggestedAction   `json:"actions,omitempty" gorm:"serializer:json"`
	Timestamp      time.Time           `json:"timestamp" gorm:"index"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Message authors
const (
	AuthorUser = "USER"
	AuthorBot  = "BOT"
)

// SuggestedAction is a quick-action button offered alongside a bot reply
type SuggestedAction struct {
	ID     string                 `json:"id"`
	Label  string                 `json:"label"`
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// BeforeCreate hook to auto-generate the message ID and timestamp
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return nil
}
