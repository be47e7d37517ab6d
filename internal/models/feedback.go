package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback types
const (
	FeedbackThumbsUp   = "THUMBS_UP"
	FeedbackThumbsDown = "THUMBS_DOWN"
	FeedbackRating     = "RATING"
	FeedbackComment    = "COMMENT"
	FeedbackBugReport  = "BUG_REPORT"
)

// Feedback is a user's reaction to one bot message
type Feedback struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	MessageID string    `json:"message_id" gorm:"index"`
	UserID    string    `json:"user_id" gorm:"index"`
	Type      string    `json:"type"`
	Rating    int       `json:"rating,omitempty"` // 1-5, only for RATING
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook to auto-generate the feedback ID
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// IntentLog records one classification outcome for offline analysis of the
// rule table. Written fire-and-forget; never read on the request path.
type IntentLog struct {
	ID               string              `json:"id" gorm:"primaryKey"`
	UserID           string              `json:"user_id" gorm:"index"`
	MessageID        string              `json:"message_id"`
	UserMessage      string              `json:"user_message"`
	DetectedIntent   string              `json:"detected_intent"`
	Confidence       float64             `json:"confidence"`
	Entities         map[string][]string `json:"entities,omitempty" gorm:"serializer:json"`
	ProcessingTimeMs int64               `json:"processing_time_ms"`
	CreatedAt        time.Time           `json:"created_at"`
}

// BeforeCreate hook to auto-generate the log ID
func (l *IntentLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
