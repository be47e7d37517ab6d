package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationLeaveApproved = "LEAVE_APPROVED"
	NotificationLeaveRejected = "LEAVE_REJECTED"
	NotificationLeavePending  = "LEAVE_PENDING_REMINDER"
)

// Notification is a write-once side effect of workflow transitions. Delivery
// is handled by an external consumer; the backend only records them.
type Notification struct {
	ID        string                 `json:"id" gorm:"primaryKey"`
	UserID    string                 `json:"user_id" gorm:"index"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty" gorm:"serializer:json"`
	IsRead    bool                   `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time              `json:"created_at"`
}

// BeforeCreate hook to auto-generate the notification ID
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
