package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Training is one entry of the training catalog
type Training struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Duration       string    `json:"duration"` // "2 jours", "14h"
	AvailableSpots int       `json:"available_spots"`
	Recommended    bool      `json:"recommended" gorm:"default:false"`
	IsOnline       bool      `json:"is_online" gorm:"default:false"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	StartDate      time.Time `json:"start_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// BeforeCreate hook to auto-generate the training ID
func (t *Training) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Enrollment statuses
const (
	EnrollmentConfirmed = "CONFIRMED"
	EnrollmentWaitlist  = "WAITLIST"
)

// TrainingEnrollment links a user to a training session
type TrainingEnrollment struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index"`
	TrainingID string    `json:"training_id" gorm:"index"`
	Status     string    `json:"status" gorm:"default:CONFIRMED"`
	EnrolledAt time.Time `json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate hook to auto-generate the enrollment ID
func (e *TrainingEnrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	return nil
}
