package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leave request types
const (
	LeavePaid   = "PAID"
	LeaveRTT    = "RTT"
	LeaveSick   = "SICK"
	LeaveUnpaid = "UNPAID"
)

// Leave request statuses. PENDING is the only non-terminal state.
const (
	LeavePending  = "PENDING"
	LeaveApproved = "APPROVED"
	LeaveRejected = "REJECTED"
)

// Default yearly allowances (French standard)
const (
	DefaultPaidLeave = 25
	DefaultRTT       = 12
	DefaultSickLeave = 0
)

// LeaveBalance holds the remaining leave days of a user for one year.
// Exactly one row per (UserID, Year); all counters stay >= 0.
type LeaveBalance struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"uniqueIndex:idx_balance_user_year"`
	Year       int       `json:"year" gorm:"uniqueIndex:idx_balance_user_year"`
	PaidLeave  int       `json:"paid_leave" gorm:"default:25"`
	RTT        int       `json:"rtt" gorm:"default:12"`
	SickLeave  int       `json:"sick_leave" gorm:"default:0"`
	LastUpdate time.Time `json:"last_update"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate hook to auto-generate the balance ID
func (b *LeaveBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.LastUpdate.IsZero() {
		b.LastUpdate = time.Now()
	}
	return nil
}

// Available returns the counter matching the given leave type, with false
// for types that are not balance-counted (e.g. UNPAID).
func (b *LeaveBalance) Available(leaveType string) (int, bool) {
	switch leaveType {
	case LeavePaid:
		return b.PaidLeave, true
	case LeaveRTT:
		return b.RTT, true
	case LeaveSick:
		return b.SickLeave, true
	default:
		return 0, false
	}
}

// BalanceColumn maps a leave type to its balance column. Types without a
// counted balance (UNPAID) return false.
func BalanceColumn(leaveType string) (string, bool) {
	switch leaveType {
	case LeavePaid:
		return "paid_leave", true
	case LeaveRTT:
		return "rtt", true
	case LeaveSick:
		return "sick_leave", true
	default:
		return "", false
	}
}

// LeaveRequest is a request for time off. Days is computed once at creation
// from the business-day count of the range and never recomputed. Requests
// are never deleted; PENDING -> APPROVED / REJECTED are terminal moves.
type LeaveRequest struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	UserID     string     `json:"user_id" gorm:"index"`
	Type       string     `json:"type"` // "PAID", "RTT", "SICK", "UNPAID"
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	Days       int        `json:"days"`
	Reason     string     `json:"reason,omitempty"`
	Status     string     `json:"status" gorm:"default:PENDING;index"`
	ApprovedBy string     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// BeforeCreate hook to auto-generate the request ID
func (r *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
