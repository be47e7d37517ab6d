package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payslip is a read-mostly payroll projection. Document generation itself
// happens in an external payroll system; the assistant only surfaces the
// figures and a download link.
type Payslip struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index"`
	Period      string    `json:"period"` // "2026-08"
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	GrossSalary float64   `json:"gross_salary"`
	NetSalary   float64   `json:"net_salary"`
	Taxes       float64   `json:"taxes"`
	Overtime    float64   `json:"overtime"`
	Bonus       float64   `json:"bonus"`
	IsGenerated bool      `json:"is_generated" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate hook to auto-generate the payslip ID
func (p *Payslip) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
