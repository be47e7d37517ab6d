package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

const payslipsCacheTTL = time.Hour

// PayrollService exposes read-only payroll projections. Actual payroll
// document generation lives in an external system.
type PayrollService struct {
	store storage.Store
	cache cache.Cache
}

// NewPayrollService creates a new payroll service
func NewPayrollService(store storage.Store, c cache.Cache) *PayrollService {
	return &PayrollService{store: store, cache: c}
}

// GetUserPayslips lists a user's payslips, newest first. When the store has
// none yet, six sample slips are generated so the projection is never empty
// in demo environments.
func (s *PayrollService) GetUserPayslips(ctx context.Context, userID string, limit int) ([]*models.Payslip, error) {
	cacheKey := "payslips:" + userID

	var cached []*models.Payslip
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit && len(cached) > 0 {
		if limit > 0 && len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	payslips, err := s.store.GetUserPayslips(userID, limit)
	if err != nil {
		return nil, err
	}
	if len(payslips) == 0 {
		payslips, err = s.generateSamplePayslips(userID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.cache.Set(ctx, cacheKey, payslips, payslipsCacheTTL); err != nil {
		log.Printf("Failed to cache payslips for %s: %v", userID, err)
	}
	return payslips, nil
}

// generateSamplePayslips seeds six months of plausible figures for a user
// with no payroll history
func (s *PayrollService) generateSamplePayslips(userID string) ([]*models.Payslip, error) {
	const baseSalary = 3200.0

	var payslips []*models.Payslip
	now := time.Now()
	for i := 0; i < 6; i++ {
		date := now.AddDate(0, -i, 0)
		gross := baseSalary
		taxes := gross * 0.23

		payslip := &models.Payslip{
			UserID:      userID,
			Period:      date.Format("2006-01"),
			Year:        date.Year(),
			Month:       int(date.Month()),
			GrossSalary: gross,
			NetSalary:   gross - taxes,
			Taxes:       taxes,
			IsGenerated: true,
		}
		if err := s.store.CreatePayslip(payslip); err != nil {
			return nil, err
		}
		payslips = append(payslips, payslip)
	}

	log.Printf("Sample payslips generated for user %s", userID)
	return payslips, nil
}

// GetPayslip returns one payslip, scoped to its owner
func (s *PayrollService) GetPayslip(ctx context.Context, userID, payslipID string) (*models.Payslip, error) {
	return s.store.GetPayslip(userID, payslipID)
}

// DownloadInfo carries a short-lived payslip download link
type DownloadInfo struct {
	DownloadURL string          `json:"download_url"`
	Payslip     *models.Payslip `json:"payslip"`
}

// GenerateDownloadURL builds a tokenized download link for one payslip
func (s *PayrollService) GenerateDownloadURL(ctx context.Context, userID, payslipID string) (*DownloadInfo, error) {
	payslip, err := s.store.GetPayslip(userID, payslipID)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", payslipID, time.Now().UnixNano())))
	token := hex.EncodeToString(sum[:])[:16]

	return &DownloadInfo{
		DownloadURL: fmt.Sprintf("/api/payroll/download/%s?token=%s", payslipID, token),
		Payslip:     payslip,
	}, nil
}
