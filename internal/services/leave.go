package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

// Cache TTLs for leave projections
const (
	balanceCacheTTL  = 10 * time.Minute
	requestsCacheTTL = 5 * time.Minute
)

// SystemApprover is recorded as the approver of auto-approved requests
const SystemApprover = "system"

// LeaveService drives the leave-request workflow: balance reads, request
// creation, approval/rejection and the auto-approval rule. The real balance
// enforcement lives in the store's atomic approve operation; the check in
// CreateRequest is advisory UX only.
type LeaveService struct {
	store storage.Store
	cache cache.Cache
}

// NewLeaveService creates a new leave service
func NewLeaveService(store storage.Store, c cache.Cache) *LeaveService {
	return &LeaveService{store: store, cache: c}
}

func balanceCacheKey(userID string) string {
	return "leave_balance:" + userID
}

func requestsCacheKey(userID string) string {
	return "leave_requests:" + userID
}

// GetBalance returns the current-year balance for a user, creating the
// default row (25 paid / 12 RTT / 0 sick) on first access
func (s *LeaveService) GetBalance(ctx context.Context, userID string) (*models.LeaveBalance, error) {
	var cached models.LeaveBalance
	if hit, err := s.cache.Get(ctx, balanceCacheKey(userID), &cached); err == nil && hit {
		return &cached, nil
	}

	year := time.Now().Year()
	balance, err := s.store.GetLeaveBalance(userID, year)
	if errors.Is(err, storage.ErrNotFound) {
		balance = &models.LeaveBalance{
			UserID:    userID,
			Year:      year,
			PaidLeave: models.DefaultPaidLeave,
			RTT:       models.DefaultRTT,
			SickLeave: models.DefaultSickLeave,
		}
		if err := s.store.CreateLeaveBalance(balance); err != nil {
			return nil, err
		}
		log.Printf("Initial leave balance created for user %s (year %d)", userID, year)
	} else if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, balanceCacheKey(userID), balance, balanceCacheTTL); err != nil {
		log.Printf("Failed to cache leave balance for %s: %v", userID, err)
	}
	return balance, nil
}

// CountBusinessDays counts the weekdays (Monday-Friday) in [start, end],
// both bounds inclusive. This is the sole day-counting rule of the workflow,
// applied once at request creation.
func CountBusinessDays(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// CreateRequest validates and persists a leave request. Requests of at most
// one business day (except sick leave) are auto-approved in the same call.
func (s *LeaveService) CreateRequest(ctx context.Context, userID, leaveType string, startDate, endDate time.Time, reason string) (*models.LeaveRequest, error) {
	if endDate.Before(startDate) {
		return nil, &InvalidRangeError{Start: startDate, End: endDate, Reason: "la date de fin précède la date de début"}
	}

	days := CountBusinessDays(startDate, endDate)
	if days == 0 {
		// A weekend-only range would make a meaningless zero-day request.
		return nil, &InvalidRangeError{Start: startDate, End: endDate, Reason: "aucun jour ouvré dans la période"}
	}

	// Advisory pre-check for immediate user feedback. The binding check is
	// the conditional decrement at approval time.
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if available, counted := balance.Available(leaveType); counted && available < days {
		return nil, &InsufficientBalanceError{Type: leaveType, Available: available, Requested: days}
	}

	request := &models.LeaveRequest{
		UserID:    userID,
		Type:      leaveType,
		StartDate: startDate,
		EndDate:   endDate,
		Days:      days,
		Reason:    reason,
		Status:    models.LeavePending,
	}
	if err := s.store.CreateLeaveRequest(request); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	log.Printf("Leave request created: user=%s type=%s days=%d id=%s", userID, leaveType, days, request.ID)

	// Auto-approval: short non-sick absences skip human review.
	if days <= 1 && leaveType != models.LeaveSick {
		approved, err := s.ApproveRequest(ctx, request.ID, SystemApprover)
		if err != nil {
			return nil, err
		}
		return approved, nil
	}

	return request, nil
}

// ApproveRequest moves a PENDING request to APPROVED and decrements the
// balance. Both effects happen in the store's single unit of work; two
// concurrent approvals for the same user can never both drain a balance that
// only covers one of them.
func (s *LeaveService) ApproveRequest(ctx context.Context, requestID, approvedBy string) (*models.LeaveRequest, error) {
	request, err := s.store.ApproveLeaveRequest(requestID, approvedBy)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidState):
			existing, getErr := s.store.GetLeaveRequest(requestID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &InvalidStateError{RequestID: requestID, Status: existing.Status}
		case errors.Is(err, storage.ErrInsufficientBalance):
			existing, getErr := s.store.GetLeaveRequest(requestID)
			if getErr != nil {
				return nil, getErr
			}
			available := 0
			if balance, balErr := s.GetBalance(ctx, existing.UserID); balErr == nil {
				available, _ = balance.Available(existing.Type)
			}
			return nil, &InsufficientBalanceError{Type: existing.Type, Available: available, Requested: existing.Days}
		default:
			return nil, err
		}
	}

	s.notify(ctx, request.UserID, models.NotificationLeaveApproved, "Congés approuvés",
		fmt.Sprintf("Votre demande de %d jour(s) de %s a été approuvée.", request.Days, frenchLeaveType(request.Type)),
		map[string]interface{}{"requestId": request.ID})
	s.invalidate(ctx, request.UserID)

	log.Printf("Leave request approved: id=%s user=%s by=%s days=%d", request.ID, request.UserID, approvedBy, request.Days)
	return request, nil
}

// RejectRequest moves a PENDING request to REJECTED. The balance is never
// touched.
func (s *LeaveService) RejectRequest(ctx context.Context, requestID, rejectedBy string) (*models.LeaveRequest, error) {
	request, err := s.store.RejectLeaveRequest(requestID, rejectedBy)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidState) {
			existing, getErr := s.store.GetLeaveRequest(requestID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &InvalidStateError{RequestID: requestID, Status: existing.Status}
		}
		return nil, err
	}

	s.notify(ctx, request.UserID, models.NotificationLeaveRejected, "Congés refusés",
		fmt.Sprintf("Votre demande de %d jour(s) de %s a été refusée.", request.Days, frenchLeaveType(request.Type)),
		map[string]interface{}{"requestId": request.ID})
	s.invalidate(ctx, request.UserID)

	log.Printf("Leave request rejected: id=%s user=%s by=%s", request.ID, request.UserID, rejectedBy)
	return request, nil
}

// GetUserRequests lists a user's leave requests, most recent first
func (s *LeaveService) GetUserRequests(ctx context.Context, userID string, limit int) ([]*models.LeaveRequest, error) {
	if limit > 0 {
		var cached []*models.LeaveRequest
		if hit, err := s.cache.Get(ctx, requestsCacheKey(userID), &cached); err == nil && hit && len(cached) >= limit {
			return cached[:limit], nil
		}
	}

	requests, err := s.store.GetLeaveRequestsByUser(userID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, requestsCacheKey(userID), requests, requestsCacheTTL); err != nil {
		log.Printf("Failed to cache leave requests for %s: %v", userID, err)
	}
	return requests, nil
}

// LeaveStats summarizes a user's leave activity for the current year
type LeaveStats struct {
	TotalRequests    int `json:"total_requests"`
	UsedDays         int `json:"used_days"`
	PendingRequests  int `json:"pending_requests"`
	ApprovedRequests int `json:"approved_requests"`
	RejectedRequests int `json:"rejected_requests"`
}

// GetStats aggregates balance and request counters for a user
func (s *LeaveService) GetStats(ctx context.Context, userID string) (*models.LeaveBalance, *LeaveStats, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	requests, err := s.store.GetLeaveRequestsByUser(userID, 0)
	if err != nil {
		return nil, nil, err
	}

	stats := &LeaveStats{TotalRequests: len(requests)}
	for _, r := range requests {
		switch r.Status {
		case models.LeavePending:
			stats.PendingRequests++
		case models.LeaveApproved:
			stats.ApprovedRequests++
			stats.UsedDays += r.Days
		case models.LeaveRejected:
			stats.RejectedRequests++
		}
	}
	return balance, stats, nil
}

// notify records a workflow notification; delivery failures are logged, not
// propagated (fire-and-forget).
func (s *LeaveService) notify(ctx context.Context, userID, notifType, title, message string, data map[string]interface{}) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.store.CreateNotification(notification); err != nil {
		log.Printf("Failed to create notification for %s: %v", userID, err)
	}
}

func (s *LeaveService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, balanceCacheKey(userID), requestsCacheKey(userID)); err != nil {
		log.Printf("Failed to invalidate leave caches for %s: %v", userID, err)
	}
}

func frenchLeaveType(leaveType string) string {
	switch leaveType {
	case models.LeavePaid:
		return "congés payés"
	case models.LeaveRTT:
		return "RTT"
	case models.LeaveSick:
		return "congé maladie"
	case models.LeaveUnpaid:
		return "congé sans solde"
	default:
		return leaveType
	}
}
