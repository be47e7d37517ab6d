package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

func newLeaveTestService() (*LeaveService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return NewLeaveService(store, cache.NewNoop()), store
}

func seedBalance(t *testing.T, store *storage.MemoryStore, userID string, paid, rtt, sick int) {
	t.Helper()
	err := store.CreateLeaveBalance(&models.LeaveBalance{
		UserID:    userID,
		Year:      time.Now().Year(),
		PaidLeave: paid,
		RTT:       rtt,
		SickLeave: sick,
	})
	require.NoError(t, err)
}

func TestCountBusinessDays(t *testing.T) {
	// 2026-08-03 is a Monday
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single weekday", monday, monday, 1},
		{"full work week", monday, monday.AddDate(0, 0, 4), 5},
		{"week including weekend", monday, monday.AddDate(0, 0, 6), 5},
		{"two full weeks", monday, monday.AddDate(0, 0, 11), 10},
		{"saturday only", monday.AddDate(0, 0, 5), monday.AddDate(0, 0, 5), 0},
		{"weekend only", monday.AddDate(0, 0, 5), monday.AddDate(0, 0, 6), 0},
		{"friday to monday", monday.AddDate(0, 0, 4), monday.AddDate(0, 0, 7), 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CountBusinessDays(tc.start, tc.end))
		})
	}
}

// Shifting any range by whole weeks must not change its business-day count.
func TestCountBusinessDaysWeekShiftInvariance(t *testing.T) {
	start := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC) // Wednesday
	end := start.AddDate(0, 0, 9)

	base := CountBusinessDays(start, end)
	for shift := 1; shift <= 4; shift++ {
		shifted := CountBusinessDays(start.AddDate(0, 0, 7*shift), end.AddDate(0, 0, 7*shift))
		assert.Equal(t, base, shifted, "shift of %d weeks", shift)
	}
}

func TestCreateRequestInvalidRange(t *testing.T) {
	svc, _ := newLeaveTestService()
	ctx := context.Background()
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, -3), "")
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
	})

	t.Run("weekend only", func(t *testing.T) {
		saturday := monday.AddDate(0, 0, 5)
		_, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, saturday, saturday.AddDate(0, 0, 1), "")
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
	})
}

func TestCreateRequestInsufficientBalance(t *testing.T) {
	svc, store := newLeaveTestService()
	ctx := context.Background()
	seedBalance(t, store, "u1", 3, 12, 0)

	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 4), "vacances")

	var balErr *InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, models.LeavePaid, balErr.Type)
	assert.Equal(t, 3, balErr.Available)
	assert.Equal(t, 5, balErr.Requested)

	// A refused request leaves no trace
	requests, err := store.GetLeaveRequestsByUser("u1", 0)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestCreateRequestStaysPending(t *testing.T) {
	svc, _ := newLeaveTestService()
	ctx := context.Background()
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	request, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 4), "été")
	require.NoError(t, err)

	assert.Equal(t, models.LeavePending, request.Status)
	assert.Equal(t, 5, request.Days)
	assert.Empty(t, request.ApprovedBy)

	// Balance untouched until approval
	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPaidLeave, balance.PaidLeave)
}

func TestCreateRequestAutoApproval(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	t.Run("one day RTT is auto-approved", func(t *testing.T) {
		svc, _ := newLeaveTestService()

		request, err := svc.CreateRequest(ctx, "u1", models.LeaveRTT, monday, monday, "rdv")
		require.NoError(t, err)

		assert.Equal(t, models.LeaveApproved, request.Status)
		assert.Equal(t, SystemApprover, request.ApprovedBy)
		require.NotNil(t, request.ApprovedAt)

		balance, err := svc.GetBalance(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultRTT-1, balance.RTT)
	})

	t.Run("one day sick leave needs review", func(t *testing.T) {
		svc, store := newLeaveTestService()
		seedBalance(t, store, "u1", 25, 12, 5)

		request, err := svc.CreateRequest(ctx, "u1", models.LeaveSick, monday, monday, "grippe")
		require.NoError(t, err)

		assert.Equal(t, models.LeavePending, request.Status)
	})

	t.Run("two days are not auto-approved", func(t *testing.T) {
		svc, _ := newLeaveTestService()

		request, err := svc.CreateRequest(ctx, "u1", models.LeaveRTT, monday, monday.AddDate(0, 0, 1), "")
		require.NoError(t, err)

		assert.Equal(t, models.LeavePending, request.Status)
	})
}

func TestApproveRequestDecrementsBalance(t *testing.T) {
	svc, store := newLeaveTestService()
	ctx := context.Background()
	seedBalance(t, store, "u1", 10, 12, 0)
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	request, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 4), "")
	require.NoError(t, err)

	approved, err := svc.ApproveRequest(ctx, request.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, approved.Status)
	assert.Equal(t, "manager-1", approved.ApprovedBy)

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, balance.PaidLeave)

	// The approval leaves a notification for the requester
	notifications, err := store.GetUserNotifications("u1", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationLeaveApproved, notifications[0].Type)
}

func TestApproveRequestNotPending(t *testing.T) {
	svc, store := newLeaveTestService()
	ctx := context.Background()
	seedBalance(t, store, "u1", 10, 12, 0)
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	request, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 2), "")
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, request.ID, "manager-1")
	require.NoError(t, err)

	// Second approval of the same request must be refused
	_, err = svc.ApproveRequest(ctx, request.ID, "manager-2")
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.LeaveApproved, stateErr.Status)

	// And the balance is only debited once
	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, balance.PaidLeave)
}

func TestApproveRequestInsufficientBalance(t *testing.T) {
	svc, store := newLeaveTestService()
	ctx := context.Background()
	seedBalance(t, store, "u1", 10, 12, 0)
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	// Two pending requests of 10 days each pass the advisory check, but only
	// one can survive the binding check at approval time.
	first, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 11), "")
	require.NoError(t, err)
	second, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday.AddDate(0, 0, 14), monday.AddDate(0, 0, 25), "")
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, first.ID, "manager-1")
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, second.ID, "manager-1")
	var balErr *InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, 0, balErr.Available)
	assert.Equal(t, 10, balErr.Requested)

	// The failed approval must not leave the request approved
	remaining, err := store.GetLeaveRequest(second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeavePending, remaining.Status)
}

// Two racing approvals of requests that together exceed the balance: exactly
// one must win, and the balance must never go negative.
func TestApproveRequestConcurrent(t *testing.T) {
	svc, store := newLeaveTestService()
	ctx := context.Background()
	seedBalance(t, store, "u1", 10, 12, 0)
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	first, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 11), "")
	require.NoError(t, err)
	second, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday.AddDate(0, 0, 14), monday.AddDate(0, 0, 25), "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, results[i] = svc.ApproveRequest(ctx, id, "manager-1")
		}(i, id)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			var balErr *InsufficientBalanceError
			assert.ErrorAs(t, err, &balErr)
		}
	}
	assert.Equal(t, 1, successes)

	balance, err := store.GetLeaveBalance("u1", time.Now().Year())
	require.NoError(t, err)
	assert.Equal(t, 0, balance.PaidLeave)
}

func TestRejectRequest(t *testing.T) {
	svc, _ := newLeaveTestService()
	ctx := context.Background()
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	request, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 4), "")
	require.NoError(t, err)

	rejected, err := svc.RejectRequest(ctx, request.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, rejected.Status)

	// Rejection never touches the balance
	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPaidLeave, balance.PaidLeave)

	// Terminal state: the rejected request cannot be approved afterwards
	_, err = svc.ApproveRequest(ctx, request.ID, "manager-1")
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestUnpaidLeaveSkipsBalance(t *testing.T) {
	svc, _ := newLeaveTestService()
	ctx := context.Background()
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	// 30 business days of unpaid leave, far beyond any counted balance
	request, err := svc.CreateRequest(ctx, "u1", models.LeaveUnpaid, monday, monday.AddDate(0, 0, 39), "sabbatique")
	require.NoError(t, err)

	approved, err := svc.ApproveRequest(ctx, request.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, approved.Status)

	balance, err := svc.GetBalance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPaidLeave, balance.PaidLeave)
	assert.Equal(t, models.DefaultRTT, balance.RTT)
}

func TestGetStats(t *testing.T) {
	svc, _ := newLeaveTestService()
	ctx := context.Background()
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	pending, err := svc.CreateRequest(ctx, "u1", models.LeavePaid, monday, monday.AddDate(0, 0, 4), "")
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, pending.ID, "manager-1")
	require.NoError(t, err)

	toReject, err := svc.CreateRequest(ctx, "u1", models.LeaveRTT, monday.AddDate(0, 0, 7), monday.AddDate(0, 0, 8), "")
	require.NoError(t, err)
	_, err = svc.RejectRequest(ctx, toReject.ID, "manager-1")
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, "u1", models.LeavePaid, monday.AddDate(0, 0, 14), monday.AddDate(0, 0, 18), "")
	require.NoError(t, err)

	_, stats, err := svc.GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRequests)
	assert.Equal(t, 1, stats.ApprovedRequests)
	assert.Equal(t, 1, stats.RejectedRequests)
	assert.Equal(t, 1, stats.PendingRequests)
	assert.Equal(t, 5, stats.UsedDays)
}
