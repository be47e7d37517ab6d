package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

func TestSweepPendingRequests(t *testing.T) {
	store := storage.NewMemoryStore()
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	// Aged PENDING request: gets a reminder
	aged := &models.LeaveRequest{
		UserID:    "u1",
		Type:      models.LeavePaid,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 4),
		Days:      5,
		Status:    models.LeavePending,
		CreatedAt: time.Now().Add(-72 * time.Hour),
	}
	require.NoError(t, store.CreateLeaveRequest(aged))

	// Fresh PENDING request: too recent
	fresh := &models.LeaveRequest{
		UserID:    "u1",
		Type:      models.LeaveRTT,
		StartDate: monday,
		EndDate:   monday,
		Days:      1,
		Status:    models.LeavePending,
	}
	require.NoError(t, store.CreateLeaveRequest(fresh))

	// Aged but already handled: not PENDING anymore
	handled := &models.LeaveRequest{
		UserID:    "u2",
		Type:      models.LeavePaid,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 1),
		Days:      2,
		Status:    models.LeaveApproved,
		CreatedAt: time.Now().Add(-96 * time.Hour),
	}
	require.NoError(t, store.CreateLeaveRequest(handled))

	job := NewNotificationJob(store)
	job.sweepPendingRequests()

	notifications, err := store.GetUserNotifications("u1", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationLeavePending, notifications[0].Type)
	assert.Equal(t, aged.ID, notifications[0].Data["requestId"])

	other, err := store.GetUserNotifications("u2", 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}
