package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

// pendingReminderAge is how long a request may sit PENDING before a
// reminder notification is recorded
const pendingReminderAge = 48 * time.Hour

// NotificationJob periodically records reminder notifications for leave
// requests stuck in PENDING
type NotificationJob struct {
	store    storage.Store
	interval time.Duration
	stop     chan struct{}
}

// NewNotificationJob creates a new notification job scheduler
func NewNotificationJob(store storage.Store) *NotificationJob {
	return &NotificationJob{
		store:    store,
		interval: 24 * time.Hour,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduled sweep
func (n *NotificationJob) Start() {
	log.Println("Starting pending leave request reminder job...")
	go n.run()
}

// Stop halts the scheduled sweep
func (n *NotificationJob) Stop() {
	close(n.stop)
	log.Println("Stopping pending leave request reminder job...")
}

func (n *NotificationJob) run() {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			n.sweepPendingRequests()
		}
	}
}

// sweepPendingRequests records one reminder per aged PENDING request
func (n *NotificationJob) sweepPendingRequests() {
	cutoff := time.Now().Add(-pendingReminderAge)
	requests, err := n.store.GetPendingLeaveRequestsOlderThan(cutoff)
	if err != nil {
		log.Printf("Pending request sweep failed: %v", err)
		return
	}

	for _, request := range requests {
		notification := &models.Notification{
			UserID: request.UserID,
			Type:   models.NotificationLeavePending,
			Title:  "Demande de congés en attente",
			Message: fmt.Sprintf("Votre demande de %d jour(s) du %s est toujours en attente de validation.",
				request.Days, request.StartDate.Format("02/01/2006")),
			Data: map[string]interface{}{"requestId": request.ID},
		}
		if err := n.store.CreateNotification(notification); err != nil {
			log.Printf("Failed to create reminder notification for request %s: %v", request.ID, err)
		}
	}

	if len(requests) > 0 {
		log.Printf("Recorded %d pending leave request reminder(s)", len(requests))
	}
}
