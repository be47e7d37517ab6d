package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local development
// (USE_MEMORY_STORE=true); not for production.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[string]*models.User
	conversations map[string]*models.Conversation
	messages      map[string]*models.Message
	feedbacks     map[string]*models.Feedback
	intentLogs    map[string]*models.IntentLog
	balances      map[string]*models.LeaveBalance // keyed by userID:year
	requests      map[string]*models.LeaveRequest
	notifications map[string]*models.Notification
	payslips      map[string]*models.Payslip
	trainings     map[string]*models.Training
	enrollments   map[string]*models.TrainingEnrollment
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string]*models.Message),
		feedbacks:     make(map[string]*models.Feedback),
		intentLogs:    make(map[string]*models.IntentLog),
		balances:      make(map[string]*models.LeaveBalance),
		requests:      make(map[string]*models.LeaveRequest),
		notifications: make(map[string]*models.Notification),
		payslips:      make(map[string]*models.Payslip),
		trainings:     make(map[string]*models.Training),
		enrollments:   make(map[string]*models.TrainingEnrollment),
	}
}

func balanceKey(userID string, year int) string {
	return fmt.Sprintf("%s:%d", userID, year)
}

// User operations

func (m *MemoryStore) GetUser(id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// Conversation operations

func (m *MemoryStore) GetActiveConversation(userID string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.Conversation
	for _, c := range m.conversations {
		if c.UserID != userID || c.Status != models.ConversationActive {
			continue
		}
		if latest == nil || c.LastActivityAt.After(latest.LastActivityAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *MemoryStore) CreateConversation(conversation *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}
	if conversation.Status == "" {
		conversation.Status = models.ConversationActive
	}
	if conversation.LastActivityAt.IsZero() {
		conversation.LastActivityAt = time.Now()
	}
	conversation.CreatedAt = time.Now()
	copied := *conversation
	m.conversations[conversation.ID] = &copied
	return nil
}

func (m *MemoryStore) TouchConversation(id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conversation, exists := m.conversations[id]
	if !exists {
		return ErrNotFound
	}
	conversation.LastActivityAt = at
	return nil
}

func (m *MemoryStore) ArchiveConversation(id, userID string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conversation, exists := m.conversations[id]
	if !exists || conversation.UserID != userID {
		return nil, ErrNotFound
	}
	now := time.Now()
	conversation.Status = models.ConversationArchived
	conversation.EndedAt = &now
	copied := *conversation
	return &copied, nil
}

func (m *MemoryStore) GetUserConversations(userID string, limit int) ([]*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var conversations []*models.Conversation
	for _, c := range m.conversations {
		if c.UserID == userID {
			copied := *c
			conversations = append(conversations, &copied)
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastActivityAt.After(conversations[j].LastActivityAt)
	})
	if limit > 0 && len(conversations) > limit {
		conversations = conversations[:limit]
	}
	return conversations, nil
}

// Message operations

func (m *MemoryStore) CreateMessage(message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	message.CreatedAt = time.Now()
	copied := *message
	m.messages[message.ID] = &copied

	if conversation, exists := m.conversations[message.ConversationID]; exists {
		conversation.LastActivityAt = message.Timestamp
	}
	return nil
}

func (m *MemoryStore) GetMessage(id string) (*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	message, exists := m.messages[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *message
	return &copied, nil
}

func (m *MemoryStore) GetConversationMessages(conversationID string, limit int) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var messages []*models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			copied := *msg
			messages = append(messages, &copied)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

// Feedback and intent-log operations

func (m *MemoryStore) CreateFeedback(feedback *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	feedback.CreatedAt = time.Now()
	copied := *feedback
	m.feedbacks[feedback.ID] = &copied
	return nil
}

func (m *MemoryStore) GetMessageFeedback(messageID string) ([]*models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Feedback
	for _, feedback := range m.feedbacks {
		if feedback.MessageID == messageID {
			copied := *feedback
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryStore) CreateIntentLog(intentLog *models.IntentLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if intentLog.ID == "" {
		intentLog.ID = uuid.NewString()
	}
	intentLog.CreatedAt = time.Now()
	copied := *intentLog
	m.intentLogs[intentLog.ID] = &copied
	return nil
}

func (m *MemoryStore) GetUserIntentLogs(userID string, limit int) ([]*models.IntentLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.IntentLog
	for _, entry := range m.intentLogs {
		if entry.UserID == userID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Leave balance operations

func (m *MemoryStore) GetLeaveBalance(userID string, year int) (*models.LeaveBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	balance, exists := m.balances[balanceKey(userID, year)]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *balance
	return &copied, nil
}

func (m *MemoryStore) CreateLeaveBalance(balance *models.LeaveBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if balance.ID == "" {
		balance.ID = uuid.NewString()
	}
	if balance.LastUpdate.IsZero() {
		balance.LastUpdate = time.Now()
	}
	balance.CreatedAt = time.Now()
	copied := *balance
	m.balances[balanceKey(balance.UserID, balance.Year)] = &copied
	return nil
}

// Leave request operations

func (m *MemoryStore) CreateLeaveRequest(request *models.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.LeavePending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	request.UpdatedAt = request.CreatedAt
	copied := *request
	m.requests[request.ID] = &copied
	return nil
}

func (m *MemoryStore) GetLeaveRequest(id string) (*models.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	request, exists := m.requests[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (m *MemoryStore) GetLeaveRequestsByUser(userID string, limit int) ([]*models.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var requests []*models.LeaveRequest
	for _, r := range m.requests {
		if r.UserID == userID {
			copied := *r
			requests = append(requests, &copied)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	if limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}
	return requests, nil
}

// ApproveLeaveRequest applies the status transition and the balance
// decrement under one lock, mirroring the database transaction: both halves
// apply or neither does.
func (m *MemoryStore) ApproveLeaveRequest(id, approvedBy string) (*models.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, exists := m.requests[id]
	if !exists {
		return nil, ErrNotFound
	}
	if request.Status != models.LeavePending {
		return nil, ErrInvalidState
	}

	now := time.Now()
	if _, counted := models.BalanceColumn(request.Type); counted {
		balance, ok := m.balances[balanceKey(request.UserID, now.Year())]
		if !ok {
			return nil, ErrInsufficientBalance
		}
		switch request.Type {
		case models.LeavePaid:
			if balance.PaidLeave < request.Days {
				return nil, ErrInsufficientBalance
			}
			balance.PaidLeave -= request.Days
		case models.LeaveRTT:
			if balance.RTT < request.Days {
				return nil, ErrInsufficientBalance
			}
			balance.RTT -= request.Days
		case models.LeaveSick:
			if balance.SickLeave < request.Days {
				return nil, ErrInsufficientBalance
			}
			balance.SickLeave -= request.Days
		}
		balance.LastUpdate = now
	}

	request.Status = models.LeaveApproved
	request.ApprovedBy = approvedBy
	request.ApprovedAt = &now
	request.UpdatedAt = now
	copied := *request
	return &copied, nil
}

func (m *MemoryStore) RejectLeaveRequest(id, rejectedBy string) (*models.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, exists := m.requests[id]
	if !exists {
		return nil, ErrNotFound
	}
	if request.Status != models.LeavePending {
		return nil, ErrInvalidState
	}

	now := time.Now()
	request.Status = models.LeaveRejected
	request.ApprovedBy = rejectedBy
	request.ApprovedAt = &now
	request.UpdatedAt = now
	copied := *request
	return &copied, nil
}

func (m *MemoryStore) GetPendingLeaveRequestsOlderThan(cutoff time.Time) ([]*models.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var requests []*models.LeaveRequest
	for _, r := range m.requests {
		if r.Status == models.LeavePending && r.CreatedAt.Before(cutoff) {
			copied := *r
			requests = append(requests, &copied)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests, nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now()
	copied := *notification
	m.notifications[notification.ID] = &copied
	return nil
}

func (m *MemoryStore) GetUserNotifications(userID string, limit int) ([]*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var notifications []*models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			copied := *n
			notifications = append(notifications, &copied)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

// Payslip operations

func (m *MemoryStore) GetUserPayslips(userID string, limit int) ([]*models.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var payslips []*models.Payslip
	for _, p := range m.payslips {
		if p.UserID == userID {
			copied := *p
			payslips = append(payslips, &copied)
		}
	}
	sort.Slice(payslips, func(i, j int) bool {
		if payslips[i].Year != payslips[j].Year {
			return payslips[i].Year > payslips[j].Year
		}
		return payslips[i].Month > payslips[j].Month
	})
	if limit > 0 && len(payslips) > limit {
		payslips = payslips[:limit]
	}
	return payslips, nil
}

func (m *MemoryStore) GetPayslip(userID, payslipID string) (*models.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payslip, exists := m.payslips[payslipID]
	if !exists || payslip.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *payslip
	return &copied, nil
}

func (m *MemoryStore) CreatePayslip(payslip *models.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if payslip.ID == "" {
		payslip.ID = uuid.NewString()
	}
	payslip.CreatedAt = time.Now()
	copied := *payslip
	m.payslips[payslip.ID] = &copied
	return nil
}

// Training operations

func (m *MemoryStore) GetActiveTrainings() ([]*models.Training, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var trainings []*models.Training
	for _, t := range m.trainings {
		if t.IsActive {
			copied := *t
			trainings = append(trainings, &copied)
		}
	}
	sort.Slice(trainings, func(i, j int) bool {
		if trainings[i].StartDate.Equal(trainings[j].StartDate) {
			return trainings[i].Title < trainings[j].Title
		}
		return trainings[i].StartDate.Before(trainings[j].StartDate)
	})
	return trainings, nil
}

func (m *MemoryStore) GetTraining(id string) (*models.Training, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	training, exists := m.trainings[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *training
	return &copied, nil
}

func (m *MemoryStore) CreateTraining(training *models.Training) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	training.CreatedAt = time.Now()
	copied := *training
	m.trainings[training.ID] = &copied
	return nil
}

func (m *MemoryStore) CreateEnrollment(enrollment *models.TrainingEnrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now()
	}
	enrollment.CreatedAt = time.Now()
	copied := *enrollment
	m.enrollments[enrollment.ID] = &copied
	return nil
}

func (m *MemoryStore) GetUserEnrollments(userID string) ([]*models.TrainingEnrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var enrollments []*models.TrainingEnrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			copied := *e
			enrollments = append(enrollments, &copied)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool {
		return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt)
	})
	return enrollments, nil
}
