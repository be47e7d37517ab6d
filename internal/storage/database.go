package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
)

// DatabaseStore implements Store on top of PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// User operations

func (s *DatabaseStore) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

// Conversation operations

func (s *DatabaseStore) GetActiveConversation(userID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.
		Where("user_id = ? AND status = ?", userID, models.ConversationActive).
		Order("last_activity_at DESC").
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (s *DatabaseStore) CreateConversation(conversation *models.Conversation) error {
	return s.db.Create(conversation).Error
}

func (s *DatabaseStore) TouchConversation(id string, at time.Time) error {
	return s.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_activity_at", at).Error
}

func (s *DatabaseStore) ArchiveConversation(id, userID string) (*models.Conversation, error) {
	now := time.Now()
	result := s.db.Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"status":   models.ConversationArchived,
			"ended_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var conversation models.Conversation
	if err := s.db.First(&conversation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (s *DatabaseStore) GetUserConversations(userID string, limit int) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	query := s.db.
		Where("user_id = ?", userID).
		Order("last_activity_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&conversations).Error
	return conversations, err
}

// Message operations

func (s *DatabaseStore) CreateMessage(message *models.Message) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("last_activity_at", message.Timestamp).Error
	})
}

func (s *DatabaseStore) GetMessage(id string) (*models.Message, error) {
	var message models.Message
	if err := s.db.First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (s *DatabaseStore) GetConversationMessages(conversationID string, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	query := s.db.
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&messages).Error
	return messages, err
}

// Feedback and intent-log operations

func (s *DatabaseStore) CreateFeedback(feedback *models.Feedback) error {
	return s.db.Create(feedback).Error
}

func (s *DatabaseStore) GetMessageFeedback(messageID string) ([]*models.Feedback, error) {
	var feedbacks []*models.Feedback
	err := s.db.Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&feedbacks).Error
	return feedbacks, err
}

func (s *DatabaseStore) CreateIntentLog(intentLog *models.IntentLog) error {
	return s.db.Create(intentLog).Error
}

func (s *DatabaseStore) GetUserIntentLogs(userID string, limit int) ([]*models.IntentLog, error) {
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logs []*models.IntentLog
	err := query.Find(&logs).Error
	return logs, err
}

// Leave balance operations

func (s *DatabaseStore) GetLeaveBalance(userID string, year int) (*models.LeaveBalance, error) {
	var balance models.LeaveBalance
	err := s.db.First(&balance, "user_id = ? AND year = ?", userID, year).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (s *DatabaseStore) CreateLeaveBalance(balance *models.LeaveBalance) error {
	return s.db.Create(balance).Error
}

// Leave request operations

func (s *DatabaseStore) CreateLeaveRequest(request *models.LeaveRequest) error {
	return s.db.Create(request).Error
}

func (s *DatabaseStore) GetLeaveRequest(id string) (*models.LeaveRequest, error) {
	var request models.LeaveRequest
	if err := s.db.First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (s *DatabaseStore) GetLeaveRequestsByUser(userID string, limit int) ([]*models.LeaveRequest, error) {
	var requests []*models.LeaveRequest
	query := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&requests).Error
	return requests, err
}

// ApproveLeaveRequest transitions a PENDING request to APPROVED and
// decrements the matching balance counter in one transaction. The decrement
// is a conditional UPDATE at the database ("counter = counter - days WHERE
// counter >= days"), so two concurrent approvals racing for the same balance
// can never both succeed: the loser's UPDATE matches zero rows and the whole
// transaction rolls back with ErrInsufficientBalance.
func (s *DatabaseStore) ApproveLeaveRequest(id, approvedBy string) (*models.LeaveRequest, error) {
	var approved models.LeaveRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.LeaveRequest
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		result := tx.Model(&models.LeaveRequest{}).
			Where("id = ? AND status = ?", id, models.LeavePending).
			Updates(map[string]interface{}{
				"status":      models.LeaveApproved,
				"approved_by": approvedBy,
				"approved_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidState
		}

		if column, counted := models.BalanceColumn(request.Type); counted {
			year := now.Year()
			decrement := tx.Model(&models.LeaveBalance{}).
				Where(fmt.Sprintf("user_id = ? AND year = ? AND %s >= ?", column), request.UserID, year, request.Days).
				Updates(map[string]interface{}{
					column:        gorm.Expr(fmt.Sprintf("%s - ?", column), request.Days),
					"last_update": now,
				})
			if decrement.Error != nil {
				return decrement.Error
			}
			if decrement.RowsAffected == 0 {
				return ErrInsufficientBalance
			}
		}

		request.Status = models.LeaveApproved
		request.ApprovedBy = approvedBy
		request.ApprovedAt = &now
		approved = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &approved, nil
}

// RejectLeaveRequest transitions a PENDING request to REJECTED. The balance
// is never touched on this path.
func (s *DatabaseStore) RejectLeaveRequest(id, rejectedBy string) (*models.LeaveRequest, error) {
	now := time.Now()
	result := s.db.Model(&models.LeaveRequest{}).
		Where("id = ? AND status = ?", id, models.LeavePending).
		Updates(map[string]interface{}{
			"status":      models.LeaveRejected,
			"approved_by": rejectedBy,
			"approved_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetLeaveRequest(id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidState
	}
	return s.GetLeaveRequest(id)
}

func (s *DatabaseStore) GetPendingLeaveRequestsOlderThan(cutoff time.Time) ([]*models.LeaveRequest, error) {
	var requests []*models.LeaveRequest
	err := s.db.
		Where("status = ? AND created_at < ?", models.LeavePending, cutoff).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

// Notification operations

func (s *DatabaseStore) CreateNotification(notification *models.Notification) error {
	return s.db.Create(notification).Error
}

func (s *DatabaseStore) GetUserNotifications(userID string, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	query := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}

// Payslip operations

func (s *DatabaseStore) GetUserPayslips(userID string, limit int) ([]*models.Payslip, error) {
	var payslips []*models.Payslip
	query := s.db.
		Where("user_id = ?", userID).
		Order("year DESC, month DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&payslips).Error
	return payslips, err
}

func (s *DatabaseStore) GetPayslip(userID, payslipID string) (*models.Payslip, error) {
	var payslip models.Payslip
	err := s.db.First(&payslip, "id = ? AND user_id = ?", payslipID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payslip, nil
}

func (s *DatabaseStore) CreatePayslip(payslip *models.Payslip) error {
	return s.db.Create(payslip).Error
}

// Training operations

func (s *DatabaseStore) GetActiveTrainings() ([]*models.Training, error) {
	var trainings []*models.Training
	err := s.db.
		Where("is_active = ?", true).
		Order("start_date ASC, title ASC").
		Find(&trainings).Error
	return trainings, err
}

func (s *DatabaseStore) GetTraining(id string) (*models.Training, error) {
	var training models.Training
	if err := s.db.First(&training, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &training, nil
}

func (s *DatabaseStore) CreateTraining(training *models.Training) error {
	return s.db.Create(training).Error
}

func (s *DatabaseStore) CreateEnrollment(enrollment *models.TrainingEnrollment) error {
	return s.db.Create(enrollment).Error
}

func (s *DatabaseStore) GetUserEnrollments(userID string) ([]*models.TrainingEnrollment, error) {
	var enrollments []*models.TrainingEnrollment
	err := s.db.
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}
