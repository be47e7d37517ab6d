package storage

import (
	"errors"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
)

// Sentinel errors shared by all Store implementations
var (
	// ErrNotFound means the requested entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means a leave request transition was attempted from a
	// terminal state (only PENDING requests can be approved or rejected)
	ErrInvalidState = errors.New("leave request is not pending")

	// ErrInsufficientBalance means the conditional balance decrement matched
	// no row: the remaining balance cannot cover the requested days
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// Store defines the interface for storage operations
type Store interface {
	// User operations
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error

	// Conversation operations
	GetActiveConversation(userID string) (*models.Conversation, error)
	CreateConversation(conversation *models.Conversation) error
	TouchConversation(id string, at time.Time) error
	ArchiveConversation(id, userID string) (*models.Conversation, error)
	GetUserConversations(userID string, limit int) ([]*models.Conversation, error)

	// Message operations
	CreateMessage(message *models.Message) error
	GetMessage(id string) (*models.Message, error)
	GetConversationMessages(conversationID string, limit int) ([]*models.Message, error)

	// Feedback and intent-log operations (write-only on the hot path)
	CreateFeedback(feedback *models.Feedback) error
	GetMessageFeedback(messageID string) ([]*models.Feedback, error)
	CreateIntentLog(intentLog *models.IntentLog) error
	GetUserIntentLogs(userID string, limit int) ([]*models.IntentLog, error)

	// Leave balance operations
	GetLeaveBalance(userID string, year int) (*models.LeaveBalance, error)
	CreateLeaveBalance(balance *models.LeaveBalance) error

	// Leave request operations. ApproveLeaveRequest performs the
	// PENDING->APPROVED transition and the conditional balance decrement
	// ("column = column - days WHERE column >= days") as a single unit of
	// work: either both apply or neither does. RejectLeaveRequest flips the
	// status only and never touches the balance.
	CreateLeaveRequest(request *models.LeaveRequest) error
	GetLeaveRequest(id string) (*models.LeaveRequest, error)
	GetLeaveRequestsByUser(userID string, limit int) ([]*models.LeaveRequest, error)
	ApproveLeaveRequest(id, approvedBy string) (*models.LeaveRequest, error)
	RejectLeaveRequest(id, rejectedBy string) (*models.LeaveRequest, error)
	GetPendingLeaveRequestsOlderThan(cutoff time.Time) ([]*models.LeaveRequest, error)

	// Notification operations
	CreateNotification(notification *models.Notification) error
	GetUserNotifications(userID string, limit int) ([]*models.Notification, error)

	// Payslip operations
	GetUserPayslips(userID string, limit int) ([]*models.Payslip, error)
	GetPayslip(userID, payslipID string) (*models.Payslip, error)
	CreatePayslip(payslip *models.Payslip) error

	// Training operations
	GetActiveTrainings() ([]*models.Training, error)
	GetTraining(id string) (*models.Training, error)
	CreateTraining(training *models.Training) error
	CreateEnrollment(enrollment *models.TrainingEnrollment) error
	GetUserEnrollments(userID string) ([]*models.TrainingEnrollment, error)
}
