package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

// ChatService persists conversations and messages
type ChatService struct {
	store storage.Store
}

// NewChatService creates a new chat service
func NewChatService(store storage.Store) *ChatService {
	return &ChatService{store: store}
}

// GetOrCreateConversation returns the user's ACTIVE conversation, creating
// one lazily on first message. A user has at most one active conversation.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userID string) (*models.Conversation, error) {
	conversation, err := s.store.GetActiveConversation(userID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	conversation = &models.Conversation{
		UserID: userID,
		Title:  fmt.Sprintf("Conversation %s", time.Now().Format("02/01/2006")),
		Status: models.ConversationActive,
	}
	if err := s.store.CreateConversation(conversation); err != nil {
		return nil, err
	}
	log.Printf("Conversation created for user %s", userID)
	return conversation, nil
}

// SaveMessage appends a message to its conversation and refreshes the
// conversation activity timestamp
func (s *ChatService) SaveMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	if err := s.store.CreateMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetConversationMessages returns the messages of a conversation in
// timestamp order
func (s *ChatService) GetConversationMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	return s.store.GetConversationMessages(conversationID, limit)
}

// GetUserConversations lists a user's conversations, most recent first
func (s *ChatService) GetUserConversations(ctx context.Context, userID string, limit int) ([]*models.Conversation, error) {
	return s.store.GetUserConversations(userID, limit)
}

var validFeedbackTypes = map[string]bool{
	models.FeedbackThumbsUp:   true,
	models.FeedbackThumbsDown: true,
	models.FeedbackRating:     true,
	models.FeedbackComment:    true,
	models.FeedbackBugReport:  true,
}

// SaveFeedback records a user's reaction to a bot message. The message must
// exist; rating is 1-5 and only meaningful for RATING feedback.
func (s *ChatService) SaveFeedback(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error) {
	if !validFeedbackTypes[feedback.Type] {
		return nil, fmt.Errorf("type de feedback invalide: %s", feedback.Type)
	}
	if feedback.Rating != 0 && (feedback.Rating < 1 || feedback.Rating > 5) {
		return nil, errors.New("la note doit être comprise entre 1 et 5")
	}
	if len(feedback.Comment) > 1000 {
		return nil, errors.New("le commentaire ne doit pas dépasser 1000 caractères")
	}
	if _, err := s.store.GetMessage(feedback.MessageID); err != nil {
		return nil, err
	}
	if err := s.store.CreateFeedback(feedback); err != nil {
		return nil, err
	}
	log.Printf("👍 Feedback %s saved for message %s", feedback.Type, feedback.MessageID)
	return feedback, nil
}

// LogIntent records a classification outcome. Called fire-and-forget from the
// session worker; a failed write only costs an analytics row.
func (s *ChatService) LogIntent(ctx context.Context, entry *models.IntentLog) error {
	return s.store.CreateIntentLog(entry)
}

// ArchiveConversation ends a conversation. Archived conversations are kept
// forever; the next message starts a fresh one.
func (s *ChatService) ArchiveConversation(ctx context.Context, conversationID, userID string) (*models.Conversation, error) {
	conversation, err := s.store.ArchiveConversation(conversationID, userID)
	if err != nil {
		return nil, err
	}
	log.Printf("Conversation %s archived by user %s", conversationID, userID)
	return conversation, nil
}
