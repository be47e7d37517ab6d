package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

func TestGetOrCreateConversation(t *testing.T) {
	svc := NewChatService(storage.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.GetOrCreateConversation(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ConversationActive, first.Status)
	assert.Contains(t, first.Title, "Conversation")

	// The active conversation is reused, not duplicated
	second, err := svc.GetOrCreateConversation(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Other users get their own conversation
	other, err := svc.GetOrCreateConversation(ctx, "u2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestArchiveConversationStartsFresh(t *testing.T) {
	svc := NewChatService(storage.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.GetOrCreateConversation(ctx, "u1")
	require.NoError(t, err)

	archived, err := svc.ArchiveConversation(ctx, first.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ConversationArchived, archived.Status)

	// The next message opens a new conversation
	next, err := svc.GetOrCreateConversation(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Equal(t, models.ConversationActive, next.Status)
}

func TestArchiveConversationWrongOwner(t *testing.T) {
	svc := NewChatService(storage.NewMemoryStore())
	ctx := context.Background()

	conversation, err := svc.GetOrCreateConversation(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.ArchiveConversation(ctx, conversation.ID, "u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveMessageSetsTimestamp(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewChatService(store)
	ctx := context.Background()

	conversation, err := svc.GetOrCreateConversation(ctx, "u1")
	require.NoError(t, err)

	saved, err := svc.SaveMessage(ctx, &models.Message{
		ConversationID: conversation.ID,
		UserID:         "u1",
		Author:         models.AuthorUser,
		Content:        "Bonjour",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.Timestamp.IsZero())

	messages, err := svc.GetConversationMessages(ctx, conversation.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Bonjour", messages[0].Content)
}

func TestSaveFeedback(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewChatService(store)
	ctx := context.Background()

	conversation, err := svc.GetOrCreateConversation(ctx, "u1")
	require.NoError(t, err)
	message, err := svc.SaveMessage(ctx, &models.Message{
		ConversationID: conversation.ID,
		Author:         models.AuthorBot,
		Content:        "Bonjour !",
	})
	require.NoError(t, err)

	t.Run("thumbs up", func(t *testing.T) {
		saved, err := svc.SaveFeedback(ctx, &models.Feedback{
			MessageID: message.ID,
			UserID:    "u1",
			Type:      models.FeedbackThumbsUp,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		feedbacks, err := store.GetMessageFeedback(message.ID)
		require.NoError(t, err)
		require.Len(t, feedbacks, 1)
		assert.Equal(t, models.FeedbackThumbsUp, feedbacks[0].Type)
	})

	t.Run("rating with comment", func(t *testing.T) {
		_, err := svc.SaveFeedback(ctx, &models.Feedback{
			MessageID: message.ID,
			UserID:    "u1",
			Type:      models.FeedbackRating,
			Rating:    4,
			Comment:   "Réponse claire",
		})
		require.NoError(t, err)
	})

	t.Run("unknown message", func(t *testing.T) {
		_, err := svc.SaveFeedback(ctx, &models.Feedback{
			MessageID: "missing",
			UserID:    "u1",
			Type:      models.FeedbackThumbsDown,
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := svc.SaveFeedback(ctx, &models.Feedback{
			MessageID: message.ID,
			UserID:    "u1",
			Type:      "SHRUG",
		})
		assert.Error(t, err)
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, err := svc.SaveFeedback(ctx, &models.Feedback{
			MessageID: message.ID,
			UserID:    "u1",
			Type:      models.FeedbackRating,
			Rating:    6,
		})
		assert.Error(t, err)
	})

	t.Run("comment too long", func(t *testing.T) {
		_, err := svc.SaveFeedback(ctx, &models.Feedback{
			MessageID: message.ID,
			UserID:    "u1",
			Type:      models.FeedbackComment,
			Comment:   strings.Repeat("a", 1001),
		})
		assert.Error(t, err)
	})
}

func TestLogIntent(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewChatService(store)
	ctx := context.Background()

	require.NoError(t, svc.LogIntent(ctx, &models.IntentLog{
		UserID:         "u1",
		UserMessage:    "Quel est mon solde de congés ?",
		DetectedIntent: IntentLeaveBalance,
		Confidence:     0.8,
	}))

	logs, err := store.GetUserIntentLogs("u1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, IntentLeaveBalance, logs[0].DetectedIntent)
}
