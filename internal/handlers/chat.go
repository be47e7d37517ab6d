package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/services"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

// ChatHandler serves the REST conversation-history endpoints
type ChatHandler struct {
	chat      *services.ChatService
	responder *services.Responder
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *services.ChatService, responder *services.Responder) *ChatHandler {
	return &ChatHandler{chat: chat, responder: responder}
}

// ListConversations returns the authenticated user's conversations
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	conversations, err := h.chat.GetUserConversations(c.Context(), userID, 10)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer les conversations")
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"conversations": conversations,
	})
}

// ListMessages returns the messages of one conversation in order
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	conversationID := c.Params("id")

	messages, err := h.chat.GetConversationMessages(c.Context(), conversationID, 50)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible de récupérer les messages")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"messages": messages,
	})
}

// SubmitFeedback records the authenticated user's reaction to a bot message
func (h *ChatHandler) SubmitFeedback(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var body struct {
		MessageID string `json:"message_id"`
		Type      string `json:"type"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
	}

	feedback := &models.Feedback{
		MessageID: body.MessageID,
		UserID:    userID,
		Type:      body.Type,
		Rating:    body.Rating,
		Comment:   body.Comment,
	}
	saved, err := h.chat.SaveFeedback(c.Context(), feedback)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Message introuvable")
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"feedback": saved,
	})
}

// Suggestions returns composer suggestion chips, personalized by the
// last_intent query parameter when present
func (h *ChatHandler) Suggestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":     true,
		"suggestions": h.responder.Suggestions(c.Query("last_intent")),
	})
}

// Archive ends the authenticated user's conversation
func (h *ChatHandler) Archive(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	conversationID := c.Params("id")

	conversation, err := h.chat.ArchiveConversation(c.Context(), conversationID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Conversation introuvable")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Impossible d'archiver la conversation")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"conversation": conversation,
	})
}
