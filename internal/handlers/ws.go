package handlers

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/services"
)

// Inbound websocket event types
const (
	wsSendMessage     = "send_message"
	wsQuickAction     = "quick_action"
	wsMessageFeedback = "message_feedback"
)

// inboundFrame is one JSON event received from the client
type inboundFrame struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message,omitempty"`
	Action    string                 `json:"action,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
	MessageID string                 `json:"messageId,omitempty"`
	Feedback  string                 `json:"feedback,omitempty"` // "up" or "down"
}

// outboundFrame is one JSON event sent to the client
type outboundFrame struct {
	Type      string                   `json:"type"`
	ID        string                   `json:"id,omitempty"`
	Content   string                   `json:"content,omitempty"`
	Intent    string                   `json:"intent,omitempty"`
	Actions   []models.SuggestedAction `json:"actions,omitempty"`
	Action    string                   `json:"action,omitempty"`
	Result    interface{}              `json:"result,omitempty"`
	Message   string                   `json:"message,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// WSHandler upgrades authenticated clients to a websocket session and
// bridges the connection to the orchestrator
type WSHandler struct {
	orchestrator *services.Orchestrator
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(orchestrator *services.Orchestrator) *WSHandler {
	return &WSHandler{orchestrator: orchestrator}
}

// Upgrade authenticates the token before the websocket upgrade. The user ID
// travels to the connection handler through fiber locals.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		token = c.Get("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}

	claims, err := h.orchestrator.Authenticate(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token d'authentification requis ou invalide",
		})
	}

	c.Locals("userID", claims.UserID)
	return c.Next()
}

// Serve runs one websocket connection until the client disconnects
func (h *WSHandler) Serve(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	channel := &wsChannel{conn: conn}
	session := h.orchestrator.Connect(userID, channel)
	defer h.orchestrator.Disconnect(session)

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			log.Printf("Websocket read ended for user %s: %v", userID, err)
			return
		}

		switch frame.Type {
		case wsSendMessage:
			if err := h.orchestrator.OnMessage(session, frame.Message); err != nil {
				log.Printf("Message enqueue failed for user %s: %v", userID, err)
			}
		case wsQuickAction:
			if err := h.orchestrator.OnQuickAction(session, frame.Action, frame.Params); err != nil {
				log.Printf("Action enqueue failed for user %s: %v", userID, err)
			}
		case wsMessageFeedback:
			feedbackType := models.FeedbackThumbsUp
			if frame.Feedback == "down" {
				feedbackType = models.FeedbackThumbsDown
			}
			if err := h.orchestrator.OnFeedback(session, frame.MessageID, feedbackType); err != nil {
				log.Printf("Feedback enqueue failed for user %s: %v", userID, err)
			}
		default:
			_ = channel.ErrorEvent("Type d'événement non reconnu.")
		}
	}
}

// wsChannel adapts a websocket connection to the orchestrator's Channel
// interface. Writes are serialized: the session worker and the read loop
// may emit concurrently.
type wsChannel struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsChannel) write(frame outboundFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(frame)
}

func (c *wsChannel) BotReply(message *models.Message) error {
	return c.write(outboundFrame{
		Type:      "bot_response",
		ID:        message.ID,
		Content:   message.Content,
		Intent:    message.Intent,
		Actions:   message.Actions,
		Timestamp: message.Timestamp,
	})
}

func (c *wsChannel) ActionResult(action string, result *services.ActionResult) error {
	return c.write(outboundFrame{
		Type:      "action_result",
		Action:    action,
		Result:    result.Result,
		Message:   result.Message,
		Timestamp: time.Now(),
	})
}

func (c *wsChannel) ErrorEvent(message string) error {
	return c.write(outboundFrame{
		Type:      "error",
		Message:   message,
		Timestamp: time.Now(),
	})
}

var _ services.Channel = (*wsChannel)(nil)
