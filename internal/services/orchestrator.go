package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
)

// genericErrorMessage is the only failure text that ever reaches the
// channel for infrastructure errors; internals are logged, not leaked.
const genericErrorMessage = "Erreur lors du traitement de votre message."

// sessionQueueSize bounds the per-session inbox. A full inbox rejects the
// event instead of blocking the reader.
const sessionQueueSize = 32

// Channel is the outbound half of one client connection
type Channel interface {
	BotReply(message *models.Message) error
	ActionResult(action string, result *ActionResult) error
	ErrorEvent(message string) error
}

type eventKind int

const (
	eventMessage eventKind = iota
	eventAction
	eventFeedback
)

type inboundEvent struct {
	kind         eventKind
	text         string
	action       string
	params       map[string]interface{}
	messageID    string
	feedbackType string
}

// Session is one live connection of an authenticated user. All of its
// inbound traffic is funneled through a single worker goroutine, which is
// what guarantees strict per-session ordering.
type Session struct {
	ID              string
	UserID          string
	AuthenticatedAt time.Time
	LastActivityAt  time.Time

	channel Channel
	inbox   chan inboundEvent
	closed  chan struct{}
	once    sync.Once
}

// Orchestrator authenticates clients, binds sessions to channels and
// dispatches inbound traffic to the classifier, responder and action
// router. Sessions are independent: different users' messages are processed
// fully concurrently, and one session's failure never touches another.
type Orchestrator struct {
	auth       *AuthService
	chat       *ChatService
	classifier *Classifier
	responder  *Responder
	actions    *ActionRouter

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewOrchestrator creates a new session orchestrator
func NewOrchestrator(auth *AuthService, chat *ChatService, classifier *Classifier, responder *Responder, actions *ActionRouter) *Orchestrator {
	return &Orchestrator{
		auth:       auth,
		chat:       chat,
		classifier: classifier,
		responder:  responder,
		actions:    actions,
		sessions:   make(map[string]*Session),
	}
}

// Authenticate validates the credential token presented at connection time
func (o *Orchestrator) Authenticate(ctx context.Context, token string) (*Claims, error) {
	return o.auth.VerifyToken(ctx, token)
}

// Connect binds a new session to an authenticated user's channel and starts
// its worker
func (o *Orchestrator) Connect(userID string, channel Channel) *Session {
	now := time.Now()
	session := &Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		AuthenticatedAt: now,
		LastActivityAt:  now,
		channel:         channel,
		inbox:           make(chan inboundEvent, sessionQueueSize),
		closed:          make(chan struct{}),
	}

	o.mu.Lock()
	o.sessions[session.ID] = session
	o.mu.Unlock()

	go o.run(session)

	log.Printf("Session %s connected for user %s", session.ID, userID)
	return session
}

// Disconnect stops the session worker and releases the session. The user's
// conversation state survives in storage.
func (o *Orchestrator) Disconnect(session *Session) {
	session.once.Do(func() {
		close(session.closed)
	})

	o.mu.Lock()
	delete(o.sessions, session.ID)
	o.mu.Unlock()

	log.Printf("Session %s disconnected (user %s)", session.ID, session.UserID)
}

// ActiveSessions returns the number of live sessions (for monitoring)
func (o *Orchestrator) ActiveSessions() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.sessions)
}

// OnMessage enqueues a free-text message for in-order processing
func (o *Orchestrator) OnMessage(session *Session, text string) error {
	return o.enqueue(session, inboundEvent{kind: eventMessage, text: text})
}

// OnQuickAction enqueues a structured quick action
func (o *Orchestrator) OnQuickAction(session *Session, action string, params map[string]interface{}) error {
	return o.enqueue(session, inboundEvent{kind: eventAction, action: action, params: params})
}

// OnFeedback enqueues a thumbs reaction to one bot message
func (o *Orchestrator) OnFeedback(session *Session, messageID, feedbackType string) error {
	return o.enqueue(session, inboundEvent{kind: eventFeedback, messageID: messageID, feedbackType: feedbackType})
}

func (o *Orchestrator) enqueue(session *Session, event inboundEvent) error {
	// The closed check runs on its own: combined with the send in one
	// select, a buffered inbox would make both cases ready after Disconnect
	// and the event could be swallowed into a dead queue.
	select {
	case <-session.closed:
		return errors.New("session closed")
	default:
	}

	select {
	case session.inbox <- event:
		return nil
	default:
		// Inbox full: reject rather than block the connection reader.
		_ = session.channel.ErrorEvent("Trop de messages en attente, veuillez patienter.")
		return errors.New("session inbox full")
	}
}

// run drains the session inbox one event at a time. Because a session has
// exactly one run loop, message N fully completes before message N+1
// starts.
func (o *Orchestrator) run(session *Session) {
	for {
		select {
		case <-session.closed:
			return
		case event := <-session.inbox:
			session.LastActivityAt = time.Now()
			switch event.kind {
			case eventMessage:
				o.processMessage(session, event.text)
			case eventAction:
				o.processAction(session, event.action, event.params)
			case eventFeedback:
				o.processFeedback(session, event.messageID, event.feedbackType)
			}
		}
	}
}

// processMessage runs the full message path: persist the user message
// first, then classify, generate and persist the reply before emitting it.
// The user message is saved before any downstream work so history survives
// processing failures.
func (o *Orchestrator) processMessage(session *Session, text string) {
	ctx := context.Background()

	conversation, err := o.chat.GetOrCreateConversation(ctx, session.UserID)
	if err != nil {
		o.fail(session, "conversation lookup", err)
		return
	}

	userMessage := &models.Message{
		ConversationID: conversation.ID,
		UserID:         session.UserID,
		Author:         models.AuthorUser,
		Content:        text,
	}
	if _, err := o.chat.SaveMessage(ctx, userMessage); err != nil {
		o.fail(session, "user message save", err)
		return
	}

	classifyStart := time.Now()
	classification := o.classifier.Classify(text)

	// Analytics only: a failed write never blocks the reply.
	if err := o.chat.LogIntent(ctx, &models.IntentLog{
		UserID:           session.UserID,
		MessageID:        userMessage.ID,
		UserMessage:      text,
		DetectedIntent:   classification.Intent,
		Confidence:       classification.Confidence,
		Entities:         classification.Entities,
		ProcessingTimeMs: time.Since(classifyStart).Milliseconds(),
	}); err != nil {
		log.Printf("Session %s: intent log failed: %v", session.ID, err)
	}

	reply := o.responder.Generate(ctx, session.UserID, classification.Intent, classification.Entities, text)

	botMessage := &models.Message{
		ConversationID: conversation.ID,
		Author:         models.AuthorBot,
		Content:        reply.Content,
		Intent:         classification.Intent,
		Confidence:     classification.Confidence,
		Entities:       classification.Entities,
		Actions:        reply.Actions,
	}
	if _, err := o.chat.SaveMessage(ctx, botMessage); err != nil {
		o.fail(session, "bot message save", err)
		return
	}

	if err := session.channel.BotReply(botMessage); err != nil {
		log.Printf("Session %s: reply delivery failed: %v", session.ID, err)
	}
}

// processAction runs one quick action. Like free text, the action is
// persisted to the conversation before it is routed, and its outcome is
// saved as a bot message so history replays the same exchange the client
// saw. Business-rule violations are returned as readable action results;
// infrastructure failures degrade to the generic error event.
func (o *Orchestrator) processAction(session *Session, action string, params map[string]interface{}) {
	ctx := context.Background()

	conversation, err := o.chat.GetOrCreateConversation(ctx, session.UserID)
	if err != nil {
		o.fail(session, "conversation lookup", err)
		return
	}

	actionMessage := &models.Message{
		ConversationID: conversation.ID,
		UserID:         session.UserID,
		Author:         models.AuthorUser,
		Content:        action,
	}
	if _, err := o.chat.SaveMessage(ctx, actionMessage); err != nil {
		o.fail(session, "action message save", err)
		return
	}

	result, err := o.actions.Route(ctx, session.UserID, action, params)
	if err != nil {
		var insufficient *InsufficientBalanceError
		var invalidRange *InvalidRangeError
		var invalidState *InvalidStateError
		switch {
		case errors.As(err, &insufficient), errors.As(err, &invalidRange), errors.As(err, &invalidState):
			result = &ActionResult{Message: "❌ " + err.Error()}
		default:
			o.fail(session, "quick action "+action, err)
			return
		}
	}

	botMessage := &models.Message{
		ConversationID: conversation.ID,
		Author:         models.AuthorBot,
		Content:        result.Message,
	}
	if _, err := o.chat.SaveMessage(ctx, botMessage); err != nil {
		o.fail(session, "action result save", err)
		return
	}

	if err := session.channel.ActionResult(action, result); err != nil {
		log.Printf("Session %s: action result delivery failed: %v", session.ID, err)
	}
}

// processFeedback records a thumbs reaction. Feedback is best-effort: a
// rejected or failed save is logged and nothing is emitted back.
func (o *Orchestrator) processFeedback(session *Session, messageID, feedbackType string) {
	feedback := &models.Feedback{
		MessageID: messageID,
		UserID:    session.UserID,
		Type:      feedbackType,
	}
	if _, err := o.chat.SaveFeedback(context.Background(), feedback); err != nil {
		log.Printf("Session %s: feedback save failed: %v", session.ID, err)
	}
}

func (o *Orchestrator) fail(session *Session, context string, err error) {
	log.Printf("Session %s (%s): %s failed: %v", session.ID, session.UserID, context, err)
	if emitErr := session.channel.ErrorEvent(genericErrorMessage); emitErr != nil {
		log.Printf("Session %s: error event delivery failed: %v", session.ID, emitErr)
	}
}
