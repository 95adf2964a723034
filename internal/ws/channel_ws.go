package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"storechat/internal/middleware"
	"storechat/internal/models"
	"storechat/internal/observability"
	"storechat/internal/repositories"
)

// ChannelHandler serves the messaging channel endpoint: one websocket per
// mounted client session, speaking the event envelope protocol.
type ChannelHandler struct {
	hub           *Hub
	sessions      middleware.SessionStore
	users         repositories.UserRepository
	products      repositories.ProductRepository
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
}

// NewChannelHandler constructs a ChannelHandler.
func NewChannelHandler(hub *Hub, sessions middleware.SessionStore, users repositories.UserRepository,
	products repositories.ProductRepository, conversations repositories.ConversationRepository,
	messages repositories.MessageRepository) *ChannelHandler {
	return &ChannelHandler{
		hub:           hub,
		sessions:      sessions,
		users:         users,
		products:      products,
		conversations: conversations,
		messages:      messages,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the session cookie, upgrades the connection and runs
// the event loop until the client goes away.
func (h *ChannelHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("storechat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token, err := c.Cookie(middleware.SessionCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	userID, ok := h.sessions.Lookup(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	cl := NewClient(conn)
	h.hub.AddClient(userID, cl, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycle(ctx, info, "ws_connect", "")

	// The request context dies when this handler returns, but the hijacked
	// connection outlives it; the read loop needs a context that survives
	// for its repository calls.
	go h.readLoop(context.WithoutCancel(ctx), cl, info)
}

func (h *ChannelHandler) readLoop(ctx context.Context, cl *Client, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.RemoveClient(info.UserID, cl)
		cl.conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycle(ctx, info, "ws_disconnect", closeReason)
	}()

	for {
		var env struct {
			Event string          `json:"event"`
			AckID string          `json:"ackId"`
			Data  json.RawMessage `json:"data"`
		}
		if err := cl.conn.ReadJSON(&env); err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}

		observability.IncWSEvent(env.Event)
		h.dispatch(ctx, cl, info.UserID, env.Event, env.AckID, env.Data)
	}
}

func (h *ChannelHandler) dispatch(ctx context.Context, cl *Client, userID int, event, ackID string, data json.RawMessage) {
	switch event {
	case models.EventListConversations:
		h.listConversations(ctx, cl, userID)
	case models.EventJoinConversation:
		var req models.JoinConversation
		if err := json.Unmarshal(data, &req); err != nil {
			h.pushError(cl, "invalid joinConversation payload")
			return
		}
		h.joinConversation(ctx, cl, userID, req.ChatID)
	case models.EventCreateConversation:
		var req models.CreateConversationAndMessage
		if err := json.Unmarshal(data, &req); err != nil {
			h.ack(cl, ackID, models.Ack{Error: "invalid payload"})
			return
		}
		h.createConversationAndMessage(ctx, cl, userID, ackID, req)
	case models.EventSendMessage:
		var req models.SendMessage
		if err := json.Unmarshal(data, &req); err != nil {
			h.ack(cl, ackID, models.Ack{Error: "invalid payload"})
			return
		}
		h.sendMessage(ctx, cl, userID, ackID, req)
	default:
		h.pushError(cl, "unknown event: "+event)
	}
}

func (h *ChannelHandler) listConversations(ctx context.Context, cl *Client, userID int) {
	conversations, err := h.conversations.ListForUser(ctx, userID)
	if err != nil {
		log.Printf("list conversations for user %d: %v", userID, err)
		h.pushError(cl, "failed to load conversations")
		return
	}
	h.push(cl, models.EventConversationsListed, models.ConversationsListed{Conversations: conversations})
}

func (h *ChannelHandler) joinConversation(ctx context.Context, cl *Client, userID, chatID int) {
	buyerID, sellerID, err := h.conversations.Participants(ctx, chatID)
	if err != nil {
		h.pushError(cl, "chat not found")
		return
	}
	if userID != buyerID && userID != sellerID {
		h.pushError(cl, "not a chat participant")
		return
	}

	stored, err := h.messages.ListMessages(ctx, chatID)
	if err != nil {
		log.Printf("list messages for chat %d: %v", chatID, err)
		h.pushError(cl, "failed to load messages")
		return
	}
	if len(stored) == 0 {
		// Historical backend quirk the client depends on: an empty history
		// arrives as an error push, not an empty messages_listed.
		h.pushError(cl, models.NoMessagesFound)
		return
	}

	otherID := sellerID
	if userID == sellerID {
		otherID = buyerID
	}
	currentImage, otherImage := h.avatars(ctx, userID, otherID)

	payload := models.MessagesListed{
		ChatID:             chatID,
		Messages:           make([]models.Message, len(stored)),
		IsCurrentUserImage: currentImage,
		OtherUserImage:     otherImage,
	}
	for i, m := range stored {
		payload.Messages[i] = models.Message{
			ID:            m.ID,
			Content:       m.Content,
			IsCurrentUser: m.SenderID == userID,
			CreatedAt:     m.CreatedAt,
		}
	}
	h.push(cl, models.EventMessagesListed, payload)
}

func (h *ChannelHandler) createConversationAndMessage(ctx context.Context, cl *Client, userID int, ackID string, req models.CreateConversationAndMessage) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		h.ack(cl, ackID, models.Ack{Error: "message content is empty"})
		return
	}

	product, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		h.ack(cl, ackID, models.Ack{Error: "product not found"})
		return
	}
	if product.SellerID == userID {
		h.ack(cl, ackID, models.Ack{Error: "cannot start a conversation about your own product"})
		return
	}

	chat, err := h.conversations.CreateConversation(ctx, req.ProductID, userID)
	if err != nil {
		log.Printf("create conversation: %v", err)
		h.ack(cl, ackID, models.Ack{Error: "failed to create conversation"})
		return
	}

	msg, err := h.messages.CreateMessage(ctx, chat.ID, userID, content)
	if err != nil {
		log.Printf("create message: %v", err)
		h.ack(cl, ackID, models.Ack{Error: "failed to store message"})
		return
	}

	h.ack(cl, ackID, models.Ack{
		Success: true,
		ChatID:  chat.ID,
		Message: &models.Message{ID: msg.ID, Content: msg.Content, CreatedAt: msg.CreatedAt},
	})
	h.broadcast(cl, msg, userID, []int{chat.BuyerID, product.SellerID})
}

func (h *ChannelHandler) sendMessage(ctx context.Context, cl *Client, userID int, ackID string, req models.SendMessage) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		h.ack(cl, ackID, models.Ack{Error: "message content is empty"})
		return
	}

	buyerID, sellerID, err := h.conversations.Participants(ctx, req.ChatID)
	if err != nil {
		h.ack(cl, ackID, models.Ack{Error: "chat not found"})
		return
	}
	if userID != buyerID && userID != sellerID {
		h.ack(cl, ackID, models.Ack{Error: "not a chat participant"})
		return
	}

	msg, err := h.messages.CreateMessage(ctx, req.ChatID, userID, content)
	if err != nil {
		log.Printf("create message: %v", err)
		h.ack(cl, ackID, models.Ack{Error: "failed to store message"})
		return
	}

	h.ack(cl, ackID, models.Ack{
		Success: true,
		Message: &models.Message{ID: msg.ID, Content: msg.Content, CreatedAt: msg.CreatedAt},
	})
	h.broadcast(cl, msg, userID, []int{buyerID, sellerID})
}

// broadcast fans a stored message out to every participant connection except
// the originating one, computing isCurrentUser per recipient.
func (h *ChannelHandler) broadcast(origin *Client, msg models.StoredMessage, senderID int, participantIDs []int) {
	for _, uid := range participantIDs {
		h.hub.SendToUser(uid, envelope{
			Event: models.EventMessageCreated,
			Data: models.MessageCreated{Data: models.CreatedMessage{
				ChatID: msg.ChatID,
				Message: models.Message{
					ID:            msg.ID,
					Content:       msg.Content,
					IsCurrentUser: uid == senderID,
					CreatedAt:     msg.CreatedAt,
				},
			}},
		}, origin)
	}
}

func (h *ChannelHandler) avatars(ctx context.Context, userID, otherID int) (string, string) {
	var currentImage, otherImage string
	if user, err := h.users.GetUser(ctx, userID); err == nil {
		currentImage = user.Image
	}
	if other, err := h.users.GetUser(ctx, otherID); err == nil {
		otherImage = other.Image
	}
	return currentImage, otherImage
}

func (h *ChannelHandler) push(cl *Client, event string, data any) {
	if err := cl.send(envelope{Event: event, Data: data}); err != nil {
		log.Printf("websocket push %s: %v", event, err)
	}
}

func (h *ChannelHandler) pushError(cl *Client, message string) {
	h.push(cl, models.EventError, models.ChannelError{Message: message})
}

func (h *ChannelHandler) ack(cl *Client, ackID string, payload models.Ack) {
	if err := cl.send(envelope{Event: "ack", AckID: ackID, Data: payload}); err != nil {
		log.Printf("websocket ack: %v", err)
	}
}

func (h *ChannelHandler) publishLifecycle(ctx context.Context, info ConnInfo, event, reason string) {
	err := observability.PublishEvent(ctx, "ws_events.storefront", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		RequestID: info.RequestID,
		TraceID:   info.TraceID,
		Payload: map[string]any{
			"conn_id":     info.ConnID,
			"user_id":     info.UserID,
			"ip":          info.IP,
			"event":       event,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
	})
	if err != nil {
		log.Printf("publish %s: %v", event, err)
	}
}
