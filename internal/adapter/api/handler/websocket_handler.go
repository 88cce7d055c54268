package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"cassmarket/internal/domain/entity"
	ws "cassmarket/internal/infrastructure/websocket"
	"cassmarket/internal/usecase"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/logger"
	"cassmarket/pkg/optimistic"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	chatUseCase *usecase.ChatUseCase
	userUseCase *usecase.UserUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, chatUseCase *usecase.ChatUseCase, userUseCase *usecase.UserUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		chatUseCase: chatUseCase,
		userUseCase: userUseCase,
	}
}

// clientCommand is what the browser sends over the socket.
type clientCommand struct {
	Action         string   `json:"action"`
	ConversationID string   `json:"conversation_id"`
	Message        string   `json:"message"`
	Attachments    []string `json:"attachments"`
}

// serverEvent is what we push back.
type serverEvent struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`
	Code           string      `json:"code,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// wsSession is the per-connection state: the live conversations
// subscription, at most one messages subscription, and a local unread
// mirror that mark_read updates ahead of the server round trip.
type wsSession struct {
	client *ws.Client

	mu            sync.Mutex
	unread        map[string]int
	conversations *usecase.Subscription
	messages      *usecase.Subscription
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	h.wsManager.Register <- client

	session := &wsSession{
		client: client,
		unread: make(map[string]int),
	}

	ctx := context.Background()

	if err := h.userUseCase.UpdateOnlineStatus(ctx, userID, true); err != nil {
		logger.Warn("Failed to set %s online: %v", userID, err)
	}

	sub, err := h.chatUseCase.SubscribeToConversations(ctx, userID, func(conversations []*entity.Conversation) {
		session.mu.Lock()
		for _, conv := range conversations {
			session.unread[conv.ID] = conv.UnreadCount[userID]
		}
		session.mu.Unlock()
		session.push("conversations", "", conversations)
	})
	if err != nil {
		h.wsManager.Unregister <- client
		conn.Close()
		return errors.Internal("Failed to subscribe to conversations", err)
	}
	session.conversations = sub

	go client.WritePump()
	go h.readPump(ctx, session)

	return nil
}

// readPump consumes commands until the peer disconnects, then tears the
// session down: subscriptions first, then presence, then the manager entry.
func (h *WebSocketHandler) readPump(ctx context.Context, session *wsSession) {
	client := session.client
	defer func() {
		session.teardown()
		if err := h.userUseCase.UpdateOnlineStatus(ctx, client.UserID, false); err != nil {
			logger.Warn("Failed to set %s offline: %v", client.UserID, err)
		}
		h.wsManager.Unregister <- client
	}()

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				logger.Debug("Read from client %s failed: %v", client.UserID, err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			session.pushError("", errors.BadRequest("Invalid command payload", err))
			continue
		}

		h.dispatch(ctx, session, cmd)
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, session *wsSession, cmd clientCommand) {
	userID := session.client.UserID

	switch cmd.Action {
	case "subscribe_messages":
		session.dropMessagesSub()
		sub, err := h.chatUseCase.SubscribeToMessages(ctx, userID, cmd.ConversationID, func(messages []*entity.Message) {
			session.push("messages", cmd.ConversationID, messages)
		})
		if err != nil {
			session.pushError(cmd.ConversationID, err)
			return
		}
		session.mu.Lock()
		session.messages = sub
		session.mu.Unlock()

	case "unsubscribe_messages":
		session.dropMessagesSub()

	case "send_message":
		msg, err := h.chatUseCase.SendMessage(ctx, userID, "", usecase.SendMessageInput{
			ConversationID: cmd.ConversationID,
			Text:           cmd.Message,
			Attachments:    cmd.Attachments,
		})
		if err != nil {
			session.pushError(cmd.ConversationID, err)
			return
		}
		session.push("message_sent", cmd.ConversationID, msg)

	case "mark_read":
		// Zero the local badge before the round trip and restore it if
		// the server rejects the call.
		var previous int
		err := optimistic.Do(
			func() {
				session.mu.Lock()
				previous = session.unread[cmd.ConversationID]
				session.unread[cmd.ConversationID] = 0
				session.mu.Unlock()
				session.pushUnread()
			},
			func() {
				session.mu.Lock()
				session.unread[cmd.ConversationID] = previous
				session.mu.Unlock()
				session.pushUnread()
			},
			func() error {
				return h.chatUseCase.MarkAsRead(ctx, userID, cmd.ConversationID)
			},
		)
		if err != nil {
			session.pushError(cmd.ConversationID, err)
		}

	default:
		session.pushError("", errors.BadRequest("Unknown action: "+cmd.Action, nil))
	}
}

func (s *wsSession) push(eventType, conversationID string, payload interface{}) {
	s.send(serverEvent{Type: eventType, ConversationID: conversationID, Payload: payload})
}

func (s *wsSession) pushUnread() {
	s.mu.Lock()
	snapshot := make(map[string]int, len(s.unread))
	for id, n := range s.unread {
		snapshot[id] = n
	}
	s.mu.Unlock()
	s.send(serverEvent{Type: "unread", Payload: snapshot})
}

func (s *wsSession) pushError(conversationID string, err error) {
	event := serverEvent{Type: "error", ConversationID: conversationID, Error: err.Error()}
	if appErr, ok := err.(*errors.AppError); ok {
		event.Code = appErr.Code
		event.Error = appErr.Message
	}
	s.send(event)
}

func (s *wsSession) send(event serverEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal websocket event: %v", err)
		return
	}
	select {
	case s.client.Send <- raw:
	default:
		logger.Warn("Dropping event for slow client %s", s.client.UserID)
	}
}

func (s *wsSession) dropMessagesSub() {
	s.mu.Lock()
	sub := s.messages
	s.messages = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (s *wsSession) teardown() {
	s.dropMessagesSub()
	s.mu.Lock()
	sub := s.conversations
	s.conversations = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}
