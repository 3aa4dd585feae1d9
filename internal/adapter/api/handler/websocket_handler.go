package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"unimarket/internal/adapter/api/middleware"
	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/internal/usecase"
	ws "unimarket/internal/infrastructure/websocket"
	"unimarket/pkg/errors"
	"unimarket/pkg/logger"
)

type WebSocketHandler struct {
	wsManager        *ws.Manager
	authMiddleware   *middleware.AuthMiddleware
	exchangeUseCase  *usecase.ExchangeUseCase
	roomUseCase      *usecase.RoomUseCase
	messagingUseCase *usecase.MessagingUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the web client's domain is fixed
	},
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	authMiddleware *middleware.AuthMiddleware,
	exchangeUseCase *usecase.ExchangeUseCase,
	roomUseCase *usecase.RoomUseCase,
	messagingUseCase *usecase.MessagingUseCase,
) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:        wsManager,
		authMiddleware:   authMiddleware,
		exchangeUseCase:  exchangeUseCase,
		roomUseCase:      roomUseCase,
		messagingUseCase: messagingUseCase,
	}
}

// clientMessage is what the browser sends over the socket.
type clientMessage struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	OfferType      string `json:"offer_type,omitempty"`
}

type serverEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// HandleWebSocket authenticates the connection from a token query parameter
// (browsers cannot set headers on WebSocket upgrades), registers the client,
// and runs the read loop until the peer disconnects.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return err
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

	h.wsManager.Register(client)
	go client.WritePump()

	h.readPump(client)
	return nil
}

// readPump processes client messages until the connection drops. Every live
// subscription opened on this connection is cancelled on exit.
func (h *WebSocketHandler) readPump(client *ws.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	subscriptions := make(map[string]repository.CancelFunc)

	defer func() {
		for _, cancelSub := range subscriptions {
			cancelSub()
		}
		cancel()
		h.wsManager.Unregister(client)
		client.Conn.Close()
	}()

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				logger.Warn("WebSocket read error for %s: %v", client.UserID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendEvent(client, "error", map[string]string{"message": "Invalid message format"})
			continue
		}

		h.handleMessage(ctx, client, msg, subscriptions)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, client *ws.Client, msg clientMessage, subscriptions map[string]repository.CancelFunc) {
	switch msg.Type {
	case "ping":
		h.sendEvent(client, "pong", nil)

	case "join_conversation":
		if msg.ConversationID == "" {
			h.sendEvent(client, "error", map[string]string{"message": "conversation_id is required"})
			return
		}
		h.wsManager.JoinConversation(msg.ConversationID, client.UserID)
		h.sendEvent(client, "joined_conversation", map[string]string{"conversation_id": msg.ConversationID})

	case "leave_conversation":
		h.wsManager.LeaveConversation(msg.ConversationID, client.UserID)

	case "subscribe_offers":
		h.replaceSubscription(subscriptions, "offers", func() (repository.CancelFunc, error) {
			return h.exchangeUseCase.SubscribeActiveOffers(ctx, msg.OfferType, func(offers []*entity.ExchangeOffer) {
				h.sendEvent(client, "offers_snapshot", offers)
			})
		}, client)

	case "subscribe_listings":
		h.replaceSubscription(subscriptions, "listings", func() (repository.CancelFunc, error) {
			return h.roomUseCase.SubscribeActiveListings(ctx, repository.RoomFilter{}, func(listings []*entity.RoomListing) {
				h.sendEvent(client, "listings_snapshot", listings)
			})
		}, client)

	case "subscribe_conversations":
		h.replaceSubscription(subscriptions, "conversations", func() (repository.CancelFunc, error) {
			return h.messagingUseCase.SubscribeConversations(ctx, client.UserID, func(conversations []*entity.Conversation) {
				h.sendEvent(client, "conversations_snapshot", conversations)
			})
		}, client)

	case "subscribe_messages":
		if msg.ConversationID == "" {
			h.sendEvent(client, "error", map[string]string{"message": "conversation_id is required"})
			return
		}
		key := "messages:" + msg.ConversationID
		h.replaceSubscription(subscriptions, key, func() (repository.CancelFunc, error) {
			return h.messagingUseCase.SubscribeMessages(ctx, client.UserID, msg.ConversationID, func(messages []*entity.Message) {
				h.sendEvent(client, "messages_snapshot", messages)
			})
		}, client)

	case "unsubscribe":
		for key, cancelSub := range subscriptions {
			cancelSub()
			delete(subscriptions, key)
		}

	default:
		h.sendEvent(client, "error", map[string]string{"message": "Unknown message type: " + msg.Type})
	}
}

// replaceSubscription cancels any live subscription under key before opening
// the new one, so a client re-subscribing does not leak listeners.
func (h *WebSocketHandler) replaceSubscription(subscriptions map[string]repository.CancelFunc, key string, open func() (repository.CancelFunc, error), client *ws.Client) {
	if cancelSub, ok := subscriptions[key]; ok {
		cancelSub()
		delete(subscriptions, key)
	}

	cancelSub, err := open()
	if err != nil {
		h.sendEvent(client, "error", map[string]string{"message": err.Error()})
		return
	}
	subscriptions[key] = cancelSub
}

func (h *WebSocketHandler) sendEvent(client *ws.Client, eventType string, payload interface{}) {
	data, err := json.Marshal(serverEvent{Type: eventType, Payload: payload})
	if err != nil {
		logger.Error("Failed to marshal %s event: %v", eventType, err)
		return
	}
	h.wsManager.SendToUser(client.UserID, data)
}
