package handler

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/usecase"
	"unimarket/pkg/response"
)

type MessageHandler struct {
	messagingUseCase *usecase.MessagingUseCase
}

func NewMessageHandler(messagingUseCase *usecase.MessagingUseCase) *MessageHandler {
	return &MessageHandler{
		messagingUseCase: messagingUseCase,
	}
}

type resolveConversationRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// ResolveConversation returns the conversation for the caller and the
// recipient, creating it on first contact.
func (h *MessageHandler) ResolveConversation(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req resolveConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	conv, err := h.messagingUseCase.ResolveConversation(c.Request().Context(), userID, req.RecipientID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conv)
}

func (h *MessageHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversations, err := h.messagingUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

func (h *MessageHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)

	messages, err := h.messagingUseCase.GetMessages(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.messagingUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: c.Param("id"),
		Text:           req.Text,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.MarkAsRead(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Conversation marked as read"})
}
