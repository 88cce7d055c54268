package handler

import (
	"strconv"

	"cassmarket/internal/usecase"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/response"

	"github.com/labstack/echo/v4"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	userUseCase *usecase.UserUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, userUseCase *usecase.UserUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		userUseCase: userUseCase,
	}
}

type createConversationRequest struct {
	Participants []string `json:"participants" validate:"required,min=1"`
	ProductID    string   `json:"product_id"`
	ProductTitle string   `json:"product_title"`
}

type sendMessageRequest struct {
	Text        string   `json:"message" validate:"required"`
	Attachments []string `json:"attachments"`
}

func (h *ChatHandler) CreateConversation(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	// The authenticated user is always part of their own thread.
	participants := append([]string{userID}, req.Participants...)

	conv, err := h.chatUseCase.CreateConversation(c.Request().Context(), usecase.CreateConversationInput{
		Participants: participants,
		ProductID:    req.ProductID,
		ProductTitle: req.ProductTitle,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conv)
}

func (h *ChatHandler) GetUserConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	useCache := c.QueryParam("cache") != "false"

	page, err := h.chatUseCase.GetUserConversations(c.Request().Context(), userID, limit, offset, useCache)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, page.Conversations, page.Total, limit, "")
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	sender, err := h.userUseCase.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, sender.Name, usecase.SendMessageInput{
		ConversationID: conversationID,
		Text:           req.Text,
		Attachments:    req.Attachments,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, total, err := h.chatUseCase.GetMessages(c.Request().Context(), userID, conversationID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, limit, "")
}

func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	if err := h.chatUseCase.MarkAsRead(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Conversation marked as read",
	})
}

func (h *ChatHandler) DeleteConversation(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	if err := h.chatUseCase.DeleteConversation(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Conversation deleted",
	})
}
