package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-market/trading-api/internal/api/metrics"
	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// MessageHandler handles buyer-seller messaging endpoints.
type MessageHandler struct {
	service ports.MessageService
}

func NewMessageHandler(service ports.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content"     validate:"required"`
}

type messageEnvelope struct {
	Success bool            `json:"success"`
	Message *domain.Message `json:"message"`
}

type messagesResponse struct {
	Success  bool              `json:"success"`
	Messages []*domain.Message `json:"messages"`
}

type conversationsResponse struct {
	Success       bool                          `json:"success"`
	Conversations []*domain.ConversationSummary `json:"conversations"`
}

// Send handles POST /api/messages.
//
// @Summary      Send a message to another user
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  messageEnvelope
// @Failure      400   {object}  errorResponse
// @Router       /api/messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.service.Send(c.Request().Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		return err
	}

	metrics.MessagesSentTotal.Inc()
	return c.JSON(http.StatusCreated, messageEnvelope{Success: true, Message: msg})
}

// ListConversations handles GET /api/messages/conversations.
//
// @Summary      List the caller's conversations, most recent first
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  conversationsResponse
// @Router       /api/messages/conversations [get]
func (h *MessageHandler) ListConversations(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	conversations, err := h.service.ListConversationsFor(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversationsResponse{Success: true, Conversations: conversations})
}

// ListConversation handles GET /api/messages/conversation/:conversationId.
// Reading a conversation marks the caller's unread messages in it as read.
//
// @Summary      Read one conversation
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        conversationId  path      string  true  "Conversation id"
// @Success      200             {object}  messagesResponse
// @Failure      403             {object}  errorResponse
// @Router       /api/messages/conversation/{conversationId} [get]
func (h *MessageHandler) ListConversation(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	messages, err := h.service.ListConversation(c.Request().Context(), c.Param("conversationId"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messagesResponse{Success: true, Messages: messages})
}

// MarkRead handles PUT /api/messages/:messageId/read.
//
// @Summary      Mark a single message as read
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  messageEnvelope
// @Failure      404        {object}  errorResponse
// @Router       /api/messages/{messageId}/read [put]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	msg, err := h.service.MarkRead(c.Request().Context(), c.Param("messageId"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageEnvelope{Success: true, Message: msg})
}

// Delete handles DELETE /api/messages/:messageId.
//
// @Summary      Delete a message
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        messageId  path      string  true  "Message id"
// @Success      200        {object}  messageResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/messages/{messageId} [delete]
func (h *MessageHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("messageId"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "message deleted"})
}
