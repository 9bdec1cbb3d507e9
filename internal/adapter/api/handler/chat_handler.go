package handler

import (
	"github.com/labstack/echo/v4"

	"farmlink/internal/domain/entity"
	"farmlink/internal/realtime"
	"farmlink/internal/usecase"
	"farmlink/pkg/response"
)

type ChatHandler struct {
	chatUseCase  *usecase.ChatUseCase
	offerUseCase *usecase.OfferUseCase
	hub          *realtime.Hub
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, offerUseCase *usecase.OfferUseCase, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{
		chatUseCase:  chatUseCase,
		offerUseCase: offerUseCase,
		hub:          hub,
	}
}

type startConversationRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	ProductID  string `json:"product_id"`
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	ProductID  string `json:"product_id"`
	Body       string `json:"body" validate:"required"`
}

type createOfferRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required"`
	ProductID  string  `json:"product_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" validate:"required,gt=0"`
}

type respondOfferRequest struct {
	MessageID string `json:"message_id" validate:"required"`
	Decision  string `json:"decision" validate:"required,oneof=accepted declined"`
}

// StartConversation resolves or mints the conversation between the caller
// and another user about a product. Until the first message is sent the
// conversation exists only in the caller's live session.
func (h *ChatHandler) StartConversation(c echo.Context) error {
	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	conv, err := h.chatUseCase.StartConversation(c.Request().Context(), userID, usecase.StartConversationInput{
		ReceiverID: req.ReceiverID,
		ProductID:  req.ProductID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if conv.LastMessage == nil {
		h.hub.AddDraft(userID, conv)
	}

	return response.Created(c, conv)
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversations, err := h.chatUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: c.Param("id"),
		ReceiverID:     req.ReceiverID,
		ProductID:      req.ProductID,
		Body:           req.Body,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) MarkConversationRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	count, err := h.chatUseCase.MarkConversationRead(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"updated": count})
}

func (h *ChatHandler) CreateOffer(c echo.Context) error {
	var req createOfferRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.offerUseCase.CreateOffer(c.Request().Context(), userID, usecase.CreateOfferInput{
		ConversationID: c.Param("id"),
		ReceiverID:     req.ReceiverID,
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) RespondToOffer(c echo.Context) error {
	var req respondOfferRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	result, err := h.offerUseCase.Respond(c.Request().Context(), userID, req.MessageID, entity.OfferStatus(req.Decision))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
