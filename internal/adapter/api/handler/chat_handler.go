package handler

import (
	"strconv"
	"time"

	"flipearn/pkg/response"

	"github.com/labstack/echo/v4"
)

// PollIntervalHeader tells polling clients how long to wait before the next
// chat refresh.
const PollIntervalHeader = "X-Poll-Interval"

type ChatHandler struct {
	chats        ChatService
	pollInterval time.Duration
}

func NewChatHandler(chats ChatService, pollInterval time.Duration) *ChatHandler {
	return &ChatHandler{
		chats:        chats,
		pollInterval: pollInterval,
	}
}

type getChatRequest struct {
	ListingID string `json:"listingId"`
	ChatID    string `json:"chatId"`
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (h *ChatHandler) setPollInterval(c echo.Context) {
	if h.pollInterval > 0 {
		c.Response().Header().Set(PollIntervalHeader, strconv.Itoa(int(h.pollInterval.Seconds())))
	}
}

// GetChat opens a chat by id or by listing, creating it on first contact.
func (h *ChatHandler) GetChat(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req getChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chats.GetOrCreateChat(c.Request().Context(), auth.UserID, req.ListingID, req.ChatID)
	if err != nil {
		return response.Error(c, err)
	}

	h.setPollInterval(c)
	return response.Success(c, echo.Map{"chat": chat})
}

func (h *ChatHandler) GetUserChats(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	chats, err := h.chats.ListUserChats(c.Request().Context(), auth.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	h.setPollInterval(c)
	return response.Success(c, echo.Map{"chats": chats})
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	auth, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chats.SendMessage(c.Request().Context(), auth.UserID, req.ChatID, req.Message)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, "Message sent", echo.Map{"newMessage": message})
}
