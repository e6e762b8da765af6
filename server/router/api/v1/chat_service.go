package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/store"
)

type getChatRequest struct {
	ChatID string `json:"chatID"`
}

// GetChat returns the message log of a chat.
func (s *APIV1Service) GetChat(c echo.Context) error {
	req := &getChatRequest{}
	if err := c.Bind(req); err != nil || req.ChatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "chatID is required"})
	}

	chat, err := s.Store.GetChat(c.Request().Context(), req.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Chat not found"})
		}
		slog.Error("failed to get chat", "chat_id", req.ChatID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch chat"})
	}

	return c.JSON(http.StatusOK, chat)
}

type storeChatRequest struct {
	ChatID   string `json:"chatID"`
	Message  string `json:"message"`
	Response string `json:"response"`
	GraphGen bool   `json:"graphgen"`
}

// StoreChat appends a user/response message pair to a chat.
func (s *APIV1Service) StoreChat(c echo.Context) error {
	req := &storeChatRequest{}
	if err := c.Bind(req); err != nil || req.ChatID == "" || req.Message == "" || req.Response == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input"})
	}

	ctx := c.Request().Context()
	chat, err := s.Store.GetChatOrEmpty(ctx, req.ChatID)
	if err != nil {
		slog.Error("failed to get chat", "chat_id", req.ChatID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	responseAuthor := "System"
	if req.GraphGen {
		responseAuthor = "graphgen"
	}
	chat.Append(
		store.Message{Message: req.Message, Author: "User"},
		store.Message{Message: req.Response, Author: responseAuthor},
	)

	if err := s.Store.SaveChat(ctx, req.ChatID, chat); err != nil {
		slog.Error("failed to save chat", "chat_id", req.ChatID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Messages stored successfully"})
}
