package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/canvas"
	"github.com/genesiss-tech/genesiss/store"
)

type getCanvasRequest struct {
	ChatID string `json:"chatID"`
}

type getCanvasResponse struct {
	Canvas []canvas.Block `json:"canvas"`
}

// GetCanvas returns the stored block sequence of a chat.
func (s *APIV1Service) GetCanvas(c echo.Context) error {
	req := &getCanvasRequest{}
	if err := c.Bind(req); err != nil || req.ChatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "chatID is required"})
	}

	blocks, err := s.Store.GetCanvas(c.Request().Context(), req.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Canvas not found"})
		}
		slog.Error("failed to get canvas", "chat_id", req.ChatID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch canvas"})
	}

	return c.JSON(http.StatusOK, getCanvasResponse{Canvas: blocks})
}

type updateCanvasRequest struct {
	ChatID string         `json:"chatID"`
	Canvas []canvas.Block `json:"canvas"`
}

// UpdateCanvas overwrites the stored block sequence of a chat.
func (s *APIV1Service) UpdateCanvas(c echo.Context) error {
	req := &updateCanvasRequest{}
	if err := c.Bind(req); err != nil || req.ChatID == "" || req.Canvas == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "chatID and canvas are required"})
	}

	if err := s.Store.SaveCanvas(c.Request().Context(), req.ChatID, req.Canvas); err != nil {
		slog.Error("failed to update canvas", "chat_id", req.ChatID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update canvas"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
