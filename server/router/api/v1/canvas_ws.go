package v1

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/genesiss-tech/genesiss/canvassync"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// safeConn serializes websocket writes. Gorilla connections allow only
// one concurrent writer.
type safeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *safeConn) writeJSON(v any) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteJSON(v)
}

type canvasFrame struct {
	Type      string   `json:"type"` // append, edit, insert, flush, lock, unlock, refresh
	ID        string   `json:"id,omitempty"`
	Content   string   `json:"content,omitempty"`
	Contents  []string `json:"contents,omitempty"`
	Positions []int    `json:"positions,omitempty"`
}

// CanvasWebSocket is the live-edit channel for one open canvas. Every
// applied edit is ack'd with the full block sequence; content persists
// through the debounced sync controller.
func (s *APIV1Service) CanvasWebSocket(c echo.Context) error {
	chatID := c.QueryParam("chatID")
	if chatID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "chatID is required")
	}

	controller, err := canvassync.NewController(c.Request().Context(), s.Store, s.scheduler, chatID, s.Profile.CanvasDebounce)
	if err != nil {
		slog.Error("failed to open canvas session", "chat_id", chatID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open canvas")
	}

	rawConn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "chat_id", chatID, "error", err)
		return err
	}
	conn := &safeConn{Conn: rawConn}

	defer func() {
		controller.Close()
		_ = conn.Close()
		slog.Debug("canvas session closed", "chat_id", chatID)
	}()

	slog.Debug("canvas session opened", "chat_id", chatID)
	if err := conn.writeJSON(echo.Map{"type": "canvas", "canvas": controller.Blocks()}); err != nil {
		return nil
	}

	for {
		frame := &canvasFrame{}
		if err := conn.ReadJSON(frame); err != nil {
			return nil
		}

		if err := s.applyFrame(c, controller, frame); err != nil {
			if writeErr := conn.writeJSON(echo.Map{"type": "error", "error": err.Error()}); writeErr != nil {
				return nil
			}
			continue
		}

		if err := conn.writeJSON(echo.Map{"type": "canvas", "canvas": controller.Blocks()}); err != nil {
			return nil
		}
	}
}

func (s *APIV1Service) applyFrame(c echo.Context, controller *canvassync.Controller, frame *canvasFrame) error {
	switch frame.Type {
	case "append":
		_, err := controller.AppendBlock(frame.Content)
		return err
	case "edit":
		return controller.EditBlock(frame.ID, frame.Content)
	case "insert":
		return controller.InsertBlocks(frame.Contents, frame.Positions)
	case "flush":
		controller.Flush()
		return nil
	case "lock":
		// Sent before the client submits an agent turn; edits are
		// rejected until the matching unlock.
		controller.Lock()
		return nil
	case "unlock":
		controller.Unlock()
		return nil
	case "refresh":
		return controller.Refresh(c.Request().Context())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown frame type "+frame.Type)
	}
}
