package v1

import (
	"encoding/base64"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/agent"
	"github.com/genesiss-tech/genesiss/canvas"
	"github.com/genesiss-tech/genesiss/store"
	"github.com/genesiss-tech/genesiss/turn"
)

// maxAttachmentSize caps a single uploaded file at 10 MiB.
const maxAttachmentSize = 10 << 20

// NewTurn runs one chat turn. The request is a multipart form:
// chatID, userMessage (JSON {message, author}), agents, isAddingToCanvas,
// canvasContent (JSON block array) and any number of files.
func (s *APIV1Service) NewTurn(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input"})
	}

	chatID := c.FormValue("chatID")
	if chatID == "" {
		chatID = uuid.NewString()
	}

	userMessage := store.Message{}
	if raw := c.FormValue("userMessage"); raw != "" {
		if err := json.UnmarshalFromString(raw, &userMessage); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input"})
		}
	}
	if userMessage.Message == "" || userMessage.Author == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input"})
	}

	agentType := agent.TypeInternet
	if name := c.FormValue("agents"); name != "" {
		agentType, err = agent.ParseType(name)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input"})
		}
	}

	addToCanvas := c.FormValue("isAddingToCanvas") == "true"

	var canvasContent []canvas.Block
	if raw := c.FormValue("canvasContent"); raw != "" {
		if err := json.UnmarshalFromString(raw, &canvasContent); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input"})
		}
	}

	images, documents, err := encodeAttachments(form.File["files"])
	if err != nil {
		slog.Error("failed to read attachments", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid input"})
	}

	result, err := s.Router.Process(c.Request().Context(), turn.Request{
		ChatID:      chatID,
		UserMessage: userMessage.Message,
		Agent:       agentType,
		AddToCanvas: addToCanvas,
		Canvas:      canvasContent,
		Images:      images,
		Documents:   documents,
	})
	if err != nil {
		if errors.Is(err, canvas.ErrNoOpEdit) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "Nothing to add to canvas"})
		}
		slog.Error("turn failed", "chat_id", chatID, "agent", agentType, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error sending message"})
	}

	resp := echo.Map{
		"message": "Message sent successfully",
		"chatID":  chatID,
	}
	if result.CanvasUpdated {
		resp["canvas"] = result.Canvas
	}
	return c.JSON(http.StatusOK, resp)
}

// encodeAttachments partitions uploads into images and documents by MIME
// type, each as a base64 data URL.
func encodeAttachments(files []*multipart.FileHeader) (images, documents []string, err error) {
	for _, header := range files {
		if header.Size > maxAttachmentSize {
			return nil, nil, errors.Errorf("file %s exceeds size limit", header.Filename)
		}

		f, err := header.Open()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open %s", header.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxAttachmentSize+1))
		_ = f.Close()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read %s", header.Filename)
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)

		if strings.HasPrefix(contentType, "image/") {
			images = append(images, dataURL)
		} else {
			documents = append(documents, dataURL)
		}
	}
	return images, documents, nil
}
