package v1

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesiss-tech/genesiss/canvas"
)

type wsReply struct {
	Type   string         `json:"type"`
	Canvas []canvas.Block `json:"canvas"`
	Error  string         `json:"error"`
}

func dialCanvas(t *testing.T, svc *APIV1Service, chatID string) *websocket.Conn {
	t.Helper()
	e := echo.New()
	svc.Register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/canvaschat/ws?chatID=" + chatID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) wsReply {
	t.Helper()
	reply := wsReply{}
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestCanvasWebSocketAppendAndEdit(t *testing.T) {
	svc := newTestService(t, newMemDriver())
	conn := dialCanvas(t, svc, "c1")

	// Initial state push.
	reply := readReply(t, conn)
	assert.Equal(t, "canvas", reply.Type)
	assert.Empty(t, reply.Canvas)

	require.NoError(t, conn.WriteJSON(canvasFrame{Type: "append", Content: "first block"}))
	reply = readReply(t, conn)
	require.Len(t, reply.Canvas, 1)
	assert.Equal(t, "first block", reply.Canvas[0].Content)

	require.NoError(t, conn.WriteJSON(canvasFrame{Type: "edit", ID: reply.Canvas[0].ID, Content: "edited"}))
	reply = readReply(t, conn)
	require.Len(t, reply.Canvas, 1)
	assert.Equal(t, "edited", reply.Canvas[0].Content)
}

func TestCanvasWebSocketLockRejectsEdits(t *testing.T) {
	svc := newTestService(t, newMemDriver())
	conn := dialCanvas(t, svc, "c1")
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(canvasFrame{Type: "lock"}))
	reply := readReply(t, conn)
	assert.Equal(t, "canvas", reply.Type)

	require.NoError(t, conn.WriteJSON(canvasFrame{Type: "append", Content: "nope"}))
	reply = readReply(t, conn)
	assert.Equal(t, "error", reply.Type)
	assert.Contains(t, reply.Error, "locked")

	require.NoError(t, conn.WriteJSON(canvasFrame{Type: "unlock"}))
	readReply(t, conn)
	require.NoError(t, conn.WriteJSON(canvasFrame{Type: "append", Content: "now it works"}))
	reply = readReply(t, conn)
	require.Len(t, reply.Canvas, 1)
}

func TestCanvasWebSocketUnknownFrame(t *testing.T) {
	svc := newTestService(t, newMemDriver())
	conn := dialCanvas(t, svc, "c1")
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(canvasFrame{Type: "bogus"}))
	reply := readReply(t, conn)
	assert.Equal(t, "error", reply.Type)
}

func TestCanvasWebSocketRequiresChatID(t *testing.T) {
	svc := newTestService(t, newMemDriver())
	e := echo.New()
	svc.Register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/canvaschat/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, 400, resp.StatusCode)
	}
}
