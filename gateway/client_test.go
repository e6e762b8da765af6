package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key")
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestChatSendsAPIKey(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "test-key", body["ak"])
		assert.Equal(t, "hello", body["message"])
		_, _ = w.Write([]byte(`{"chatID":"c1","message":"hi there"}`))
	})

	result, err := client.Chat(context.Background(), ChatParams{Message: "hello", Format: "markdown"})
	require.NoError(t, err)
	assert.Equal(t, "c1", result.ChatID)
	assert.Equal(t, "hi there", result.Message)
}

func TestCodeDecodesRuns(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/code", r.URL.Path)
		_, _ = w.Write([]byte(`{"ranCode":[{"code":"print(1)","stdout":"1\n"}],"conclusion":"done"}`))
	})

	result, err := client.Code(context.Background(), "print one")
	require.NoError(t, err)
	require.Len(t, result.RanCode, 1)
	assert.Equal(t, "print(1)", result.RanCode[0].Code)
	assert.Equal(t, "1\n", result.RanCode[0].Stdout)
	assert.Equal(t, "done", result.Conclusion)
}

func TestGraphGenReturnsURL(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"graphURL":"https://cdn.example.com/g.png"}`))
	})

	url, err := client.GraphGen(context.Background(), "plot sales")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/g.png", url)
}

func TestMemoryQueryFlattensGroups(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "query", body["task"])
		assert.Equal(t, "brain-1", body["brainID"])
		_, _ = w.Write([]byte(`{"results":[[{"metadata":{"brainID":"brain-1","content":"first"},"score":0.9}],[{"metadata":{"brainID":"brain-1","content":"second"},"score":0.4}]]}`))
	})

	hits, err := client.MemoryQuery(context.Background(), "brain-1", "what do I know")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].Content)
	assert.InDelta(t, 0.9, hits[0].Score, 1e-9)
	assert.Equal(t, "second", hits[1].Content)
}

func TestMemoryAddSendsTask(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "add", body["task"])
		assert.Equal(t, "remember this", body["content"])
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, client.MemoryAdd(context.Background(), "brain-1", "remember this"))
}

func TestNon2xxIsGenerationError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	})

	_, err := client.SimpleChat(context.Background(), "hi")
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "/schat", genErr.Endpoint)
	assert.Equal(t, http.StatusPaymentRequired, genErr.StatusCode)
	assert.Contains(t, genErr.Error(), "quota exceeded")
}

func TestUndecodableResponseIsGenerationError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.DocuComp(context.Background(), "write a report")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "/docucomp", genErr.Endpoint)
}
