package turn

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesiss-tech/genesiss/agent"
	"github.com/genesiss-tech/genesiss/canvas"
	"github.com/genesiss-tech/genesiss/store"
)

type memDriver struct {
	mu    sync.Mutex
	blobs map[string][]byte
	puts  int
}

func newMemDriver() *memDriver {
	return &memDriver{blobs: make(map[string][]byte)}
}

func (d *memDriver) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (d *memDriver) Put(_ context.Context, key string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blobs[key] = data
	d.puts++
	return nil
}

func (d *memDriver) Ping(context.Context) error { return nil }
func (d *memDriver) Close() error               { return nil }

// fakeAgent returns a fixed rendering or error.
type fakeAgent struct {
	typ      agent.Type
	label    string
	rendered string
	err      error
	lastReq  agent.Request
}

func (a *fakeAgent) Type() agent.Type { return a.typ }
func (a *fakeAgent) Label() string    { return a.label }

func (a *fakeAgent) Run(_ context.Context, req agent.Request) (string, error) {
	a.lastReq = req
	return a.rendered, a.err
}

// fakePlanner returns a fixed plan or error.
type fakePlanner struct {
	plan   *canvas.EditPlan
	err    error
	called bool
}

func (p *fakePlanner) Plan(_ context.Context, _ []canvas.Block, _, _ string) (*canvas.EditPlan, error) {
	p.called = true
	return p.plan, p.err
}

func appendPlan(contents ...string) *canvas.EditPlan {
	positions := make([]int, len(contents))
	return &canvas.EditPlan{Add: &canvas.BlockEdit{Contents: contents, Positions: positions}}
}

func TestChatPathAppendsBothMessages(t *testing.T) {
	ctx := context.Background()
	s := store.New(newMemDriver())
	a := &fakeAgent{typ: agent.TypeCodeGen, label: "Code Agent", rendered: "## Results from Code Agent:\n\nok"}
	router := NewRouter(s, agent.NewRegistry(a), &fakePlanner{}, nil)

	result, err := router.Process(ctx, Request{
		ChatID:      "c1",
		UserMessage: "run the numbers",
		Agent:       agent.TypeCodeGen,
	})
	require.NoError(t, err)
	assert.Equal(t, a.rendered, result.Response)
	assert.Equal(t, "Code Agent", result.Author)
	assert.False(t, result.CanvasUpdated)

	chat, err := s.GetChat(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, store.Message{Message: "run the numbers", Author: "User"}, chat.Messages[0])
	assert.Equal(t, store.Message{Message: a.rendered, Author: "Code Agent"}, chat.Messages[1])
}

func TestCanvasPathUpdatesCanvasAndNotifiesChat(t *testing.T) {
	ctx := context.Background()
	s := store.New(newMemDriver())
	a := &fakeAgent{typ: agent.TypeGraphGen, label: "Graph Agent", rendered: "graph markdown"}
	planner := &fakePlanner{plan: appendPlan("graph markdown")}
	router := NewRouter(s, agent.NewRegistry(a), planner, nil)

	existing := []canvas.Block{canvas.NewBlock("intro")}
	result, err := router.Process(ctx, Request{
		ChatID:      "c1",
		UserMessage: "chart it",
		Agent:       agent.TypeGraphGen,
		AddToCanvas: true,
		Canvas:      existing,
	})
	require.NoError(t, err)
	assert.True(t, result.CanvasUpdated)
	assert.Equal(t, CanvasNotice, result.Response)
	assert.Equal(t, "system", result.Author)

	blocks, err := s.GetCanvas(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "graph markdown", blocks[0].Content)
	assert.Equal(t, "intro", blocks[1].Content)

	chat, err := s.GetChat(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "User", chat.Messages[0].Author)

	// Exactly one system notice, carrying no agent output.
	var notices int
	for _, m := range chat.Messages {
		if m.Author == "system" {
			notices++
			assert.Equal(t, CanvasNotice, m.Message)
		}
	}
	assert.Equal(t, 1, notices)
}

func TestCanvasPathLoadsStoredCanvasWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := store.New(newMemDriver())
	require.NoError(t, s.SaveCanvas(ctx, "c1", []canvas.Block{canvas.NewBlock("stored")}))

	a := &fakeAgent{typ: agent.TypeSimpleChat, label: "Simple Chat Agent", rendered: "answer"}
	router := NewRouter(s, agent.NewRegistry(a), &fakePlanner{plan: appendPlan("answer")}, nil)

	result, err := router.Process(ctx, Request{
		ChatID:      "c1",
		UserMessage: "q",
		Agent:       agent.TypeSimpleChat,
		AddToCanvas: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Canvas, 2)
	assert.Equal(t, "stored", result.Canvas[1].Content)
}

func TestMemStoreIgnoresAddToCanvas(t *testing.T) {
	ctx := context.Background()
	s := store.New(newMemDriver())
	a := &fakeAgent{typ: agent.TypeMemStore, label: "Memory Agent", rendered: "Successfully added to memory"}
	planner := &fakePlanner{plan: appendPlan("x")}
	router := NewRouter(s, agent.NewRegistry(a), planner, nil)

	result, err := router.Process(ctx, Request{
		ChatID:      "c1",
		UserMessage: "remember this",
		Agent:       agent.TypeMemStore,
		AddToCanvas: true,
	})
	require.NoError(t, err)
	assert.False(t, result.CanvasUpdated)
	assert.False(t, planner.called)

	_, err = s.GetCanvas(ctx, "c1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	chat, err := s.GetChat(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "Memory Agent", chat.Messages[1].Author)
}

func TestAgentFailureWritesNothing(t *testing.T) {
	driver := newMemDriver()
	s := store.New(driver)
	a := &fakeAgent{typ: agent.TypeCodeGen, label: "Code Agent", err: assert.AnError}
	router := NewRouter(s, agent.NewRegistry(a), &fakePlanner{}, nil)

	_, err := router.Process(context.Background(), Request{
		ChatID:      "c1",
		UserMessage: "q",
		Agent:       agent.TypeCodeGen,
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, driver.puts)
}

func TestPlannerFailureWritesNothing(t *testing.T) {
	driver := newMemDriver()
	s := store.New(driver)
	a := &fakeAgent{typ: agent.TypeGraphGen, label: "Graph Agent", rendered: "out"}
	router := NewRouter(s, agent.NewRegistry(a), &fakePlanner{err: assert.AnError}, nil)

	_, err := router.Process(context.Background(), Request{
		ChatID:      "c1",
		UserMessage: "q",
		Agent:       agent.TypeGraphGen,
		AddToCanvas: true,
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, driver.puts)
}

func TestNoOpPlanLeavesCanvasUntouched(t *testing.T) {
	driver := newMemDriver()
	s := store.New(driver)
	a := &fakeAgent{typ: agent.TypeGraphGen, label: "Graph Agent", rendered: "out"}
	router := NewRouter(s, agent.NewRegistry(a), &fakePlanner{err: canvas.ErrNoOpEdit}, nil)

	_, err := router.Process(context.Background(), Request{
		ChatID:      "c1",
		UserMessage: "q",
		Agent:       agent.TypeGraphGen,
		AddToCanvas: true,
		Canvas:      []canvas.Block{canvas.NewBlock("keep")},
	})
	require.ErrorIs(t, err, canvas.ErrNoOpEdit)
	assert.Zero(t, driver.puts)
}

func TestUnknownAgentRejected(t *testing.T) {
	s := store.New(newMemDriver())
	router := NewRouter(s, agent.NewRegistry(), &fakePlanner{}, nil)

	_, err := router.Process(context.Background(), Request{
		ChatID: "c1",
		Agent:  agent.Type("bogus"),
	})
	assert.Error(t, err)
}

func TestAttachmentsReachAgent(t *testing.T) {
	s := store.New(newMemDriver())
	a := &fakeAgent{typ: agent.TypeInternet, label: "system", rendered: "found it"}
	router := NewRouter(s, agent.NewRegistry(a), &fakePlanner{}, nil)

	_, err := router.Process(context.Background(), Request{
		ChatID:      "c1",
		UserMessage: "what is in this picture",
		Agent:       agent.TypeInternet,
		Images:      []string{"data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"data:image/png;base64,AAAA"}, a.lastReq.Images)
	assert.Equal(t, "c1", a.lastReq.ChatID)
}
