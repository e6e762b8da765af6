// Package turn orchestrates one chat turn: dispatch the selected agent,
// route its rendered result to the chat log or to the canvas, and
// persist the outcome.
package turn

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/agent"
	"github.com/genesiss-tech/genesiss/canvas"
	"github.com/genesiss-tech/genesiss/internal/metrics"
	"github.com/genesiss-tech/genesiss/store"
)

// CanvasNotice is the chat message appended when a turn lands on the
// canvas instead of the chat log.
const CanvasNotice = "Genesiss Added Content to Canvas"

// Planner plans canvas placement for an agent result.
type Planner interface {
	Plan(ctx context.Context, blocks []canvas.Block, executionResult, userPrompt string) (*canvas.EditPlan, error)
}

// Request is one chat turn.
type Request struct {
	ChatID      string
	UserMessage string
	Agent       agent.Type
	AddToCanvas bool
	// Canvas is the client's current block sequence. When nil the
	// stored canvas is loaded instead.
	Canvas []canvas.Block
	// Base64 data URLs forwarded to the internet agent.
	Images    []string
	Documents []string
}

// Result is the outcome of a completed turn.
type Result struct {
	Response      string
	Author        string
	Canvas        []canvas.Block
	CanvasUpdated bool
}

// Router routes agent responses. All store writes happen after the
// agent run and planning succeed; a failed turn leaves both the chat
// and the canvas untouched.
type Router struct {
	store    *store.Store
	registry *agent.Registry
	planner  Planner
	metrics  *metrics.Metrics
}

func NewRouter(s *store.Store, registry *agent.Registry, planner Planner, m *metrics.Metrics) *Router {
	return &Router{store: s, registry: registry, planner: planner, metrics: m}
}

// Process runs one turn end to end.
func (r *Router) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	slog.Info("turn: received",
		"chat_id", req.ChatID,
		"agent", req.Agent,
		"add_to_canvas", req.AddToCanvas,
	)

	a, err := r.registry.Get(req.Agent)
	if err != nil {
		return nil, err
	}

	slog.Info("turn: agent dispatched", "chat_id", req.ChatID, "agent", req.Agent)
	rendered, err := a.Run(ctx, agent.Request{
		Prompt:    req.UserMessage,
		ChatID:    req.ChatID,
		Images:    req.Images,
		Documents: req.Documents,
	})
	if r.metrics != nil {
		r.metrics.RecordAgentRun(string(req.Agent), err == nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "agent %s failed", req.Agent)
	}

	var result *Result
	if req.AddToCanvas && agent.CanvasCapable(req.Agent) {
		result, err = r.toCanvas(ctx, req, rendered)
	} else {
		result, err = r.toChat(ctx, req, rendered, a.Label())
	}
	if err != nil {
		return nil, err
	}

	slog.Info("turn: persisted",
		"chat_id", req.ChatID,
		"agent", req.Agent,
		"canvas_updated", result.CanvasUpdated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if r.metrics != nil {
		r.metrics.RecordTurnDuration(string(req.Agent), time.Since(start))
	}
	return result, nil
}

func (r *Router) toChat(ctx context.Context, req Request, rendered, author string) (*Result, error) {
	chat, err := r.store.GetChatOrEmpty(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}
	chat.Append(
		store.Message{Message: req.UserMessage, Author: "User"},
		store.Message{Message: rendered, Author: author},
	)
	err = r.store.SaveChat(ctx, req.ChatID, chat)
	if r.metrics != nil {
		r.metrics.RecordStoreOp("save_chat", err == nil)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("turn: chat appended", "chat_id", req.ChatID, "author", author)
	return &Result{Response: rendered, Author: author}, nil
}

func (r *Router) toCanvas(ctx context.Context, req Request, rendered string) (*Result, error) {
	blocks := req.Canvas
	if blocks == nil {
		stored, err := r.store.GetCanvas(ctx, req.ChatID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		blocks = stored
	}

	plan, err := r.planner.Plan(ctx, blocks, rendered, req.UserMessage)
	if err != nil {
		return nil, err
	}
	updated, err := plan.Apply(blocks)
	if err != nil {
		return nil, err
	}

	err = r.store.SaveCanvas(ctx, req.ChatID, updated)
	if r.metrics != nil {
		r.metrics.RecordStoreOp("save_canvas", err == nil)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("turn: canvas updated",
		"chat_id", req.ChatID,
		"blocks_before", len(blocks),
		"blocks_after", len(updated),
	)

	chat, err := r.store.GetChatOrEmpty(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}
	chat.Append(
		store.Message{Message: req.UserMessage, Author: "User"},
		store.Message{Message: CanvasNotice, Author: "system"},
	)
	if err := r.store.SaveChat(ctx, req.ChatID, chat); err != nil {
		return nil, err
	}

	return &Result{
		Response:      CanvasNotice,
		Author:        "system",
		Canvas:        updated,
		CanvasUpdated: true,
	}, nil
}
