// Package planner turns an agent execution result into a canvas edit
// plan by asking an LLM where the new content belongs.
package planner

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/ai/llm"
	"github.com/genesiss-tech/genesiss/canvas"
	"github.com/genesiss-tech/genesiss/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PlanningError reports that the LLM could not produce a usable edit
// plan after the retry. The turn aborts and the canvas stays untouched.
type PlanningError struct {
	Cause error
}

func (e *PlanningError) Error() string {
	if e.Cause != nil {
		return "edit planning failed: " + e.Cause.Error()
	}
	return "edit planning failed"
}

func (e *PlanningError) Unwrap() error { return e.Cause }

const systemPrompt = `You are a canvas editing planner. The canvas is an ordered list of markdown blocks, each with an "id", a "content" string and an index (its position in the list, starting at 0).

Given the current canvas, new content produced by an agent, and the user's request, decide how to place the new content on the canvas. Respond with a single JSON object and nothing else:

{"addBlocks": {"contents": ["..."], "positions": [0]}, "replaceBlocks": {"contents": ["..."], "positions": [2]}}

Rules:
- "addBlocks" inserts new blocks. Each position refers to an index in the CURRENT canvas; the block is inserted before the block currently at that index. Use the canvas length to append at the end.
- "replaceBlocks" replaces the content of the block currently at each position.
- "contents" and "positions" must have the same length in each group.
- Omit "addBlocks" or "replaceBlocks" entirely when unused.
- Split long content into multiple blocks at natural boundaries (headings, paragraphs).
- Do not repeat content that is already on the canvas unless replacing it.`

// Planner plans canvas edits using a chat completion backend.
type Planner struct {
	llm     llm.Service
	metrics *metrics.Metrics
}

// New creates a planner. m may be nil.
func New(service llm.Service, m *metrics.Metrics) *Planner {
	return &Planner{llm: service, metrics: m}
}

// Plan asks the LLM for an edit plan placing executionResult onto the
// current canvas. A failed call or unusable response is retried exactly
// once; a second failure returns PlanningError. A plan that edits
// nothing returns canvas.ErrNoOpEdit.
func (p *Planner) Plan(ctx context.Context, blocks []canvas.Block, executionResult, userPrompt string) (*canvas.EditPlan, error) {
	canvasJSON, err := json.MarshalToString(blocks)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal canvas")
	}

	prompt := "Current canvas (" + strconv.Itoa(len(blocks)) + " blocks):\n" + canvasJSON +
		"\n\nNew content from the agent:\n" + executionResult +
		"\n\nUser request:\n" + userPrompt

	messages := []llm.Message{
		llm.SystemPrompt(systemPrompt),
		llm.UserMessage(prompt),
	}

	plan, err := p.planOnce(ctx, messages, len(blocks))
	if err == nil || errors.Is(err, canvas.ErrNoOpEdit) {
		return plan, err
	}

	slog.Warn("planner: first attempt failed, retrying", "error", err)
	if p.metrics != nil {
		p.metrics.RecordPlannerRetry()
	}
	plan, retryErr := p.planOnce(ctx, messages, len(blocks))
	if retryErr == nil || errors.Is(retryErr, canvas.ErrNoOpEdit) {
		return plan, retryErr
	}
	return nil, &PlanningError{Cause: retryErr}
}

func (p *Planner) planOnce(ctx context.Context, messages []llm.Message, canvasLen int) (*canvas.EditPlan, error) {
	content, _, err := p.llm.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	plan, err := parsePlan(content)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("planner: plan parsed",
		"canvas_len", canvasLen,
		"adds", editLen(plan.Add),
		"replaces", editLen(plan.Replace),
	)
	return plan, nil
}

func editLen(e *canvas.BlockEdit) int {
	if e == nil {
		return 0
	}
	return len(e.Contents)
}

// parsePlan extracts the edit plan JSON object from the model output,
// tolerating markdown code fences and surrounding prose.
func parsePlan(content string) (*canvas.EditPlan, error) {
	trimmed := strings.TrimSpace(content)
	if fenced := extractFenced(trimmed); fenced != "" {
		trimmed = fenced
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil, errors.Errorf("no JSON object in planner output: %q", truncate(content, 200))
	}

	plan := &canvas.EditPlan{}
	if err := json.UnmarshalFromString(trimmed[start:end+1], plan); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal edit plan")
	}
	return plan, nil
}

func extractFenced(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return ""
	}
	rest := s[start+3:]
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
