// Package agent defines the closed set of generation agents a chat turn
// can dispatch to, and renders each agent's raw result as Markdown.
package agent

import (
	"context"

	"github.com/pkg/errors"
)

// Type identifies one of the fixed agents.
type Type string

const (
	TypeInternet   Type = "internet"
	TypeCodeGen    Type = "codegen"
	TypeGraphGen   Type = "graphgen"
	TypeImageGen   Type = "imagegen"
	TypeDocuComp   Type = "docucomp"
	TypeMemStore   Type = "memstore"
	TypeMemSearch  Type = "memsearch"
	TypeSimpleChat Type = "simplechat"
)

// ParseType validates a client-supplied agent name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeInternet, TypeCodeGen, TypeGraphGen, TypeImageGen,
		TypeDocuComp, TypeMemStore, TypeMemSearch, TypeSimpleChat:
		return t, nil
	default:
		return "", errors.Errorf("unknown agent %q", s)
	}
}

// CanvasCapable reports whether the agent's output may be routed to the
// canvas. Memory writes produce an acknowledgement, not content.
func CanvasCapable(t Type) bool {
	return t != TypeMemStore
}

// Request is one dispatch to an agent.
type Request struct {
	Prompt string
	ChatID string
	// Base64 data URLs, used by the internet agent only.
	Images    []string
	Documents []string
}

// Agent executes one generation request and renders the result.
type Agent interface {
	Type() Type
	// Label is the chat author name the agent's responses carry.
	Label() string
	// Run returns the rendered Markdown for the request.
	Run(ctx context.Context, req Request) (string, error)
}

// Registry maps agent types to implementations.
type Registry struct {
	agents map[Type]Agent
}

func NewRegistry(agents ...Agent) *Registry {
	r := &Registry{agents: make(map[Type]Agent, len(agents))}
	for _, a := range agents {
		r.agents[a.Type()] = a
	}
	return r
}

// Get returns the agent registered for t.
func (r *Registry) Get(t Type) (Agent, error) {
	a, ok := r.agents[t]
	if !ok {
		return nil, errors.Errorf("no agent registered for %q", t)
	}
	return a, nil
}
