package llm

import (
	"context"
	"strings"

	"github.com/genesiss-tech/genesiss/gateway"
)

// GatewayService adapts the Genesiss simple chat endpoint to the
// Service interface. It is the planner backend when no direct LLM key
// is configured.
type GatewayService struct {
	client *gateway.Client
}

func NewGatewayService(client *gateway.Client) *GatewayService {
	return &GatewayService{client: client}
}

// Chat flattens the message list into a single prompt. The simple chat
// endpoint takes one prompt string and has no role separation.
func (s *GatewayService) Chat(ctx context.Context, messages []Message) (string, *CallStats, error) {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	content, err := s.client.SimpleChat(ctx, strings.Join(parts, "\n\n"))
	if err != nil {
		return "", nil, err
	}
	return content, nil, nil
}
