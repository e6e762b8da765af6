package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/genesiss-tech/genesiss/gateway"
)

// NewAll constructs one agent of every type over the gateway client.
func NewAll(client *gateway.Client) []Agent {
	return []Agent{
		&internetAgent{client: client},
		&codeAgent{client: client},
		&graphAgent{client: client},
		&imageAgent{client: client},
		&documentAgent{client: client},
		&memStoreAgent{client: client},
		&memSearchAgent{client: client},
		&simpleChatAgent{client: client},
	}
}

// internetAgent runs the full chat pipeline with internet access. Its
// responses are attributed to the system, not a named agent.
type internetAgent struct {
	client *gateway.Client
}

func (a *internetAgent) Type() Type    { return TypeInternet }
func (a *internetAgent) Label() string { return "system" }

func (a *internetAgent) Run(ctx context.Context, req Request) (string, error) {
	result, err := a.client.Chat(ctx, gateway.ChatParams{
		Message:   req.Prompt,
		ChatID:    req.ChatID,
		BrainIDs:  []string{req.ChatID},
		Images:    req.Images,
		Documents: req.Documents,
		Internet:  true,
		Format:    "markdown",
	})
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

type codeAgent struct {
	client *gateway.Client
}

func (a *codeAgent) Type() Type    { return TypeCodeGen }
func (a *codeAgent) Label() string { return "Code Agent" }

func (a *codeAgent) Run(ctx context.Context, req Request) (string, error) {
	result, err := a.client.Code(ctx, req.Prompt)
	if err != nil {
		return "", err
	}

	runs := make([]string, 0, len(result.RanCode))
	for _, r := range result.RanCode {
		runs = append(runs, fmt.Sprintf("### Ran Code\n\n```\n%s\n```\n\n### Output\n\n```\n%s\n```\n", r.Code, r.Stdout))
	}
	return "## Results from Code Agent:\n\n" + strings.Join(runs, "\n\n"), nil
}

type graphAgent struct {
	client *gateway.Client
}

func (a *graphAgent) Type() Type    { return TypeGraphGen }
func (a *graphAgent) Label() string { return "Graph Agent" }

func (a *graphAgent) Run(ctx context.Context, req Request) (string, error) {
	url, err := a.client.GraphGen(ctx, req.Prompt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("## Generated Graph:\n\n![Generated Graph](%s)\n\n", url), nil
}

type imageAgent struct {
	client *gateway.Client
}

func (a *imageAgent) Type() Type    { return TypeImageGen }
func (a *imageAgent) Label() string { return "Image Agent" }

func (a *imageAgent) Run(ctx context.Context, req Request) (string, error) {
	url, err := a.client.ImageGen(ctx, req.Prompt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("## Generated Image:\n\n![Generated Image](%s)\n\n", url), nil
}

type documentAgent struct {
	client *gateway.Client
}

func (a *documentAgent) Type() Type    { return TypeDocuComp }
func (a *documentAgent) Label() string { return "Document Agent" }

func (a *documentAgent) Run(ctx context.Context, req Request) (string, error) {
	url, err := a.client.DocuComp(ctx, req.Prompt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("## Document agent generated:\n\n[Generated Document](%s)\n\n", url), nil
}

// memStoreAgent writes the prompt into the chat's memory brain. Its
// output is an acknowledgement and never routes to the canvas.
type memStoreAgent struct {
	client *gateway.Client
}

func (a *memStoreAgent) Type() Type    { return TypeMemStore }
func (a *memStoreAgent) Label() string { return "Memory Agent" }

func (a *memStoreAgent) Run(ctx context.Context, req Request) (string, error) {
	if err := a.client.MemoryAdd(ctx, req.ChatID, req.Prompt); err != nil {
		return "", err
	}
	return "Successfully added to memory", nil
}

type memSearchAgent struct {
	client *gateway.Client
}

func (a *memSearchAgent) Type() Type    { return TypeMemSearch }
func (a *memSearchAgent) Label() string { return "Memory Agent" }

func (a *memSearchAgent) Run(ctx context.Context, req Request) (string, error) {
	hits, err := a.client.MemoryQuery(ctx, req.ChatID, req.Prompt)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# Results from memory search: \n\n")
	for _, h := range hits {
		sb.WriteString(fmt.Sprintf("## Search Result: \n\n %s", h.Content))
	}
	return sb.String(), nil
}

type simpleChatAgent struct {
	client *gateway.Client
}

func (a *simpleChatAgent) Type() Type    { return TypeSimpleChat }
func (a *simpleChatAgent) Label() string { return "Simple Chat Agent" }

func (a *simpleChatAgent) Run(ctx context.Context, req Request) (string, error) {
	return a.client.SimpleChat(ctx, req.Prompt)
}
