package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"agentrouter/internal/workflow"
	"agentrouter/pkg/models"
)

const defaultMaxTokens = 8192

// Runner executes agent work through the Anthropic API. Each registered
// agent may carry a persona appended to the system prompt so distinct
// agents produce genuinely distinct perspectives.
type Runner struct {
	client    *Client
	maxTokens int64
	personas  map[string]string
}

// NewRunner creates a runner backed by the given client.
func NewRunner(client *Client) *Runner {
	return &Runner{
		client:    client,
		maxTokens: defaultMaxTokens,
		personas:  make(map[string]string),
	}
}

// SetPersona attaches a persona fragment to an agent's system prompt.
func (r *Runner) SetPersona(agentID, persona string) {
	r.personas[agentID] = persona
}

// Run executes one unit of work for a task on the given agent.
func (r *Runner) Run(ctx context.Context, task *models.Task, agent *models.Agent, prompt string) (string, error) {
	text, _, err := r.complete(ctx, task, agent, prompt)
	return text, err
}

// complete performs a single-shot message exchange and reports the output
// tokens it consumed.
func (r *Runner) complete(ctx context.Context, task *models.Task, agent *models.Agent, prompt string) (string, int64, error) {
	system := r.systemPrompt(task, agent)

	resp, err := r.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.client.Model(),
		MaxTokens: r.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("agent %s: %w", agent.ID, err)
	}

	r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	text := collectText(resp)
	if text == "" {
		return "", resp.Usage.OutputTokens, fmt.Errorf("agent %s: empty response", agent.ID)
	}
	return text, resp.Usage.OutputTokens, nil
}

// systemPrompt composes the base instructions, the agent persona, and the
// task framing.
func (r *Runner) systemPrompt(task *models.Task, agent *models.Agent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, an AI agent working on software tasks.", agent.DisplayName)
	if persona := r.personas[agent.ID]; persona != "" {
		b.WriteString("\n\n")
		b.WriteString(persona)
	}
	fmt.Fprintf(&b, "\n\nTask type: %s. Title: %s.", task.Type, task.Title)
	b.WriteString("\nRespond with your complete result; do not ask follow-up questions.")

	return b.String()
}

// collectText concatenates the text blocks of a response.
func collectText(resp *anthropic.Message) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(variant.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

var _ workflow.AgentRunner = (*Runner)(nil)
