package enhance

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/aivis-cli/internal/config"
	"github.com/sells-group/aivis-cli/pkg/anthropic"
)

// anthropicGenerator adapts the Anthropic client to the Generator contract,
// applying the per-call timeout and mapping failures to the typed classes.
type anthropicGenerator struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// NewAnthropicGenerator wraps an Anthropic client as a Generator.
func NewAnthropicGenerator(client anthropic.Client, cfg config.AnthropicConfig) Generator {
	return &anthropicGenerator{client: client, cfg: cfg}
}

func (g *anthropicGenerator) Model() string {
	return g.cfg.Model
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout())
	defer cancel()

	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		Prompt:    prompt,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", eris.Wrap(ErrTimeout, err.Error())
		}
		return "", eris.Wrap(ErrProvider, err.Error())
	}

	resp.Usage.LogUsage(resp.Model, "generate")

	if resp.Text == "" {
		return "", eris.Wrap(ErrMalformed, "empty response")
	}
	return resp.Text, nil
}
