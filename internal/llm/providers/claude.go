package providers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"letterchain/internal/config"
	"letterchain/internal/logging"
)

// ClaudeProvider implements the LLM provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client   anthropic.Client
	profiles map[string]config.ModelProfile
	logger   logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance with one model
// profile per pipeline role
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client: client,
		profiles: map[string]config.ModelProfile{
			"classifier": cfg.LLM.Classifier,
			"analyst":    cfg.LLM.Analyst,
			"writer":     cfg.LLM.Writer,
		},
		logger: logging.GetGlobalLogger(),
	}
}

// Complete sends a prompt to the model configured for the given role
func (cp *ClaudeProvider) Complete(ctx context.Context, role string, prompt string) (string, error) {
	profile, ok := cp.profiles[role]
	if !ok {
		return "", fmt.Errorf("unknown model role: %s", role)
	}

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(profile.Model),
		MaxTokens:   profile.MaxTokens,
		Temperature: anthropic.Float(profile.Temperature),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}

	if responseText == "" {
		return "", fmt.Errorf("no text content in Claude response")
	}

	return responseText, nil
}

// ModelID returns the model identifier configured for the given role
func (cp *ClaudeProvider) ModelID(role string) string {
	return cp.profiles[role].Model
}

// IsHealthy checks if the Claude provider is healthy and available
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.profiles["classifier"].Model == "" {
		return fmt.Errorf("Claude classifier model not configured")
	}

	// Cheapest configured model, minimal request
	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.profiles["classifier"].Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the LLM provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
