package llm

import "context"

// Model roles. A role selects the model profile for a pipeline operation:
// the classifier tier gates input before the expensive tiers run, the
// analyst tier does parsing/matching/validation, and the writer tier is
// only used for letter generation.
const (
	RoleClassifier = "classifier"
	RoleAnalyst    = "analyst"
	RoleWriter     = "writer"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Complete sends a prompt to the model configured for the given role
	// and returns the response text
	Complete(ctx context.Context, role string, prompt string) (string, error)

	// ModelID returns the model identifier configured for the given role
	ModelID(role string) string

	// IsHealthy checks if the LLM provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the LLM provider
	GetProviderName() string
}
