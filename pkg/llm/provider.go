package llm

import (
	"context"
	"fmt"
)

// Provider is an interface for text generation backends
type Provider interface {
	// Call makes a generation API call
	Call(ctx context.Context, request Request) (*Response, error)

	// Provider returns the provider name
	Provider() string
}

// ProviderFactory creates generation providers
type ProviderFactory struct{}

// NewProvider creates a provider from an auth profile
func (f *ProviderFactory) NewProvider(profile AuthProfile) (Provider, error) {
	switch profile.Provider {
	case "anthropic":
		return NewAnthropicProvider(profile.APIKey), nil
	case "openai":
		return NewOpenAIProvider(profile.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}
}
