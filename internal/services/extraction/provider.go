package extraction

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// sharedHTTPClient is used by the hand-rolled providers; the generous timeout
// covers slow model responses.
var sharedHTTPClient = &http.Client{
	Timeout: 2 * time.Minute,
}

const defaultMaxTokens = 1024

// Provider is a minimal completion backend for field extraction.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// Name identifies the backend for extraction provenance, e.g.
	// "anthropic:claude-sonnet-4-5".
	Name() string
}

// NewProvider parses a "provider:model" string and returns the matching
// backend. API keys are read from the environment at construction time and
// validated immediately.
func NewProvider(providerModel string) (Provider, error) {
	parts := strings.SplitN(providerModel, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid model format %q: expected provider:model", providerModel)
	}
	switch parts[0] {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		return &anthropicProvider{model: parts[1], apiKey: apiKey}, nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		return newOpenAIProvider(parts[1], apiKey), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: supported providers are anthropic, openai", parts[0])
	}
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
