package llm

import (
	"fmt"
	"os"
)

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "openai", "ollama", "extractive".
func NewProvider(providerType, model, baseURL string) (Provider, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" && baseURL != "" {
			// OpenAI-compatible endpoints such as GitHub Models take a GitHub token.
			apiKey = os.Getenv("GITHUB_TOKEN")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model, baseURL), nil

	case "ollama":
		host := baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		return NewOllamaProvider(host, model), nil

	case "extractive":
		return NewExtractiveProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
