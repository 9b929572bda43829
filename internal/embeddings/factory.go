package embeddings

import (
	"fmt"
	"os"
)

// NewEmbedder creates an embedder for providerType: "openai", "ollama" or
// "hashing". dimensions of 0 keeps the backend default.
func NewEmbedder(providerType, model, baseURL string, dimensions int) (Embedder, error) {
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" && baseURL != "" {
			apiKey = os.Getenv("GITHUB_TOKEN")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		if model == "" {
			model = string(ModelTextEmbedding3Small)
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model), baseURL, dimensions), nil

	case "ollama":
		host := baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaEmbedder(model, dimensions, host), nil

	case "hashing":
		return NewHashingEmbedder(dimensions), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
