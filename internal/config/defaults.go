package config

import (
	"github.com/ziadkadry99/docsearch/internal/chunker"
)

// Preset is the default model pair for a provider.
type Preset struct {
	Model             string
	EmbeddingProvider ProviderType
	EmbeddingModel    string
}

var presets = map[ProviderType]Preset{
	ProviderOpenAI:     {Model: "gpt-4o-mini", EmbeddingProvider: ProviderOpenAI, EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama:     {Model: "llama3", EmbeddingProvider: ProviderOllama, EmbeddingModel: "nomic-embed-text"},
	ProviderExtractive: {Model: "extractive", EmbeddingProvider: ProviderHashing, EmbeddingModel: "hashing"},
}

// GetPreset returns the preset for provider, falling back to OpenAI.
func GetPreset(provider ProviderType) Preset {
	if p, ok := presets[provider]; ok {
		return p
	}
	return presets[ProviderOpenAI]
}

// DefaultExcludes are glob patterns skipped when ingesting a directory.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	"dist/**",
	"build/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	preset := GetPreset(ProviderOpenAI)
	return &Config{
		Provider:            ProviderOpenAI,
		Model:               preset.Model,
		EmbeddingProvider:   preset.EmbeddingProvider,
		EmbeddingModel:      preset.EmbeddingModel,
		VectorStore:         VectorStoreMemory,
		ChunkSize:           chunker.DefaultSize,
		ChunkOverlap:        chunker.DefaultOverlap,
		SimpleTopK:          3,
		TopK:                5,
		SummaryTopK:         10,
		EvidenceLimit:       3,
		MaxExcerptChars:     300,
		MaxConcurrency:      4,
		EmbedTimeoutSecs:    30,
		GenerateTimeoutSecs: 60,
		RequestsPerMinute:   0,
		Temperature:         0.2,
		Include:             []string{"**"},
		Exclude:             DefaultExcludes,
		Server: ServerConfig{
			Port:        8000,
			MaxUploadMB: 10,
		},
		LogLevel: "info",
	}
}
