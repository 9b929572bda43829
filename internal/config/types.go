package config

// ProviderType identifies a language model or embedding backend.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOllama     ProviderType = "ollama"
	ProviderExtractive ProviderType = "extractive" // offline answer model
	ProviderHashing    ProviderType = "hashing"    // offline embedder
)

// VectorStoreType selects the vector store backend.
type VectorStoreType string

const (
	VectorStoreMemory  VectorStoreType = "memory"
	VectorStoreChromem VectorStoreType = "chromem"
)

// Config is the top-level docsearch configuration, corresponding to .docsearch.yml.
type Config struct {
	Provider            ProviderType    `yaml:"provider" koanf:"provider"`
	Model               string          `yaml:"model" koanf:"model"`
	BaseURL             string          `yaml:"base_url,omitempty" koanf:"base_url"`
	EmbeddingProvider   ProviderType    `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string          `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int             `yaml:"embedding_dimensions,omitempty" koanf:"embedding_dimensions"`
	VectorStore         VectorStoreType `yaml:"vector_store" koanf:"vector_store"`

	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`

	SimpleTopK      int `yaml:"simple_top_k" koanf:"simple_top_k"`
	TopK            int `yaml:"top_k" koanf:"top_k"`
	SummaryTopK     int `yaml:"summary_top_k" koanf:"summary_top_k"`
	EvidenceLimit   int `yaml:"evidence_limit" koanf:"evidence_limit"`
	MaxExcerptChars int `yaml:"max_excerpt_chars" koanf:"max_excerpt_chars"`
	MaxConcurrency  int `yaml:"max_concurrency" koanf:"max_concurrency"`

	EmbedTimeoutSecs    int     `yaml:"embed_timeout_secs" koanf:"embed_timeout_secs"`
	GenerateTimeoutSecs int     `yaml:"generate_timeout_secs" koanf:"generate_timeout_secs"`
	RequestsPerMinute   int     `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	Temperature         float64 `yaml:"temperature" koanf:"temperature"`

	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`

	Server   ServerConfig `yaml:"server" koanf:"server"`
	LogLevel string       `yaml:"log_level" koanf:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	MaxUploadMB     int  `yaml:"max_upload_mb" koanf:"max_upload_mb"`
}
