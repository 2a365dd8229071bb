package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "lex-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: "claude" or "gemini".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds a single model call; an exceeded call fails instead
	// of hanging the analysis (default 2m).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RouterConfig holds settings for query route classification.
type RouterConfig struct {
	// DefaultRoute is the policy fallback used when the classifier is
	// unavailable or its signal is ambiguous. Defaults to "both": a
	// missed structured path loses citations, a missed vector path loses
	// context, so the comprehensive route is the safe default.
	DefaultRoute Route `json:"default_route" yaml:"default_route"`
}

// SynthesizerConfig holds settings for SPARQL query synthesis.
type SynthesizerConfig struct {
	// MaxResults is the LIMIT the generated query must carry (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// RegistryConfig holds settings for the legislative registry client.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the SPARQL endpoint URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// MaxRetries bounds retry attempts for registry requests (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// LanguageOrder is the fallback order for full-text fetching when
	// the preferred language variant is unavailable (default de, fr, it, rm).
	LanguageOrder []Language `json:"language_order" yaml:"language_order"`

	// CacheTTL bounds how long fetched full texts may be reused. Sized
	// to tolerate upstream consolidation amendments (default 15m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// CacheSize bounds the number of cached full texts (default 64).
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// RetrieverConfig holds settings for the general-corpus retriever.
type RetrieverConfig struct {
	// IndexDir is the directory holding the corpus index database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// TopK is the number of excerpts to retrieve per query (default 4).
	TopK int `json:"top_k" yaml:"top_k"`
}

// PipelineConfig groups all stage configurations for the analysis pipeline.
type PipelineConfig struct {
	AI          AIConfig          `json:"ai" yaml:"ai"`
	Router      RouterConfig      `json:"router" yaml:"router"`
	Synthesizer SynthesizerConfig `json:"synthesizer" yaml:"synthesizer"`
	Registry    RegistryConfig    `json:"registry" yaml:"registry"`
	Retriever   RetrieverConfig   `json:"retriever" yaml:"retriever"`
}
