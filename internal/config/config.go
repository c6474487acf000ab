// Package config provides the configuration schema and YAML loader for the
// assistant binary: which LLM/embedding/reranker providers back each
// pipeline stage, and the tunables for the semantic cache, resolvers, and
// pending-state machine.
package config

// Config is the root configuration structure for the assistant server.
// It is loaded once at startup via [Load] and passed by reference to every
// subsystem — nothing in this package is mutated after loading.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Clients    ClientsConfig    `yaml:"clients"`
	Cache      CacheConfig      `yaml:"cache"`
	AliasStore AliasStoreConfig `yaml:"alias_store"`
	Resolvers  ResolversConfig  `yaml:"resolvers"`
	Pending    PendingConfig    `yaml:"pending"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is a TCP address (e.g., ":8080") reported in the startup
	// log and summary; assistd itself opens no listener on it.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Valid values: "debug", "info", "warn", "error".
	LogLevel LogLevel `yaml:"log_level"`
}

// LogLevel is a validated slog verbosity name.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is one of the recognised level names.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError, "":
		return true
	default:
		return false
	}
}

// ClientsConfig declares which provider implementation backs each remote
// collaborator the resolver core calls out to. Each field selects a named
// provider registered in the [Registry].
type ClientsConfig struct {
	// LLM backs stage S2's keyword intent parser, the area/floor LLM
	// fallback tier, and compound-utterance clarification. Typically a
	// local or self-hosted model for latency.
	LLM ProviderEntry `yaml:"llm"`

	// Cloud backs stage S3, the last-resort chat/intent fallback.
	Cloud ProviderEntry `yaml:"cloud"`

	// Embeddings backs anchor generation and cache query fingerprinting.
	Embeddings ProviderEntry `yaml:"embeddings"`

	// Reranker backs the semantic cache's admission gate.
	Reranker RerankEntry `yaml:"reranker"`
}

// ProviderEntry is the common configuration block shared by the LLM and
// embeddings provider kinds. The Name field is used to look up the
// constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai",
	// "ollama", "anthropic"). Empty disables the stage that depends on it —
	// it always escalates, per the "Config" error kind in the error
	// handling design.
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API. May be
	// empty for providers that don't require one (e.g. a local Ollama).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`
}

// RerankEntry configures the cross-encoder reranker HTTP client.
type RerankEntry struct {
	// BaseURL is the reranker service's endpoint. Empty disables
	// reranker-gated cache admission; Lookup falls back to ranking by
	// vector score alone.
	BaseURL string `yaml:"base_url"`

	// Model selects the reranker model served at BaseURL.
	Model string `yaml:"model"`
}

// CacheConfig tunes the semantic command cache (§4.F).
type CacheConfig struct {
	// Backend selects the persistence layer: "json" (default) or
	// "postgres".
	Backend string `yaml:"backend"`

	// AnchorFile is the path to the pre-seeded anchor snapshot (json backend).
	AnchorFile string `yaml:"anchor_file"`

	// UserFile is the path to the learned-entry snapshot (json backend).
	UserFile string `yaml:"user_file"`

	// PostgresDSN connects the pgvector-backed store (postgres backend).
	PostgresDSN string `yaml:"postgres_dsn"`

	// VectorThreshold is the minimum cosine similarity a candidate must
	// clear before it is even forwarded to the reranker. Default 0.4.
	VectorThreshold float64 `yaml:"vector_search_threshold"`

	// VectorTopK caps how many vector-search candidates reach the
	// reranker. Default 10.
	VectorTopK int `yaml:"vector_search_top_k"`

	// HybridEnabled turns on the lexical n-gram overlay blended with the
	// semantic score.
	HybridEnabled bool `yaml:"hybrid_enabled"`

	// HybridAlpha is the semantic-vs-lexical blend weight. Default 0.7.
	HybridAlpha float64 `yaml:"hybrid_alpha"`

	// HybridNgramSize is the lexical overlay's n-gram size, 1..5. Default 2.
	HybridNgramSize int `yaml:"hybrid_ngram_size"`

	// MaxEntries is the retention ceiling before LRU-ish eviction of
	// learned (non-generated) entries kicks in. Default 200.
	MaxEntries int `yaml:"max_entries"`

	// MinCacheWords is the minimum utterance length (in words) admitted
	// to the cache. Default 3.
	MinCacheWords int `yaml:"min_cache_words"`
}

// AliasStoreConfig selects the learned-alias persistence backend (§4.C).
type AliasStoreConfig struct {
	// Backend selects the store implementation: "json" (default) or "redis".
	Backend string `yaml:"backend"`

	// Path is the alias file path (json backend).
	Path string `yaml:"path"`

	// RedisAddr is the Redis server address (redis backend).
	RedisAddr string `yaml:"redis_addr"`
}

// ResolversConfig tunes the area/floor/entity resolvers and the S0 probe.
type ResolversConfig struct {
	// EarlyFilterThreshold is T: S0 only attaches pre-resolved candidate
	// IDs to an escalation when the resolved count is at or below this.
	// Default 10.
	EarlyFilterThreshold int `yaml:"early_filter_threshold"`
}

// PendingConfig tunes the multi-turn pending-state machine (§3).
type PendingConfig struct {
	// TTLSeconds is T_PENDING: how long a pending record survives before
	// it is swept as stale. Default 15.
	TTLSeconds int `yaml:"ttl_seconds"`

	// RetryMax is R_MAX: how many re-prompts a pending continuation gets
	// before it is abandoned. Default 2.
	RetryMax int `yaml:"retry_max"`
}
