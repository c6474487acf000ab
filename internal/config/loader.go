package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultVectorThreshold = 0.4
	defaultVectorTopK      = 10
	defaultHybridAlpha     = 0.7
	defaultHybridNgram     = 2
	defaultMaxEntries      = 200
	defaultMinCacheWords   = 3
	defaultEarlyFilter     = 10
	defaultPendingTTL      = 15 * time.Second
	defaultRetryMax        = 2
)

// Load reads the YAML configuration file at path, applies defaults, and
// returns a validated [Config]. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills in defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued tunables with the values spec.md §6 names
// as the system's defaults.
func applyDefaults(cfg *Config) {
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "json"
	}
	if cfg.Cache.AnchorFile == "" {
		cfg.Cache.AnchorFile = "anchors.json"
	}
	if cfg.Cache.UserFile == "" {
		cfg.Cache.UserFile = "semantic_cache.json"
	}
	if cfg.Cache.VectorThreshold == 0 {
		cfg.Cache.VectorThreshold = defaultVectorThreshold
	}
	if cfg.Cache.VectorTopK == 0 {
		cfg.Cache.VectorTopK = defaultVectorTopK
	}
	if cfg.Cache.HybridAlpha == 0 {
		cfg.Cache.HybridAlpha = defaultHybridAlpha
	}
	if cfg.Cache.HybridNgramSize == 0 {
		cfg.Cache.HybridNgramSize = defaultHybridNgram
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = defaultMaxEntries
	}
	if cfg.Cache.MinCacheWords == 0 {
		cfg.Cache.MinCacheWords = defaultMinCacheWords
	}
	if cfg.AliasStore.Backend == "" {
		cfg.AliasStore.Backend = "json"
	}
	if cfg.AliasStore.Path == "" {
		cfg.AliasStore.Path = "memory.json"
	}
	if cfg.Resolvers.EarlyFilterThreshold == 0 {
		cfg.Resolvers.EarlyFilterThreshold = defaultEarlyFilter
	}
	if cfg.Pending.TTLSeconds == 0 {
		cfg.Pending.TTLSeconds = int(defaultPendingTTL.Seconds())
	}
	if cfg.Pending.RetryMax == 0 {
		cfg.Pending.RetryMax = defaultRetryMax
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every validation failure found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Cache.Backend != "json" && cfg.Cache.Backend != "postgres" {
		errs = append(errs, fmt.Errorf("cache.backend %q is invalid; valid values: json, postgres", cfg.Cache.Backend))
	}
	if cfg.Cache.Backend == "postgres" && cfg.Cache.PostgresDSN == "" {
		errs = append(errs, errors.New("cache.postgres_dsn is required when cache.backend is postgres"))
	}
	if cfg.Cache.HybridEnabled && (cfg.Cache.HybridNgramSize < 1 || cfg.Cache.HybridNgramSize > 5) {
		errs = append(errs, fmt.Errorf("cache.hybrid_ngram_size %d is out of range [1, 5]", cfg.Cache.HybridNgramSize))
	}
	if cfg.Cache.HybridAlpha < 0 || cfg.Cache.HybridAlpha > 1 {
		errs = append(errs, fmt.Errorf("cache.hybrid_alpha %.2f is out of range [0, 1]", cfg.Cache.HybridAlpha))
	}
	if cfg.Cache.VectorThreshold < 0 || cfg.Cache.VectorThreshold > 1 {
		errs = append(errs, fmt.Errorf("cache.vector_search_threshold %.2f is out of range [0, 1]", cfg.Cache.VectorThreshold))
	}

	if cfg.AliasStore.Backend != "json" && cfg.AliasStore.Backend != "redis" {
		errs = append(errs, fmt.Errorf("alias_store.backend %q is invalid; valid values: json, redis", cfg.AliasStore.Backend))
	}
	if cfg.AliasStore.Backend == "redis" && cfg.AliasStore.RedisAddr == "" {
		errs = append(errs, errors.New("alias_store.redis_addr is required when alias_store.backend is redis"))
	}

	if cfg.Clients.Embeddings.Name == "" {
		slog.Warn("clients.embeddings is not configured; the semantic cache will never produce a hit")
	}
	if cfg.Clients.LLM.Name == "" {
		slog.Warn("clients.llm is not configured; stage S2 will always escalate to the cloud fallback")
	}

	return errors.Join(errs...)
}
