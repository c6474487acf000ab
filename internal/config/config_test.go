package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Cache.Backend)
	assert.Equal(t, "anchors.json", cfg.Cache.AnchorFile)
	assert.Equal(t, "semantic_cache.json", cfg.Cache.UserFile)
	assert.InDelta(t, defaultVectorThreshold, cfg.Cache.VectorThreshold, 1e-9)
	assert.Equal(t, defaultVectorTopK, cfg.Cache.VectorTopK)
	assert.InDelta(t, defaultHybridAlpha, cfg.Cache.HybridAlpha, 1e-9)
	assert.Equal(t, defaultHybridNgram, cfg.Cache.HybridNgramSize)
	assert.Equal(t, defaultMaxEntries, cfg.Cache.MaxEntries)
	assert.Equal(t, defaultMinCacheWords, cfg.Cache.MinCacheWords)
	assert.Equal(t, "json", cfg.AliasStore.Backend)
	assert.Equal(t, "memory.json", cfg.AliasStore.Path)
	assert.Equal(t, defaultEarlyFilter, cfg.Resolvers.EarlyFilterThreshold)
	assert.Equal(t, 15, cfg.Pending.TTLSeconds)
	assert.Equal(t, defaultRetryMax, cfg.Pending.RetryMax)
}

func TestLoadFromReader_ExplicitValues(t *testing.T) {
	yamlDoc := `
server:
  listen_addr: ":9090"
  log_level: debug
clients:
  llm:
    name: ollama
    model: llama3
  cloud:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
  embeddings:
    name: openai
    model: text-embedding-3-small
  reranker:
    base_url: "http://localhost:8787"
    model: bge-reranker-v2-m3
cache:
  backend: json
  vector_search_threshold: 0.5
  hybrid_enabled: true
  hybrid_alpha: 0.6
  hybrid_ngram_size: 3
alias_store:
  backend: json
  path: "./data/memory.json"
pending:
  ttl_seconds: 20
  retry_max: 3
`
	cfg, err := LoadFromReader(strings.NewReader(yamlDoc))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, LogDebug, cfg.Server.LogLevel)
	assert.Equal(t, "ollama", cfg.Clients.LLM.Name)
	assert.Equal(t, "llama3", cfg.Clients.LLM.Model)
	assert.Equal(t, "openai", cfg.Clients.Cloud.Name)
	assert.Equal(t, "sk-test", cfg.Clients.Cloud.APIKey)
	assert.Equal(t, "http://localhost:8787", cfg.Clients.Reranker.BaseURL)
	assert.InDelta(t, 0.5, cfg.Cache.VectorThreshold, 1e-9)
	assert.True(t, cfg.Cache.HybridEnabled)
	assert.InDelta(t, 0.6, cfg.Cache.HybridAlpha, 1e-9)
	assert.Equal(t, 3, cfg.Cache.HybridNgramSize)
	assert.Equal(t, "./data/memory.json", cfg.AliasStore.Path)
	assert.Equal(t, 20, cfg.Pending.TTLSeconds)
	assert.Equal(t, 3, cfg.Pending.RetryMax)
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("bogus_top_level_key: 1\n"))
	require.Error(t, err)
}

func TestValidate_RejectsInvalidLogLevel(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Server.LogLevel = "verbose"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestValidate_RejectsPostgresBackendWithoutDSN(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Cache.Backend = "postgres"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres_dsn")
}

func TestValidate_RejectsRedisAliasStoreWithoutAddr(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.AliasStore.Backend = "redis"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis_addr")
}

func TestValidate_RejectsOutOfRangeHybridAlpha(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Cache.HybridAlpha = 1.5
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hybrid_alpha")
}
