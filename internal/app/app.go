// Package app wires the resolver core's concrete collaborators together:
// provider clients, persistence backends, resolvers, capabilities, the
// stage cascade, and the conversation front-end. It is the one place in
// the module that knows every concrete type; everything downstream of
// [New] talks to interfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kr0ner/multistage-assist/internal/config"
	"github.com/kr0ner/multistage-assist/pkg/aliasstore"
	aliasjsonstore "github.com/kr0ner/multistage-assist/pkg/aliasstore/jsonstore"
	"github.com/kr0ner/multistage-assist/pkg/aliasstore/redisstore"
	"github.com/kr0ner/multistage-assist/pkg/capability"
	"github.com/kr0ner/multistage-assist/pkg/capability/calendar"
	"github.com/kr0ner/multistage-assist/pkg/capability/timer"
	"github.com/kr0ner/multistage-assist/pkg/capability/vacuum"
	"github.com/kr0ner/multistage-assist/pkg/clients/embeddings"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/clients/rerank"
	"github.com/kr0ner/multistage-assist/pkg/execute"
	"github.com/kr0ner/multistage-assist/pkg/frontend"
	"github.com/kr0ner/multistage-assist/pkg/host"
	"github.com/kr0ner/multistage-assist/pkg/host/mock"
	"github.com/kr0ner/multistage-assist/pkg/intent"
	"github.com/kr0ner/multistage-assist/pkg/orchestrator"
	"github.com/kr0ner/multistage-assist/pkg/resilience"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
	"github.com/kr0ner/multistage-assist/pkg/semcache"
	"github.com/kr0ner/multistage-assist/pkg/semcache/jsonstore"
	"github.com/kr0ner/multistage-assist/pkg/semcache/pgstore"
)

// Clients bundles the provider implementations an embedding application
// constructs from its configuration before calling [New]. Any field left
// nil degrades gracefully: the stage or cache feature that depends on it
// escalates or falls back instead of failing outright.
type Clients struct {
	// LLM backs stage S2's clarification calls and the area/floor
	// resolvers' LLM fallback tier.
	LLM llm.Provider

	// Cloud backs stage S3, the last-resort chat/intent fallback.
	Cloud llm.Provider

	// Embeddings backs anchor generation and cache query fingerprinting.
	Embeddings embeddings.Provider

	// Reranker backs the semantic cache's admission gate.
	Reranker rerank.Client

	// Registry, Dispatcher, Caller, Notifier, and Probe are the host
	// platform collaborators. An embedding application supplies its own
	// implementations; see [pkg/host/mock] for what the dummy edition
	// used by the example binary looks like. A nil Probe disables the
	// rule-based S0 stage (it always escalates).
	Registry   host.Registry
	Dispatcher host.IntentDispatcher
	Caller     host.ServiceCaller
	Notifier   host.NotifyServices
	Probe      host.NLUProbe
}

// App is the fully wired resolver, ready to process utterances through
// [App.Frontend].
type App struct {
	Frontend *frontend.Frontend

	aliases aliasstore.Store
	cache   *semcache.Cache
	pgPool  *pgxpool.Pool
}

// New builds every layer of the resolver core from cfg and clients:
// persistence backends, resolvers, capabilities, the four-stage cascade,
// the orchestrator, and the conversation front-end.
func New(ctx context.Context, cfg *config.Config, clients Clients) (*App, error) {
	registry := clients.Registry
	if registry == nil {
		registry = &mock.Registry{}
	}
	dispatcher := clients.Dispatcher
	if dispatcher == nil {
		dispatcher = &mock.IntentDispatcher{}
	}
	caller := clients.Caller
	if caller == nil {
		caller = &mock.ServiceCaller{}
	}
	notifier := clients.Notifier
	if notifier == nil {
		notifier = &mock.NotifyServices{}
	}

	aliases, err := newAliasStore(ctx, cfg.AliasStore)
	if err != nil {
		return nil, fmt.Errorf("app: alias store: %w", err)
	}

	app := &App{aliases: aliases}

	var cache *semcache.Cache
	if clients.Embeddings != nil {
		store, pool, err := newCacheStore(ctx, cfg.Cache, clients.Embeddings.Dimensions())
		if err != nil {
			aliases.Close()
			return nil, fmt.Errorf("app: cache store: %w", err)
		}
		app.pgPool = pool

		cache, err = semcache.New(ctx, store, clients.Embeddings, cacheOptions(cfg.Cache, clients.Reranker)...)
		if err != nil {
			aliases.Close()
			if pool != nil {
				pool.Close()
			}
			return nil, fmt.Errorf("app: semantic cache: %w", err)
		}
	} else {
		slog.Warn("app: no embeddings provider configured, semantic cache disabled")
	}
	app.cache = cache

	localLLM := localLLMWithCloudFallback(clients.LLM, clients.Cloud)

	areaResolver := resolve.NewAreaResolver(registry, aliases, localLLM)
	floorResolver := resolve.NewFloorResolver(registry, aliases, localLLM)
	entityResolver := resolve.NewEntityResolver(registry, aliases)

	capabilities := []capability.Capability{
		timer.New(notifier),
		calendar.New(registry, caller),
		vacuum.New(areaResolver, floorResolver, caller),
	}

	parser := intent.NewParser(localLLM)

	stage0 := orchestrator.NewStage0(clients.Probe, entityResolver, cfg.Resolvers.EarlyFilterThreshold)
	stage1 := orchestrator.NewStage1(cache)
	stage2 := orchestrator.NewStage2(parser, entityResolver, areaResolver, floorResolver, registry, localLLM, capabilities)
	stage3 := orchestrator.NewStage3(clients.Cloud, registry, areaResolver, floorResolver, entityResolver)

	pipeline := execute.New(registry, dispatcher, cache, localLLM)

	orch := orchestrator.New(
		[]orchestrator.Stage{stage0, stage1, stage2, stage3},
		pipeline,
		registry,
		aliases,
		capabilities,
		orchestrator.WithPendingTTL(time.Duration(cfg.Pending.TTLSeconds)*time.Second),
		orchestrator.WithRetryMax(cfg.Pending.RetryMax),
	)

	app.Frontend = frontend.New(orch)
	return app, nil
}

// Shutdown releases persistence backends. It does not touch the provider
// clients — their lifecycle belongs to whoever constructed them.
func (a *App) Shutdown(_ context.Context) error {
	var errs []error
	if a.aliases != nil {
		if err := a.aliases.Close(); err != nil {
			errs = append(errs, fmt.Errorf("alias store: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("semantic cache: %w", err))
		}
	}
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("app: shutdown: %v", errs)
}

func newAliasStore(ctx context.Context, cfg config.AliasStoreConfig) (aliasstore.Store, error) {
	switch cfg.Backend {
	case "redis":
		return redisstore.Open(ctx, redisstore.Config{Addr: cfg.RedisAddr})
	default:
		return aliasjsonstore.Open(cfg.Path)
	}
}

// newCacheStore returns the configured [semcache.Store]. The returned pool
// is non-nil only for the postgres backend, so the caller can close it on
// shutdown. embeddingDimensions sizes the pgvector column on first migration.
func newCacheStore(ctx context.Context, cfg config.CacheConfig, embeddingDimensions int) (semcache.Store, *pgxpool.Pool, error) {
	if cfg.Backend != "postgres" {
		return jsonstore.Open(cfg.UserFile), nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := pgstore.Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return pgstore.New(pool), pool, nil
}

// localLLMWithCloudFallback wraps local in an [resilience.LLMFallback] that
// fails over to cloud whenever a local call fails or the local backend's
// circuit breaker is open, so a
// transient local-model outage degrades to the cloud backend instead of
// every local-LLM-backed call (resolvers, the keyword parser, stage S2)
// failing outright. Returns local unchanged when either side is nil.
func localLLMWithCloudFallback(local, cloud llm.Provider) llm.Provider {
	if local == nil || cloud == nil {
		return local
	}
	fallback := resilience.NewLLMFallback(local, "local-llm", resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{Name: "local-llm"},
	})
	fallback.AddFallback("cloud-llm", cloud)
	return fallback
}

func cacheOptions(cfg config.CacheConfig, reranker rerank.Client) []semcache.Option {
	opts := []semcache.Option{
		semcache.WithVectorThreshold(cfg.VectorThreshold),
		semcache.WithVectorTopK(cfg.VectorTopK),
		semcache.WithMaxEntries(cfg.MaxEntries),
		semcache.WithMinCacheWords(cfg.MinCacheWords),
	}
	if cfg.HybridEnabled {
		opts = append(opts, semcache.WithHybridOverlay(cfg.HybridAlpha, cfg.HybridNgramSize))
	}
	if reranker != nil {
		opts = append(opts, semcache.WithReranker(reranker))
	}
	return opts
}
