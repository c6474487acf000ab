// Command assistd is the example wiring binary for the smart-home intent
// resolver: it loads configuration, instantiates the configured provider
// clients, and starts the conversation front-end. The host automation
// platform itself is out of scope — this binary wires [pkg/host/mock] by
// default so the resolver core has something to talk to; an embedding
// application supplies its own [pkg/host] implementation in place of the
// Clients fields left unset here.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/kr0ner/multistage-assist/internal/app"
	"github.com/kr0ner/multistage-assist/internal/config"
	"github.com/kr0ner/multistage-assist/pkg/clients/embeddings"
	embeddingsollama "github.com/kr0ner/multistage-assist/pkg/clients/embeddings/ollama"
	embeddingsopenai "github.com/kr0ner/multistage-assist/pkg/clients/embeddings/openai"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm/anyllm"
	llmopenai "github.com/kr0ner/multistage-assist/pkg/clients/llm/openai"
	"github.com/kr0ner/multistage-assist/pkg/clients/rerank"
	rerankhttp "github.com/kr0ner/multistage-assist/pkg/clients/rerank/http"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "assistd: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "assistd: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("assistd starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	clients, err := buildClients(cfg, reg)
	if err != nil {
		slog.Error("failed to build provider clients", "err", err)
		return 1
	}

	printStartupSummary(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, clients)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("resolver ready — press Ctrl+C to shut down")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ─────────────────────────────────────────────────────────

// registerBuiltinProviders registers every provider factory this binary
// ships with. An embedding application following this example would
// register its own set, including a real pkg/host implementation — there
// is no registry slot for that because the host platform is an external
// collaborator, not a named provider.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(e config.ProviderEntry) (llm.Provider, error) {
		var opts []llmopenai.Option
		if e.BaseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(e.BaseURL))
		}
		return llmopenai.New(e.APIKey, e.Model, opts...)
	})
	reg.RegisterLLM("anthropic", func(e config.ProviderEntry) (llm.Provider, error) {
		return anyllm.NewAnthropic(e.Model, anyllmlib.WithAPIKey(e.APIKey))
	})
	reg.RegisterLLM("ollama", func(e config.ProviderEntry) (llm.Provider, error) {
		opts := []anyllmlib.Option{}
		if e.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(e.BaseURL))
		}
		return anyllm.NewOllama(e.Model, opts...)
	})

	reg.RegisterEmbeddings("openai", func(e config.ProviderEntry) (embeddings.Provider, error) {
		var opts []embeddingsopenai.Option
		if e.BaseURL != "" {
			opts = append(opts, embeddingsopenai.WithBaseURL(e.BaseURL))
		}
		return embeddingsopenai.New(e.APIKey, e.Model, opts...)
	})
	reg.RegisterEmbeddings("ollama", func(e config.ProviderEntry) (embeddings.Provider, error) {
		return embeddingsollama.New(e.BaseURL, e.Model)
	})

	reg.RegisterRerank("http", func(e config.RerankEntry) (rerank.Client, error) {
		return rerankhttp.New(e.BaseURL, rerankhttp.WithModel(e.Model)), nil
	})
}

// buildClients instantiates every provider named in cfg via reg and
// returns them bundled in an [app.Clients]. A provider left unnamed in the
// config is left nil — the stage or cache feature that depends on it
// degrades rather than the process failing to start.
func buildClients(cfg *config.Config, reg *config.Registry) (app.Clients, error) {
	var clients app.Clients

	if name := cfg.Clients.LLM.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Clients.LLM)
		if err != nil {
			return clients, fmt.Errorf("create llm client %q: %w", name, err)
		}
		clients.LLM = p
		slog.Info("provider created", "kind", "llm", "name", name)
	}

	if name := cfg.Clients.Cloud.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Clients.Cloud)
		if err != nil {
			return clients, fmt.Errorf("create cloud client %q: %w", name, err)
		}
		clients.Cloud = p
		slog.Info("provider created", "kind", "cloud", "name", name)
	}

	if name := cfg.Clients.Embeddings.Name; name != "" {
		p, err := reg.CreateEmbeddings(cfg.Clients.Embeddings)
		if err != nil {
			return clients, fmt.Errorf("create embeddings client %q: %w", name, err)
		}
		clients.Embeddings = p
		slog.Info("provider created", "kind", "embeddings", "name", name)
	}

	if cfg.Clients.Reranker.BaseURL != "" {
		p, err := reg.CreateRerank("http", cfg.Clients.Reranker)
		if err != nil {
			return clients, fmt.Errorf("create reranker client: %w", err)
		}
		clients.Reranker = p
		slog.Info("provider created", "kind", "reranker", "base_url", cfg.Clients.Reranker.BaseURL)
	}

	return clients, nil
}

// ── Startup summary ─────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║     assistd — startup summary          ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("LLM", cfg.Clients.LLM.Name, cfg.Clients.LLM.Model)
	printProvider("Cloud", cfg.Clients.Cloud.Name, cfg.Clients.Cloud.Model)
	printProvider("Embeddings", cfg.Clients.Embeddings.Name, cfg.Clients.Embeddings.Model)
	rerankerName := ""
	if cfg.Clients.Reranker.BaseURL != "" {
		rerankerName = "http"
	}
	printProvider("Reranker", rerankerName, cfg.Clients.Reranker.Model)
	fmt.Printf("║  Cache backend   : %-19s ║\n", cfg.Cache.Backend)
	fmt.Printf("║  Alias backend   : %-19s ║\n", cfg.AliasStore.Backend)
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ───────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
