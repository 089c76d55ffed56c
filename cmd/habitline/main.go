package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"habitline/bot"
	"habitline/channels/line"
	"habitline/gateway"
	"habitline/pkg/config"
	"habitline/pkg/kv"
	"habitline/pkg/llm"
	"habitline/pkg/llm/providers/google"
	"habitline/pkg/llm/providers/openai"
	"habitline/services/price"
	"habitline/services/search"
	"habitline/storage"
)

func main() {
	log.Println("Starting Habitline Bot...")

	config.LoadEnvFile(".env")

	cfg := config.DefaultConfig()
	if err := cfg.LoadFile("config.yaml"); err != nil {
		log.Fatalf("Config file error: %v", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config invalid: %v", err)
	}

	opts := bot.Options{
		TaskNames: cfg.TaskNames,
		Location:  cfg.Location(),
		Sender:    line.NewClient(cfg.ChannelToken),
	}

	if cfg.SearchEnabled {
		opts.Searcher = search.NewClient(cfg.LookupTimeout)
	}
	if cfg.PriceEnabled {
		opts.Pricer = price.NewClient(cfg.LookupTimeout)
	}
	opts.Generator = buildGenerator(cfg)

	dedup, err := kv.Open(kv.Options{
		Dir:        cfg.DedupDir,
		MemoryMode: cfg.DedupDir == "",
		TTL:        cfg.DedupTTL,
	})
	if err != nil {
		log.Fatalf("Dedup store error: %v", err)
	}
	defer dedup.Close()
	opts.Deduper = dedup

	var store *storage.Storage
	if cfg.DBPath != "" {
		store, err = storage.New(cfg.DBPath)
		if err != nil {
			log.Fatalf("Storage error: %v", err)
		}
		defer store.Close()
		opts.Recorder = store
	}

	b := bot.New(opts)
	srv := gateway.New(cfg, b, store)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gateway start failed: %v", err)
		}
	}()

	log.Println("Waiting for webhook events...")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	log.Println("Shutting down...")
	srv.Stop()
}

// buildGenerator wires the configured generative provider, or nil when AI
// features are off or the key is missing
func buildGenerator(cfg *config.Config) llm.Provider {
	if !cfg.AIEnabled {
		return nil
	}

	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Println("[WARN] AI enabled but OPENAI_API_KEY missing, falling back to canned replies")
			return nil
		}
		return openai.New(cfg.OpenAIKey, cfg.OpenAIModel, cfg.PromptTokenBudget)
	default:
		if cfg.GeminiKey == "" {
			log.Println("[WARN] AI enabled but GEMINI_API_KEY missing, falling back to canned replies")
			return nil
		}
		p, err := google.New(context.Background(), cfg.GeminiKey, cfg.GeminiModel, cfg.PromptTokenBudget)
		if err != nil {
			log.Printf("[WARN] Gemini client error: %v, falling back to canned replies", err)
			return nil
		}
		return p
	}
}
