// Package gateway provides the HTTP surface for the habitline bot
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"habitline/bot"
	"habitline/pkg/config"
	"habitline/storage"
)

// Gateway owns the HTTP server and routes webhook traffic to the bot
type Gateway struct {
	cfg       *config.Config
	bot       *bot.Bot
	store     *storage.Storage
	server    *http.Server
	startedAt time.Time
}

// New creates a gateway. store may be nil when the activity log is disabled.
func New(cfg *config.Config, b *bot.Bot, store *storage.Storage) *Gateway {
	return &Gateway{
		cfg:       cfg,
		bot:       b,
		store:     store,
		startedAt: time.Now(),
	}
}

// Handler builds the route table. Split out from Start for tests.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/webhook", g.handleWebhook)
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/status", g.handleStatus)
	mux.HandleFunc("/ws/chat", g.handleWebSocket)
	mux.HandleFunc("/", g.handleRoot)

	return mux
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.cfg.Host, g.cfg.Port)
	g.server = &http.Server{
		Addr:         addr,
		Handler:      g.Handler(),
		ReadTimeout:  g.cfg.ReadTimeout,
		WriteTimeout: g.cfg.WriteTimeout,
		IdleTimeout:  g.cfg.IdleTimeout,
	}
	log.Printf("Gateway listening on %s", addr)
	return g.server.ListenAndServe()
}

func (g *Gateway) Stop() {
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := g.server.Shutdown(ctx); err != nil {
			log.Printf("Gateway graceful shutdown failed: %v", err)
			g.server.Close()
		}
	}
}

// handleHealth reports liveness and which collaborators are configured
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":    "running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"config": map[string]bool{
			"hasChannelSecret": g.cfg.ChannelSecret != "",
			"hasChannelToken":  g.cfg.ChannelToken != "",
		},
		"features": map[string]bool{
			"ai":     g.cfg.AIEnabled,
			"search": g.cfg.SearchEnabled,
			"price":  g.cfg.PriceEnabled,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatus reports uptime, event counters and recent activity
func (g *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	processed, deduped, failed := g.bot.Counters()
	resp := map[string]interface{}{
		"uptime":    time.Since(g.startedAt).Round(time.Second).String(),
		"processed": processed,
		"deduped":   deduped,
		"failed":    failed,
		"days":      g.bot.Store().DayCount(),
	}

	if g.store != nil {
		if counts, err := g.store.IntentCounts(); err == nil {
			resp["intents"] = counts
		}
		if recent, err := g.store.GetRecent(10); err == nil {
			resp["recent"] = recent
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRoot serves a minimal landing page
func (g *Gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!DOCTYPE html>
<html lang="zh-Hant">
<head><meta charset="utf-8"><title>Habitline Bot</title></head>
<body>
<h1>🤖 Habitline Bot</h1>
<p>LINE 每日任務助手正在執行中。</p>
<ul>
<li><a href="/health">health</a></li>
<li><a href="/status">status</a></li>
</ul>
</body>
</html>`)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Gateway] JSON encode failed: %v", err)
	}
}
