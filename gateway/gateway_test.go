package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"habitline/bot"
)

func TestHealth(t *testing.T) {
	g, _ := testGateway(t, bot.Options{})
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status string          `json:"status"`
		Config map[string]bool `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != "running" {
		t.Errorf("unexpected status: %q", resp.Status)
	}
	if !resp.Config["hasChannelSecret"] || !resp.Config["hasChannelToken"] {
		t.Errorf("credentials should be reported present: %v", resp.Config)
	}
}

func TestStatus(t *testing.T) {
	g, _ := testGateway(t, bot.Options{})

	// Process one event so the counters move
	body := webhookBody("你好")
	postWebhook(g, body, sign(body))

	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Uptime    string `json:"uptime"`
		Processed uint64 `json:"processed"`
		Days      int    `json:"days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Processed != 1 {
		t.Errorf("expected 1 processed event, got %d", resp.Processed)
	}
	if resp.Days != 1 {
		t.Errorf("expected 1 tracked day, got %d", resp.Days)
	}
	if resp.Uptime == "" {
		t.Error("uptime missing")
	}
}

func TestRootLandingPage(t *testing.T) {
	g, _ := testGateway(t, bot.Options{})
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Habitline") {
		t.Error("landing page should name the bot")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected HTML content type, got %q", ct)
	}
}

func TestRootUnknownPath(t *testing.T) {
	g, _ := testGateway(t, bot.Options{})
	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != 404 {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
