// Webhook endpoint with LINE signature verification

package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"habitline/channels/line"
)

// handleWebhook receives a LINE webhook batch. The platform retries
// non-200 responses, so once the signature checks out the endpoint
// always acknowledges, even for payloads it cannot use.
func (g *Gateway) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, g.cfg.MaxBodyWebhook)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[Webhook] Body read failed: %v", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Line-Signature")
	if signature == "" {
		http.Error(w, "missing signature", http.StatusBadRequest)
		return
	}
	if !verifySignature(g.cfg.ChannelSecret, body, signature) {
		log.Printf("[Webhook] Signature verification failed from %s", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Printf("[Webhook] Malformed payload: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if len(req.Events) > 0 {
		g.bot.HandleEvents(r.Context(), req.Events)
	}
	w.WriteHeader(http.StatusOK)
}

// verifySignature checks the HMAC-SHA256 of the raw body against the
// base64 signature header
func verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
