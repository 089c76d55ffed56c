// WebSocket debug console for exercising the bot without LINE

package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// WebSocket message types
const (
	MsgTypeChat  = "chat"
	MsgTypeReply = "reply"
	MsgTypeError = "error"
	MsgTypePing  = "ping"
	MsgTypePong  = "pong"
)

// WSMessage is one console frame
type WSMessage struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// WSChatRequest is an inbound chat line
type WSChatRequest struct {
	Text string `json:"text"`
}

// WSChatResponse carries the bot's reply messages back to the console
type WSChatResponse struct {
	Messages []WSReplyMessage `json:"messages"`
}

type WSReplyMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// handleWebSocket upgrades the connection and runs the console loop
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v", err)
		return
	}
	conn.SetReadLimit(64 * 1024)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	g.handleWSConnection(ctx, conn, "ws:"+clientIP(r))
}

func (g *Gateway) handleWSConnection(ctx context.Context, conn *websocket.Conn, userID string) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	// coder/websocket writes are not safe for concurrent use
	var writeMu sync.Mutex

	for {
		_, msgBytes, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			g.sendWSError(ctx, conn, &writeMu, "invalid message format")
			continue
		}

		switch msg.Type {
		case MsgTypeChat:
			g.handleWSChat(ctx, conn, &writeMu, userID, msg.Content)
		case MsgTypePing:
			g.writeWS(ctx, conn, &writeMu, WSMessage{Type: MsgTypePong})
		case MsgTypePong:
			// Connection alive, do nothing
		default:
			log.Printf("[WS] Unknown message type: %s", msg.Type)
		}
	}
}

func (g *Gateway) handleWSChat(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, userID string, content json.RawMessage) {
	var req WSChatRequest
	if err := json.Unmarshal(content, &req); err != nil {
		g.sendWSError(ctx, conn, writeMu, "invalid request: "+err.Error())
		return
	}

	msgs := g.bot.Respond(ctx, userID, req.Text)

	resp := WSChatResponse{Messages: make([]WSReplyMessage, 0, len(msgs))}
	for _, m := range msgs {
		out := WSReplyMessage{Type: m.Type, Text: m.Text}
		if m.Type == "sticker" {
			out.Text = "🧩 (sticker " + m.PackageID + "/" + m.StickerID + ")"
		}
		resp.Messages = append(resp.Messages, out)
	}

	respBytes, err := json.Marshal(resp)
	if err != nil {
		g.sendWSError(ctx, conn, writeMu, "marshal error: "+err.Error())
		return
	}
	g.writeWS(ctx, conn, writeMu, WSMessage{Type: MsgTypeReply, Content: respBytes})
}

func (g *Gateway) sendWSError(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, errMsg string) {
	content, err := json.Marshal(map[string]string{"error": errMsg})
	if err != nil {
		return
	}
	g.writeWS(ctx, conn, writeMu, WSMessage{Type: MsgTypeError, Content: content})
}

func (g *Gateway) writeWS(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Marshal error: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		log.Printf("[WS] Write error: %v", err)
	}
}

// clientIP extracts the client IP from an HTTP request (handles proxies)
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
