package line

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewText(t *testing.T) {
	msg := NewText("hello")
	if msg.Type != "text" || msg.Text != "hello" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.QuickReply != nil {
		t.Error("plain text should have no quick reply")
	}
}

func TestNewTextTruncates(t *testing.T) {
	long := make([]byte, MaxTextLength+100)
	for i := range long {
		long[i] = 'a'
	}
	msg := NewText(string(long))
	if len(msg.Text) != MaxTextLength {
		t.Errorf("expected truncation to %d, got %d", MaxTextLength, len(msg.Text))
	}
}

func TestNewTextTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("任", MaxTextLength+100)
	msg := NewText(long)
	if !utf8.ValidString(msg.Text) {
		t.Fatal("truncated text must remain valid UTF-8")
	}
	if got := utf8.RuneCountInString(msg.Text); got != MaxTextLength {
		t.Errorf("expected %d characters, got %d", MaxTextLength, got)
	}
}

func TestNewTextWithSuggestions(t *testing.T) {
	msg := NewTextWithSuggestions("pick one", []Suggestion{
		{Label: "📋 查看任務", Text: "查看任務"},
		{Label: "🔍 搜索", Text: "搜索"},
	})
	if msg.QuickReply == nil {
		t.Fatal("expected quick reply")
	}
	if len(msg.QuickReply.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(msg.QuickReply.Items))
	}
	item := msg.QuickReply.Items[0]
	if item.Type != "action" || item.Action.Type != "message" {
		t.Errorf("unexpected item shape: %+v", item)
	}
	if item.Action.Text != "查看任務" {
		t.Errorf("expected action text 查看任務, got %s", item.Action.Text)
	}
}

func TestNewTextWithSuggestionsEmpty(t *testing.T) {
	msg := NewTextWithSuggestions("text", nil)
	if msg.QuickReply != nil {
		t.Error("no suggestions should mean no quickReply field")
	}
}

func TestNewSticker(t *testing.T) {
	msg := NewSticker(Sticker{PackageID: "1", StickerID: "106"})
	if msg.Type != "sticker" || msg.PackageID != "1" || msg.StickerID != "106" {
		t.Errorf("unexpected sticker message: %+v", msg)
	}
}

func TestIsTextMessage(t *testing.T) {
	tests := []struct {
		event Event
		want  bool
	}{
		{Event{Type: "message", Message: EventMessage{Type: "text", Text: "hi"}}, true},
		{Event{Type: "message", Message: EventMessage{Type: "sticker"}}, false},
		{Event{Type: "follow"}, false},
		{Event{}, false},
	}
	for _, tt := range tests {
		if got := tt.event.IsTextMessage(); got != tt.want {
			t.Errorf("IsTextMessage(%+v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestClientReply(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("test-token")
	c.baseURL = srv.URL

	err := c.Reply(context.Background(), "reply-token-1", NewText("done"))
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if gotPath != "/v2/bot/message/reply" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected auth header: %s", gotAuth)
	}
	if gotBody["replyToken"] != "reply-token-1" {
		t.Errorf("unexpected replyToken: %v", gotBody["replyToken"])
	}
	msgs, ok := gotBody["messages"].([]interface{})
	if !ok || len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %v", gotBody["messages"])
	}
}

func TestClientReplyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid reply token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("test-token")
	c.baseURL = srv.URL

	if err := c.Reply(context.Background(), "stale", NewText("x")); err == nil {
		t.Error("expected error for 400 response")
	}
}

func TestClientReplyNoMessages(t *testing.T) {
	c := NewClient("test-token")
	if err := c.Reply(context.Background(), "token"); err == nil {
		t.Error("expected error for empty message list")
	}
}

func TestClientReplyCapsAtFive(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []Message `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		count = len(body.Messages)
	}))
	defer srv.Close()

	c := NewClient("t")
	c.baseURL = srv.URL

	msgs := make([]Message, 7)
	for i := range msgs {
		msgs[i] = NewText("m")
	}
	if err := c.Reply(context.Background(), "token", msgs...); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 messages sent, got %d", count)
	}
}
