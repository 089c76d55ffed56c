package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.line.me"

// Sender delivers reply messages for one webhook event.
// Delivery failure is non-fatal to the batch; callers log and continue.
type Sender interface {
	Reply(ctx context.Context, replyToken string, messages ...Message) error
}

// Client speaks the LINE Messaging API
type Client struct {
	channelToken string
	baseURL      string
	client       *http.Client
}

// NewClient creates a LINE API client with a bounded request timeout
func NewClient(channelToken string) *Client {
	return &Client{
		channelToken: channelToken,
		baseURL:      defaultBaseURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Reply sends up to 5 messages in response to a reply token
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("reply requires at least one message")
	}
	if len(messages) > 5 {
		messages = messages[:5]
	}
	payload := map[string]interface{}{
		"replyToken": replyToken,
		"messages":   messages,
	}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

// Push sends messages to a user outside a reply window
func (c *Client) Push(ctx context.Context, to string, messages ...Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("push requires at least one message")
	}
	payload := map[string]interface{}{
		"to":       to,
		"messages": messages,
	}
	return c.post(ctx, "/v2/bot/message/push", payload)
}

// HealthCheck verifies the channel token against the bot info endpoint
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v2/bot/info", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to LINE: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LINE API error: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("LINE request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[LINE] API error %d on %s: %s", resp.StatusCode, path, string(respBody))
		return fmt.Errorf("LINE API error: %d", resp.StatusCode)
	}
	return nil
}
