// Package search provides web search with a local fallback result set
package search

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const defaultBaseURL = "https://html.duckduckgo.com/html/"

// MaxResults is the number of titles returned per query
const MaxResults = 3

// Result is a search outcome. Fallback marks that the upstream was
// unreachable and the local catalog was substituted, so callers and tests
// can tell real results from canned ones.
type Result struct {
	Titles   []string
	Fallback bool
}

// Client queries the DuckDuckGo HTML endpoint
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a search client with a bounded request timeout
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

var resultTitleRe = regexp.MustCompile(`(?s)<a[^>]*class="result__a"[^>]*>(.*?)</a>`)
var tagRe = regexp.MustCompile(`<[^>]*>`)

// Search returns up to MaxResults result titles for the query.
// Any upstream failure degrades to the local fallback catalog; Search
// itself never fails.
func (c *Client) Search(ctx context.Context, query string) Result {
	titles, err := c.fetch(ctx, query)
	if err != nil || len(titles) == 0 {
		if err != nil {
			log.Printf("[Search] Upstream failed, using fallback: %v", err)
		}
		return Result{Titles: FallbackResults(query), Fallback: true}
	}
	return Result{Titles: titles}
}

func (c *Client) fetch(ctx context.Context, query string) ([]string, error) {
	u := c.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, m := range resultTitleRe.FindAllStringSubmatch(string(body), MaxResults) {
		title := strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(m[1], "")))
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles, nil
}

// FallbackResults returns the canned result set for a query, keyed by the
// same topics the original bot recognized.
func FallbackResults(query string) []string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "javascript") || strings.Contains(q, "js"):
		return []string{
			"JavaScript 基礎教學 - MDN Web Docs",
			"JavaScript 完整課程 - FreeCodeCamp",
			"JavaScript 最新教學 - W3Schools",
		}
	case strings.Contains(q, "python"):
		return []string{
			"Python 官方教學文件",
			"Python 入門指南 - Real Python",
			"Python 程式設計 - Codecademy",
		}
	case strings.Contains(q, "golang") || strings.Contains(q, "go "):
		return []string{
			"Go 官方文件 - go.dev",
			"A Tour of Go",
			"Effective Go",
		}
	case strings.Contains(q, "line bot") || strings.Contains(q, "linebot"):
		return []string{
			"LINE Bot SDK 官方文件",
			"LINE Bot 開發教學",
			"LINE Messaging API 使用指南",
		}
	case strings.Contains(q, "ai") || strings.Contains(q, "人工智慧"):
		return []string{
			"人工智慧基礎概念",
			"AI 機器學習入門",
			"ChatGPT 和 AI 應用",
		}
	default:
		return []string{
			fmt.Sprintf("關於「%s」的基礎資訊", query),
			fmt.Sprintf("%s 相關教學和指南", query),
			fmt.Sprintf("%s 最新發展和趨勢", query),
		}
	}
}
