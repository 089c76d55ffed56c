package bot

import (
	"regexp"
	"strings"
)

// IntentKind classifies one inbound text message
type IntentKind int

const (
	IntentChat IntentKind = iota // conversational fallback
	IntentHelp
	IntentViewTasks
	IntentCompleteTask
	IntentUndoTask
	IntentAddNote
	IntentClearNote
	IntentStats
	IntentSearch
	IntentSearchUsage
	IntentTime
	IntentSticker
	IntentEncourage
	IntentPrice
	IntentPriceUsage
)

func (k IntentKind) String() string {
	switch k {
	case IntentHelp:
		return "help"
	case IntentViewTasks:
		return "view-tasks"
	case IntentCompleteTask:
		return "complete-task"
	case IntentUndoTask:
		return "undo-task"
	case IntentAddNote:
		return "add-note"
	case IntentClearNote:
		return "clear-note"
	case IntentStats:
		return "view-stats"
	case IntentSearch:
		return "search"
	case IntentSearchUsage:
		return "search-usage"
	case IntentTime:
		return "get-time"
	case IntentSticker:
		return "get-sticker"
	case IntentEncourage:
		return "encouragement"
	case IntentPrice:
		return "price-lookup"
	case IntentPriceUsage:
		return "price-usage"
	default:
		return "chat"
	}
}

// ChatCategory is the keyword bucket for the conversational fallback
type ChatCategory string

const (
	CategoryGreeting    ChatCategory = "greeting"
	CategoryTime        ChatCategory = "time"
	CategoryWeather     ChatCategory = "weather"
	CategoryProgramming ChatCategory = "programming"
	CategoryLearning    ChatCategory = "learning"
	CategoryTired       ChatCategory = "tired"
	CategoryQuestion    ChatCategory = "question"
	CategoryUnknown     ChatCategory = "unknown"
)

// Intent is the classified purpose of one message plus extracted parameters
type Intent struct {
	Kind     IntentKind
	Task     string       // complete/undo/note/clear-note
	Note     string       // add-note (may be empty)
	Query    string       // search
	Symbol   string       // price-lookup
	Category ChatCategory // chat fallback
	Text     string       // chat fallback: the original message
}

// Router classifies trimmed message text into exactly one Intent.
// Matching is first-match-wins over a fixed rule order: exact phrases,
// then parameterized patterns (task names restricted to the configured
// roster), then keyword containment, then the conversational fallback.
// It holds no state beyond the compiled patterns and never fails.
type Router struct {
	completeRe  *regexp.Regexp
	undoRe      *regexp.Regexp
	noteRe      *regexp.Regexp
	clearNoteRe *regexp.Regexp
	searchRe    *regexp.Regexp
}

var symbolTokenRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// Words stripped from price requests before symbol extraction
var priceFillerWords = []string{
	"查詢", "查", "價格", "幣價", "匯率", "多少", "的", "是",
	"price",
}

var priceTriggers = []string{"價格", "幣價", "匯率", "price"}

// NewRouter builds a router for a fixed task-name roster
func NewRouter(taskNames []string) *Router {
	quoted := make([]string, len(taskNames))
	for i, name := range taskNames {
		quoted[i] = regexp.QuoteMeta(name)
	}
	names := strings.Join(quoted, "|")

	return &Router{
		completeRe:  regexp.MustCompile(`^完成\s*(` + names + `)$`),
		undoRe:      regexp.MustCompile(`^取消\s*(` + names + `)$`),
		noteRe:      regexp.MustCompile(`^備註\s*(` + names + `)\s*(.*)$`),
		clearNoteRe: regexp.MustCompile(`^清除備註\s*(` + names + `)$`),
		searchRe:    regexp.MustCompile(`^搜索\s*(.+)$`),
	}
}

// Classify maps text to an Intent. Unrecognized text resolves to the
// conversational fallback; the router never errors.
func (r *Router) Classify(text string) Intent {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	// Exact-phrase commands
	switch lower {
	case "幫助", "help":
		return Intent{Kind: IntentHelp}
	case "查看任務", "任務", "tasks":
		return Intent{Kind: IntentViewTasks}
	case "統計", "stats":
		return Intent{Kind: IntentStats}
	case "時間", "time":
		return Intent{Kind: IntentTime}
	case "貼圖", "sticker":
		return Intent{Kind: IntentSticker}
	case "鼓勵", "加油", "motivate":
		return Intent{Kind: IntentEncourage}
	}

	// Parameterized task commands; an unconfigured name falls through
	if m := r.completeRe.FindStringSubmatch(text); m != nil {
		return Intent{Kind: IntentCompleteTask, Task: m[1]}
	}
	if m := r.undoRe.FindStringSubmatch(text); m != nil {
		return Intent{Kind: IntentUndoTask, Task: m[1]}
	}
	if m := r.clearNoteRe.FindStringSubmatch(text); m != nil {
		return Intent{Kind: IntentClearNote, Task: m[1]}
	}
	if m := r.noteRe.FindStringSubmatch(text); m != nil {
		return Intent{Kind: IntentAddNote, Task: m[1], Note: strings.TrimSpace(m[2])}
	}
	if m := r.searchRe.FindStringSubmatch(text); m != nil {
		return Intent{Kind: IntentSearch, Query: strings.TrimSpace(m[1])}
	}
	if lower == "搜索" {
		return Intent{Kind: IntentSearchUsage}
	}

	if containsAny(lower, priceTriggers) {
		if symbol := extractSymbol(text); symbol != "" {
			return Intent{Kind: IntentPrice, Symbol: symbol}
		}
		return Intent{Kind: IntentPriceUsage}
	}

	return Intent{Kind: IntentChat, Category: classifyChat(text, lower), Text: text}
}

// extractSymbol strips filler words and returns the first remaining
// alphanumeric token of 2-10 characters, uppercased. Tokens outside that
// length are not symbols; an over-long token never matches partially.
// Matching is done on a lowercased copy; the symbol is reported uppercase
// either way.
func extractSymbol(text string) string {
	cleaned := strings.ToLower(text)
	for _, w := range priceFillerWords {
		cleaned = strings.ReplaceAll(cleaned, w, " ")
	}
	for _, token := range symbolTokenRe.FindAllString(cleaned, -1) {
		if len(token) >= 2 && len(token) <= 10 {
			return strings.ToUpper(token)
		}
	}
	return ""
}

func classifyChat(text, lower string) ChatCategory {
	switch {
	case containsAny(lower, []string{"你好", "hi", "hello", "嗨", "哈囉"}):
		return CategoryGreeting
	case containsAny(lower, []string{"時間", "現在", "今天", "日期"}):
		return CategoryTime
	case containsAny(lower, []string{"天氣", "weather"}):
		return CategoryWeather
	case containsAny(lower, []string{"程式", "code", "javascript", "python", "編程", "開發"}):
		return CategoryProgramming
	case containsAny(lower, []string{"學習", "學", "教學", "課程"}):
		return CategoryLearning
	case containsAny(lower, []string{"累", "困難", "辛苦", "tired", "hard"}):
		return CategoryTired
	case strings.Contains(text, "？") || strings.Contains(text, "?") ||
		strings.HasPrefix(lower, "如何") || strings.HasPrefix(lower, "怎麼") ||
		strings.HasPrefix(lower, "為什麼"):
		return CategoryQuestion
	default:
		return CategoryUnknown
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
