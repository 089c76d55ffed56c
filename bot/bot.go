package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"habitline/channels/line"
	"habitline/services/search"
)

// Searcher runs a web search. Implementations substitute a local fallback
// result set when the upstream is unreachable and flag it on the result.
type Searcher interface {
	Search(ctx context.Context, query string) search.Result
}

// PriceLookup resolves a currency symbol to a spot price
type PriceLookup interface {
	Spot(ctx context.Context, symbol string) (float64, error)
}

// Generator produces a generative-text reply for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ActivityRecorder appends one handled event to the activity log.
// Implementations must be safe for concurrent use.
type ActivityRecorder interface {
	RecordActivity(day, userID, intent, replyKind string)
}

// Deduper remembers webhook event IDs. Seen reports whether the ID was
// already delivered and marks it on first sight.
type Deduper interface {
	Seen(eventID string) bool
}

// Options wires the bot's collaborators. Sender and TaskNames are
// required; everything else is optional and nil disables the feature.
type Options struct {
	TaskNames []string
	Location  *time.Location
	Sender    line.Sender
	Searcher  Searcher
	Pricer    PriceLookup
	Generator Generator
	Recorder  ActivityRecorder
	Deduper   Deduper
	Rand      *rand.Rand       // injected for deterministic tests
	Now       func() time.Time // injected clock
}

// Bot routes inbound text to intents and builds LINE reply payloads.
// All mutable state lives in the injected task store; the bot itself is
// safe for concurrent event handling.
type Bot struct {
	router    *Router
	store     *TaskStore
	sender    line.Sender
	searcher  Searcher
	pricer    PriceLookup
	generator Generator
	recorder  ActivityRecorder
	deduper   Deduper
	pick      *picker
	now       func() time.Time
	loc       *time.Location

	processed uint64
	deduped   uint64
	failed    uint64
}

// New creates a bot from options, filling in defaults
func New(opts Options) *Bot {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Bot{
		router:    NewRouter(opts.TaskNames),
		store:     NewTaskStore(opts.TaskNames),
		sender:    opts.Sender,
		searcher:  opts.Searcher,
		pricer:    opts.Pricer,
		generator: opts.Generator,
		recorder:  opts.Recorder,
		deduper:   opts.Deduper,
		pick:      newPicker(rnd),
		now:       now,
		loc:       loc,
	}
}

// Store exposes the task store for introspection
func (b *Bot) Store() *TaskStore { return b.store }

// Counters returns processed / deduped / failed event counts
func (b *Bot) Counters() (processed, deduped, failed uint64) {
	return atomic.LoadUint64(&b.processed), atomic.LoadUint64(&b.deduped), atomic.LoadUint64(&b.failed)
}

// HandleEvents processes one webhook batch. Events are handled in sibling
// goroutines with no ordering guarantee; the call returns once every event
// has settled. One event's failure never blocks its siblings.
func (b *Bot) HandleEvents(ctx context.Context, events []line.Event) {
	var wg sync.WaitGroup
	for _, ev := range events {
		wg.Add(1)
		go func(ev line.Event) {
			defer wg.Done()
			b.handleEvent(ctx, ev)
		}(ev)
	}
	wg.Wait()
}

// handleEvent handles a single event. Panics are recovered here so an
// unexpected failure turns into an apologetic reply instead of taking the
// batch down.
func (b *Bot) handleEvent(ctx context.Context, ev line.Event) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddUint64(&b.failed, 1)
			log.Printf("[Bot] Recovered from event panic: %v", r)
			if ev.ReplyToken != "" {
				b.reply(ctx, ev.ReplyToken, line.NewText(errorReplyText))
			}
		}
	}()

	if !ev.IsTextMessage() {
		return
	}

	if b.deduper != nil && ev.WebhookEventID != "" && b.deduper.Seen(ev.WebhookEventID) {
		atomic.AddUint64(&b.deduped, 1)
		log.Printf("[Bot] Skipping redelivered event %s", ev.WebhookEventID)
		return
	}

	atomic.AddUint64(&b.processed, 1)
	msgs := b.Respond(ctx, ev.Source.UserID, ev.Message.Text)
	if len(msgs) == 0 {
		return
	}
	b.reply(ctx, ev.ReplyToken, msgs...)
}

// reply delivers messages, logging failures without propagating them
func (b *Bot) reply(ctx context.Context, replyToken string, msgs ...line.Message) {
	if b.sender == nil {
		log.Printf("[Bot] No sender configured, dropping %d message(s)", len(msgs))
		return
	}
	if err := b.sender.Reply(ctx, replyToken, msgs...); err != nil {
		atomic.AddUint64(&b.failed, 1)
		log.Printf("[Bot] Reply delivery failed: %v", err)
	}
}

const errorReplyText = "😅 抱歉，系統發生錯誤，請稍後再試！\n輸入「幫助」查看可用功能。"

// Respond classifies text and builds the reply payloads for it. It is the
// single entry point shared by the webhook path and the debug console.
func (b *Bot) Respond(ctx context.Context, userID, text string) []line.Message {
	text = strings.TrimSpace(text)
	day := b.today()
	b.store.EnsureDay(day)

	intent := b.router.Classify(text)
	log.Printf("[Bot] user=%s intent=%s", userID, intent.Kind)

	msgs := b.respond(ctx, day, intent)
	if b.recorder != nil && len(msgs) > 0 {
		b.recorder.RecordActivity(day, userID, intent.Kind.String(), msgs[0].Type)
	}
	return msgs
}

func (b *Bot) today() string {
	return b.now().In(b.loc).Format("2006-01-02")
}

func (b *Bot) respond(ctx context.Context, day string, intent Intent) []line.Message {
	switch intent.Kind {
	case IntentHelp:
		return []line.Message{b.helpMessage()}
	case IntentViewTasks:
		return []line.Message{b.taskListMessage(day)}
	case IntentCompleteTask:
		return []line.Message{b.completeMessage(day, intent.Task)}
	case IntentUndoTask:
		b.store.MarkUndone(day, intent.Task)
		return []line.Message{line.NewText(fmt.Sprintf("已取消「%s」的完成標記！", intent.Task))}
	case IntentAddNote:
		b.store.SetNote(day, intent.Task, intent.Note)
		display := intent.Note
		if display == "" {
			display = "(空白)"
		}
		return []line.Message{line.NewText(fmt.Sprintf("已為「%s」添加備註：%s", intent.Task, display))}
	case IntentClearNote:
		b.store.ClearNote(day, intent.Task)
		return []line.Message{line.NewText(fmt.Sprintf("已清除「%s」的備註！", intent.Task))}
	case IntentStats:
		return []line.Message{b.statsMessage(day)}
	case IntentSearch:
		return []line.Message{b.searchMessage(ctx, intent.Query)}
	case IntentSearchUsage:
		return []line.Message{line.NewText("🔍 請輸入搜索關鍵字，例如：「搜索 JavaScript 教學」")}
	case IntentTime:
		return []line.Message{line.NewTextWithSuggestions(b.timeText(), []line.Suggestion{
			{Label: "📋 查看任務", Text: "查看任務"},
			{Label: "💬 聊天", Text: "你好"},
		})}
	case IntentSticker:
		return []line.Message{line.NewSticker(b.randomSticker())}
	case IntentEncourage:
		return []line.Message{line.NewTextWithSuggestions(b.pick.encouragement(), []line.Suggestion{
			{Label: "📋 查看任務", Text: "查看任務"},
			{Label: "📊 查看統計", Text: "統計"},
		})}
	case IntentPrice:
		return []line.Message{b.priceMessage(ctx, intent.Symbol)}
	case IntentPriceUsage:
		return []line.Message{line.NewText("💰 請輸入想查詢的代號，例如：「BTC 價格」")}
	default:
		return []line.Message{b.chatMessage(ctx, intent)}
	}
}

var defaultSuggestions = []line.Suggestion{
	{Label: "📋 查看任務", Text: "查看任務"},
	{Label: "🔍 搜索", Text: "搜索"},
	{Label: "❓ 幫助", Text: "幫助"},
}

func (b *Bot) helpMessage() line.Message {
	var sb strings.Builder
	sb.WriteString("🤖 功能列表：\n\n")
	sb.WriteString("📋 任務管理：\n")
	sb.WriteString("• 查看任務 / 任務\n")
	sb.WriteString("• 完成 [任務名稱]\n")
	sb.WriteString("• 取消 [任務名稱]\n")
	sb.WriteString("• 備註 [任務名稱] [內容]\n")
	sb.WriteString("• 清除備註 [任務名稱]\n")
	sb.WriteString("• 統計 - 查看進度\n\n")
	sb.WriteString("🔍 搜索功能：\n")
	sb.WriteString("• 搜索 [關鍵字]\n\n")
	sb.WriteString("💰 幣價查詢：\n")
	sb.WriteString("• [代號] 價格\n\n")
	sb.WriteString("💬 AI 對話：\n")
	sb.WriteString("• 直接與我聊天\n")
	sb.WriteString("• 鼓勵 / 加油 - 獲得鼓勵\n\n")
	sb.WriteString("⚡ 互動功能：\n")
	sb.WriteString("• 時間 - 查看現在時間\n")
	sb.WriteString("• 貼圖 - 獲得隨機貼圖\n\n")
	sb.WriteString("點擊下方按鈕快速操作：")
	return line.NewTextWithSuggestions(sb.String(), []line.Suggestion{
		{Label: "📋 查看任務", Text: "查看任務"},
		{Label: "🔍 搜索", Text: "搜索"},
		{Label: "📊 統計", Text: "統計"},
		{Label: "💪 鼓勵", Text: "鼓勵"},
	})
}

func (b *Bot) taskListMessage(day string) line.Message {
	var lines []string
	for _, v := range b.store.Snapshot(day) {
		status := "⭕"
		if v.Done {
			status = "✅"
		}
		note := ""
		if v.Note != "" {
			note = fmt.Sprintf(" (備註: %s)", v.Note)
		}
		lines = append(lines, fmt.Sprintf("%s %s%s", status, v.Name, note))
	}

	suggestions := make([]line.Suggestion, 0, len(b.store.Names()))
	for _, name := range b.store.Names() {
		suggestions = append(suggestions, line.Suggestion{
			Label: "✅ 完成" + name,
			Text:  "完成 " + name,
		})
	}

	text := fmt.Sprintf("📋 今日任務 (%s)：\n\n%s", day, strings.Join(lines, "\n"))
	return line.NewTextWithSuggestions(text, suggestions)
}

func (b *Bot) completeMessage(day, task string) line.Message {
	b.store.MarkDone(day, task)

	// Half the time the reward is a sticker instead of text
	if b.pick.coin() {
		return line.NewSticker(b.randomSticker())
	}
	return line.NewTextWithSuggestions(
		fmt.Sprintf("🎉 恭喜！已完成「%s」任務！", task),
		[]line.Suggestion{
			{Label: "📋 查看任務", Text: "查看任務"},
			{Label: "📝 添加備註", Text: "備註 " + task},
		})
}

func (b *Bot) statsMessage(day string) line.Message {
	stats := b.store.Stats(day)
	percent := stats.Percent()

	var cheer string
	switch {
	case percent >= 100:
		cheer = "🎉 恭喜完成所有任務！"
	case percent >= 66:
		cheer = "👍 進度不錯，繼續加油！"
	case percent >= 33:
		cheer = "💪 還有進步空間，加油！"
	default:
		cheer = "🌟 開始行動吧！"
	}

	text := fmt.Sprintf("📊 今日進度統計：\n\n✅ 已完成：%d 項\n⭕ 未完成：%d 項\n📈 完成率：%d%%\n\n%s",
		stats.Completed, stats.Total-stats.Completed, percent, cheer)
	return line.NewTextWithSuggestions(text, []line.Suggestion{
		{Label: "📋 查看任務", Text: "查看任務"},
		{Label: "🔍 搜索", Text: "搜索"},
	})
}

func (b *Bot) searchMessage(ctx context.Context, query string) line.Message {
	if b.searcher == nil {
		return line.NewText("🔍 搜索功能目前未啟用。")
	}

	res := b.searcher.Search(ctx, query)
	var sb strings.Builder
	if res.Fallback {
		sb.WriteString("🔍 搜索結果 (離線)：\n")
	} else {
		sb.WriteString("🔍 搜索結果：\n")
	}
	for i, title := range res.Titles {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
	}
	return line.NewTextWithSuggestions(strings.TrimRight(sb.String(), "\n"), []line.Suggestion{
		{Label: "🔍 新搜索", Text: "搜索"},
		{Label: "📋 查看任務", Text: "查看任務"},
	})
}

func (b *Bot) priceMessage(ctx context.Context, symbol string) line.Message {
	if b.pricer == nil {
		return line.NewText("💰 幣價查詢目前未啟用。")
	}

	price, err := b.pricer.Spot(ctx, symbol)
	if err != nil {
		log.Printf("[Bot] Price lookup failed for %s: %v", symbol, err)
		return line.NewText(fmt.Sprintf("😅 查不到「%s」的價格，確認代號後再試一次吧！", symbol))
	}
	return line.NewText(fmt.Sprintf("💰 %s 目前價格：US$%.2f", symbol, price))
}

func (b *Bot) chatMessage(ctx context.Context, intent Intent) line.Message {
	// Time questions answer from the clock, not a pool
	if intent.Category == CategoryTime {
		return line.NewTextWithSuggestions("🤖 "+b.timeText(), defaultSuggestions)
	}

	text, fallback := b.chatText(ctx, intent)
	if fallback {
		log.Printf("[Bot] Using canned reply for category=%s", intent.Category)
	}
	return line.NewTextWithSuggestions("🤖 "+text, defaultSuggestions)
}

// chatText returns the conversational reply and whether the local canned
// pool was used instead of the generative provider.
func (b *Bot) chatText(ctx context.Context, intent Intent) (string, bool) {
	if b.generator == nil {
		return b.pick.canned(intent.Category), true
	}
	reply, err := b.generator.Generate(ctx, chatPrompt(intent))
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			log.Printf("[Bot] Generative reply failed: %v", err)
		}
		return b.pick.canned(intent.Category), true
	}
	return strings.TrimSpace(reply), false
}

func chatPrompt(intent Intent) string {
	return "你是一個友善的繁體中文聊天助手，回覆請簡短。用戶說：" + intent.Text
}

func (b *Bot) timeText() string {
	now := b.now().In(b.loc)
	return fmt.Sprintf("⏰ 現在時間：%s\n📅 今天是：%s",
		now.Format("2006/01/02 15:04:05"),
		now.Format("2006年01月02日"))
}

func (b *Bot) randomSticker() line.Sticker {
	return line.EncouragingStickers[b.pick.intn(len(line.EncouragingStickers))]
}
