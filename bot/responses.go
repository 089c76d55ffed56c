package bot

import (
	"math/rand"
	"sync"
)

// Canned reply pools for the conversational fallback, one per keyword
// category. Time replies are generated from the clock instead (see bot.go).
var chatPools = map[ChatCategory][]string{
	CategoryGreeting: {
		"你好！我是你的智能助手 🤖",
		"嗨！有什麼我可以幫助你的嗎？ 😊",
		"哈囉！今天過得如何？ ✨",
	},
	CategoryWeather: {
		"我無法直接查詢天氣，但建議你查看天氣應用程式 🌤️",
		"抱歉，我還沒有連接天氣服務，但你可以試試搜索「今日天氣」 🌦️",
	},
	CategoryProgramming: {
		"程式設計是很棒的技能！ 💻",
		"學習程式語言需要時間和練習 📚",
		"遇到 bug 是正常的，debug 是程式設計師的日常 🐛",
	},
	CategoryLearning: {
		"學習是終生的旅程 📖",
		"每天學習新知識讓人充實 🧠",
		"不懂就問，這是學習的好方法 ❓",
	},
	CategoryTired: {
		"你做得很棒！ 👏",
		"繼續加油！ 💪",
		"相信你可以的！ ⭐",
		"每天進步一點點就很棒了！ 🌟",
	},
	CategoryQuestion: {
		"這是個有趣的問題！ 🤔",
		"讓我想想... 💭",
		"你說得很有道理 👍",
		"我理解你的想法 💡",
	},
	CategoryUnknown: {
		"我不太明白，可以換個方式問我嗎？ 🤷",
		"抱歉，我還在學習中 📝",
		"這個問題有點困難，可以詳細說明嗎？ 💬",
	},
}

var encouragements = []string{
	"💪 你可以的！每一步都是進步！",
	"🌟 相信自己，你比想像中更強大！",
	"🚀 成功需要時間，但你已經在路上了！",
	"✨ 今天的努力是明天的收穫！",
	"🎯 專注當下，一步一步達成目標！",
}

// picker selects random pool entries. The source is injected so tests can
// pin the sequence; *rand.Rand is not goroutine-safe, hence the mutex.
type picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newPicker(rnd *rand.Rand) *picker {
	return &picker{rnd: rnd}
}

func (p *picker) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Intn(n)
}

func (p *picker) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[p.intn(len(pool))]
}

// coin returns true roughly half the time
func (p *picker) coin() bool {
	return p.intn(2) == 0
}

func (p *picker) canned(category ChatCategory) string {
	pool, ok := chatPools[category]
	if !ok {
		pool = chatPools[CategoryUnknown]
	}
	return p.pick(pool)
}

func (p *picker) encouragement() string {
	return p.pick(encouragements)
}
