// Package line provides LINE Messaging API payload types and a reply client
package line

// Message is one outbound LINE message payload.
// Exactly one payload shape is populated depending on Type.
type Message struct {
	Type string `json:"type"`

	// text
	Text       string      `json:"text,omitempty"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`

	// sticker
	PackageID string `json:"packageId,omitempty"`
	StickerID string `json:"stickerId,omitempty"`

	// image
	OriginalContentURL string `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string `json:"previewImageUrl,omitempty"`
}

// QuickReply holds suggested follow-up buttons below a message
type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

type QuickReplyItem struct {
	Type   string `json:"type"`
	Action Action `json:"action"`
}

type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Suggestion is a label/text pair rendered as a quick-reply button
type Suggestion struct {
	Label string
	Text  string
}

// Sticker references one sticker in a LINE sticker package
type Sticker struct {
	PackageID string
	StickerID string
}

// EncouragingStickers is the fixed catalog of free LINE stickers the bot
// sends as completion rewards.
var EncouragingStickers = []Sticker{
	{PackageID: "1", StickerID: "1"},
	{PackageID: "1", StickerID: "2"},
	{PackageID: "1", StickerID: "3"},
	{PackageID: "1", StickerID: "4"},
	{PackageID: "1", StickerID: "106"},
	{PackageID: "1", StickerID: "107"},
	{PackageID: "1", StickerID: "114"},
	{PackageID: "1", StickerID: "144"},
}

// MaxTextLength is the LINE API limit for one text message
const MaxTextLength = 5000

// NewText creates a plain text message. The LINE limit counts characters,
// so truncation happens on rune boundaries.
func NewText(text string) Message {
	if runes := []rune(text); len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength])
	}
	return Message{Type: "text", Text: text}
}

// NewTextWithSuggestions creates a text message with quick-reply buttons
func NewTextWithSuggestions(text string, suggestions []Suggestion) Message {
	msg := NewText(text)
	if len(suggestions) == 0 {
		return msg
	}
	items := make([]QuickReplyItem, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, QuickReplyItem{
			Type: "action",
			Action: Action{
				Type:  "message",
				Label: s.Label,
				Text:  s.Text,
			},
		})
	}
	msg.QuickReply = &QuickReply{Items: items}
	return msg
}

// NewSticker creates a sticker message
func NewSticker(s Sticker) Message {
	return Message{Type: "sticker", PackageID: s.PackageID, StickerID: s.StickerID}
}

// NewImage creates an image message
func NewImage(originalContentURL, previewImageURL string) Message {
	return Message{
		Type:               "image",
		OriginalContentURL: originalContentURL,
		PreviewImageURL:    previewImageURL,
	}
}
