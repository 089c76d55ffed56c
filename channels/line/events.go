package line

// WebhookRequest is the body LINE delivers to the webhook endpoint
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only message events with a text payload are
// acted on; every other kind yields no action.
type Event struct {
	Type            string          `json:"type"`
	WebhookEventID  string          `json:"webhookEventId"`
	ReplyToken      string          `json:"replyToken"`
	Timestamp       int64           `json:"timestamp"`
	Source          Source          `json:"source"`
	Message         EventMessage    `json:"message"`
	DeliveryContext DeliveryContext `json:"deliveryContext"`
}

type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
}

type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

// IsTextMessage reports whether the event carries user text to route
func (e Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}
