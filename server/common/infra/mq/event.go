package mq

import (
	"strconv"
	"time"
)

// Event is the envelope every write notification travels in.
type Event struct {
	EventType    string         `json:"event_type"`
	CreatedTime  string         `json:"created_time"`
	EventContext map[string]any `json:"event_context"`
}

// NewEvent stamps created_time as unix seconds rendered as a string.
func NewEvent(eventType string, eventContext map[string]any, now time.Time) Event {
	return Event{
		EventType:    eventType,
		CreatedTime:  strconv.FormatInt(now.Unix(), 10),
		EventContext: eventContext,
	}
}

// MailContext is the event_context shape the notifier understands.
type MailContext struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (m MailContext) AsContext() map[string]any {
	return map[string]any{"to": m.To, "subject": m.Subject, "text": m.Text}
}
