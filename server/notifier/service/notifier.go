package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"syscourse/server/common/infra/mq"
	commonlog "syscourse/server/common/log"
)

var ErrMalformedEvent = errors.New("malformed event")

type eventObserver interface {
	ObserveEvent(topic string, err error)
}

// Notifier turns new-product events into mail.
type Notifier struct {
	mailer    Mailer
	eventType string
	observer  eventObserver
}

func NewNotifier(mailer Mailer, eventType string, observer eventObserver) *Notifier {
	return &Notifier{mailer: mailer, eventType: eventType, observer: observer}
}

// Handle is an mq.Handler. A returned error nacks the delivery.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	err := n.handle(ctx, body)
	if n.observer != nil {
		n.observer.ObserveEvent(n.eventType, err)
	}
	if err != nil {
		commonlog.Errorf("drop %s event: %v", n.eventType, err)
	}
	return err
}

func (n *Notifier) handle(ctx context.Context, body []byte) error {
	var event mq.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.EventType != n.eventType {
		return fmt.Errorf("%w: unexpected event type %q", ErrMalformedEvent, event.EventType)
	}
	mail, err := mailContext(event.EventContext)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, mail)
}

func mailContext(raw map[string]any) (mq.MailContext, error) {
	if raw == nil {
		return mq.MailContext{}, fmt.Errorf("%w: missing event_context", ErrMalformedEvent)
	}
	// round-trip through JSON so string fields are type checked
	encoded, err := json.Marshal(raw)
	if err != nil {
		return mq.MailContext{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	var mail mq.MailContext
	if err := json.Unmarshal(encoded, &mail); err != nil {
		return mq.MailContext{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return mail, nil
}
