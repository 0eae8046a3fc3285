package service

import (
	"context"

	"syscourse/server/common/infra/mq"
	commonlog "syscourse/server/common/log"
)

const EventNewProduct = "new-product-sub"

type eventObserver interface {
	ObserveEvent(topic string, err error)
}

// Notifications streams write events. The write has already succeeded when these are
// sent, so publish failures are logged and dropped.
type Notifications struct {
	publisher mq.EventPublisher
	topic     string
	observer  eventObserver
}

func NewNotifications(publisher mq.EventPublisher, topic string, observer eventObserver) *Notifications {
	return &Notifications{publisher: publisher, topic: topic, observer: observer}
}

func (n *Notifications) NewProduct(ctx context.Context, mail mq.MailContext) {
	if mail.To == "" {
		commonlog.Warnf("skip %s event: signed-in user has no email", EventNewProduct)
		return
	}
	err := n.publisher.StreamEvent(ctx, n.topic, EventNewProduct, mail.AsContext())
	if n.observer != nil {
		n.observer.ObserveEvent(n.topic, err)
	}
	if err != nil {
		commonlog.Errorf("publish %s event to %s: %v", EventNewProduct, n.topic, err)
	}
}
