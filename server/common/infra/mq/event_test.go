package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventWireShape(t *testing.T) {
	ev := NewEvent("new-product-sub", MailContext{To: "a@b.c", Subject: "s", Text: "t"}.AsContext(), time.Unix(1710000000, 0))

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"event_type": "new-product-sub",
		"created_time": "1710000000",
		"event_context": {"to": "a@b.c", "subject": "s", "text": "t"}
	}`, string(raw))
}

func TestNopPublisher(t *testing.T) {
	var p EventPublisher = NopPublisher{}
	assert.NoError(t, p.StreamEvent(context.Background(), "new-product", "new-product-sub", nil))
	assert.NoError(t, p.Close())
}
