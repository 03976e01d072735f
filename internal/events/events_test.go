package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	var calls []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

func (r *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	r.exchange, r.key, r.msg = exchange, key, msg
	return nil
}

func (r *recordingChannel) Close() error { return nil }

func TestAMQPPublisherForwardsEvents(t *testing.T) {
	ch := &recordingChannel{}
	publisher := &AMQPPublisher{channel: ch, exchange: "support.tickets"}
	d := NewInMemoryDispatcher(nil)
	publisher.Attach(d)

	event := Event{
		ID:        "evt-1",
		Type:      EventTicketEscalated,
		TicketID:  "t-1",
		Timestamp: time.Now().UTC(),
		Payload:   TicketStatusChangedPayload{OldStatus: "new", NewStatus: "escalated"},
	}
	require.NoError(t, d.Publish(context.Background(), event))

	assert.Equal(t, "support.tickets", ch.exchange)
	assert.Equal(t, "ticket.ticket_escalated", ch.key)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "t-1", decoded["ticketId"])
}
