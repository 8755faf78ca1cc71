package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_DeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		seen = append(seen, e.TicketID)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged, TicketID: "t1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"t1"}, seen)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestDispatcher_IgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventConfigUpdated}))
}
