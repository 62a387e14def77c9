package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFeedDeliversToSubscribers(t *testing.T) {
	feed := NewStatusFeed()
	defer feed.Close()

	id1, ch1 := feed.Subscribe()
	id2, ch2 := feed.Subscribe()
	assert.NotEqual(t, id1, id2)

	feed.Publish(StatusEvent{Kind: "started", Backend: "dxgi"})

	ev1 := <-ch1
	ev2 := <-ch2
	assert.Equal(t, "started", ev1.Kind)
	assert.Equal(t, "dxgi", ev2.Backend)
	assert.False(t, ev1.Time.IsZero())
}

func TestStatusFeedReplaysLastEventToNewSubscriber(t *testing.T) {
	feed := NewStatusFeed()
	defer feed.Close()

	feed.Publish(StatusEvent{Kind: "recovered"})

	_, ch := feed.Subscribe()
	ev := <-ch
	assert.Equal(t, "recovered", ev.Kind)
}

func TestStatusFeedUnsubscribeClosesChannel(t *testing.T) {
	feed := NewStatusFeed()
	id, ch := feed.Subscribe()

	feed.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	feed.Publish(StatusEvent{Kind: "stopped"})
}

func TestStatusFeedDropsWhenSubscriberIsSlow(t *testing.T) {
	feed := NewStatusFeed()
	defer feed.Close()

	_, ch := feed.Subscribe()
	// Overfill the buffer; publishes must not block.
	for i := 0; i < 50; i++ {
		feed.Publish(StatusEvent{Kind: "started"})
	}

	ev, open := <-ch
	require.True(t, open)
	assert.Equal(t, "started", ev.Kind)
}
