package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uint, subscriptions ...string) *Client {
	c := &Client{
		send:     make(chan []byte, 8),
		userID:   userID,
		channels: make(map[string]bool),
	}
	for _, ch := range subscriptions {
		c.channels[ch] = true
	}
	return c
}

func receivedEvent(t *testing.T, c *Client) ChangeEvent {
	t.Helper()
	select {
	case data := <-c.send:
		var ev ChangeEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	default:
		t.Fatal("expected a queued event, got none")
		return ChangeEvent{}
	}
}

func TestDispatchReachesSubscribersOnly(t *testing.T) {
	hub := NewHub()
	subscriber := newTestClient(1, ChannelAnnouncements)
	bystander := newTestClient(2, ChannelExams)
	hub.clients[subscriber] = true
	hub.clients[bystander] = true

	hub.dispatch(ChangeEvent{Channel: ChannelAnnouncements, Action: "insert", ID: 7, ClassName: "L2-Info"})

	ev := receivedEvent(t, subscriber)
	assert.Equal(t, ChannelAnnouncements, ev.Channel)
	assert.Equal(t, "insert", ev.Action)
	assert.EqualValues(t, 7, ev.ID)
	assert.Equal(t, "L2-Info", ev.ClassName)

	assert.Empty(t, bystander.send)
}

func TestDispatchTargetedEventSkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	target := newTestClient(1, ChannelNotifications)
	other := newTestClient(2, ChannelNotifications)
	hub.clients[target] = true
	hub.clients[other] = true

	hub.dispatch(ChangeEvent{Channel: ChannelNotifications, Action: "insert", ID: 3, UserID: 1})

	ev := receivedEvent(t, target)
	assert.EqualValues(t, 3, ev.ID)
	assert.Empty(t, other.send)
}

func TestDispatchDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{
		send:     make(chan []byte), // unbuffered, never drained
		userID:   1,
		channels: map[string]bool{ChannelPolls: true},
	}
	hub.clients[slow] = true

	hub.dispatch(ChangeEvent{Channel: ChannelPolls, Action: "update", ID: 1})

	assert.NotContains(t, hub.clients, slow)
	_, open := <-slow.send
	assert.False(t, open, "send channel should be closed")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := newTestClient(1, ChannelMeetings)
	hub.clients[client] = true

	hub.dispatch(ChangeEvent{Channel: ChannelMeetings, Action: "insert", ID: 1})
	receivedEvent(t, client)

	client.mu.Lock()
	delete(client.channels, ChannelMeetings)
	client.mu.Unlock()

	hub.dispatch(ChangeEvent{Channel: ChannelMeetings, Action: "insert", ID: 2})
	assert.Empty(t, client.send)
}

// The targeted user id must never leak onto the wire.
func TestChangeEventOmitsUserID(t *testing.T) {
	data, err := json.Marshal(ChangeEvent{Channel: ChannelNotifications, Action: "insert", ID: 5, UserID: 42})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "42")
	assert.NotContains(t, string(data), "userID")
}
