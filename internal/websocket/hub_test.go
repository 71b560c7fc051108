package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowListGate struct {
	owner map[int64]int64 // conversationID -> owning user
}

func (g *allowListGate) OwnsConversation(userID, conversationID int64) (bool, error) {
	return g.owner[conversationID] == userID, nil
}

func (g *allowListGate) MarkConversationRead(userID, conversationID int64) error {
	return nil
}

func newTestClient(hub *Hub, userID int64) *Client {
	return &Client{
		Hub:    hub,
		UserID: userID,
		Send:   make(chan []byte, 16),
		topics: make(map[string]bool),
	}
}

// recvEvent drains the client's send queue until an event of the wanted type
// arrives.
func recvEvent(t *testing.T, c *Client, eventType string) Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case raw, ok := <-c.Send:
			require.True(t, ok, "send channel closed while waiting for %s", eventType)
			var ev Event
			require.NoError(t, json.Unmarshal(raw, &ev))
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}

func assertNoEvent(t *testing.T, c *Client, eventType string) {
	t.Helper()
	timeout := time.After(50 * time.Millisecond)
	for {
		select {
		case raw, ok := <-c.Send:
			if !ok {
				return
			}
			var ev Event
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.NotEqual(t, eventType, ev.Type)
		case <-timeout:
			return
		}
	}
}

func TestHubRoutesUserTopicEvents(t *testing.T) {
	gate := &allowListGate{owner: map[int64]int64{}}
	hub := NewHub(gate)
	go hub.Run()

	c1 := newTestClient(hub, 1)
	c2 := newTestClient(hub, 2)
	hub.Register <- c1
	hub.Register <- c2

	// Presence of the second connect reaches the first.
	ev := recvEvent(t, c1, EventUserOnline)
	data := ev.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["user_id"])

	hub.SendToUser(1, EventNewMessage, map[string]interface{}{"id": 42})
	ev = recvEvent(t, c1, EventNewMessage)
	data = ev.Data.(map[string]interface{})
	assert.Equal(t, float64(42), data["id"])

	assertNoEvent(t, c2, EventNewMessage)
}

func TestHubConversationJoinIsGated(t *testing.T) {
	gate := &allowListGate{owner: map[int64]int64{7: 1}}
	hub := NewHub(gate)
	go hub.Run()

	owner := newTestClient(hub, 1)
	stranger := newTestClient(hub, 2)
	hub.Register <- owner
	hub.Register <- stranger

	hub.handleSignal(owner, []byte(`{"action":"join","conversation_id":7}`))
	hub.handleSignal(stranger, []byte(`{"action":"join","conversation_id":7}`))

	hub.SendToConversation(7, EventMessageStatusUpdate, map[string]interface{}{"message_id": 1})

	recvEvent(t, owner, EventMessageStatusUpdate)
	assertNoEvent(t, stranger, EventMessageStatusUpdate)
}

func TestHubTypingExcludesSender(t *testing.T) {
	gate := &allowListGate{owner: map[int64]int64{7: 1}}
	hub := NewHub(gate)
	go hub.Run()

	sender := newTestClient(hub, 1)
	hub.Register <- sender
	hub.handleSignal(sender, []byte(`{"action":"join","conversation_id":7}`))

	hub.handleSignal(sender, []byte(`{"action":"typing","conversation_id":7,"is_typing":true}`))

	assertNoEvent(t, sender, EventTypingIndicator)
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	gate := &allowListGate{owner: map[int64]int64{7: 1}}
	hub := NewHub(gate)
	go hub.Run()

	c := newTestClient(hub, 1)
	hub.Register <- c
	hub.handleSignal(c, []byte(`{"action":"join","conversation_id":7}`))

	hub.SendToConversation(7, EventMessageRead, nil)
	recvEvent(t, c, EventMessageRead)

	hub.handleSignal(c, []byte(`{"action":"leave","conversation_id":7}`))
	hub.SendToConversation(7, EventMessageRead, nil)
	assertNoEvent(t, c, EventMessageRead)
}

func TestHubSystemBroadcastReachesEveryClient(t *testing.T) {
	gate := &allowListGate{owner: map[int64]int64{}}
	hub := NewHub(gate)
	go hub.Run()

	c1 := newTestClient(hub, 1)
	c2 := newTestClient(hub, 2)
	hub.Register <- c1
	hub.Register <- c2
	// The presence event confirms both registrations are fully processed.
	recvEvent(t, c1, EventUserOnline)

	hub.BroadcastSystem(EventCarrierQR, map[string]interface{}{"code": "2@pairing-code"})

	for _, c := range []*Client{c1, c2} {
		ev := recvEvent(t, c, EventCarrierQR)
		data := ev.Data.(map[string]interface{})
		assert.Equal(t, "2@pairing-code", data["code"])
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	gate := &allowListGate{owner: map[int64]int64{}}
	hub := NewHub(gate)
	go hub.Run()

	c := newTestClient(hub, 1)
	hub.Register <- c
	hub.Unregister <- c

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-c.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
