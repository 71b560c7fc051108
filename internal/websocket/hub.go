package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Event names pushed to clients.
const (
	EventNewMessage          = "NewMessage"
	EventMessageStatusUpdate = "MessageStatusUpdate"
	EventTypingIndicator     = "TypingIndicator"
	EventMessageRead         = "MessageRead"
	EventUserOnline          = "UserOnline"
	EventUserOffline         = "UserOffline"
	EventCarrierQR           = "CarrierQR"
)

func UserTopic(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func ConversationTopic(conversationID int64) string {
	return fmt.Sprintf("conversation:%d", conversationID)
}

// ConversationGate is what the hub needs from the messaging core: an
// ownership check before a client may join a conversation topic, and
// persistence for read receipts.
type ConversationGate interface {
	OwnsConversation(userID, conversationID int64) (bool, error)
	MarkConversationRead(userID, conversationID int64) error
}

type Event struct {
	Topic     string      `json:"-"`
	Exclude   *Client     `json:"-"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type Hub struct {
	// Topic membership map[topic]map[*Client]bool. User topics are joined
	// implicitly on connect, conversation topics by client signal.
	Clients    map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Event

	gate ConversationGate

	// all tracks every live connection for presence broadcasts. Membership
	// here is ephemeral and rebuilt from scratch on reconnect.
	all map[*Client]bool
	mu  sync.RWMutex
}

func NewHub(gate ConversationGate) *Hub {
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Event, 64),
		gate:       gate,
		all:        make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.all[client] = true
			h.subscribeLocked(UserTopic(client.UserID), client)
			h.mu.Unlock()
			h.broadcastAll(EventUserOnline, map[string]interface{}{"user_id": client.UserID}, client)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.all[client]; ok {
				delete(h.all, client)
				for topic := range client.topics {
					h.unsubscribeLocked(topic, client)
				}
				close(client.Send)
			}
			h.mu.Unlock()
			h.broadcastAll(EventUserOffline, map[string]interface{}{"user_id": client.UserID}, client)

		case event := <-h.Broadcast:
			h.deliver(event)
		}
	}
}

// SendToUser publishes an event on the user's personal topic.
func (h *Hub) SendToUser(userID int64, eventType string, data interface{}) {
	h.Broadcast <- Event{Topic: UserTopic(userID), Type: eventType, Data: data, Timestamp: time.Now()}
}

// SendToConversation publishes an event on a conversation topic.
func (h *Hub) SendToConversation(conversationID int64, eventType string, data interface{}) {
	h.Broadcast <- Event{Topic: ConversationTopic(conversationID), Type: eventType, Data: data, Timestamp: time.Now()}
}

// BroadcastSystem pushes a deployment-wide event, such as a carrier pairing
// code, to every connected client.
func (h *Hub) BroadcastSystem(eventType string, data interface{}) {
	h.broadcastAll(eventType, data, nil)
}

func (h *Hub) deliver(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.Clients[event.Topic]
	if !ok {
		return
	}

	msgBytes, _ := json.Marshal(event)
	for client := range clients {
		if client == event.Exclude {
			continue
		}
		select {
		case client.Send <- msgBytes:
		default:
			// Slow consumer, drop it. The client rebuilds state on reconnect.
			go client.disconnect()
		}
	}
}

// broadcastAll sends presence events to every connection except the origin.
func (h *Hub) broadcastAll(eventType string, data interface{}, exclude *Client) {
	msgBytes, _ := json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now()})

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.all {
		if client == exclude {
			continue
		}
		select {
		case client.Send <- msgBytes:
		default:
		}
	}
}

func (h *Hub) subscribeLocked(topic string, client *Client) {
	if h.Clients[topic] == nil {
		h.Clients[topic] = make(map[*Client]bool)
	}
	h.Clients[topic][client] = true
	client.topics[topic] = true
}

func (h *Hub) unsubscribeLocked(topic string, client *Client) {
	if clients, ok := h.Clients[topic]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.Clients, topic)
		}
	}
	delete(client.topics, topic)
}

// clientSignal is the lightweight inbound frame from connected clients.
type clientSignal struct {
	Action         string `json:"action"` // join, leave, typing, read
	ConversationID int64  `json:"conversation_id"`
	IsTyping       bool   `json:"is_typing"`
}

func (h *Hub) handleSignal(client *Client, raw []byte) {
	var sig clientSignal
	if err := json.Unmarshal(raw, &sig); err != nil {
		return
	}
	if sig.ConversationID == 0 {
		return
	}

	switch sig.Action {
	case "join":
		ok, err := h.gate.OwnsConversation(client.UserID, sig.ConversationID)
		if err != nil || !ok {
			return
		}
		h.mu.Lock()
		h.subscribeLocked(ConversationTopic(sig.ConversationID), client)
		h.mu.Unlock()

	case "leave":
		h.mu.Lock()
		h.unsubscribeLocked(ConversationTopic(sig.ConversationID), client)
		h.mu.Unlock()

	case "typing":
		ok, err := h.gate.OwnsConversation(client.UserID, sig.ConversationID)
		if err != nil || !ok {
			return
		}
		h.Broadcast <- Event{
			Topic:   ConversationTopic(sig.ConversationID),
			Exclude: client,
			Type:    EventTypingIndicator,
			Data: map[string]interface{}{
				"user_id":         client.UserID,
				"conversation_id": sig.ConversationID,
				"is_typing":       sig.IsTyping,
			},
			Timestamp: time.Now(),
		}

	case "read":
		// Persist first; the messaging core broadcasts MessageRead itself.
		if err := h.gate.MarkConversationRead(client.UserID, sig.ConversationID); err != nil {
			log.Printf("[Hub] mark read failed for conversation %d: %v", sig.ConversationID, err)
		}
	}
}
