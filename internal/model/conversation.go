package model

import "time"

type Conversation struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"-"`
	ContactPhoneNumber string    `json:"contact_phone_number"`
	ContactName        string    `json:"contact_name"`
	CreatedAt          time.Time `json:"created_at"`
	LastMessageAt      time.Time `json:"last_message_at"`
}

// ConversationSummary is the listing shape: the conversation plus its newest
// message and the count of inbound messages not yet marked read.
type ConversationSummary struct {
	Conversation
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}
