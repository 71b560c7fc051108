package model

import "time"

type MessageStatus string

const (
	MessageStatusSending   MessageStatus = "sending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusFailed    MessageStatus = "failed"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

type MessageDirection string

const (
	DirectionOutbound MessageDirection = "outbound"
	DirectionInbound  MessageDirection = "inbound"
)

type Message struct {
	ID                int64            `json:"id"`
	ConversationID    int64            `json:"conversation_id"`
	Content           string           `json:"content"`
	Direction         MessageDirection `json:"direction"`
	SentAt            time.Time        `json:"sent_at"`
	Status            MessageStatus    `json:"status"`
	MediaFileID       *int64           `json:"media_file_id,omitempty"`
	MediaURL          string           `json:"media_url,omitempty"`
	MediaType         string           `json:"media_type,omitempty"`
	ProviderMessageID string           `json:"provider_message_id,omitempty"`
}
