package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"messenger-backend/internal/model"
	"messenger-backend/internal/websocket"
)

// Carrier is the outbound transport boundary. Send returns the
// carrier-assigned message id when the carrier reports one.
type Carrier interface {
	Send(ctx context.Context, to, body, mediaURL string) (string, error)
}

// EventPublisher is the realtime fan-out boundary, satisfied by the hub.
type EventPublisher interface {
	SendToUser(userID int64, eventType string, data interface{})
	SendToConversation(conversationID int64, eventType string, data interface{})
}

type ConversationStore interface {
	GetOrCreateConversation(userID int64, phoneNumber, contactName string) (*model.Conversation, error)
	GetConversationByID(id int64) (*model.Conversation, error)
	TouchLastMessageAt(id int64, at time.Time) error
	ListSummariesByUserID(userID int64) ([]*model.ConversationSummary, error)
}

type MessageStore interface {
	InsertMessage(msg *model.Message) (*model.Message, error)
	UpdateMessageStatus(id int64, status model.MessageStatus) error
	SetProviderMessageID(id int64, providerID string) error
	ListByConversationID(conversationID int64) ([]*model.Message, error)
	ExistsByProviderMessageID(providerID string) (bool, error)
	UpdateStatusByProviderMessageID(providerID string, status model.MessageStatus) (*model.Message, error)
	MarkConversationRead(conversationID int64) (int64, error)
	MarkStaleSendingFailed(cutoff time.Time) (int64, error)
}

// ContactDirectory is the slice of the contact store inbound attribution
// needs.
type ContactDirectory interface {
	FindFirstOwnerByPhoneNumber(phoneNumber string) (*model.Contact, error)
}

// MediaResolver turns a media reference into a transport-ready attachment,
// enforcing ownership.
type MediaResolver interface {
	ResolveForSend(userID, mediaFileID int64) (*model.MediaFile, error)
}

type MessagingService struct {
	Conversations ConversationStore
	Messages      MessageStore
	Contacts      ContactDirectory
	Media         MediaResolver
	Carrier       Carrier
	Events        EventPublisher

	convLock *keyLock
}

func NewMessagingService(conversations ConversationStore, messages MessageStore, contacts ContactDirectory, media MediaResolver, carrier Carrier, events EventPublisher) *MessagingService {
	return &MessagingService{
		Conversations: conversations,
		Messages:      messages,
		Contacts:      contacts,
		Media:         media,
		Carrier:       carrier,
		Events:        events,
		convLock:      newKeyLock(),
	}
}

// resolveConversation returns the conversation for (userID, address),
// creating it when missing. The check-then-insert is serialized per key;
// nothing else runs under the lock.
func (s *MessagingService) resolveConversation(userID int64, address, nameHint string) (*model.Conversation, error) {
	key := fmt.Sprintf("%d|%s", userID, address)
	s.convLock.Lock(key)
	defer s.convLock.Unlock(key)

	conv, err := s.Conversations.GetOrCreateConversation(userID, address, nameHint)
	if err != nil {
		return nil, storageError(err)
	}
	return conv, nil
}

// SendOutbound runs the outbound message lifecycle: persist as 'sending',
// invoke the carrier, settle to 'sent' or 'failed'. The message row is
// written before the carrier call so a transport outage still leaves an
// auditable failed record. A failed send is terminal; retry is a new send.
func (s *MessagingService) SendOutbound(ctx context.Context, userID int64, toAddress, content string, mediaFileID *int64) (*model.Message, error) {
	address := NormalizeAddress(toAddress)
	if address == "" {
		return nil, validationErrorf("destination address is required")
	}
	if content == "" && mediaFileID == nil {
		return nil, validationErrorf("message content is required")
	}

	// Resolve the attachment before anything is persisted: a bad reference
	// aborts the send with no message row.
	var media *model.MediaFile
	if mediaFileID != nil {
		var err error
		media, err = s.Media.ResolveForSend(userID, *mediaFileID)
		if err != nil {
			return nil, err
		}
	}

	conv, err := s.resolveConversation(userID, address, "Contact")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &model.Message{
		ConversationID: conv.ID,
		Content:        content,
		Direction:      model.DirectionOutbound,
		SentAt:         now,
		Status:         model.MessageStatusSending,
	}
	if media != nil {
		msg.MediaFileID = &media.ID
		msg.MediaURL = media.BlobURL
		msg.MediaType = media.ContentType
	}

	if _, err := s.Messages.InsertMessage(msg); err != nil {
		return nil, storageError(err)
	}

	providerID, sendErr := s.Carrier.Send(ctx, address, content, msg.MediaURL)
	if sendErr != nil {
		log.Printf("[Messaging] carrier send to %s failed: %v", address, sendErr)
		msg.Status = model.MessageStatusFailed
	} else {
		msg.Status = model.MessageStatusSent
		msg.ProviderMessageID = providerID
	}

	if err := s.Messages.UpdateMessageStatus(msg.ID, msg.Status); err != nil {
		return nil, storageError(err)
	}
	if providerID != "" {
		if err := s.Messages.SetProviderMessageID(msg.ID, providerID); err != nil {
			return nil, storageError(err)
		}
	}

	// Even a failed send surfaces the conversation as recently active.
	if err := s.Conversations.TouchLastMessageAt(conv.ID, now); err != nil {
		return nil, storageError(err)
	}

	s.Events.SendToConversation(conv.ID, websocket.EventMessageStatusUpdate, map[string]interface{}{
		"message_id":      msg.ID,
		"conversation_id": conv.ID,
		"status":          msg.Status,
		"updated_at":      time.Now().UTC(),
	})

	return msg, nil
}

// appendInbound persists a delivered inbound message and notifies the
// owner's personal topic.
func (s *MessagingService) appendInbound(userID, conversationID int64, content, mediaURL, providerID string) (*model.Message, error) {
	now := time.Now().UTC()
	msg := &model.Message{
		ConversationID:    conversationID,
		Content:           content,
		Direction:         model.DirectionInbound,
		SentAt:            now,
		Status:            model.MessageStatusDelivered,
		MediaURL:          mediaURL,
		ProviderMessageID: providerID,
	}

	if _, err := s.Messages.InsertMessage(msg); err != nil {
		return nil, storageError(err)
	}
	if err := s.Conversations.TouchLastMessageAt(conversationID, now); err != nil {
		return nil, storageError(err)
	}

	s.Events.SendToUser(userID, websocket.EventNewMessage, msg)

	return msg, nil
}

// Ingest attributes an inbound carrier message to a local user and appends
// it to their conversation. Attribution failure is a logged no-op, never an
// error: the webhook endpoint acknowledges the carrier regardless.
func (s *MessagingService) Ingest(fromAddress, body, mediaURL, providerMessageID string) error {
	address := NormalizeAddress(fromAddress)
	if address == "" {
		log.Printf("[Ingest] dropping message with empty sender address")
		return nil
	}

	if providerMessageID != "" {
		seen, err := s.Messages.ExistsByProviderMessageID(providerMessageID)
		if err != nil {
			return storageError(err)
		}
		if seen {
			log.Printf("[Ingest] duplicate delivery of %s ignored", providerMessageID)
			return nil
		}
	}

	// First registered owner wins when several users saved the same number.
	contact, err := s.Contacts.FindFirstOwnerByPhoneNumber(address)
	if err != nil {
		return storageError(err)
	}
	if contact == nil {
		log.Printf("[Ingest] message from unknown number %s dropped", address)
		return nil
	}

	conv, err := s.resolveConversation(contact.UserID, address, contact.Name)
	if err != nil {
		return err
	}

	_, err = s.appendInbound(contact.UserID, conv.ID, body, mediaURL, providerMessageID)
	return err
}

// ApplyDeliveryStatus applies a carrier delivery or read receipt to the
// outbound message carrying the provider id. Unknown ids and stale
// transitions are no-ops.
func (s *MessagingService) ApplyDeliveryStatus(providerMessageID, status string) error {
	var target model.MessageStatus
	switch status {
	case "delivered":
		target = model.MessageStatusDelivered
	case "read":
		target = model.MessageStatusRead
	case "sent":
		target = model.MessageStatusSent
	default:
		return nil
	}

	msg, err := s.Messages.UpdateStatusByProviderMessageID(providerMessageID, target)
	if err != nil {
		return storageError(err)
	}
	if msg == nil {
		return nil
	}

	s.Events.SendToConversation(msg.ConversationID, websocket.EventMessageStatusUpdate, map[string]interface{}{
		"message_id":      msg.ID,
		"conversation_id": msg.ConversationID,
		"status":          msg.Status,
		"updated_at":      time.Now().UTC(),
	})
	return nil
}

// StartConversation resolves or creates a conversation with an explicit
// display name, for client-initiated threads.
func (s *MessagingService) StartConversation(userID int64, address, contactName string) (*model.Conversation, error) {
	normalized := NormalizeAddress(address)
	if normalized == "" {
		return nil, validationErrorf("phone number is required")
	}
	if contactName == "" {
		contactName = "Contact"
	}
	return s.resolveConversation(userID, normalized, contactName)
}

func (s *MessagingService) ListConversations(userID int64) ([]*model.ConversationSummary, error) {
	summaries, err := s.Conversations.ListSummariesByUserID(userID)
	if err != nil {
		return nil, storageError(err)
	}
	if summaries == nil {
		summaries = []*model.ConversationSummary{}
	}
	return summaries, nil
}

// ListMessages returns the conversation history oldest-first. A conversation
// that does not belong to userID yields an empty list, not an error.
func (s *MessagingService) ListMessages(userID, conversationID int64) ([]*model.Message, error) {
	conv, err := s.Conversations.GetConversationByID(conversationID)
	if err != nil {
		return nil, storageError(err)
	}
	if conv == nil || conv.UserID != userID {
		return []*model.Message{}, nil
	}

	messages, err := s.Messages.ListByConversationID(conversationID)
	if err != nil {
		return nil, storageError(err)
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	return messages, nil
}

// OwnsConversation reports whether the conversation belongs to the user.
func (s *MessagingService) OwnsConversation(userID, conversationID int64) (bool, error) {
	conv, err := s.Conversations.GetConversationByID(conversationID)
	if err != nil {
		return false, storageError(err)
	}
	return conv != nil && conv.UserID == userID, nil
}

// MarkConversationRead flips unread inbound messages to 'read' and
// broadcasts the receipt to the conversation topic. A foreign conversation
// is a silent no-op.
func (s *MessagingService) MarkConversationRead(userID, conversationID int64) error {
	owns, err := s.OwnsConversation(userID, conversationID)
	if err != nil {
		return err
	}
	if !owns {
		return nil
	}

	affected, err := s.Messages.MarkConversationRead(conversationID)
	if err != nil {
		return storageError(err)
	}
	if affected == 0 {
		return nil
	}

	s.Events.SendToConversation(conversationID, websocket.EventMessageRead, map[string]interface{}{
		"conversation_id": conversationID,
		"read_by_user_id": userID,
		"read_at":         time.Now().UTC(),
	})
	return nil
}

// StartReconciler periodically fails sends stuck in 'sending', covering
// crashes and cancellations between the insert and the carrier result.
// Blocks until stop is closed; run it in a goroutine.
func (s *MessagingService) StartReconciler(interval, staleAfter time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.Messages.MarkStaleSendingFailed(time.Now().UTC().Add(-staleAfter))
			if err != nil {
				log.Printf("[Reconciler] sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[Reconciler] marked %d stale sending message(s) as failed", n)
			}
		case <-stop:
			return
		}
	}
}
