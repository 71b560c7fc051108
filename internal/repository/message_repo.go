package repository

import (
	"database/sql"
	"time"

	"messenger-backend/internal/model"
)

type MessageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) InsertMessage(msg *model.Message) (*model.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, content, direction, sent_at, status, media_file_id, media_url, media_type, provider_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.DB.QueryRow(
		query,
		msg.ConversationID,
		msg.Content,
		msg.Direction,
		msg.SentAt,
		msg.Status,
		msg.MediaFileID,
		nullString(msg.MediaURL),
		nullString(msg.MediaType),
		nullString(msg.ProviderMessageID),
	).Scan(&msg.ID)

	if err != nil {
		return nil, err
	}

	return msg, nil
}

func (r *MessageRepository) UpdateMessageStatus(id int64, status model.MessageStatus) error {
	query := `UPDATE messages SET status = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

func (r *MessageRepository) SetProviderMessageID(id int64, providerID string) error {
	query := `UPDATE messages SET provider_message_id = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, nullString(providerID), id)
	return err
}

func (r *MessageRepository) ListByConversationID(conversationID int64) ([]*model.Message, error) {
	query := `
		SELECT id, conversation_id, content, direction, sent_at, status, media_file_id, media_url, media_type, provider_message_id
		FROM messages
		WHERE conversation_id = $1
		ORDER BY sent_at ASC, id ASC`

	rows, err := r.DB.Query(query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var m model.Message
		var mediaFileID sql.NullInt64
		var mediaURL, mediaType, providerID sql.NullString

		err := rows.Scan(
			&m.ID, &m.ConversationID, &m.Content, &m.Direction, &m.SentAt, &m.Status,
			&mediaFileID, &mediaURL, &mediaType, &providerID,
		)
		if err != nil {
			return nil, err
		}

		if mediaFileID.Valid {
			m.MediaFileID = &mediaFileID.Int64
		}
		m.MediaURL = mediaURL.String
		m.MediaType = mediaType.String
		m.ProviderMessageID = providerID.String

		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

func (r *MessageRepository) ExistsByProviderMessageID(providerID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM messages WHERE provider_message_id = $1)`
	err := r.DB.QueryRow(query, providerID).Scan(&exists)
	return exists, err
}

// UpdateStatusByProviderMessageID applies a carrier delivery/read receipt to
// an outbound message. Transitions only move forward: a late 'delivered' never
// overwrites 'read', and 'failed' stays failed.
func (r *MessageRepository) UpdateStatusByProviderMessageID(providerID string, status model.MessageStatus) (*model.Message, error) {
	query := `
		UPDATE messages SET status = $2
		WHERE provider_message_id = $1
		  AND direction = 'outbound'
		  AND status <> 'failed'
		  AND CASE status WHEN 'sending' THEN 0 WHEN 'sent' THEN 1 WHEN 'delivered' THEN 2 WHEN 'read' THEN 3 END
		    < CASE $2::varchar WHEN 'sent' THEN 1 WHEN 'delivered' THEN 2 WHEN 'read' THEN 3 ELSE 0 END
		RETURNING id, conversation_id, content, direction, sent_at, status, media_url, media_type`

	var m model.Message
	var mediaURL, mediaType sql.NullString
	err := r.DB.QueryRow(query, providerID, status).Scan(
		&m.ID, &m.ConversationID, &m.Content, &m.Direction, &m.SentAt, &m.Status, &mediaURL, &mediaType,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m.MediaURL = mediaURL.String
	m.MediaType = mediaType.String
	m.ProviderMessageID = providerID

	return &m, nil
}

// MarkConversationRead flips every unread inbound message in the conversation
// to 'read'. Returns the number of messages affected.
func (r *MessageRepository) MarkConversationRead(conversationID int64) (int64, error) {
	query := `
		UPDATE messages SET status = 'read'
		WHERE conversation_id = $1 AND direction = 'inbound' AND status <> 'read'`

	res, err := r.DB.Exec(query, conversationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkStaleSendingFailed reconciles sends that were interrupted between the
// 'sending' insert and the carrier result: anything still 'sending' after the
// cutoff becomes 'failed'.
func (r *MessageRepository) MarkStaleSendingFailed(cutoff time.Time) (int64, error) {
	query := `UPDATE messages SET status = 'failed' WHERE status = 'sending' AND sent_at < $1`
	res, err := r.DB.Exec(query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
