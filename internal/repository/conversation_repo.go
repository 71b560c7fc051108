package repository

import (
	"database/sql"
	"errors"
	"time"

	"messenger-backend/internal/model"
)

type ConversationRepository struct {
	DB *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

// GetOrCreateConversation inserts the conversation for (userID, phoneNumber)
// or fetches the existing one. The unique constraint on
// (user_id, contact_phone_number) makes the insert race-safe even without the
// service-level key lock: the loser of a concurrent insert falls through to
// the select.
func (r *ConversationRepository) GetOrCreateConversation(userID int64, phoneNumber, contactName string) (*model.Conversation, error) {
	var c model.Conversation
	now := time.Now().UTC()

	insert := `
		INSERT INTO conversations (user_id, contact_phone_number, contact_name, created_at, last_message_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, contact_phone_number) DO NOTHING
		RETURNING id, user_id, contact_phone_number, contact_name, created_at, last_message_at`

	err := r.DB.QueryRow(insert, userID, phoneNumber, contactName, now).Scan(
		&c.ID, &c.UserID, &c.ContactPhoneNumber, &c.ContactName, &c.CreatedAt, &c.LastMessageAt,
	)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	query := `
		SELECT id, user_id, contact_phone_number, contact_name, created_at, last_message_at
		FROM conversations
		WHERE user_id = $1 AND contact_phone_number = $2`

	err = r.DB.QueryRow(query, userID, phoneNumber).Scan(
		&c.ID, &c.UserID, &c.ContactPhoneNumber, &c.ContactName, &c.CreatedAt, &c.LastMessageAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *ConversationRepository) GetConversationByID(id int64) (*model.Conversation, error) {
	var c model.Conversation
	query := `
		SELECT id, user_id, contact_phone_number, contact_name, created_at, last_message_at
		FROM conversations
		WHERE id = $1`

	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.UserID, &c.ContactPhoneNumber, &c.ContactName, &c.CreatedAt, &c.LastMessageAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}

// TouchLastMessageAt advances last_message_at; GREATEST keeps it monotonic
// under out-of-order updates.
func (r *ConversationRepository) TouchLastMessageAt(id int64, at time.Time) error {
	query := `UPDATE conversations SET last_message_at = GREATEST(last_message_at, $2) WHERE id = $1`
	_, err := r.DB.Exec(query, id, at)
	return err
}

func (r *ConversationRepository) ListSummariesByUserID(userID int64) ([]*model.ConversationSummary, error) {
	query := `
		SELECT c.id, c.user_id, c.contact_phone_number, c.contact_name, c.created_at, c.last_message_at,
			m.id, m.content, m.direction, m.sent_at, m.status, m.media_url, m.media_type,
			(SELECT COUNT(*) FROM messages u
				WHERE u.conversation_id = c.id AND u.direction = 'inbound' AND u.status <> 'read') AS unread_count
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT id, content, direction, sent_at, status, media_url, media_type
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY sent_at DESC, id DESC
			LIMIT 1
		) m ON true
		WHERE c.user_id = $1
		ORDER BY c.last_message_at DESC`

	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*model.ConversationSummary
	for rows.Next() {
		var s model.ConversationSummary
		var msgID sql.NullInt64
		var content, direction, status, mediaURL, mediaType sql.NullString
		var sentAt sql.NullTime

		err := rows.Scan(
			&s.ID, &s.UserID, &s.ContactPhoneNumber, &s.ContactName, &s.CreatedAt, &s.LastMessageAt,
			&msgID, &content, &direction, &sentAt, &status, &mediaURL, &mediaType,
			&s.UnreadCount,
		)
		if err != nil {
			return nil, err
		}

		if msgID.Valid {
			s.LastMessage = &model.Message{
				ID:             msgID.Int64,
				ConversationID: s.ID,
				Content:        content.String,
				Direction:      model.MessageDirection(direction.String),
				SentAt:         sentAt.Time,
				Status:         model.MessageStatus(status.String),
				MediaURL:       mediaURL.String,
				MediaType:      mediaType.String,
			}
		}

		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}
