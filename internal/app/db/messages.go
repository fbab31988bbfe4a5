package db

import (
	"context"
	"time"
)

// InsertMessage appends a ledger row and fills in the assigned id and
// timestamp. ReadAt is written as given; saved-chat sends set it up front so
// they are born read.
func (q *Queries) InsertMessage(ctx context.Context, m *Message) error {
	return q.db.QueryRow(ctx, `
		INSERT INTO messages (chat_id, sender_id, body, type, read_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		m.ChatID, m.SenderID, m.Body, m.Type, m.ReadAt,
	).Scan(&m.ID, &m.CreatedAt)
}

// GetMessage fetches one message scoped to its chat.
func (q *Queries) GetMessage(ctx context.Context, chatID string, messageID int64) (*Message, error) {
	var m Message
	err := q.db.QueryRow(ctx, `
		SELECT id, chat_id, sender_id, body, type, read_at, created_at
		FROM messages
		WHERE chat_id = $1 AND id = $2`,
		chatID, messageID,
	).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.Type, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns the newest messages of the chat in chronological
// order, joined with each sender's public profile.
func (q *Queries) ListMessages(ctx context.Context, chatID string, limit int32) ([]*MessageWithSender, error) {
	rows, err := q.db.Query(ctx, `
		SELECT * FROM (
			SELECT m.id, m.chat_id, m.sender_id, m.body, m.type, m.read_at, m.created_at,
				u.username, u.display_name, u.avatar_url, u.is_verified
			FROM messages m
			JOIN users u ON u.id = m.sender_id
			WHERE m.chat_id = $1
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT $2
		) page
		ORDER BY page.created_at ASC, page.id ASC`,
		chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*MessageWithSender
	for rows.Next() {
		var m MessageWithSender
		err := rows.Scan(
			&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.Type, &m.ReadAt, &m.CreatedAt,
			&m.SenderUsername, &m.SenderDisplayName, &m.SenderAvatarURL, &m.SenderIsVerified,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// DeleteMessage removes a message, reporting whether it existed.
func (q *Queries) DeleteMessage(ctx context.Context, chatID string, messageID int64) (deleted bool, err error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM messages WHERE chat_id = $1 AND id = $2`, chatID, messageID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetLatestMessage returns the chat's most recent message, or IsNotFound
// when the ledger is empty.
func (q *Queries) GetLatestMessage(ctx context.Context, chatID string) (*Message, error) {
	var m Message
	err := q.db.QueryRow(ctx, `
		SELECT id, chat_id, sender_id, body, type, read_at, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		chatID,
	).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.Type, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DistinctUnreadSenders lists the senders who have unread messages in the
// chat that were not written by readerID. Read receipts notify exactly these.
func (q *Queries) DistinctUnreadSenders(ctx context.Context, chatID, readerID string) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT DISTINCT sender_id FROM messages
		WHERE chat_id = $1 AND sender_id <> $2 AND read_at IS NULL`,
		chatID, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkMessagesRead stamps every unread message in the chat not written by
// readerID, returning how many rows were updated.
func (q *Queries) MarkMessagesRead(ctx context.Context, chatID, readerID string, at time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE messages SET read_at = $3
		WHERE chat_id = $1 AND sender_id <> $2 AND read_at IS NULL`,
		chatID, readerID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
