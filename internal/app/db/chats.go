package db

import (
	"context"
	"time"
)

const chatColumns = `id, type, title, dedup_key, group_handle, group_handle_lower,
	bio, avatar_url, owner_id, is_public, last_message, last_sender_id,
	last_message_at, created_at, updated_at`

func scanChat(row interface{ Scan(dest ...any) error }) (*Chat, error) {
	var c Chat
	err := row.Scan(
		&c.ID, &c.Type, &c.Title, &c.DedupKey, &c.GroupHandle, &c.GroupHandleLower,
		&c.Bio, &c.AvatarURL, &c.OwnerID, &c.IsPublic, &c.LastMessage, &c.LastSenderID,
		&c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChat inserts a chat row as-is. Used for groups, which carry no dedup key.
func (q *Queries) CreateChat(ctx context.Context, c *Chat) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO chats (id, type, title, dedup_key, group_handle, group_handle_lower,
			bio, avatar_url, owner_id, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Type, c.Title, c.DedupKey, c.GroupHandle, c.GroupHandleLower,
		c.Bio, c.AvatarURL, c.OwnerID, c.IsPublic,
	)
	return err
}

// InsertChatOrFetch inserts a deduplicated chat (direct or saved) keyed by
// c.DedupKey. When another request won the race, the existing row is fetched
// and returned with created=false, so concurrent openers converge on one chat.
func (q *Queries) InsertChatOrFetch(ctx context.Context, c *Chat) (chat *Chat, created bool, err error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO chats (id, type, dedup_key, owner_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (dedup_key) WHERE dedup_key IS NOT NULL DO NOTHING
		RETURNING `+chatColumns,
		c.ID, c.Type, c.DedupKey, c.OwnerID,
	)

	chat, err = scanChat(row)
	if err == nil {
		return chat, true, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	chat, err = scanChat(q.db.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE dedup_key = $1`, *c.DedupKey))
	if err != nil {
		return nil, false, err
	}
	return chat, false, nil
}

// GetChatByID fetches a chat by id.
func (q *Queries) GetChatByID(ctx context.Context, id string) (*Chat, error) {
	return scanChat(q.db.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))
}

// GetChatByGroupHandleLower fetches a group by its case-insensitive handle key.
func (q *Queries) GetChatByGroupHandleLower(ctx context.Context, handleLower string) (*Chat, error) {
	return scanChat(q.db.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE group_handle_lower = $1`, handleLower))
}

// DeleteChat removes the chat row; members and messages cascade.
func (q *Queries) DeleteChat(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	return err
}

// UpdateChatPreview rewrites the denormalized last-message columns. Nil values
// clear the preview, used when the final message of a chat is deleted.
func (q *Queries) UpdateChatPreview(ctx context.Context, chatID string, lastMessage, lastSenderID *string, lastMessageAt *time.Time) error {
	_, err := q.db.Exec(ctx, `
		UPDATE chats
		SET last_message = $2, last_sender_id = $3, last_message_at = $4, updated_at = now()
		WHERE id = $1`,
		chatID, lastMessage, lastSenderID, lastMessageAt,
	)
	return err
}

// chatListQuery is the shared shape of a chat-list row: the chat, the
// caller's membership, an unread counter, member aggregates, and the peer
// profile for direct chats. $1 is the acting user.
const chatListQuery = `
	SELECT
		c.id, c.type, c.title, c.dedup_key, c.group_handle, c.group_handle_lower,
		c.bio, c.avatar_url, c.owner_id, c.is_public, c.last_message, c.last_sender_id,
		c.last_message_at, c.created_at, c.updated_at,
		m.role, m.last_read_at,
		(SELECT COUNT(*) FROM messages msg
			WHERE msg.chat_id = c.id AND msg.sender_id <> $1
				AND (m.last_read_at IS NULL OR msg.created_at > m.last_read_at)) AS unread_count,
		(SELECT COUNT(*) FROM chat_members cm WHERE cm.chat_id = c.id) AS member_count,
		(SELECT string_agg(cm.user_id, ',') FROM chat_members cm WHERE cm.chat_id = c.id) AS participant_ids,
		p.id, p.username, p.display_name, p.avatar_url, p.is_verified,
		p.is_online, p.last_seen, p.can_receive_messages
	FROM chats c
	JOIN chat_members m ON m.chat_id = c.id AND m.user_id = $1
	LEFT JOIN chat_members pm ON c.type = 'direct' AND pm.chat_id = c.id AND pm.user_id <> $1
	LEFT JOIN users p ON p.id = pm.user_id`

func scanChatListRow(row interface{ Scan(dest ...any) error }) (*ChatListRow, error) {
	var r ChatListRow
	err := row.Scan(
		&r.ID, &r.Type, &r.Title, &r.DedupKey, &r.GroupHandle, &r.GroupHandleLower,
		&r.Bio, &r.AvatarURL, &r.OwnerID, &r.IsPublic, &r.LastMessage, &r.LastSenderID,
		&r.LastMessageAt, &r.CreatedAt, &r.UpdatedAt,
		&r.Role, &r.LastReadAt,
		&r.UnreadCount, &r.MemberCount, &r.ParticipantIDs,
		&r.PeerID, &r.PeerUsername, &r.PeerDisplayName, &r.PeerAvatarURL, &r.PeerIsVerified,
		&r.PeerIsOnline, &r.PeerLastSeen, &r.PeerCanReceiveMessages,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListChatsForUser returns every chat the user belongs to, newest activity first.
func (q *Queries) ListChatsForUser(ctx context.Context, userID string) ([]*ChatListRow, error) {
	rows, err := q.db.Query(ctx,
		chatListQuery+` ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*ChatListRow
	for rows.Next() {
		r, err := scanChatListRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// GetChatListRow returns a single chat-list row, or IsNotFound when the chat
// does not exist or the user is not a member.
func (q *Queries) GetChatListRow(ctx context.Context, userID, chatID string) (*ChatListRow, error) {
	return scanChatListRow(q.db.QueryRow(ctx,
		chatListQuery+` WHERE c.id = $2`, userID, chatID))
}

// SearchPublicGroups finds public groups by handle prefix or title substring,
// flagging the ones userID already belongs to.
func (q *Queries) SearchPublicGroups(ctx context.Context, userID, query string, limit int32) ([]*GroupSearchRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT c.id, c.title, c.group_handle, c.bio, c.avatar_url,
			(SELECT COUNT(*) FROM chat_members cm WHERE cm.chat_id = c.id) AS member_count,
			EXISTS (SELECT 1 FROM chat_members cm WHERE cm.chat_id = c.id AND cm.user_id = $1) AS is_member
		FROM chats c
		WHERE c.type = 'group' AND c.is_public
			AND (c.group_handle_lower LIKE $2 || '%' OR c.title ILIKE '%' || $2 || '%')
		ORDER BY member_count DESC, c.group_handle_lower
		LIMIT $3`,
		userID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*GroupSearchRow
	for rows.Next() {
		var r GroupSearchRow
		if err := rows.Scan(&r.ID, &r.Title, &r.GroupHandle, &r.Bio, &r.AvatarURL, &r.MemberCount, &r.IsMember); err != nil {
			return nil, err
		}
		list = append(list, &r)
	}
	return list, rows.Err()
}
