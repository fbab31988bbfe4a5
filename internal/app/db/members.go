package db

import (
	"context"
	"time"
)

// AddMember inserts a membership row. Re-adding an existing member is a
// no-op; the return value reports whether a row was actually created.
func (q *Queries) AddMember(ctx context.Context, chatID, userID, role string) (added bool, err error) {
	tag, err := q.db.Exec(ctx, `
		INSERT INTO chat_members (chat_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, user_id) DO NOTHING`,
		chatID, userID, role,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetMember fetches one membership row.
func (q *Queries) GetMember(ctx context.Context, chatID, userID string) (*Member, error) {
	var m Member
	err := q.db.QueryRow(ctx, `
		SELECT chat_id, user_id, role, last_read_at, joined_at
		FROM chat_members
		WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID,
	).Scan(&m.ChatID, &m.UserID, &m.Role, &m.LastReadAt, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// IsMember reports whether the user belongs to the chat.
func (q *Queries) IsMember(ctx context.Context, chatID, userID string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2)`,
		chatID, userID).Scan(&exists)
	return exists, err
}

// RemoveMember deletes a membership row, reporting whether one existed.
func (q *Queries) RemoveMember(ctx context.Context, chatID, userID string) (removed bool, err error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM chat_members WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListMemberIDs returns the ids of every member of the chat.
func (q *Queries) ListMemberIDs(ctx context.Context, chatID string) ([]string, error) {
	rows, err := q.db.Query(ctx,
		`SELECT user_id FROM chat_members WHERE chat_id = $1`, chatID)
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

// ListMembersWithProfiles returns the chat roster joined with each member's
// public profile, owner first, then by join time.
func (q *Queries) ListMembersWithProfiles(ctx context.Context, chatID string) ([]*MemberProfile, error) {
	rows, err := q.db.Query(ctx, `
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.is_verified,
			u.is_online, u.last_seen, m.role, m.joined_at
		FROM chat_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.chat_id = $1
		ORDER BY (m.role = 'owner') DESC, m.joined_at ASC`,
		chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*MemberProfile
	for rows.Next() {
		var p MemberProfile
		err := rows.Scan(
			&p.UserID, &p.Username, &p.DisplayName, &p.AvatarURL, &p.IsVerified,
			&p.IsOnline, &p.LastSeen, &p.Role, &p.JoinedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, &p)
	}
	return members, rows.Err()
}

// SetLastReadAt advances the member's read cursor.
func (q *Queries) SetLastReadAt(ctx context.Context, chatID, userID string, at time.Time) error {
	_, err := q.db.Exec(ctx, `
		UPDATE chat_members SET last_read_at = $3
		WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID, at,
	)
	return err
}
