package db

import (
	"context"
	"time"
)

const userColumns = `id, username, username_lower, display_name, password_hash,
	avatar_url, bio, phone_number, is_verified, can_receive_messages,
	verify_blocked_until, is_online, last_seen, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.UsernameLower, &u.DisplayName, &u.PasswordHash,
		&u.AvatarURL, &u.Bio, &u.PhoneNumber, &u.IsVerified, &u.CanReceiveMessages,
		&u.VerifyBlockedUntil, &u.IsOnline, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new account row. New accounts start online with a
// fresh last_seen. A unique violation on username_lower surfaces through
// IsUniqueViolation.
func (q *Queries) CreateUser(ctx context.Context, u *User) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO users (id, username, username_lower, display_name, password_hash,
			avatar_url, bio, phone_number, is_verified, can_receive_messages, is_online, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, now())`,
		u.ID, u.Username, u.UsernameLower, u.DisplayName, u.PasswordHash,
		u.AvatarURL, u.Bio, u.PhoneNumber, u.IsVerified, u.CanReceiveMessages,
	)
	return err
}

// GetUserByID fetches an account by id.
func (q *Queries) GetUserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByUsernameLower fetches an account by its case-insensitive username key.
func (q *Queries) GetUserByUsernameLower(ctx context.Context, usernameLower string) (*User, error) {
	return scanUser(q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username_lower = $1`, usernameLower))
}

// GetUsersByUsernameLowers fetches every account whose username key is in the
// given set. Callers diff the result against the request to report unknowns.
func (q *Queries) GetUsersByUsernameLowers(ctx context.Context, usernameLowers []string) ([]*User, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE username_lower = ANY($1)`, usernameLowers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SearchUsers finds accounts by username prefix or display-name substring.
func (q *Queries) SearchUsers(ctx context.Context, query string, limit int32) ([]*User, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username_lower LIKE $1 || '%' OR display_name ILIKE '%' || $1 || '%'
		ORDER BY username_lower
		LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserProfile persists the editable profile columns of u.
func (q *Queries) UpdateUserProfile(ctx context.Context, u *User) error {
	_, err := q.db.Exec(ctx, `
		UPDATE users
		SET display_name = $2, bio = $3, phone_number = $4, avatar_url = $5,
		    can_receive_messages = $6, updated_at = now()
		WHERE id = $1`,
		u.ID, u.DisplayName, u.Bio, u.PhoneNumber, u.AvatarURL, u.CanReceiveMessages,
	)
	return err
}

// SetUserOnline flips the persisted presence flag. Going offline also stamps
// last_seen so "last seen at" survives the session.
func (q *Queries) SetUserOnline(ctx context.Context, id string, online bool) error {
	var err error
	if online {
		_, err = q.db.Exec(ctx,
			`UPDATE users SET is_online = TRUE, updated_at = now() WHERE id = $1`, id)
	} else {
		_, err = q.db.Exec(ctx,
			`UPDATE users SET is_online = FALSE, last_seen = now(), updated_at = now() WHERE id = $1`, id)
	}
	return err
}

// SetUserVerified sets the verified badge.
func (q *Queries) SetUserVerified(ctx context.Context, id string, verified bool) error {
	_, err := q.db.Exec(ctx,
		`UPDATE users SET is_verified = $2, updated_at = now() WHERE id = $1`, id, verified)
	return err
}

// SetVerifyBlockedUntil records (or clears, with nil) the verification-request cooldown.
func (q *Queries) SetVerifyBlockedUntil(ctx context.Context, id string, until *time.Time) error {
	_, err := q.db.Exec(ctx,
		`UPDATE users SET verify_blocked_until = $2, updated_at = now() WHERE id = $1`, id, until)
	return err
}
