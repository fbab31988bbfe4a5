/*
Package user defines the public account representation returned to clients.

Sensitive columns (password hash, lowercase lookup keys) never leave the
server; everything else is shaped here once so every handler and realtime
event serializes accounts identically.
*/
package user

import (
	"time"

	"bekgram/internal/app/db"
)

// User is the client-facing account shape.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"displayName"`
	AvatarURL          *string    `json:"avatarUrl"`
	Bio                *string    `json:"bio"`
	PhoneNumber        *string    `json:"phoneNumber"`
	IsVerified         bool       `json:"isVerified"`
	CanReceiveMessages bool       `json:"canReceiveMessages"`
	VerifyBlockedUntil *time.Time `json:"verifyRequestBlockedUntil"`
	IsOnline           bool       `json:"isOnline"`
	LastSeen           *time.Time `json:"lastSeen"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// FromRow converts a database row to the client-facing shape.
func FromRow(row *db.User) *User {
	return &User{
		ID:                 row.ID,
		Username:           row.Username,
		DisplayName:        row.DisplayName,
		AvatarURL:          row.AvatarURL,
		Bio:                row.Bio,
		PhoneNumber:        row.PhoneNumber,
		IsVerified:         row.IsVerified,
		CanReceiveMessages: row.CanReceiveMessages,
		VerifyBlockedUntil: row.VerifyBlockedUntil,
		IsOnline:           row.IsOnline,
		LastSeen:           row.LastSeen,
		CreatedAt:          row.CreatedAt,
	}
}

// Summary is the compact account shape embedded in rosters and message rows.
type Summary struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
	IsVerified  bool    `json:"isVerified"`
}
