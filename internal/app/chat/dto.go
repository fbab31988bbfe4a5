package chat

import (
	"strconv"
	"strings"
	"time"

	"bekgram/internal/app/db"
	"bekgram/internal/app/user"
)

// Chat is the client-facing conversation shape, always rendered from the
// acting user's point of view (unread counter, role, write permission).
type Chat struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	ParticipantIDs []string   `json:"participantIds"`
	IsSaved        bool       `json:"isSaved"`
	Title          *string    `json:"title"`
	GroupUsername  *string    `json:"groupUsername"`
	GroupBio       string     `json:"groupBio"`
	AvatarURL      *string    `json:"avatarUrl"`
	OwnerID        *string    `json:"ownerId"`
	IsPublic       bool       `json:"isPublic"`
	LastMessage    *string    `json:"lastMessage"`
	LastSenderID   *string    `json:"lastSenderId"`
	LastMessageAt  *time.Time `json:"lastMessageAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	UnreadCount    int64      `json:"unreadCount"`
	CanWrite       bool       `json:"canWrite"`
	MemberCount    int64      `json:"memberCount"`
	MyRole         string     `json:"myRole"`

	// Peer is the other party of a direct chat, nil otherwise.
	Peer *Peer `json:"peer,omitempty"`
}

// Peer is the compact profile of a direct chat's other party.
type Peer struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	AvatarURL   *string    `json:"avatarUrl"`
	IsVerified  bool       `json:"isVerified"`
	IsOnline    bool       `json:"isOnline"`
	LastSeen    *time.Time `json:"lastSeen"`
}

// Message is the client-facing ledger row. IDs serialize as strings so
// clients never lose precision on 64-bit values.
type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	SenderID  string        `json:"senderId"`
	Text      string        `json:"text"`
	Type      string        `json:"type"`
	CreatedAt time.Time     `json:"createdAt"`
	ReadAt    *time.Time    `json:"readAt"`
	Sender    *user.Summary `json:"sender,omitempty"`
}

// Member is one roster entry of a chat.
type Member struct {
	user.Summary
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
	Role     string     `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// GroupInfo is one public-group directory hit.
type GroupInfo struct {
	ID            string  `json:"id"`
	Title         *string `json:"title"`
	GroupUsername *string `json:"groupUsername"`
	GroupBio      string  `json:"groupBio"`
	AvatarURL     *string `json:"avatarUrl"`
	MemberCount   int64   `json:"memberCount"`
	IsMember      bool    `json:"isMember"`
}

func chatFromListRow(r *db.ChatListRow) *Chat {
	c := &Chat{
		ID:            r.ID,
		Type:          r.Type,
		IsSaved:       r.Type == db.ChatTypeSaved,
		Title:         r.Title,
		GroupUsername: r.GroupHandle,
		AvatarURL:     r.AvatarURL,
		OwnerID:       r.OwnerID,
		IsPublic:      r.IsPublic,
		LastMessage:   r.LastMessage,
		LastSenderID:  r.LastSenderID,
		LastMessageAt: r.LastMessageAt,
		UpdatedAt:     r.UpdatedAt,
		UnreadCount:   r.UnreadCount,
		CanWrite:      true,
		MemberCount:   r.MemberCount,
		MyRole:        r.Role,
	}

	if r.Bio != nil {
		c.GroupBio = *r.Bio
	}
	if r.ParticipantIDs != nil {
		c.ParticipantIDs = strings.Split(*r.ParticipantIDs, ",")
	}

	if r.Type == db.ChatTypeDirect && r.PeerID != nil {
		c.Peer = &Peer{
			ID:          *r.PeerID,
			Username:    deref(r.PeerUsername),
			DisplayName: deref(r.PeerDisplayName),
			AvatarURL:   r.PeerAvatarURL,
			IsVerified:  r.PeerIsVerified != nil && *r.PeerIsVerified,
			IsOnline:    r.PeerIsOnline != nil && *r.PeerIsOnline,
			LastSeen:    r.PeerLastSeen,
		}
		if r.PeerCanReceiveMessages != nil {
			c.CanWrite = *r.PeerCanReceiveMessages
		}
	}

	return c
}

func messageFromRow(m *db.Message) *Message {
	return &Message{
		ID:        strconv.FormatInt(m.ID, 10),
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Text:      m.Body,
		Type:      m.Type,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
}

func messageFromJoinedRow(m *db.MessageWithSender) *Message {
	msg := messageFromRow(&m.Message)
	msg.Sender = &user.Summary{
		ID:          m.SenderID,
		Username:    m.SenderUsername,
		DisplayName: m.SenderDisplayName,
		AvatarURL:   m.SenderAvatarURL,
		IsVerified:  m.SenderIsVerified,
	}
	return msg
}

func memberFromRow(p *db.MemberProfile) *Member {
	return &Member{
		Summary: user.Summary{
			ID:          p.UserID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			IsVerified:  p.IsVerified,
		},
		IsOnline: p.IsOnline,
		LastSeen: p.LastSeen,
		Role:     p.Role,
		JoinedAt: p.JoinedAt,
	}
}

func groupInfoFromRow(r *db.GroupSearchRow) *GroupInfo {
	g := &GroupInfo{
		ID:            r.ID,
		Title:         r.Title,
		GroupUsername: r.GroupHandle,
		AvatarURL:     r.AvatarURL,
		MemberCount:   r.MemberCount,
		IsMember:      r.IsMember,
	}
	if r.Bio != nil {
		g.GroupBio = *r.Bio
	}
	return g
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
