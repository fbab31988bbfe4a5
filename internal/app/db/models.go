package db

import "time"

// Chat type discriminators.
const (
	ChatTypeDirect = "direct"
	ChatTypeSaved  = "saved"
	ChatTypeGroup  = "group"
)

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Message type discriminators.
const (
	MessageTypeText       = "text"
	MessageTypeSticker    = "sticker"
	MessageTypeImage      = "image"
	MessageTypeVideo      = "video"
	MessageTypeVoice      = "voice"
	MessageTypeGroupEvent = "group_event"
)

// User is a row of the users table.
type User struct {
	ID                 string
	Username           string
	UsernameLower      string
	DisplayName        string
	PasswordHash       string
	AvatarURL          *string
	Bio                *string
	PhoneNumber        *string
	IsVerified         bool
	CanReceiveMessages bool
	VerifyBlockedUntil *time.Time
	IsOnline           bool
	LastSeen           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Chat is a row of the chats table. The Last* columns denormalize the most
// recent visible message so chat lists render without touching the ledger.
type Chat struct {
	ID               string
	Type             string
	Title            *string
	DedupKey         *string
	GroupHandle      *string
	GroupHandleLower *string
	Bio              *string
	AvatarURL        *string
	OwnerID          *string
	IsPublic         bool
	LastMessage      *string
	LastSenderID     *string
	LastMessageAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Member is a row of the chat_members table.
type Member struct {
	ChatID     string
	UserID     string
	Role       string
	LastReadAt *time.Time
	JoinedAt   time.Time
}

// MemberProfile is a membership row joined with the member's public profile.
type MemberProfile struct {
	UserID      string
	Username    string
	DisplayName string
	AvatarURL   *string
	IsVerified  bool
	IsOnline    bool
	LastSeen    *time.Time
	Role        string
	JoinedAt    time.Time
}

// Message is a row of the messages table. IDs are allocated by a sequence,
// so ordering by (created_at, id) is total even within one timestamp.
type Message struct {
	ID        int64
	ChatID    string
	SenderID  string
	Body      string
	Type      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

// MessageWithSender is a ledger row joined with the sender's public profile,
// shaped for message listings.
type MessageWithSender struct {
	Message
	SenderUsername    string
	SenderDisplayName string
	SenderAvatarURL   *string
	SenderIsVerified  bool
}

// ChatListRow is one entry of a user's chat list: the chat, the caller's own
// membership, an unread counter, and (for direct chats) the peer's profile.
type ChatListRow struct {
	Chat
	Role        string
	LastReadAt  *time.Time
	UnreadCount int64
	MemberCount int64

	// ParticipantIDs is a comma-joined aggregate of the chat's member ids.
	ParticipantIDs *string

	// Peer columns are populated only for direct chats.
	PeerID                 *string
	PeerUsername           *string
	PeerDisplayName        *string
	PeerAvatarURL          *string
	PeerIsVerified         *bool
	PeerIsOnline           *bool
	PeerLastSeen           *time.Time
	PeerCanReceiveMessages *bool
}

// GroupSearchRow is one public-group directory hit.
type GroupSearchRow struct {
	ID          string
	Title       *string
	GroupHandle *string
	Bio         *string
	AvatarURL   *string
	MemberCount int64
	IsMember    bool
}
