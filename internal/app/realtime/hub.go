package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bekgram/internal/pkg/logx"
)

// Session is one live connection owned by a user. Enqueue must not block;
// it reports false when the session's buffer is full or closed.
type Session interface {
	UserID() string
	Enqueue(data []byte) bool
	Close()
}

// MembershipChecker gates chat-channel subscriptions. *db.Queries satisfies it.
type MembershipChecker interface {
	IsMember(ctx context.Context, chatID, userID string) (bool, error)
}

// PresenceStore persists the online flag on presence edges. *db.Queries
// satisfies it.
type PresenceStore interface {
	SetUserOnline(ctx context.Context, userID string, online bool) error
}

// Hub routes events to sessions by user and by chat channel, and drives
// edge-triggered presence: the first session marks the user online, the
// last one gone marks them offline, and both edges are broadcast.
type Hub struct {
	mu sync.RWMutex

	// byUser holds every live session of each user.
	byUser map[string]map[Session]struct{}

	// byChat holds the sessions subscribed to each chat channel.
	byChat map[string]map[Session]struct{}

	// chatsOf is the reverse index used to unsubscribe a session on close.
	chatsOf map[Session]map[string]struct{}

	presence *Registry
	members  MembershipChecker
	store    PresenceStore

	logger zerolog.Logger
}

// NewHub constructs a hub over the given membership gate and presence store.
func NewHub(members MembershipChecker, store PresenceStore) *Hub {
	return &Hub{
		byUser:   make(map[string]map[Session]struct{}),
		byChat:   make(map[string]map[Session]struct{}),
		chatsOf:  make(map[Session]map[string]struct{}),
		presence: NewRegistry(),
		members:  members,
		store:    store,
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Register adds a session. On the user's first live session the persisted
// online flag flips and a presence update goes out to everyone.
func (h *Hub) Register(ctx context.Context, s Session) {
	h.mu.Lock()
	userID := s.UserID()
	set, ok := h.byUser[userID]
	if !ok {
		set = make(map[Session]struct{})
		h.byUser[userID] = set
	}
	set[s] = struct{}{}
	h.chatsOf[s] = make(map[string]struct{})
	h.mu.Unlock()

	if h.presence.Add(userID) {
		h.announcePresence(ctx, userID, true)
	}
}

// Unregister removes a session and its channel subscriptions. When it was
// the user's last session, the persisted flag flips off and last-seen is
// stamped.
func (h *Hub) Unregister(ctx context.Context, s Session) {
	h.mu.Lock()
	userID := s.UserID()

	if set, ok := h.byUser[userID]; ok {
		if _, tracked := set[s]; !tracked {
			h.mu.Unlock()
			return
		}
		delete(set, s)
		if len(set) == 0 {
			delete(h.byUser, userID)
		}
	} else {
		h.mu.Unlock()
		return
	}

	for chatID := range h.chatsOf[s] {
		h.removeFromChatLocked(s, chatID)
	}
	delete(h.chatsOf, s)
	h.mu.Unlock()

	if h.presence.Remove(userID) {
		h.announcePresence(ctx, userID, false)
	}
}

// JoinChat subscribes a session to a chat channel after verifying the user's
// membership. Failed checks and non-members are ignored silently, matching
// the transport's fire-and-forget contract.
func (h *Hub) JoinChat(ctx context.Context, s Session, chatID string) {
	if chatID == "" {
		return
	}

	ok, err := h.members.IsMember(ctx, chatID, s.UserID())
	if err != nil {
		h.logger.Warn().Err(err).Str("chat_id", chatID).Msg("Chat join membership check failed")
		return
	}
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, live := h.chatsOf[s]; !live {
		return
	}
	set, exists := h.byChat[chatID]
	if !exists {
		set = make(map[Session]struct{})
		h.byChat[chatID] = set
	}
	set[s] = struct{}{}
	h.chatsOf[s][chatID] = struct{}{}
}

// LeaveChat unsubscribes a session from a chat channel.
func (h *Hub) LeaveChat(s Session, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromChatLocked(s, chatID)
	if chats, ok := h.chatsOf[s]; ok {
		delete(chats, chatID)
	}
}

func (h *Hub) removeFromChatLocked(s Session, chatID string) {
	if set, ok := h.byChat[chatID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.byChat, chatID)
		}
	}
}

// ToUser delivers an event to every session the user has open.
func (h *Hub) ToUser(userID string, e Event) {
	data := e.Encode()
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.byUser[userID] {
		s.Enqueue(data)
	}
}

// ToUsers delivers an event to every session of each listed user.
func (h *Hub) ToUsers(userIDs []string, e Event) {
	data := e.Encode()
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range userIDs {
		for s := range h.byUser[userID] {
			s.Enqueue(data)
		}
	}
}

// ToChat delivers an event to the sessions subscribed to the chat channel.
func (h *Hub) ToChat(chatID string, e Event) {
	data := e.Encode()
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.byChat[chatID] {
		s.Enqueue(data)
	}
}

// Broadcast delivers an event to every connected session.
func (h *Hub) Broadcast(e Event) {
	data := e.Encode()
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.byUser {
		for s := range set {
			s.Enqueue(data)
		}
	}
}

// IsOnline reports whether the user has at least one live session.
func (h *Hub) IsOnline(userID string) bool {
	return h.presence.Online(userID)
}

// SetPresence forces the user's presence flag, serving explicit
// "appear offline" requests regardless of live sessions.
func (h *Hub) SetPresence(ctx context.Context, userID string, online bool) {
	h.announcePresence(ctx, userID, online)
}

// Shutdown closes every session. Transports observe the close and unwind
// their pumps.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	sessions := make([]Session, 0)
	for _, set := range h.byUser {
		for s := range set {
			sessions = append(sessions, s)
		}
	}
	h.byUser = make(map[string]map[Session]struct{})
	h.byChat = make(map[string]map[Session]struct{})
	h.chatsOf = make(map[Session]map[string]struct{})
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	h.logger.Info().Int("sessions", len(sessions)).Msg("Hub shutdown complete")
}

// announcePresence persists the flag and broadcasts the change. A failed
// write is logged but the broadcast still goes out; the flag heals on the
// next edge.
func (h *Hub) announcePresence(ctx context.Context, userID string, online bool) {
	if err := h.store.SetUserOnline(ctx, userID, online); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Bool("online", online).
			Msg("Failed to persist presence flag")
	}
	h.Broadcast(PresenceUpdate(userID, online, time.Now().UTC()))
}
