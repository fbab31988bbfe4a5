package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStamp() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// fakeSession collects enqueued frames in memory.
type fakeSession struct {
	userID string

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func newFakeSession(userID string) *fakeSession {
	return &fakeSession{userID: userID}
}

func (s *fakeSession) UserID() string { return s.userID }

func (s *fakeSession) Enqueue(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, data)
	return true
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSession) types(t *testing.T) []string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	var types []string
	for _, raw := range s.frames {
		var e struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(raw, &e))
		types = append(types, e.Type)
	}
	return types
}

// fakeMembers answers membership checks from a static set.
type fakeMembers struct {
	members map[string]bool // "chatID/userID"
}

func (f *fakeMembers) IsMember(_ context.Context, chatID, userID string) (bool, error) {
	return f.members[chatID+"/"+userID], nil
}

// fakeStore records presence writes.
type fakeStore struct {
	mu     sync.Mutex
	writes []string
}

func (f *fakeStore) SetUserOnline(_ context.Context, userID string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := "offline"
	if online {
		state = "online"
	}
	f.writes = append(f.writes, userID+":"+state)
	return nil
}

func newTestHub(members map[string]bool) (*Hub, *fakeStore) {
	store := &fakeStore{}
	return NewHub(&fakeMembers{members: members}, store), store
}

func TestRegisterFirstSessionPersistsOnlineEdge(t *testing.T) {
	hub, store := newTestHub(nil)
	ctx := context.Background()

	s1 := newFakeSession("u1")
	s2 := newFakeSession("u1")

	hub.Register(ctx, s1)
	hub.Register(ctx, s2)

	assert.Equal(t, []string{"u1:online"}, store.writes, "only the first session writes")
	assert.True(t, hub.IsOnline("u1"))

	hub.Unregister(ctx, s1)
	assert.Equal(t, []string{"u1:online"}, store.writes, "no write while a session remains")
	assert.True(t, hub.IsOnline("u1"))

	hub.Unregister(ctx, s2)
	assert.Equal(t, []string{"u1:online", "u1:offline"}, store.writes)
	assert.False(t, hub.IsOnline("u1"))
}

func TestToUserReachesEverySessionOfThatUserOnly(t *testing.T) {
	hub, _ := newTestHub(nil)
	ctx := context.Background()

	phone := newFakeSession("u1")
	laptop := newFakeSession("u1")
	other := newFakeSession("u2")
	hub.Register(ctx, phone)
	hub.Register(ctx, laptop)
	hub.Register(ctx, other)

	hub.ToUser("u1", ChatDeleted("c1"))

	assert.Contains(t, phone.types(t), "chat:deleted")
	assert.Contains(t, laptop.types(t), "chat:deleted")
	assert.NotContains(t, other.types(t), "chat:deleted")
}

func TestJoinChatIsMembershipGated(t *testing.T) {
	hub, _ := newTestHub(map[string]bool{"c1/u1": true})
	ctx := context.Background()

	member := newFakeSession("u1")
	intruder := newFakeSession("u2")
	hub.Register(ctx, member)
	hub.Register(ctx, intruder)

	hub.JoinChat(ctx, member, "c1")
	hub.JoinChat(ctx, intruder, "c1") // silently ignored

	hub.ToChat("c1", MessageDeleted("c1", "7"))

	assert.Contains(t, member.types(t), "message:deleted")
	assert.NotContains(t, intruder.types(t), "message:deleted")
}

func TestLeaveChatStopsChannelDelivery(t *testing.T) {
	hub, _ := newTestHub(map[string]bool{"c1/u1": true})
	ctx := context.Background()

	s := newFakeSession("u1")
	hub.Register(ctx, s)
	hub.JoinChat(ctx, s, "c1")
	hub.LeaveChat(s, "c1")

	hub.ToChat("c1", MessageDeleted("c1", "7"))

	assert.NotContains(t, s.types(t), "message:deleted")
}

func TestUnregisterCleansChannelSubscriptions(t *testing.T) {
	hub, _ := newTestHub(map[string]bool{"c1/u1": true})
	ctx := context.Background()

	s := newFakeSession("u1")
	hub.Register(ctx, s)
	hub.JoinChat(ctx, s, "c1")
	hub.Unregister(ctx, s)

	hub.ToChat("c1", MessageDeleted("c1", "7"))
	assert.Empty(t, s.types(t))
}

func TestBroadcastCarriesPresenceEdges(t *testing.T) {
	hub, _ := newTestHub(nil)
	ctx := context.Background()

	watcher := newFakeSession("u2")
	hub.Register(ctx, watcher)

	comer := newFakeSession("u1")
	hub.Register(ctx, comer)
	hub.Unregister(ctx, comer)

	types := watcher.types(t)
	n := 0
	for _, typ := range types {
		if typ == "presence:update" {
			n++
		}
	}
	assert.Equal(t, 2, n, "watcher sees the online and offline edge")
}

func TestToUsersDeduplicatesNothingButTargetsEachUser(t *testing.T) {
	hub, _ := newTestHub(nil)
	ctx := context.Background()

	a := newFakeSession("u1")
	b := newFakeSession("u2")
	c := newFakeSession("u3")
	hub.Register(ctx, a)
	hub.Register(ctx, b)
	hub.Register(ctx, c)

	hub.ToUsers([]string{"u1", "u2"}, ChatUpdated("c9", testStamp()))

	assert.Contains(t, a.types(t), "chat:updated")
	assert.Contains(t, b.types(t), "chat:updated")
	assert.NotContains(t, c.types(t), "chat:updated")
}

func TestShutdownClosesAllSessions(t *testing.T) {
	hub, _ := newTestHub(nil)
	ctx := context.Background()

	s1 := newFakeSession("u1")
	s2 := newFakeSession("u2")
	hub.Register(ctx, s1)
	hub.Register(ctx, s2)

	hub.Shutdown()

	assert.True(t, s1.closed)
	assert.True(t, s2.closed)
}
