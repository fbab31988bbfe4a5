package chat_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"bekgram/internal/app/chat"
	"bekgram/internal/app/db"
	"bekgram/internal/pkg/errs"
)

// These tests run the engine against a real Postgres. Set TEST_DATABASE_URL
// to a disposable database (migrations are applied on connect); without it
// the suite skips.
func newTestEngine(t *testing.T) (*chat.Service, *db.Queries) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := db.NewPool(dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return chat.NewService(pool), db.New(pool)
}

// newTestUser creates an account with a unique handle so runs never collide.
func newTestUser(t *testing.T, q *db.Queries, prefix string) *db.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	u := &db.User{
		ID:                 uuid.NewString(),
		Username:           prefix + "_" + suffix,
		UsernameLower:      prefix + "_" + suffix,
		DisplayName:        prefix,
		PasswordHash:       "x",
		CanReceiveMessages: true,
	}
	require.NoError(t, q.CreateUser(context.Background(), u))
	return u
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()

	var ce *errs.CustomError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, code, ce.Code)
}

func newTestGroup(t *testing.T, svc *chat.Service, owner *db.User, members ...*db.User) string {
	t.Helper()

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Username)
	}
	result, err := svc.CreateGroup(context.Background(), owner.ID, chat.CreateGroupParams{
		Title:           "room " + uuid.NewString()[:8],
		MemberUsernames: names,
	})
	require.NoError(t, err)
	return result.Chat.ID
}

func TestDirectChatDeduplicates(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	alice := newTestUser(t, q, "alice")
	bob := newTestUser(t, q, "bobby")

	first, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, first.Created)

	// The same pair converges on one chat no matter who opens it.
	again, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, again.Created)
	require.Equal(t, first.Chat.ID, again.Chat.ID)

	reversed, err := svc.GetOrCreateDirect(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, reversed.Created)
	require.Equal(t, first.Chat.ID, reversed.Chat.ID)
}

func TestSavedChatDeduplicates(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	alice := newTestUser(t, q, "alice")

	first, err := svc.GetOrCreateSaved(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, first.Created)

	again, err := svc.GetOrCreateSaved(ctx, alice.ID)
	require.NoError(t, err)
	require.False(t, again.Created)
	require.Equal(t, first.Chat.ID, again.Chat.ID)
}

// One member catching up must never change what the others still have unread.
func TestUnreadCountsArePerReader(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	owner := newTestUser(t, q, "owner")
	beth := newTestUser(t, q, "beth_r")
	carol := newTestUser(t, q, "carol")

	chatID := newTestGroup(t, svc, owner, beth, carol)

	// Creation wrote two joined events on behalf of the owner.
	unread := func(u *db.User) int64 {
		view, err := svc.Get(ctx, u.ID, chatID)
		require.NoError(t, err)
		return view.UnreadCount
	}
	require.EqualValues(t, 0, unread(owner))
	require.EqualValues(t, 2, unread(beth))
	require.EqualValues(t, 2, unread(carol))

	_, err := svc.Append(ctx, owner.ID, chatID, "standup in five", db.MessageTypeText)
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, beth.ID, chatID)
	require.NoError(t, err)

	require.EqualValues(t, 0, unread(beth))
	require.EqualValues(t, 3, unread(carol))
	require.EqualValues(t, 0, unread(owner))
}

func TestSavedChatSendsAreBornRead(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	alice := newTestUser(t, q, "alice")

	saved, err := svc.GetOrCreateSaved(ctx, alice.ID)
	require.NoError(t, err)

	sent, err := svc.Append(ctx, alice.ID, saved.Chat.ID, "grocery list", db.MessageTypeText)
	require.NoError(t, err)
	require.NotNil(t, sent.Message.ReadAt)

	view, err := svc.Get(ctx, alice.ID, saved.Chat.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, view.UnreadCount)
}

func TestPreviewFollowsLedger(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	alice := newTestUser(t, q, "alice")
	bob := newTestUser(t, q, "bobby")

	direct, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	chatID := direct.Chat.ID

	first, err := svc.Append(ctx, alice.ID, chatID, "first", db.MessageTypeText)
	require.NoError(t, err)
	second, err := svc.Append(ctx, alice.ID, chatID, "second", db.MessageTypeText)
	require.NoError(t, err)

	preview := func() *chat.Chat {
		view, err := svc.Get(ctx, bob.ID, chatID)
		require.NoError(t, err)
		return view
	}

	view := preview()
	require.NotNil(t, view.LastMessage)
	require.Equal(t, "second", *view.LastMessage)
	require.Equal(t, alice.ID, *view.LastSenderID)

	// Deleting the newest message rolls the preview back to the survivor.
	_, err = svc.DeleteMessage(ctx, alice.ID, chatID, second.Message.ID)
	require.NoError(t, err)
	view = preview()
	require.NotNil(t, view.LastMessage)
	require.Equal(t, "first", *view.LastMessage)

	// Deleting the last message clears the preview entirely.
	_, err = svc.DeleteMessage(ctx, alice.ID, chatID, first.Message.ID)
	require.NoError(t, err)
	view = preview()
	require.Nil(t, view.LastMessage)
	require.Nil(t, view.LastSenderID)
	require.Nil(t, view.LastMessageAt)
}

func TestMarkReadSecondSweepIsEmpty(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	alice := newTestUser(t, q, "alice")
	bob := newTestUser(t, q, "bobby")

	direct, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := svc.Append(ctx, alice.ID, direct.Chat.ID, fmt.Sprintf("ping %d", i), db.MessageTypeText)
		require.NoError(t, err)
	}

	sweep, err := svc.MarkRead(ctx, bob.ID, direct.Chat.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, sweep.Count)
	require.Equal(t, []string{alice.ID}, sweep.SenderIDs)

	// Re-reading an already-read chat touches nothing and notifies no one.
	again, err := svc.MarkRead(ctx, bob.ID, direct.Chat.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, again.Count)
	require.Empty(t, again.SenderIDs)
}

func TestGroupOwnerInvariant(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	owner := newTestUser(t, q, "owner")
	beth := newTestUser(t, q, "beth_r")
	carol := newTestUser(t, q, "carol")

	chatID := newTestGroup(t, svc, owner, beth, carol)

	_, err := svc.RemoveMember(ctx, beth.ID, chatID, carol.ID)
	requireCode(t, err, errs.ErrNotGroupOwner)

	_, err = svc.RemoveMember(ctx, owner.ID, chatID, owner.ID)
	requireCode(t, err, errs.ErrSelfRemoval)

	removed, err := svc.RemoveMember(ctx, owner.ID, chatID, carol.ID)
	require.NoError(t, err)
	require.Equal(t, carol.ID, removed.RemovedID)
	// The pre-removal roster is reported so the removed member can be told.
	require.Contains(t, removed.ParticipantIDs, carol.ID)

	members, err := svc.ListMembers(ctx, owner.ID, chatID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	owners := 0
	for _, m := range members {
		if m.Role == db.RoleOwner {
			owners++
		}
	}
	require.Equal(t, 1, owners)
	require.Equal(t, owner.ID, members[0].ID)
}

func TestDirectWriteGate(t *testing.T) {
	svc, q := newTestEngine(t)
	ctx := context.Background()
	alice := newTestUser(t, q, "alice")
	bob := newTestUser(t, q, "bobby")

	direct, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	chatID := direct.Chat.ID

	bob.CanReceiveMessages = false
	require.NoError(t, q.UpdateUserProfile(ctx, bob))

	_, err = svc.Append(ctx, alice.ID, chatID, "hello?", db.MessageTypeText)
	requireCode(t, err, errs.ErrWriteBlocked)

	// The rejected send left no trace in the ledger.
	messages, err := svc.ListMessages(ctx, alice.ID, chatID, 0)
	require.NoError(t, err)
	require.Empty(t, messages)

	bob.CanReceiveMessages = true
	require.NoError(t, q.UpdateUserProfile(ctx, bob))

	sent, err := svc.Append(ctx, alice.ID, chatID, "hello!", db.MessageTypeText)
	require.NoError(t, err)
	require.Equal(t, "hello!", sent.Message.Text)
}
