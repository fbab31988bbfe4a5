package chat

import (
	"context"
	"strings"
	"time"

	"bekgram/internal/app/db"
	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/handle"
)

// ChatResult couples a chat mutation with everything its fan-out needs:
// the view for the acting user, whether a new chat row was created, the
// member ids to notify, and any ledger rows written along the way.
type ChatResult struct {
	Chat           *Chat
	Created        bool
	ParticipantIDs []string
	Messages       []*Message
}

// GetOrCreateDirect resolves the single direct chat between the caller and
// peerID, creating it if this is the first contact. Concurrent first
// contacts converge on one row via the identity key.
func (s *Service) GetOrCreateDirect(ctx context.Context, userID, peerID string) (*ChatResult, error) {
	if peerID == userID {
		return nil, errs.NewError(errs.ErrSelfDirectChat)
	}

	if _, err := s.q.GetUserByID(ctx, peerID); err != nil {
		if db.IsNotFound(err) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		return nil, err
	}

	key := DirectKey(userID, peerID)
	var (
		chatID  string
		created bool
	)
	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		row, wasCreated, err := q.InsertChatOrFetch(ctx, &db.Chat{
			ID:       newChatID(),
			Type:     db.ChatTypeDirect,
			DedupKey: &key,
		})
		if err != nil {
			return err
		}
		chatID, created = row.ID, wasCreated

		// Membership is idempotent, so repairing a half-created chat is safe.
		if _, err := q.AddMember(ctx, row.ID, userID, db.RoleMember); err != nil {
			return err
		}
		_, err = q.AddMember(ctx, row.ID, peerID, db.RoleMember)
		return err
	})
	if err != nil {
		return nil, err
	}

	view, err := s.viewFor(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return &ChatResult{
		Chat:           view,
		Created:        created,
		ParticipantIDs: []string{userID, peerID},
	}, nil
}

// GetOrCreateSaved resolves the caller's saved-messages chat, creating it on
// first use. Every user has exactly one.
func (s *Service) GetOrCreateSaved(ctx context.Context, userID string) (*ChatResult, error) {
	key := SavedKey(userID)
	var (
		chatID  string
		created bool
	)
	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		row, wasCreated, err := q.InsertChatOrFetch(ctx, &db.Chat{
			ID:       newChatID(),
			Type:     db.ChatTypeSaved,
			DedupKey: &key,
			OwnerID:  &userID,
		})
		if err != nil {
			return err
		}
		chatID, created = row.ID, wasCreated

		_, err = q.AddMember(ctx, row.ID, userID, db.RoleOwner)
		return err
	})
	if err != nil {
		return nil, err
	}

	view, err := s.viewFor(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return &ChatResult{
		Chat:           view,
		Created:        created,
		ParticipantIDs: []string{userID},
	}, nil
}

// CreateGroupParams carries the group-creation request.
type CreateGroupParams struct {
	Title           string
	GroupUsername   string
	Bio             string
	IsPublic        bool
	MemberUsernames []string
}

// CreateGroup creates a group chat owned by ownerID, enrolls the requested
// members, and writes one joined event per member so the roster change is
// part of the ledger.
func (s *Service) CreateGroup(ctx context.Context, ownerID string, p CreateGroupParams) (*ChatResult, error) {
	title := strings.TrimSpace(p.Title)
	if len([]rune(title)) < 2 || len([]rune(title)) > 120 {
		return nil, errs.NewError(errs.ErrTitleLength)
	}

	bio := strings.TrimSpace(p.Bio)
	if len([]rune(bio)) > 255 {
		return nil, errs.NewError(errs.ErrBioTooLong)
	}

	var groupHandle, groupHandleLower *string
	if p.IsPublic {
		lower := handle.Normalize(p.GroupUsername)
		if !handle.Valid(lower) {
			return nil, errs.NewError(errs.ErrInvalidHandle)
		}

		// Early taken-handle check for a friendly error. The unique index
		// still backs it up against a concurrent claim.
		if _, err := s.q.GetChatByGroupHandleLower(ctx, lower); err == nil {
			return nil, errs.NewError(errs.ErrGroupHandleTaken, lower)
		} else if !db.IsNotFound(err) {
			return nil, err
		}

		groupHandle, groupHandleLower = &lower, &lower
	}

	chatID := newChatID()
	result := &ChatResult{Created: true}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		creator, err := q.GetUserByID(ctx, ownerID)
		if err != nil {
			if db.IsNotFound(err) {
				return errs.NewError(errs.ErrUserNotFound)
			}
			return err
		}

		members, err := resolveMembers(ctx, q, p.MemberUsernames, creator.UsernameLower)
		if err != nil {
			return err
		}

		chatBio := bio
		err = q.CreateChat(ctx, &db.Chat{
			ID:               chatID,
			Type:             db.ChatTypeGroup,
			Title:            &title,
			GroupHandle:      groupHandle,
			GroupHandleLower: groupHandleLower,
			Bio:              &chatBio,
			OwnerID:          &ownerID,
			IsPublic:         p.IsPublic,
		})
		if err != nil {
			if db.IsUniqueViolation(err) && groupHandleLower != nil {
				return errs.NewError(errs.ErrGroupHandleTaken, *groupHandleLower)
			}
			return err
		}

		if _, err := q.AddMember(ctx, chatID, ownerID, db.RoleOwner); err != nil {
			return err
		}

		for _, member := range members {
			if _, err := q.AddMember(ctx, chatID, member.ID, db.RoleMember); err != nil {
				return err
			}
		}

		events, err := appendGroupEvents(ctx, q, chatID, GroupActionJoined, creator, members)
		if err != nil {
			return err
		}
		result.Messages = events

		result.ParticipantIDs, err = q.ListMemberIDs(ctx, chatID)
		return err
	})
	if err != nil {
		return nil, err
	}

	view, err := s.viewFor(ctx, ownerID, chatID)
	if err != nil {
		return nil, err
	}
	result.Chat = view
	return result, nil
}

// List returns the caller's chats, newest activity first.
func (s *Service) List(ctx context.Context, userID string) ([]*Chat, error) {
	rows, err := s.q.ListChatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	chats := make([]*Chat, 0, len(rows))
	for _, r := range rows {
		chats = append(chats, chatFromListRow(r))
	}
	return chats, nil
}

// Get returns one chat from the caller's point of view.
func (s *Service) Get(ctx context.Context, userID, chatID string) (*Chat, error) {
	return s.viewFor(ctx, userID, chatID)
}

// SearchGroups finds public groups by handle prefix or title substring. Hits
// the caller already belongs to are flagged.
func (s *Service) SearchGroups(ctx context.Context, userID, query string, limit int32) ([]*GroupInfo, error) {
	q := handle.Normalize(query)
	if q == "" {
		return []*GroupInfo{}, nil
	}

	rows, err := s.q.SearchPublicGroups(ctx, userID, q, limit)
	if err != nil {
		return nil, err
	}

	groups := make([]*GroupInfo, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, groupInfoFromRow(r))
	}
	return groups, nil
}

// Delete removes a chat with its ledger and roster. Saved chats are
// permanent, groups may only be deleted by their owner, and direct chats by
// either member. The returned ids are the members to notify.
func (s *Service) Delete(ctx context.Context, userID, chatID string) (participantIDs []string, err error) {
	err = db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		chat, err := s.requireMembership(ctx, q, chatID, userID)
		if err != nil {
			return err
		}

		switch chat.Type {
		case db.ChatTypeSaved:
			return errs.NewError(errs.ErrSavedChatImmutable)
		case db.ChatTypeGroup:
			if chat.OwnerID == nil || *chat.OwnerID != userID {
				return errs.NewError(errs.ErrNotGroupOwner)
			}
		}

		participantIDs, err = q.ListMemberIDs(ctx, chatID)
		if err != nil {
			return err
		}
		return q.DeleteChat(ctx, chatID)
	})
	if err != nil {
		return nil, err
	}
	return participantIDs, nil
}

// viewFor renders the chat from userID's point of view, distinguishing a
// missing chat from a membership failure.
func (s *Service) viewFor(ctx context.Context, userID, chatID string) (*Chat, error) {
	row, err := s.q.GetChatListRow(ctx, userID, chatID)
	if err == nil {
		return chatFromListRow(row), nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}

	if _, chatErr := s.q.GetChatByID(ctx, chatID); chatErr != nil {
		if db.IsNotFound(chatErr) {
			return nil, errs.NewError(errs.ErrChatNotFound)
		}
		return nil, chatErr
	}
	return nil, errs.NewError(errs.ErrNotChatMember)
}

// requireMembership loads the chat and verifies userID belongs to it.
func (s *Service) requireMembership(ctx context.Context, q *db.Queries, chatID, userID string) (*db.Chat, error) {
	chat, err := q.GetChatByID(ctx, chatID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errs.NewError(errs.ErrChatNotFound)
		}
		return nil, err
	}

	if _, err := q.GetMember(ctx, chatID, userID); err != nil {
		if db.IsNotFound(err) {
			return nil, errs.NewError(errs.ErrNotChatMember)
		}
		return nil, err
	}
	return chat, nil
}

// resolveMembers maps requested usernames to accounts, dropping the acting
// user's own handle and failing when any name is unknown.
func resolveMembers(ctx context.Context, q *db.Queries, usernames []string, selfLower string) ([]*db.User, error) {
	seen := make(map[string]bool, len(usernames))
	lowers := make([]string, 0, len(usernames))
	for _, raw := range usernames {
		lower := handle.Normalize(raw)
		if lower == "" || lower == selfLower || seen[lower] {
			continue
		}
		seen[lower] = true
		lowers = append(lowers, lower)
	}

	if len(lowers) > MaxMembersPerOp {
		return nil, errs.NewError(errs.ErrTooManyMembers, MaxMembersPerOp)
	}
	if len(lowers) == 0 {
		return nil, nil
	}

	users, err := q.GetUsersByUsernameLowers(ctx, lowers)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(users))
	for _, u := range users {
		found[u.UsernameLower] = true
	}
	var missing []string
	for _, lower := range lowers {
		if !found[lower] {
			missing = append(missing, "@"+lower)
		}
	}
	if len(missing) > 0 {
		return nil, errs.NewError(errs.ErrUsersNotFound, strings.Join(missing, ", "))
	}
	return users, nil
}

// appendGroupEvents writes one membership event per target and refreshes the
// chat preview to the final event's summary.
func appendGroupEvents(ctx context.Context, q *db.Queries, chatID, action string, actor *db.User, targets []*db.User) ([]*Message, error) {
	var (
		events      []*Message
		lastSummary string
	)
	for _, target := range targets {
		now := time.Now().UTC()
		msg := &db.Message{
			ChatID:   chatID,
			SenderID: actor.ID,
			Body:     NewGroupEvent(action, actor, target, now),
			Type:     db.MessageTypeGroupEvent,
		}
		if err := q.InsertMessage(ctx, msg); err != nil {
			return nil, err
		}
		events = append(events, messageFromRow(msg))
		lastSummary = BuildSummary(msg.Type, msg.Body)
	}

	if len(events) == 0 {
		return nil, nil
	}

	last := events[len(events)-1]
	if err := q.UpdateChatPreview(ctx, chatID, &lastSummary, &actor.ID, &last.CreatedAt); err != nil {
		return nil, err
	}
	return events, nil
}
