package chat

import (
	"context"

	"bekgram/internal/app/db"
	"bekgram/internal/pkg/errs"
)

// MemberChangeResult couples a roster mutation with its fan-out targets and
// the membership events written to the ledger.
type MemberChangeResult struct {
	ChatID         string
	ParticipantIDs []string
	Messages       []*Message
	AddedCount     int
	RemovedID      string
	Joined         bool
}

// AddMembers enrolls the given usernames into a group. Only the owner may
// add members; already-present users are skipped silently. One added event
// per new member lands in the ledger.
func (s *Service) AddMembers(ctx context.Context, actorID, chatID string, usernames []string) (*MemberChangeResult, error) {
	if len(usernames) == 0 {
		return nil, errs.NewError(errs.ErrMembersRequired)
	}

	result := &MemberChangeResult{ChatID: chatID}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		chat, err := s.requireMembership(ctx, q, chatID, actorID)
		if err != nil {
			return err
		}
		if chat.Type != db.ChatTypeGroup {
			return errs.NewError(errs.ErrNotGroupChat)
		}
		if chat.OwnerID == nil || *chat.OwnerID != actorID {
			return errs.NewError(errs.ErrNotGroupOwner)
		}

		actor, err := q.GetUserByID(ctx, actorID)
		if err != nil {
			return err
		}

		candidates, err := resolveMembers(ctx, q, usernames, actor.UsernameLower)
		if err != nil {
			return err
		}

		var added []*db.User
		for _, member := range candidates {
			wasAdded, err := q.AddMember(ctx, chatID, member.ID, db.RoleMember)
			if err != nil {
				return err
			}
			if wasAdded {
				added = append(added, member)
			}
		}
		result.AddedCount = len(added)

		result.Messages, err = appendGroupEvents(ctx, q, chatID, GroupActionAdded, actor, added)
		if err != nil {
			return err
		}

		result.ParticipantIDs, err = q.ListMemberIDs(ctx, chatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// JoinGroup enrolls the caller into a public group. Joining a group the
// caller already belongs to succeeds without writing anything.
func (s *Service) JoinGroup(ctx context.Context, userID, chatID string) (*MemberChangeResult, error) {
	result := &MemberChangeResult{ChatID: chatID}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		chat, err := q.GetChatByID(ctx, chatID)
		if err != nil {
			if db.IsNotFound(err) {
				return errs.NewError(errs.ErrChatNotFound)
			}
			return err
		}
		if chat.Type != db.ChatTypeGroup {
			return errs.NewError(errs.ErrNotGroupChat)
		}
		if !chat.IsPublic {
			return errs.NewError(errs.ErrGroupPrivate)
		}

		joiner, err := q.GetUserByID(ctx, userID)
		if err != nil {
			if db.IsNotFound(err) {
				return errs.NewError(errs.ErrUserNotFound)
			}
			return err
		}

		result.Joined, err = q.AddMember(ctx, chatID, userID, db.RoleMember)
		if err != nil {
			return err
		}

		if result.Joined {
			result.Messages, err = appendGroupEvents(ctx, q, chatID, GroupActionJoined, joiner, []*db.User{joiner})
			if err != nil {
				return err
			}
		}

		result.ParticipantIDs, err = q.ListMemberIDs(ctx, chatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveMember expels targetID from a group. Only the owner may remove
// members, the owner cannot be removed, and self-removal goes through chat
// deletion instead. The removed user stays in the fan-out targets so their
// sessions learn they lost the chat.
func (s *Service) RemoveMember(ctx context.Context, actorID, chatID, targetID string) (*MemberChangeResult, error) {
	if targetID == actorID {
		return nil, errs.NewError(errs.ErrSelfRemoval)
	}

	result := &MemberChangeResult{ChatID: chatID, RemovedID: targetID}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		chat, err := s.requireMembership(ctx, q, chatID, actorID)
		if err != nil {
			return err
		}
		if chat.Type != db.ChatTypeGroup {
			return errs.NewError(errs.ErrNotGroupChat)
		}
		if chat.OwnerID == nil || *chat.OwnerID != actorID {
			return errs.NewError(errs.ErrNotGroupOwner)
		}
		if chat.OwnerID != nil && *chat.OwnerID == targetID {
			return errs.NewError(errs.ErrOwnerNotRemovable)
		}

		// Snapshot the roster before the delete so the removed member is notified.
		result.ParticipantIDs, err = q.ListMemberIDs(ctx, chatID)
		if err != nil {
			return err
		}

		removed, err := q.RemoveMember(ctx, chatID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return errs.NewError(errs.ErrMemberNotFound)
		}

		actor, err := q.GetUserByID(ctx, actorID)
		if err != nil {
			return err
		}
		target, err := q.GetUserByID(ctx, targetID)
		if err != nil {
			return err
		}

		result.Messages, err = appendGroupEvents(ctx, q, chatID, GroupActionRemoved, actor, []*db.User{target})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListMembers returns the chat roster, owner first.
func (s *Service) ListMembers(ctx context.Context, userID, chatID string) ([]*Member, error) {
	if _, err := s.requireMembership(ctx, s.q, chatID, userID); err != nil {
		return nil, err
	}

	rows, err := s.q.ListMembersWithProfiles(ctx, chatID)
	if err != nil {
		return nil, err
	}

	members := make([]*Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, memberFromRow(r))
	}
	return members, nil
}
