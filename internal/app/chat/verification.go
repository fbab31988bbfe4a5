package chat

import (
	"context"
	"time"

	"bekgram/internal/app/db"
	"bekgram/internal/pkg/errs"
)

// The verification workflow rides the ordinary direct-chat machinery: a
// request is a structured message to the reviewer account, a verdict is a
// structured message back. No separate inbox exists.

// VerificationCooldown is how long a rejected requester must wait before
// asking again.
const VerificationCooldown = 7 * 24 * time.Hour

// verificationAdmins are the reviewer account handles, in lookup order.
var verificationAdmins = []string{"verify", "asilbek"}

// IsVerificationAdmin reports whether the handle belongs to a reviewer account.
func IsVerificationAdmin(usernameLower string) bool {
	for _, admin := range verificationAdmins {
		if usernameLower == admin {
			return true
		}
	}
	return false
}

// VerificationResult couples a verification step with its fan-out targets.
type VerificationResult struct {
	ChatID         string
	ReviewerID     string
	Message        *Message
	ParticipantIDs []string

	// Requester is the requester's account after a verdict was applied.
	Requester *db.User
}

// RequestVerification submits the caller's profile for review. The request
// lands as a message in the caller's direct chat with the reviewer account,
// subject to the rejection cooldown.
func (s *Service) RequestVerification(ctx context.Context, userID string) (*VerificationResult, error) {
	result := &VerificationResult{}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		requester, err := q.GetUserByID(ctx, userID)
		if err != nil {
			if db.IsNotFound(err) {
				return errs.NewError(errs.ErrUserNotFound)
			}
			return err
		}
		if IsVerificationAdmin(requester.UsernameLower) {
			return errs.NewError(errs.ErrVerifySelf)
		}

		now := time.Now().UTC()
		if requester.VerifyBlockedUntil != nil && requester.VerifyBlockedUntil.After(now) {
			return errs.NewError(errs.ErrVerifyCooldown, requester.VerifyBlockedUntil.UTC().Format(time.RFC3339))
		}

		reviewer, err := findReviewer(ctx, q)
		if err != nil {
			return err
		}
		if reviewer.ID == userID {
			return errs.NewError(errs.ErrVerifySelf)
		}
		result.ReviewerID = reviewer.ID

		chatID, err := ensureDirectChat(ctx, q, userID, reviewer.ID)
		if err != nil {
			return err
		}
		result.ChatID = chatID

		msg := &db.Message{
			ChatID:   chatID,
			SenderID: userID,
			Body:     NewVerifyRequest(requester, now),
			Type:     db.MessageTypeText,
		}
		if err := q.InsertMessage(ctx, msg); err != nil {
			return err
		}
		result.Message = messageFromRow(msg)

		summary := BuildSummary(msg.Type, msg.Body)
		if err := q.UpdateChatPreview(ctx, chatID, &summary, &userID, &msg.CreatedAt); err != nil {
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

// DecideVerification applies a reviewer's verdict. Approval grants the badge
// and clears any cooldown; rejection starts a fresh cooldown. Either way the
// verdict lands as a message in the reviewer-requester direct chat.
func (s *Service) DecideVerification(ctx context.Context, reviewerID, requesterID string, approved bool) (*VerificationResult, error) {
	if requesterID == reviewerID {
		return nil, errs.NewError(errs.ErrVerifySelf)
	}

	result := &VerificationResult{ReviewerID: reviewerID}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		reviewer, err := q.GetUserByID(ctx, reviewerID)
		if err != nil {
			if db.IsNotFound(err) {
				return errs.NewError(errs.ErrUserNotFound)
			}
			return err
		}
		if !IsVerificationAdmin(reviewer.UsernameLower) {
			return errs.NewError(errs.ErrVerifyAdminOnly)
		}

		requester, err := q.GetUserByID(ctx, requesterID)
		if err != nil {
			if db.IsNotFound(err) {
				return errs.NewError(errs.ErrUserNotFound)
			}
			return err
		}

		now := time.Now().UTC()
		var blockedUntil *time.Time
		if approved {
			if err := q.SetUserVerified(ctx, requesterID, true); err != nil {
				return err
			}
			if err := q.SetVerifyBlockedUntil(ctx, requesterID, nil); err != nil {
				return err
			}
		} else {
			until := now.Add(VerificationCooldown)
			blockedUntil = &until
			if err := q.SetVerifyBlockedUntil(ctx, requesterID, blockedUntil); err != nil {
				return err
			}
		}

		result.Requester, err = q.GetUserByID(ctx, requesterID)
		if err != nil {
			return err
		}

		chatID, err := ensureDirectChat(ctx, q, reviewerID, requesterID)
		if err != nil {
			return err
		}
		result.ChatID = chatID

		msg := &db.Message{
			ChatID:   chatID,
			SenderID: reviewerID,
			Body:     NewVerifyDecision(requester, reviewer, approved, blockedUntil, now),
			Type:     db.MessageTypeText,
		}
		if err := q.InsertMessage(ctx, msg); err != nil {
			return err
		}
		result.Message = messageFromRow(msg)

		summary := BuildSummary(msg.Type, msg.Body)
		if err := q.UpdateChatPreview(ctx, chatID, &summary, &reviewerID, &msg.CreatedAt); err != nil {
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

// findReviewer resolves the active reviewer account, preferring the handles
// earlier in verificationAdmins.
func findReviewer(ctx context.Context, q *db.Queries) (*db.User, error) {
	for _, admin := range verificationAdmins {
		reviewer, err := q.GetUserByUsernameLower(ctx, admin)
		if err == nil {
			return reviewer, nil
		}
		if !db.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, errs.NewError(errs.ErrReviewerNotFound)
}

// ensureDirectChat resolves the direct chat between two users inside an open
// transaction, creating the row and both memberships if needed.
func ensureDirectChat(ctx context.Context, q *db.Queries, userA, userB string) (string, error) {
	key := DirectKey(userA, userB)
	row, _, err := q.InsertChatOrFetch(ctx, &db.Chat{
		ID:       newChatID(),
		Type:     db.ChatTypeDirect,
		DedupKey: &key,
	})
	if err != nil {
		return "", err
	}

	if _, err := q.AddMember(ctx, row.ID, userA, db.RoleMember); err != nil {
		return "", err
	}
	if _, err := q.AddMember(ctx, row.ID, userB, db.RoleMember); err != nil {
		return "", err
	}
	return row.ID, nil
}
