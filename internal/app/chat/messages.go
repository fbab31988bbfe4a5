package chat

import (
	"context"
	"strconv"
	"strings"
	"time"

	"bekgram/internal/app/db"
	"bekgram/internal/pkg/errs"
)

// Message listing bounds. Clients may ask for less, never for more.
const (
	DefaultMessageLimit = 300
	MaxMessageLimit     = 1000
)

// MessageResult couples a ledger mutation with its fan-out targets.
type MessageResult struct {
	Message        *Message
	ParticipantIDs []string
}

// Append validates and writes a message to the chat's ledger, updating the
// denormalized preview in the same transaction. Clients may send text,
// stickers, and media-url bodies; membership events are engine-internal.
func (s *Service) Append(ctx context.Context, senderID, chatID, text, msgType string) (*MessageResult, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return nil, errs.NewError(errs.ErrMessageEmpty)
	}

	switch msgType {
	case db.MessageTypeText, db.MessageTypeSticker, db.MessageTypeImage,
		db.MessageTypeVideo, db.MessageTypeVoice:
	default:
		return nil, errs.NewError(errs.ErrMediaKindInvalid)
	}

	result := &MessageResult{}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		chat, err := s.requireMembership(ctx, q, chatID, senderID)
		if err != nil {
			return err
		}

		if err := assertWriteAllowed(ctx, q, chat, senderID); err != nil {
			return err
		}

		msg := &db.Message{
			ChatID:   chatID,
			SenderID: senderID,
			Body:     body,
			Type:     msgType,
		}
		if chat.Type == db.ChatTypeSaved {
			// Saved-messages sends are read the moment they land.
			now := time.Now().UTC()
			msg.ReadAt = &now
		}
		if err := q.InsertMessage(ctx, msg); err != nil {
			return err
		}
		result.Message = messageFromRow(msg)

		summary := BuildSummary(msgType, body)
		if err := q.UpdateChatPreview(ctx, chatID, &summary, &senderID, &msg.CreatedAt); err != nil {
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

// DeleteMessage removes one of the caller's own messages and recomputes the
// chat preview from whatever message is now newest.
func (s *Service) DeleteMessage(ctx context.Context, userID, chatID string, messageID string) (*MessageResult, error) {
	id, err := strconv.ParseInt(messageID, 10, 64)
	if err != nil {
		return nil, errs.NewError(errs.ErrMessageNotFound)
	}

	result := &MessageResult{}

	err = db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		if _, err := s.requireMembership(ctx, q, chatID, userID); err != nil {
			return err
		}

		msg, err := q.GetMessage(ctx, chatID, id)
		if err != nil {
			if db.IsNotFound(err) {
				return errs.NewError(errs.ErrMessageNotFound)
			}
			return err
		}
		if msg.SenderID != userID {
			return errs.NewError(errs.ErrMessageNotOwned)
		}

		if _, err := q.DeleteMessage(ctx, chatID, id); err != nil {
			return err
		}

		if err := refreshPreview(ctx, q, chatID); err != nil {
			return err
		}

		result.Message = messageFromRow(msg)
		result.ParticipantIDs, err = q.ListMemberIDs(ctx, chatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListMessages returns the newest messages in chronological order. The limit
// is clamped to [1, MaxMessageLimit], defaulting to DefaultMessageLimit.
func (s *Service) ListMessages(ctx context.Context, userID, chatID string, limit int32) ([]*Message, error) {
	if _, err := s.requireMembership(ctx, s.q, chatID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}

	rows, err := s.q.ListMessages(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]*Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, messageFromJoinedRow(r))
	}
	return messages, nil
}

// assertWriteAllowed enforces the direct-chat write gate: the peer must
// accept messages. Saved chats and groups are always writable by members.
func assertWriteAllowed(ctx context.Context, q *db.Queries, chat *db.Chat, senderID string) error {
	if chat.Type != db.ChatTypeDirect {
		return nil
	}

	ids, err := q.ListMemberIDs(ctx, chat.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == senderID {
			continue
		}
		peer, err := q.GetUserByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return err
		}
		if !peer.CanReceiveMessages {
			return errs.NewError(errs.ErrWriteBlocked)
		}
	}
	return nil
}

// refreshPreview recomputes the denormalized preview from the newest
// surviving message, clearing it when the ledger is empty.
func refreshPreview(ctx context.Context, q *db.Queries, chatID string) error {
	latest, err := q.GetLatestMessage(ctx, chatID)
	if err != nil {
		if db.IsNotFound(err) {
			return q.UpdateChatPreview(ctx, chatID, nil, nil, nil)
		}
		return err
	}

	summary := BuildSummary(latest.Type, latest.Body)
	return q.UpdateChatPreview(ctx, chatID, &summary, &latest.SenderID, &latest.CreatedAt)
}
