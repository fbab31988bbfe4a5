package chat

import (
	"context"
	"time"

	"bekgram/internal/app/db"
)

// ReadResult reports a read-receipt sweep: how many messages were stamped,
// when, and which senders should be told their messages were seen.
type ReadResult struct {
	ChatID    string    `json:"chatId"`
	Count     int64     `json:"count"`
	At        time.Time `json:"at"`
	SenderIDs []string  `json:"-"`
}

// MarkRead stamps every unread incoming message in the chat and advances the
// caller's read cursor, all in one transaction. The affected senders come
// back so receipts reach exactly the users whose messages were seen.
func (s *Service) MarkRead(ctx context.Context, userID, chatID string) (*ReadResult, error) {
	result := &ReadResult{ChatID: chatID, At: time.Now().UTC()}

	err := db.RunInTx(ctx, s.pool, func(q *db.Queries) error {
		if _, err := s.requireMembership(ctx, q, chatID, userID); err != nil {
			return err
		}

		senderIDs, err := q.DistinctUnreadSenders(ctx, chatID, userID)
		if err != nil {
			return err
		}
		result.SenderIDs = senderIDs

		result.Count, err = q.MarkMessagesRead(ctx, chatID, userID, result.At)
		if err != nil {
			return err
		}

		return q.SetLastReadAt(ctx, chatID, userID, result.At)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
