/*
Package chat implements the conversation engine: chat identity and
deduplication, the message ledger with its denormalized previews,
membership and role enforcement, read-receipt propagation, and the
verification workflow that rides on top of direct chats.

Every mutation runs inside a single transaction and returns the fan-out
targets alongside the result, so transports notify sessions only after
the state is durably committed.
*/
package chat

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"bekgram/internal/app/db"
)

// MaxMembersPerOp caps how many members one request may add to a group.
const MaxMembersPerOp = 100

// Service is the conversation engine. All methods are safe for concurrent use.
type Service struct {
	pool *pgxpool.Pool
	q    *db.Queries
}

// NewService builds the engine over a connection pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool, q: db.New(pool)}
}

// newChatID allocates a chat identifier. IDs are opaque to clients.
func newChatID() string {
	return uuid.NewString()
}
