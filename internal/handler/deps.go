package handler

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"bekgram/internal/app/chat"
	"bekgram/internal/app/db"
	"bekgram/internal/app/realtime"
	"bekgram/internal/app/storage"
	"bekgram/internal/configs"
)

// AppDeps bundles the shared dependencies injected into every handler.
type AppDeps struct {
	Config  *configs.AppConfig
	Pool    *pgxpool.Pool
	DB      *db.Queries
	Chat    *chat.Service
	Hub     *realtime.Hub
	Storage storage.Service
}

// newAccountID allocates an opaque row identifier.
func newAccountID() string {
	return uuid.NewString()
}
