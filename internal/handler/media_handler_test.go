package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bekgram/internal/app/chat"
	"bekgram/internal/app/db"
	"bekgram/internal/app/realtime"
	"bekgram/internal/configs"
	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/errs"
)

// recordingStore is an in-memory stand-in for the S3 service that remembers
// every key it was asked to store or remove.
type recordingStore struct {
	baseURL string
	uploads []string
	deletes []string
}

func (s *recordingStore) Upload(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	s.uploads = append(s.uploads, key)
	return s.baseURL + "/" + key, nil
}

func (s *recordingStore) Delete(_ context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	return nil
}

// newMediaTestDeps wires handler deps over a real database (skipped without
// TEST_DATABASE_URL) and a recording media store.
func newMediaTestDeps(t *testing.T) (*AppDeps, *recordingStore) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := db.NewPool(dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	queries := db.New(pool)
	store := &recordingStore{baseURL: "https://cdn.example.com/bekgram"}
	deps := &AppDeps{
		Config:  &configs.AppConfig{S3PublicBaseURL: store.baseURL},
		Pool:    pool,
		DB:      queries,
		Chat:    chat.NewService(pool),
		Hub:     realtime.NewHub(queries, queries),
		Storage: store,
	}
	return deps, store
}

func newMediaTestUser(t *testing.T, q *db.Queries, prefix string) *db.User {
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

// authedJSONRequest builds a request the way the router would deliver it:
// chi URL params resolved and the jwt payload already in the context.
func authedJSONRequest(t *testing.T, method, target, userID string, params map[string]string, payload any) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	r := httptest.NewRequest(method, target, &body)
	r.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, jwt.ContextAuthPayloadKey, &jwt.Payload{UserID: userID})
	return r.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) int {
	t.Helper()

	var envelope struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if data != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Code
}

func uploadInput(kind, content string) UploadMediaInput {
	return UploadMediaInput{
		Kind: kind,
		Data: base64.StdEncoding.EncodeToString([]byte(content)),
	}
}

// A send rejected after the bytes landed must take the stored object back out.
func TestUploadMediaCleansUpRejectedSend(t *testing.T) {
	deps, store := newMediaTestDeps(t)
	ctx := context.Background()
	alice := newMediaTestUser(t, deps.DB, "alice")
	bob := newMediaTestUser(t, deps.DB, "bobby")
	eve := newMediaTestUser(t, deps.DB, "evela")

	direct, err := deps.Chat.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	chatID := direct.Chat.ID

	w := httptest.NewRecorder()
	r := authedJSONRequest(t, http.MethodPost, "/api/chats/"+chatID+"/upload",
		eve.ID, map[string]string{"chatId": chatID}, uploadInput("image", "fakepng"))
	HandleUploadMedia(deps)(w, r)

	code := decodeEnvelope(t, w, nil)
	assert.Equal(t, errs.ErrNotChatMember, code)

	require.Len(t, store.uploads, 1)
	assert.Equal(t, store.uploads, store.deletes)

	// The rejected send left no trace in the ledger either.
	messages, err := deps.Chat.ListMessages(ctx, alice.ID, chatID, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

// Deleting a media message releases its object from the store.
func TestDeleteMessageReleasesMediaObject(t *testing.T) {
	deps, store := newMediaTestDeps(t)
	ctx := context.Background()
	alice := newMediaTestUser(t, deps.DB, "alice")

	saved, err := deps.Chat.GetOrCreateSaved(ctx, alice.ID)
	require.NoError(t, err)
	chatID := saved.Chat.ID

	w := httptest.NewRecorder()
	r := authedJSONRequest(t, http.MethodPost, "/api/chats/"+chatID+"/upload",
		alice.ID, map[string]string{"chatId": chatID}, uploadInput("voice", "fakeogg"))
	HandleUploadMedia(deps)(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Message struct {
			ID string `json:"id"`
		} `json:"message"`
	}
	require.Zero(t, decodeEnvelope(t, w, &created))
	require.Len(t, store.uploads, 1)
	require.Empty(t, store.deletes)

	w = httptest.NewRecorder()
	r = authedJSONRequest(t, http.MethodDelete, "/api/chats/"+chatID+"/messages/"+created.Message.ID,
		alice.ID, map[string]string{"chatId": chatID, "messageId": created.Message.ID}, nil)
	HandleDeleteMessage(deps)(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, store.uploads, store.deletes)
}
