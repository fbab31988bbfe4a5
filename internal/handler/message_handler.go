package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bekgram/internal/app/chat"
	"bekgram/internal/app/realtime"
	"bekgram/internal/app/storage"
	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/logx"
	"bekgram/internal/pkg/req"
	"bekgram/internal/pkg/resp"
)

// HandleListMessages returns the chat's newest messages in chronological
// order. Opening a chat implies reading it, so the unread sweep runs right
// after the page loads.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := jwt.UserID(r)
		chatID := chi.URLParam(r, "chatId")

		var limit int32
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 32); err == nil {
				limit = int32(n)
			}
		}

		messages, err := deps.Chat.ListMessages(r.Context(), userID, chatID, limit)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		read, err := deps.Chat.MarkRead(r.Context(), userID, chatID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		fanOutReadSweep(deps, userID, read)

		resp.RespondSuccess(w, r, map[string]any{"messages": messages})
	}
}

type SendMessageInput struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// HandleSendMessage appends a message to the chat's ledger and notifies the
// roster.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SendMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.Type == "" {
			input.Type = "text"
		}

		chatID := chi.URLParam(r, "chatId")
		result, err := deps.Chat.Append(r.Context(), jwt.UserID(r), chatID, input.Text, input.Type)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		fanOutNewMessage(deps, chatID, result.ParticipantIDs, result.Message)
		resp.RespondCreated(w, r, map[string]any{"message": result.Message})
	}
}

// HandleDeleteMessage removes one of the caller's own messages. Media
// messages also release their stored object; the ledger row is already gone,
// so a failed release only logs.
func HandleDeleteMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatId")
		messageID := chi.URLParam(r, "messageId")

		result, err := deps.Chat.DeleteMessage(r.Context(), jwt.UserID(r), chatID, messageID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		releaseMediaObject(r.Context(), deps, result.Message)

		deleted := realtime.MessageDeleted(chatID, result.Message.ID)
		deps.Hub.ToUsers(result.ParticipantIDs, deleted)
		deps.Hub.ToChat(chatID, deleted)
		deps.Hub.ToUsers(result.ParticipantIDs, realtime.ChatUpdated(chatID, result.Message.CreatedAt))

		resp.RespondSuccess(w, r, map[string]any{"messageId": result.Message.ID})
	}
}

// HandleMarkRead stamps every unread incoming message in the chat as read.
func HandleMarkRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := jwt.UserID(r)
		result, err := deps.Chat.MarkRead(r.Context(), userID, chi.URLParam(r, "chatId"))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		fanOutReadSweep(deps, userID, result)
		resp.RespondSuccess(w, r, result)
	}
}

// releaseMediaObject deletes the stored object behind a deleted media
// message. Non-media messages and URLs outside our bucket are left alone.
func releaseMediaObject(ctx context.Context, deps *AppDeps, message *chat.Message) {
	switch message.Type {
	case storage.KindImage, storage.KindVideo, storage.KindVoice:
	default:
		return
	}

	key, ok := storage.ObjectKeyFromURL(deps.Config.S3PublicBaseURL, message.Text)
	if !ok {
		return
	}
	if err := deps.Storage.Delete(ctx, key); err != nil {
		logx.Warn("Media object left behind after message delete", "key", key)
	}
}

// fanOutReadSweep tells the reader their unread badge changed and, when
// anything was actually stamped, delivers receipts to the chat channel and
// to each sender whose messages were seen.
func fanOutReadSweep(deps *AppDeps, readerID string, result *chat.ReadResult) {
	deps.Hub.ToUser(readerID, realtime.ChatUpdated(result.ChatID, result.At))

	if result.Count == 0 {
		return
	}

	receipt := realtime.MessageRead(result.ChatID, readerID, result.Count, result.At)
	deps.Hub.ToChat(result.ChatID, receipt)
	for _, senderID := range result.SenderIDs {
		deps.Hub.ToUser(senderID, realtime.ChatUpdated(result.ChatID, result.At))
		deps.Hub.ToUser(senderID, receipt)
	}
}
