package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bekgram/internal/app/storage"
	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/logx"
	"bekgram/internal/pkg/req"
	"bekgram/internal/pkg/resp"
)

type UploadMediaInput struct {
	Kind     string `json:"kind"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// HandleUploadMedia accepts an inline base64 media payload, stores the object,
// and appends a message carrying the object URL. The message type mirrors the
// media kind so previews can label it.
func HandleUploadMedia(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req.LimitBody(w, r, req.MaxMediaBodySize)

		var input UploadMediaInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !storage.ValidKind(input.Kind) {
			resp.RespondError(w, r, errs.NewError(errs.ErrMediaKindInvalid))
			return
		}

		data, declaredMime, err := storage.DecodeBase64Payload(input.Data)
		if err != nil || len(data) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrMediaEmpty))
			return
		}
		if int64(len(data)) > storage.MaxMediaBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMediaTooLarge, storage.MaxMediaBytes>>20))
			return
		}

		mimeType := input.MimeType
		if mimeType == "" {
			mimeType = declaredMime
		}

		chatID := chi.URLParam(r, "chatId")
		ext := storage.ResolveExtension(input.Kind, mimeType, input.FileName)
		key := fmt.Sprintf("chat/%s/%s-%s.%s", chatID, input.Kind, uuid.NewString(), ext)

		objectURL, err := deps.Storage.Upload(r.Context(), key, mimeType, bytes.NewReader(data))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		result, err := deps.Chat.Append(r.Context(), jwt.UserID(r), chatID, objectURL, input.Kind)
		if err != nil {
			// The send was rejected after the bytes landed; take the object
			// back out so nothing unreferenced accumulates in the bucket.
			if delErr := deps.Storage.Delete(r.Context(), key); delErr != nil {
				logx.Warn("Orphaned media object after rejected send", "key", key)
			}
			resp.RespondAppError(w, r, err)
			return
		}

		fanOutNewMessage(deps, chatID, result.ParticipantIDs, result.Message)
		resp.RespondCreated(w, r, map[string]any{"message": result.Message})
	}
}
