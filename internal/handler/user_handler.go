package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bekgram/internal/app/chat"
	"bekgram/internal/app/db"
	"bekgram/internal/app/realtime"
	"bekgram/internal/app/user"
	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/handle"
	"bekgram/internal/pkg/req"
	"bekgram/internal/pkg/resp"
)

// searchResultLimit caps user directory hits per query.
const searchResultLimit = 30

// HandleSearchUsers finds accounts by username prefix, excluding the caller.
func HandleSearchUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
		if q == "" {
			resp.RespondSuccess(w, r, map[string]any{"users": []*user.User{}})
			return
		}

		rows, err := deps.DB.SearchUsers(r.Context(), q, searchResultLimit)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		callerID := jwt.UserID(r)
		users := make([]*user.User, 0, len(rows))
		for _, row := range rows {
			if row.ID == callerID {
				continue
			}
			users = append(users, user.FromRow(row))
		}

		resp.RespondSuccess(w, r, map[string]any{"users": users})
	}
}

// HandleGetUser returns one account by id.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := deps.DB.GetUserByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			resp.RespondAppError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": user.FromRow(row)})
	}
}

type SetVerifiedInput struct {
	Username   string `json:"username"`
	IsVerified bool   `json:"isVerified"`
}

// HandleSetVerified lets a verification admin grant or revoke the badge
// directly, outside the request workflow. Granting also clears any cooldown.
func HandleSetVerified(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SetVerifiedInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		usernameLower := handle.Normalize(input.Username)
		if !handle.Valid(usernameLower) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		caller, err := deps.DB.GetUserByID(r.Context(), jwt.UserID(r))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		if !chat.IsVerificationAdmin(caller.UsernameLower) {
			resp.RespondError(w, r, errs.NewError(errs.ErrVerifyAdminOnly))
			return
		}

		target, err := deps.DB.GetUserByUsernameLower(r.Context(), usernameLower)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			resp.RespondAppError(w, r, err)
			return
		}

		err = db.RunInTx(r.Context(), deps.Pool, func(q *db.Queries) error {
			if err := q.SetUserVerified(r.Context(), target.ID, input.IsVerified); err != nil {
				return err
			}
			if input.IsVerified {
				return q.SetVerifyBlockedUntil(r.Context(), target.ID, nil)
			}
			return nil
		})
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		refreshed, err := deps.DB.GetUserByID(r.Context(), target.ID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		broadcastProfileChange(deps, refreshed)
		resp.RespondSuccess(w, r, map[string]any{"user": user.FromRow(refreshed)})
	}
}

// HandleVerificationRequest submits the caller's profile for review as a
// message in the direct chat with the reviewer account.
func HandleVerificationRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := deps.Chat.RequestVerification(r.Context(), jwt.UserID(r))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		fanOutNewMessage(deps, result.ChatID, result.ParticipantIDs, result.Message)

		resp.RespondCreated(w, r, map[string]any{
			"chatId":     result.ChatID,
			"reviewerId": result.ReviewerID,
		})
	}
}

type VerificationDecisionInput struct {
	RequesterID string `json:"requesterId"`
	Approve     bool   `json:"approve"`
}

// HandleVerificationDecision applies a reviewer's verdict and delivers it as
// a message in the reviewer-requester direct chat.
func HandleVerificationDecision(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input VerificationDecisionInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		requesterID := strings.TrimSpace(input.RequesterID)
		if requesterID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		result, err := deps.Chat.DecideVerification(r.Context(), jwt.UserID(r), requesterID, input.Approve)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		fanOutNewMessage(deps, result.ChatID, result.ParticipantIDs, result.Message)
		broadcastProfileChange(deps, result.Requester)

		resp.RespondSuccess(w, r, map[string]any{
			"user": user.FromRow(result.Requester),
		})
	}
}

// broadcastProfileChange nudges every connected session to refetch u after a
// verification change, reusing the presence event clients already handle.
func broadcastProfileChange(deps *AppDeps, u *db.User) {
	lastSeen := time.Now().UTC()
	if u.LastSeen != nil {
		lastSeen = *u.LastSeen
	}
	deps.Hub.Broadcast(realtime.PresenceUpdate(u.ID, u.IsOnline, lastSeen))
}

// fanOutNewMessage notifies every participant's sessions about the chat
// change and the new ledger row, plus the chat channel itself.
func fanOutNewMessage(deps *AppDeps, chatID string, participantIDs []string, message *chat.Message) {
	if message == nil {
		return
	}
	at := time.Now().UTC()
	deps.Hub.ToUsers(participantIDs, realtime.ChatUpdated(chatID, at))
	deps.Hub.ToUsers(participantIDs, realtime.MessageNew(message))
	deps.Hub.ToChat(chatID, realtime.MessageNew(message))
}
