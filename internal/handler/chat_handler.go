package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bekgram/internal/app/chat"
	"bekgram/internal/app/realtime"
	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/req"
	"bekgram/internal/pkg/resp"
)

// groupSearchLimit caps public-group directory hits per query.
const groupSearchLimit = 30

// HandleListChats returns the caller's chats, newest activity first.
func HandleListChats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := deps.Chat.List(r.Context(), jwt.UserID(r))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"chats": chats})
	}
}

// HandleGetChat returns one chat from the caller's point of view.
func HandleGetChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := deps.Chat.Get(r.Context(), jwt.UserID(r), chi.URLParam(r, "chatId"))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"chat": view})
	}
}

// HandleCreateSavedChat resolves the caller's saved-messages chat, creating
// it on first use.
func HandleCreateSavedChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := deps.Chat.GetOrCreateSaved(r.Context(), jwt.UserID(r))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		respondChatResult(w, r, deps, result)
	}
}

type CreateDirectChatInput struct {
	PeerID string `json:"peerId"`
}

// HandleCreateDirectChat resolves the direct chat with a peer, creating it on
// first contact. Repeat calls converge on the same chat.
func HandleCreateDirectChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateDirectChatInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		peerID := strings.TrimSpace(input.PeerID)
		if peerID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		result, err := deps.Chat.GetOrCreateDirect(r.Context(), jwt.UserID(r), peerID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		respondChatResult(w, r, deps, result)
	}
}

type CreateGroupInput struct {
	Title           string   `json:"title"`
	GroupUsername   string   `json:"groupUsername"`
	Bio             string   `json:"bio"`
	IsPublic        bool     `json:"isPublic"`
	MemberUsernames []string `json:"memberUsernames"`
}

// HandleCreateGroup creates a group chat owned by the caller and enrolls the
// requested members.
func HandleCreateGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateGroupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Chat.CreateGroup(r.Context(), jwt.UserID(r), chat.CreateGroupParams{
			Title:           input.Title,
			GroupUsername:   input.GroupUsername,
			Bio:             input.Bio,
			IsPublic:        input.IsPublic,
			MemberUsernames: input.MemberUsernames,
		})
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		fanOutMessages(deps, result.Chat.ID, result.ParticipantIDs, result.Messages)
		resp.RespondCreated(w, r, map[string]any{"chat": result.Chat})
	}
}

// HandleSearchGroups finds public groups by handle prefix or title substring.
func HandleSearchGroups(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := deps.Chat.SearchGroups(r.Context(), jwt.UserID(r), r.URL.Query().Get("q"), groupSearchLimit)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"groups": groups})
	}
}

// HandleJoinGroup enrolls the caller into a public group. Rejoining is a
// no-op and skips the fan-out.
func HandleJoinGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := jwt.UserID(r)
		result, err := deps.Chat.JoinGroup(r.Context(), userID, chi.URLParam(r, "chatId"))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		if result.Joined {
			fanOutMessages(deps, result.ChatID, result.ParticipantIDs, result.Messages)
		}

		view, err := deps.Chat.Get(r.Context(), userID, result.ChatID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"chat": view, "joined": result.Joined})
	}
}

// HandleListMembers returns the chat roster, owner first.
func HandleListMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := deps.Chat.ListMembers(r.Context(), jwt.UserID(r), chi.URLParam(r, "chatId"))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]any{"members": members})
	}
}

type AddMembersInput struct {
	MemberUsernames []string `json:"memberUsernames"`
}

// HandleAddMembers enrolls usernames into a group. Owner only.
func HandleAddMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input AddMembersInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Chat.AddMembers(r.Context(), jwt.UserID(r), chi.URLParam(r, "chatId"), input.MemberUsernames)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		fanOutMessages(deps, result.ChatID, result.ParticipantIDs, result.Messages)
		resp.RespondSuccess(w, r, map[string]any{"addedCount": result.AddedCount})
	}
}

// HandleRemoveMember expels a member from a group. Owner only. The removed
// user's sessions are told the chat is gone; everyone else sees the event.
func HandleRemoveMember(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := deps.Chat.RemoveMember(r.Context(),
			jwt.UserID(r), chi.URLParam(r, "chatId"), chi.URLParam(r, "memberId"))
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		// The roster snapshot still includes the removed member, so their
		// open sessions learn about the expulsion too.
		fanOutMessages(deps, result.ChatID, result.ParticipantIDs, result.Messages)
		deps.Hub.ToUser(result.RemovedID, realtime.ChatDeleted(result.ChatID))

		resp.RespondSuccess(w, r, map[string]any{"removedId": result.RemovedID})
	}
}

// HandleDeleteChat removes a chat with its ledger and roster.
func HandleDeleteChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := chi.URLParam(r, "chatId")
		participantIDs, err := deps.Chat.Delete(r.Context(), jwt.UserID(r), chatID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		deps.Hub.ToUsers(participantIDs, realtime.ChatDeleted(chatID))
		deps.Hub.ToChat(chatID, realtime.ChatDeleted(chatID))

		resp.RespondSuccess(w, r, map[string]any{"chatId": chatID})
	}
}

// respondChatResult replies with the chat view, using 201 when a new chat row
// was created and notifying the roster in that case.
func respondChatResult(w http.ResponseWriter, r *http.Request, deps *AppDeps, result *chat.ChatResult) {
	if result.Created {
		deps.Hub.ToUsers(result.ParticipantIDs, realtime.ChatUpdated(result.Chat.ID, time.Now().UTC()))
		resp.RespondCreated(w, r, map[string]any{"chat": result.Chat})
		return
	}
	resp.RespondSuccess(w, r, map[string]any{"chat": result.Chat})
}

// fanOutMessages delivers a batch of ledger rows written by one roster
// mutation: one chat:updated per participant, then each row to both the
// participants and the chat channel.
func fanOutMessages(deps *AppDeps, chatID string, participantIDs []string, messages []*chat.Message) {
	if len(messages) == 0 {
		return
	}
	deps.Hub.ToUsers(participantIDs, realtime.ChatUpdated(chatID, time.Now().UTC()))
	for _, msg := range messages {
		deps.Hub.ToUsers(participantIDs, realtime.MessageNew(msg))
		deps.Hub.ToChat(chatID, realtime.MessageNew(msg))
	}
}
