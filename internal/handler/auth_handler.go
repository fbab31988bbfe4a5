/*
Package handler provides the HTTP handlers and routing setup for the Bekgram server.

This file covers the account surface: signup, login, the authenticated
profile (read and partial update, including inline avatar upload), explicit
presence, and logout.
*/
package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"bekgram/internal/app/chat"
	"bekgram/internal/app/db"
	"bekgram/internal/app/storage"
	"bekgram/internal/app/user"
	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/handle"
	"bekgram/internal/pkg/logx"
	"bekgram/internal/pkg/req"
	"bekgram/internal/pkg/resp"
)

// defaultBio is assigned to accounts that sign up without one.
const defaultBio = "New on Bekgram"

// defaultAvatarURL builds a generated-initials avatar for new accounts.
func defaultAvatarURL(displayName, username string) string {
	label := strings.TrimSpace(displayName)
	if label == "" {
		label = username
	}
	return "https://ui-avatars.com/api/?background=229ED9&color=ffffff&name=" + url.QueryEscape(label)
}

type SignupInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	PhoneNumber string `json:"phoneNumber"`
}

// HandleSignup creates an account together with its saved-messages chat, so
// every user owns a self-chat from the first session.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		usernameLower := handle.Normalize(input.Username)
		if !handle.Valid(usernameLower) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		displayName := strings.TrimSpace(input.DisplayName)
		nameLen := utf8.RuneCountInString(displayName)
		if nameLen < 2 || nameLen > 80 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidDisplayName))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			logx.Error(err, "Failed to hash signup password")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		bio := strings.TrimSpace(input.Bio)
		if bio == "" {
			bio = defaultBio
		}
		var phoneNumber *string
		if phone := strings.TrimSpace(input.PhoneNumber); phone != "" {
			phoneNumber = &phone
		}
		avatarURL := defaultAvatarURL(displayName, usernameLower)

		newUser := &db.User{
			ID:                 newAccountID(),
			Username:           usernameLower,
			UsernameLower:      usernameLower,
			DisplayName:        displayName,
			PasswordHash:       string(hashedPassword),
			AvatarURL:          &avatarURL,
			Bio:                &bio,
			PhoneNumber:        phoneNumber,
			IsVerified:         usernameLower == "asilbek" || usernameLower == "verify",
			CanReceiveMessages: true,
		}

		savedKey := chat.SavedKey(newUser.ID)
		err = db.RunInTx(r.Context(), deps.Pool, func(q *db.Queries) error {
			if err := q.CreateUser(r.Context(), newUser); err != nil {
				if db.IsUniqueViolation(err) {
					return errs.NewError(errs.ErrUsernameTaken, usernameLower)
				}
				return err
			}

			savedChat, _, err := q.InsertChatOrFetch(r.Context(), &db.Chat{
				ID:       newAccountID(),
				Type:     db.ChatTypeSaved,
				DedupKey: &savedKey,
				OwnerID:  &newUser.ID,
			})
			if err != nil {
				return err
			}
			_, err = q.AddMember(r.Context(), savedChat.ID, newUser.ID, db.RoleOwner)
			return err
		})
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		token, err := jwt.GenerateToken(newUser.ID, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to generate signup token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		created, err := deps.DB.GetUserByID(r.Context(), newUser.ID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"token": token,
			"user":  user.FromRow(created),
		})
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a token. A successful login
// also flips the persisted online flag.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		usernameLower := handle.Normalize(input.Username)
		if usernameLower == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		account, err := deps.DB.GetUserByUsernameLower(r.Context(), usernameLower)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			resp.RespondAppError(w, r, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.DB.SetUserOnline(r.Context(), account.ID, true); err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		token, err := jwt.GenerateToken(account.ID, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to generate login token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		refreshed, err := deps.DB.GetUserByID(r.Context(), account.ID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  user.FromRow(refreshed),
		})
	}
}

// HandleMe returns the authenticated account.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := deps.DB.GetUserByID(r.Context(), jwt.UserID(r))
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			resp.RespondAppError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": user.FromRow(account)})
	}
}

// UpdateMeInput is a partial profile update: only fields the client sends
// change, so pointers distinguish "absent" from "set to empty".
type UpdateMeInput struct {
	DisplayName        *string `json:"displayName"`
	Bio                *string `json:"bio"`
	PhoneNumber        *string `json:"phoneNumber"`
	AvatarURL          *string `json:"avatarUrl"`
	CanReceiveMessages *bool   `json:"canReceiveMessages"`

	// AvatarBase64 carries an inline avatar image. When present it wins over
	// AvatarURL.
	AvatarBase64   *string `json:"avatarBase64"`
	AvatarMimeType string  `json:"avatarMimeType"`
	AvatarFileName string  `json:"avatarFileName"`
}

// HandleUpdateMe applies a partial profile update and returns the refreshed
// account.
func HandleUpdateMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req.LimitBody(w, r, req.MaxMediaBodySize)

		var input UpdateMeInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		userID := jwt.UserID(r)
		account, err := deps.DB.GetUserByID(r.Context(), userID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			resp.RespondAppError(w, r, err)
			return
		}

		if input.DisplayName != nil {
			next := strings.TrimSpace(*input.DisplayName)
			n := utf8.RuneCountInString(next)
			if n < 2 || n > 80 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidDisplayName))
				return
			}
			account.DisplayName = next
		}

		if input.Bio != nil {
			next := strings.TrimSpace(*input.Bio)
			if runes := []rune(next); len(runes) > 255 {
				next = string(runes[:255])
			}
			account.Bio = &next
		}

		if input.PhoneNumber != nil {
			next := strings.TrimSpace(*input.PhoneNumber)
			if utf8.RuneCountInString(next) > 32 {
				resp.RespondError(w, r, errs.NewError(errs.ErrProfileFieldInvalid, "phoneNumber"))
				return
			}
			if next == "" {
				account.PhoneNumber = nil
			} else {
				account.PhoneNumber = &next
			}
		}

		if input.AvatarURL != nil {
			next := strings.TrimSpace(*input.AvatarURL)
			if len(next) > 255 {
				resp.RespondError(w, r, errs.NewError(errs.ErrProfileFieldInvalid, "avatarUrl"))
				return
			}
			account.AvatarURL = &next
		}

		if input.CanReceiveMessages != nil {
			account.CanReceiveMessages = *input.CanReceiveMessages
		}

		if input.AvatarBase64 != nil {
			avatarURL, customErr := uploadAvatar(r, deps, userID, *input.AvatarBase64, input.AvatarMimeType, input.AvatarFileName)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			account.AvatarURL = &avatarURL
		}

		if err := deps.DB.UpdateUserProfile(r.Context(), account); err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		refreshed, err := deps.DB.GetUserByID(r.Context(), userID)
		if err != nil {
			resp.RespondAppError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": user.FromRow(refreshed)})
	}
}

// uploadAvatar decodes an inline avatar and stores it, returning the public URL.
func uploadAvatar(r *http.Request, deps *AppDeps, userID, rawBase64, mimeType, fileName string) (string, *errs.CustomError) {
	data, declaredMime, err := storage.DecodeBase64Payload(rawBase64)
	if err != nil {
		return "", errs.NewError(errs.ErrMediaEmpty)
	}
	if len(data) == 0 {
		return "", errs.NewError(errs.ErrMediaEmpty)
	}
	if int64(len(data)) > storage.MaxAvatarBytes {
		return "", errs.NewError(errs.ErrMediaTooLarge, storage.MaxAvatarBytes>>20)
	}

	if mimeType == "" {
		mimeType = declaredMime
	}
	ext := storage.ResolveExtension(storage.KindImage, mimeType, fileName)
	key := fmt.Sprintf("avatars/avatar-%s-%d.%s", userID, time.Now().UnixMilli(), ext)

	avatarURL, err := deps.Storage.Upload(r.Context(), key, mimeType, bytes.NewReader(data))
	if err != nil {
		return "", errs.NewError(errs.ErrFileStorageFailed)
	}
	return avatarURL, nil
}

type PresenceInput struct {
	IsOnline bool `json:"isOnline"`
}

// HandlePresence lets a client force its presence flag, e.g. to appear
// offline while connected. The change is broadcast like any other edge.
func HandlePresence(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PresenceInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		deps.Hub.SetPresence(r.Context(), jwt.UserID(r), input.IsOnline)
		resp.RespondSuccess(w, r, map[string]bool{"ok": true})
	}
}

// HandleLogout flips the account offline. Token invalidation is client-side;
// the server only updates presence.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Hub.SetPresence(r.Context(), jwt.UserID(r), false)
		resp.RespondSuccess(w, r, map[string]bool{"ok": true})
	}
}
