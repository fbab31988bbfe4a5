package jwt

import (
	"context"
	"net/http"
	"strings"

	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/logx"
	"bekgram/internal/pkg/resp"
)

// Define Context Key for storing the Payload struct, preventing key collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey is the key used to store the parsed jwt.Payload (user identity) in the request Context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// Authenticator requires a valid Bearer token on every request it wraps.
// It injects the Payload into the Context on success and responds with
// 401 Unauthenticated when the token is missing, malformed, or expired.
func Authenticator(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			payload, err := ParseToken(strings.TrimSpace(parts[1]), secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided", "error", err)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext safely extracts the authenticated Payload from the request Context.
// Behind Authenticator it never returns nil; on unauthenticated routes a nil return
// means the user is anonymous.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}

// UserID returns the authenticated user id from the request Context, or "" when anonymous.
func UserID(r *http.Request) string {
	payload := GetPayloadFromContext(r)
	if payload == nil {
		return ""
	}
	return payload.UserID
}
