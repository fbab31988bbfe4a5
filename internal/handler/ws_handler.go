package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"bekgram/internal/app/realtime"
	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/logx"
	"bekgram/internal/pkg/resp"
)

// HandleWebSocket authenticates and upgrades a realtime session. Browsers
// cannot set headers on WebSocket requests, so the token rides a query
// parameter instead of the Authorization header.
//
// ReadPump runs on the handler goroutine on purpose: the request context
// stays alive until the connection drops, so the unregister path can still
// persist the presence edge.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "WebSocket upgrade failed")
			return
		}

		client := realtime.NewClient(deps.Hub, conn, payload.UserID)
		deps.Hub.Register(r.Context(), client)

		go client.WritePump()
		client.ReadPump(r.Context())
	}
}
