package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"bekgram/internal/pkg/auth/jwt"
	"bekgram/internal/pkg/errs"
	"bekgram/internal/pkg/limiter"
	"bekgram/internal/pkg/logx"
	"bekgram/internal/pkg/resp"
)

// Per-IP rate limits for the account endpoints. Signup is the most abusable
// surface, so it gets the tightest bucket.
const (
	SignupRate  = 0.05
	SignupBurst = 3
	LoginRate   = 0.5
	LoginBurst  = 5
	WSRate      = 0.5
	WSBurst     = 10
)

// Router sets up the HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware before delegating to the handlers.
func Router(deps *AppDeps) http.Handler {
	signupLimiter := limiter.NewIPRateLimiter(rate.Limit(SignupRate), SignupBurst)
	loginLimiter := limiter.NewIPRateLimiter(rate.Limit(LoginRate), LoginBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Pool.Ping(r.Context()); err != nil {
			logx.Error(err, "Health check failed: database unreachable")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "Bekgram Server",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.With(signupLimiter.Middleware).Post("/signup", HandleSignup(deps))
			auth.With(loginLimiter.Middleware).Post("/login", HandleLogin(deps))

			auth.Group(func(private chi.Router) {
				private.Use(jwt.Authenticator(deps.Config.JWTSecret))
				private.Post("/logout", HandleLogout(deps))
			})
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(jwt.Authenticator(deps.Config.JWTSecret))

			users.Get("/me", HandleMe(deps))
			users.Put("/me", HandleUpdateMe(deps))
			users.Post("/presence", HandlePresence(deps))
			users.Get("/search", HandleSearchUsers(deps))
			users.Put("/verify", HandleSetVerified(deps))
			users.Post("/verification/request", HandleVerificationRequest(deps))
			users.Post("/verification/decision", HandleVerificationDecision(deps))
			users.Get("/{id}", HandleGetUser(deps))
		})

		api.Route("/chats", func(chats chi.Router) {
			chats.Use(jwt.Authenticator(deps.Config.JWTSecret))

			chats.Get("/", HandleListChats(deps))
			chats.Post("/saved", HandleCreateSavedChat(deps))
			chats.Post("/direct", HandleCreateDirectChat(deps))
			chats.Post("/group", HandleCreateGroup(deps))
			chats.Get("/groups/search", HandleSearchGroups(deps))
			chats.Post("/group/{chatId}/join", HandleJoinGroup(deps))

			chats.Route("/{chatId}", func(chat chi.Router) {
				chat.Get("/", HandleGetChat(deps))
				chat.Delete("/", HandleDeleteChat(deps))
				chat.Get("/members", HandleListMembers(deps))
				chat.Post("/group/members", HandleAddMembers(deps))
				chat.Delete("/group/members/{memberId}", HandleRemoveMember(deps))
				chat.Get("/messages", HandleListMessages(deps))
				chat.Post("/messages", HandleSendMessage(deps))
				chat.Delete("/messages/{messageId}", HandleDeleteMessage(deps))
				chat.Post("/read", HandleMarkRead(deps))
				chat.Post("/upload", HandleUploadMedia(deps))
			})
		})
	})

	r.With(wsLimiter.Middleware).Get("/ws", HandleWebSocket(wsUpgrader, deps))

	return r
}
