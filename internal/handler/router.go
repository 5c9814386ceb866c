/*
Package handler provides the HTTP handlers and routing setup for the socialhub server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"socialhub/internal/pkg/auth/jwt"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/limiter"
	"socialhub/internal/pkg/logx"
	"socialhub/internal/pkg/resp"
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// upgradeLimiter throttles WebSocket upgrades per client IP; the caller owns its lifetime.
func Router(deps *AppDeps, upgradeLimiter *limiter.IPRateLimiter) http.Handler {
	if upgradeLimiter == nil {
		upgradeLimiter = limiter.NewIPRateLimiter(rate.Limit(deps.Config.WSUpgradeRate), deps.Config.WSUpgradeBurst)
	}

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
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
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
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
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Store.Ping(ctx); err != nil {
			logx.Warn("Health check failed to reach the database", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailure))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"status":       "ok",
			"service":      "socialhub",
			"connections":  deps.Manager.Registry().Len(),
			"online_users": len(deps.Manager.Registry().OnlineUsers()),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Verifier))
		api.Use(jwt.RequireIdentity)

		api.Get("/user/profile", HandleGetUserProfile(deps))

		api.Route("/friends", func(friends chi.Router) {
			friends.Get("/", HandleListFriends(deps))
			friends.Get("/search", HandleSearchUsers(deps))
			friends.Post("/request", HandleSendFriendRequest(deps))
			friends.Post("/respond", HandleRespondFriendRequest(deps))
			friends.Get("/requests/pending", HandlePendingRequests(deps))
			friends.Get("/requests/sent", HandleSentRequests(deps))
		})

		api.Route("/chat", func(chat chi.Router) {
			chat.Post("/send", HandleSendMessage(deps))
			chat.Get("/conversations", HandleConversations(deps))
			chat.Get("/history/{friendID}", HandleChatHistory(deps))
			chat.Post("/read/{senderID}", HandleMarkRead(deps))
			chat.Get("/unread-count", HandleUnreadMessageCount(deps))
		})

		api.Route("/notifications", func(n chi.Router) {
			n.Get("/", HandleNotifications(deps))
			n.Get("/unread-count", HandleUnreadNotificationCount(deps))
			n.Post("/{notificationID}/read", HandleMarkNotificationRead(deps))
		})

		api.Get("/presence/online", HandleOnlineFriends(deps))
	})

	r.Get("/ws", HandleWebSocket(deps.Manager, wsUpgrader, upgradeLimiter))

	return r
}
