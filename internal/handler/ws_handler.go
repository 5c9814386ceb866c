/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

HandleWebSocket rate limits the attempt, verifies the credential before upgrading, then
hands the connection to a chat session and runs its pumps.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"socialhub/internal/app/chat"
	"socialhub/internal/pkg/auth/jwt"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/limiter"
	"socialhub/internal/pkg/logx"
	"socialhub/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(manager *chat.Manager, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		session := manager.NewSession()
		identity, err := session.Authenticate(r.Context(), jwt.ExtractToken(r))
		if err != nil {
			resp.RespondError(w, r, errs.FromError(err, errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket", "user_id", identity.UserID)
			session.Close(r.Context())
			return
		}

		// outlives the hijacked request
		ctx := context.WithoutCancel(r.Context())

		client := chat.NewClient(conn, session)
		if err := session.Establish(ctx, client); err != nil {
			logx.Error(err, "Failed to establish session", "user_id", identity.UserID)
			_ = conn.Close()
			return
		}

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", string(session.ID()), "user_id", identity.UserID)

		client.ReadPump(ctx)
	}
}
