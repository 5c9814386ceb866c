package handler

import (
	"context"

	"socialhub/internal/app/chat"
	"socialhub/internal/app/social"
	"socialhub/internal/configs"
	"socialhub/internal/pkg/auth/jwt"
)

// SocialStore is the read side of the social graph used by the REST endpoints.
// Writes that must reach live connections go through the chat dispatcher instead.
type SocialStore interface {
	Ping(ctx context.Context) error
	GetUser(ctx context.Context, userID int64) (*social.User, error)
	GetFriends(ctx context.Context, userID int64) ([]social.User, error)
	SearchUsers(ctx context.Context, userID int64, query string, limit int) ([]social.SearchResult, error)
	PendingRequests(ctx context.Context, userID int64) ([]social.Friendship, error)
	SentRequests(ctx context.Context, userID int64) ([]social.Friendship, error)
	ConversationPreviews(ctx context.Context, userID int64) ([]social.ConversationPreview, error)
	ChatHistory(ctx context.Context, userID, friendID int64, limit int) ([]social.Message, error)
	UnreadMessageCount(ctx context.Context, userID int64) (int64, error)
	Notifications(ctx context.Context, userID int64, limit int) ([]social.Notification, error)
	UnreadNotificationCount(ctx context.Context, userID int64) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID int64) error
}

type AppDeps struct {
	Manager  *chat.Manager
	Config   *configs.AppConfig
	Store    SocialStore
	Verifier jwt.TokenVerifier
}
