package storage

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"socialhub/internal/pkg/logx"
)

// AvatarSigner turns stored avatar keys into short-lived download URLs.
type AvatarSigner struct {
	storage StorageService
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewAvatarSigner returns a signer issuing URLs valid for ttl.
func NewAvatarSigner(storage StorageService, ttl time.Duration) *AvatarSigner {
	return &AvatarSigner{
		storage: storage,
		ttl:     ttl,
		logger:  logx.WithComponent("avatar-signer"),
	}
}

// SignAvatar returns a fetchable URL for key. Absolute URLs pass through unchanged;
// a key that cannot be signed yields "" so clients fall back to a placeholder.
func (s *AvatarSigner) SignAvatar(ctx context.Context, key string) string {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}

	url, err := s.storage.PresignDownload(ctx, strings.TrimPrefix(key, "/"), s.ttl)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to sign avatar URL.")
		return ""
	}
	return url
}
