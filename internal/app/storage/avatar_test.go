package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"socialhub/internal/pkg/logx"
)

type fakeStorage struct {
	keys []string
	ttl  time.Duration
	err  error
}

func (f *fakeStorage) PresignDownload(_ context.Context, key string, d time.Duration) (string, error) {
	f.keys = append(f.keys, key)
	f.ttl = d
	if f.err != nil {
		return "", f.err
	}
	return "https://bucket.example.com/" + key + "?X-Amz-Signature=abc", nil
}

func TestSignAvatar(t *testing.T) {
	logx.Discard()

	tests := []struct {
		name    string
		key     string
		err     error
		want    string
		presign bool
	}{
		{name: "empty", key: "", want: ""},
		{name: "absolute", key: "https://gravatar.example.com/a.png", want: "https://gravatar.example.com/a.png"},
		{name: "key", key: "avatars/7.png", want: "https://bucket.example.com/avatars/7.png?X-Amz-Signature=abc", presign: true},
		{name: "leading slash", key: "/avatars/7.png", want: "https://bucket.example.com/avatars/7.png?X-Amz-Signature=abc", presign: true},
		{name: "presign failure", key: "avatars/8.png", err: errors.New("boom"), want: "", presign: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &fakeStorage{err: tt.err}
			signer := NewAvatarSigner(storage, time.Hour)

			assert.Equal(t, tt.want, signer.SignAvatar(context.Background(), tt.key))
			if tt.presign {
				assert.Len(t, storage.keys, 1)
				assert.Equal(t, time.Hour, storage.ttl)
			} else {
				assert.Empty(t, storage.keys)
			}
		})
	}
}
