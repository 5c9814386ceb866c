package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub/internal/app/chat"
	"socialhub/internal/app/social"
	"socialhub/internal/configs"
	"socialhub/internal/pkg/auth/jwt"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/limiter"
	"socialhub/internal/pkg/logx"
)

const testSecret = "handler-test-secret"

func init() {
	logx.Discard()
}

// memStore serves both the realtime core and the REST endpoints from memory.
type memStore struct {
	mu sync.Mutex

	pingErr error

	friends       map[int64][]social.User
	conversations map[int64][]social.ConversationPreview
	messages      []social.Message
	historyLimit  int
	notifications map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{
		friends:       make(map[int64][]social.User),
		conversations: make(map[int64][]social.ConversationPreview),
		notifications: make(map[int64]bool),
	}
}

func (s *memStore) Ping(context.Context) error { return s.pingErr }

func (s *memStore) GetUser(_ context.Context, userID int64) (*social.User, error) {
	if userID == 404 {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	return &social.User{ID: userID, DisplayName: "Alice"}, nil
}

func (s *memStore) GetFriends(_ context.Context, userID int64) ([]social.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]social.User(nil), s.friends[userID]...), nil
}

func (s *memStore) SearchUsers(_ context.Context, userID int64, query string, _ int) ([]social.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []social.SearchResult
	for _, f := range s.friends[userID] {
		if strings.Contains(strings.ToLower(f.DisplayName), strings.ToLower(query)) {
			out = append(out, social.SearchResult{User: f, Relationship: social.RelationFriends})
		}
	}
	return out, nil
}

func (s *memStore) PendingRequests(context.Context, int64) ([]social.Friendship, error) {
	return []social.Friendship{}, nil
}

func (s *memStore) SentRequests(context.Context, int64) ([]social.Friendship, error) {
	return []social.Friendship{}, nil
}

func (s *memStore) ConversationPreviews(_ context.Context, userID int64) ([]social.ConversationPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]social.ConversationPreview{}, s.conversations[userID]...), nil
}

func (s *memStore) ChatHistory(_ context.Context, _, _ int64, limit int) ([]social.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyLimit = limit
	return append([]social.Message{}, s.messages...), nil
}

func (s *memStore) UnreadMessageCount(context.Context, int64) (int64, error) {
	return 3, nil
}

func (s *memStore) Notifications(context.Context, int64, int) ([]social.Notification, error) {
	return []social.Notification{}, nil
}

func (s *memStore) UnreadNotificationCount(context.Context, int64) (int64, error) {
	return 0, nil
}

func (s *memStore) MarkNotificationRead(_ context.Context, _, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return errs.NewError(errs.ErrNotificationNotFound)
	}
	s.notifications[id] = true
	return nil
}

func (s *memStore) SendFriendRequest(context.Context, int64, string) (*social.FriendRequestResult, error) {
	return nil, errs.NewError(errs.ErrUserNotFound)
}

func (s *memStore) RespondToFriendRequest(context.Context, int64, int64, social.FriendAction) (*social.FriendRequestResult, error) {
	return nil, errs.NewError(errs.ErrFriendRequestNotFound)
}

func (s *memStore) PersistMessage(_ context.Context, senderID, receiverID int64, content string) (*social.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := social.Message{ID: int64(len(s.messages) + 1), SenderID: senderID, ReceiverID: receiverID, Content: content, CreatedAt: time.Now()}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *memStore) MarkMessagesRead(context.Context, int64, int64) (int64, error) {
	return 0, nil
}

func (s *memStore) UpsertPresence(context.Context, int64, social.PresenceStatus) error {
	return nil
}

func (s *memStore) CreateNotification(_ context.Context, n social.NewNotification) (*social.Notification, error) {
	return &social.Notification{UserID: n.UserID, Type: n.Type}, nil
}

type nopConn struct{}

func (nopConn) Send([]byte) error { return nil }
func (nopConn) Close() error      { return nil }

type testEnv struct {
	handler http.Handler
	store   *memStore
	deps    *AppDeps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	verifier := jwt.NewVerifier(testSecret, nil)
	cfg := &configs.AppConfig{
		Environment:    configs.EnvDevelopment,
		WSUpgradeRate:  100,
		WSUpgradeBurst: 100,
	}
	deps := &AppDeps{
		Manager:  chat.NewManager(verifier, store),
		Config:   cfg,
		Store:    store,
		Verifier: verifier,
	}

	upgrades := limiter.NewIPRateLimiter(100, 100)
	t.Cleanup(upgrades.Stop)

	return &testEnv{handler: Router(deps, upgrades), store: store, deps: deps}
}

func tokenFor(t *testing.T, userID int64, name string) string {
	t.Helper()

	token, err := jwt.GenerateToken(userID, &jwt.Payload{
		Email:       strings.ToLower(name) + "@example.com",
		DisplayName: name,
	}, testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, body.Code)

	env.store.pingErr = fmt.Errorf("connection refused")
	w, body = env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, errs.ErrPersistenceFailure, body.Code)
}

func TestAPIRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/friends/", "/api/chat/unread-count", "/api/notifications/", "/api/presence/online"} {
		t.Run(path, func(t *testing.T) {
			w, body := env.do(t, http.MethodGet, path, "", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, errs.ErrUnauthorized, body.Code)

			w, body = env.do(t, http.MethodGet, path, "forged.token.value", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, errs.ErrUnauthorized, body.Code)
		})
	}
}

func TestListFriendsCarriesLivePresence(t *testing.T) {
	env := newTestEnv(t)
	env.store.friends[1] = []social.User{{ID: 2, DisplayName: "Bob"}, {ID: 3, DisplayName: "Carol"}}

	s := env.deps.Manager.NewSession()
	_, err := s.Authenticate(context.Background(), tokenFor(t, 2, "Bob"))
	require.NoError(t, err)
	require.NoError(t, s.Establish(context.Background(), nopConn{}))

	w, body := env.do(t, http.MethodGet, "/api/friends/", tokenFor(t, 1, "Alice"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var friends []social.FriendWithStatus
	require.NoError(t, json.Unmarshal(body.Data, &friends))
	require.Len(t, friends, 2)
	assert.Equal(t, social.StatusOnline, friends[0].Status)
	assert.Equal(t, social.StatusOffline, friends[1].Status)

	_, body = env.do(t, http.MethodGet, "/api/presence/online", tokenFor(t, 1, "Alice"), "")
	var online []social.FriendWithStatus
	require.NoError(t, json.Unmarshal(body.Data, &online))
	require.Len(t, online, 1)
	assert.Equal(t, int64(2), online[0].ID)
}

func TestSearchUsersShortQuery(t *testing.T) {
	env := newTestEnv(t)
	env.store.friends[1] = []social.User{{ID: 2, DisplayName: "Bob"}}
	token := tokenFor(t, 1, "Alice")

	_, body := env.do(t, http.MethodGet, "/api/friends/search?q=b", token, "")
	assert.JSONEq(t, `[]`, string(body.Data))

	_, body = env.do(t, http.MethodGet, "/api/friends/search?q=bo", token, "")
	var results []social.SearchResult
	require.NoError(t, json.Unmarshal(body.Data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, social.RelationFriends, results[0].Relationship)
	assert.Equal(t, social.StatusOffline, results[0].Status)
}

func TestChatHistoryParams(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, 1, "Alice")

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantLimit int
	}{
		{name: "default limit", path: "/api/chat/history/2", wantLimit: defaultHistoryLimit},
		{name: "explicit limit", path: "/api/chat/history/2?limit=100", wantLimit: 100},
		{name: "limit too large", path: "/api/chat/history/2?limit=101", wantCode: errs.ErrInvalidParams},
		{name: "limit zero", path: "/api/chat/history/2?limit=0", wantCode: errs.ErrInvalidParams},
		{name: "bad friend id", path: "/api/chat/history/bob", wantCode: errs.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.store.historyLimit = 0
			_, body := env.do(t, http.MethodGet, tt.path, token, "")
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantLimit, env.store.historyLimit)
		})
	}
}

func TestSendMessageOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, 1, "Alice")

	w, body := env.do(t, http.MethodPost, "/api/chat/send", token, `{"receiver_id": 2, "content": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errs.ErrMessageContentEmpty, body.Code)

	w, body = env.do(t, http.MethodPost, "/api/chat/send", token, `{"receiver_id": 2, "content": "hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var msg social.Message
	require.NoError(t, json.Unmarshal(body.Data, &msg))
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "Alice", msg.Sender.DisplayName)
}

func TestFriendRequestErrorsOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, 1, "Alice")

	w, body := env.do(t, http.MethodPost, "/api/friends/request", token, `{"email": "nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errs.ErrUserNotFound, body.Code)

	_, body = env.do(t, http.MethodPost, "/api/friends/respond", token, `{"request_id": 1, "action": "maybe"}`)
	assert.Equal(t, errs.ErrInvalidParams, body.Code)
}

func TestMarkNotificationRead(t *testing.T) {
	env := newTestEnv(t)
	env.store.notifications[5] = false
	token := tokenFor(t, 1, "Alice")

	w, _ := env.do(t, http.MethodPost, "/api/notifications/5/read", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.store.notifications[5])

	w, body := env.do(t, http.MethodPost, "/api/notifications/6/read", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errs.ErrNotificationNotFound, body.Code)
}

func TestWebSocketHandshake(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, res, err := websocket.DefaultDialer.Dial(base, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Zero(t, env.deps.Manager.Registry().Len())

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s?%s=%s", base, jwt.CredentialParam, tokenFor(t, 1, "Alice")), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"event": chat.EventJoinChat, "data": map[string]any{"friend_id": 2}}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame struct {
		Event string               `json:"event"`
		Data  chat.ChatRoomPayload `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, chat.EventJoinedChat, frame.Event)
	assert.Equal(t, chat.ChatRoom(1, 2), frame.Data.Room)
	assert.True(t, env.deps.Manager.Registry().IsOnline(1))
}

func TestUserProfile(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/api/user/profile", tokenFor(t, 1, "Alice"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		User           social.User           `json:"user"`
		Status         social.PresenceStatus `json:"status"`
		Connections    int                   `json:"connections"`
		UnreadMessages int64                 `json:"unread_messages"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	assert.Equal(t, int64(1), profile.User.ID)
	assert.Equal(t, social.StatusOffline, profile.Status)
	assert.Zero(t, profile.Connections)
	assert.Equal(t, int64(3), profile.UnreadMessages)

	w, body = env.do(t, http.MethodGet, "/api/user/profile", tokenFor(t, 404, "Ghost"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errs.ErrUserNotFound, body.Code)
}

func TestConversationsCarryLivePresence(t *testing.T) {
	env := newTestEnv(t)
	bob := social.User{ID: 2, DisplayName: "Bob"}
	carol := social.User{ID: 3, DisplayName: "Carol"}
	env.store.conversations[1] = []social.ConversationPreview{
		{
			Friend:      bob,
			LastMessage: &social.Message{ID: 9, SenderID: 2, ReceiverID: 1, Content: "ping", Sender: bob.Summary()},
			UnreadCount: 4,
		},
		{Friend: carol},
	}

	s := env.deps.Manager.NewSession()
	_, err := s.Authenticate(context.Background(), tokenFor(t, 2, "Bob"))
	require.NoError(t, err)
	require.NoError(t, s.Establish(context.Background(), nopConn{}))

	w, body := env.do(t, http.MethodGet, "/api/chat/conversations", tokenFor(t, 1, "Alice"), "")
	require.Equal(t, http.StatusOK, w.Code)

	var previews []social.ConversationPreview
	require.NoError(t, json.Unmarshal(body.Data, &previews))
	require.Len(t, previews, 2)

	assert.Equal(t, int64(2), previews[0].Friend.ID)
	assert.Equal(t, social.StatusOnline, previews[0].Status)
	assert.Equal(t, int64(4), previews[0].UnreadCount)
	require.NotNil(t, previews[0].LastMessage)
	assert.Equal(t, "ping", previews[0].LastMessage.Content)

	assert.Equal(t, social.StatusOffline, previews[1].Status)
	assert.Nil(t, previews[1].LastMessage)

	w, _ = env.do(t, http.MethodGet, "/api/chat/conversations", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
