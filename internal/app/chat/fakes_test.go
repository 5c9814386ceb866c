package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"socialhub/internal/app/social"
	"socialhub/internal/app/user"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/logx"
)

func init() {
	logx.Discard()
}

// fakeConn records every frame it is sent.
type fakeConn struct {
	mu      sync.Mutex
	frames  [][]byte
	fail    bool
	closed  bool
	onClose func()
}

func (c *fakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errors.New("broken pipe")
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	already := c.closed
	c.closed = true
	hook := c.onClose
	c.mu.Unlock()

	if !already && hook != nil {
		go hook()
	}
	return nil
}

func (c *fakeConn) setFail(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fail
}

type wireFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *fakeConn) received() []wireFrame {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]wireFrame, 0, len(c.frames))
	for _, raw := range c.frames {
		var f wireFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			panic(err)
		}
		out = append(out, f)
	}
	return out
}

// events returns the data of every received frame named name.
func (c *fakeConn) events(name string) []json.RawMessage {
	var out []json.RawMessage
	for _, f := range c.received() {
		if f.Event == name {
			out = append(out, f.Data)
		}
	}
	return out
}

func (c *fakeConn) count(name string) int {
	return len(c.events(name))
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// fakeVerifier accepts tokens of the form "token-<id>" for known identities.
type fakeVerifier struct {
	mu    sync.Mutex
	ids   map[string]user.Identity
	calls atomic.Int64
}

func (v *fakeVerifier) add(identity user.Identity) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	token := fmt.Sprintf("token-%d", identity.UserID)
	v.ids[token] = identity
	return token
}

func (v *fakeVerifier) Verify(_ context.Context, credential string) (user.Identity, error) {
	v.calls.Add(1)

	v.mu.Lock()
	defer v.mu.Unlock()

	identity, ok := v.ids[credential]
	if !ok {
		return user.Identity{}, errors.New("bad token")
	}
	return identity, nil
}

// fakeStore is an in-memory SocialGraph that counts every call.
type fakeStore struct {
	mu sync.Mutex

	calls         map[string]int
	friends       map[int64][]social.User
	users         map[string]social.User
	presence      map[int64][]social.PresenceStatus
	messages      []social.Message
	notifications []social.NewNotification
	requests      map[int64]*social.Friendship

	upsertErr  error
	persistErr error
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calls:    make(map[string]int),
		friends:  make(map[int64][]social.User),
		users:    make(map[string]social.User),
		presence: make(map[int64][]social.PresenceStatus),
		requests: make(map[int64]*social.Friendship),
	}
}

func (s *fakeStore) record(op string) {
	s.calls[op]++
}

func (s *fakeStore) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *fakeStore) resetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *fakeStore) befriend(a, b user.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.friends[a.UserID] = append(s.friends[a.UserID], social.User{ID: b.UserID, Email: b.Email, DisplayName: b.DisplayName})
	s.friends[b.UserID] = append(s.friends[b.UserID], social.User{ID: a.UserID, Email: a.Email, DisplayName: a.DisplayName})
}

func (s *fakeStore) addUser(identity user.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[identity.Email] = social.User{ID: identity.UserID, Email: identity.Email, DisplayName: identity.DisplayName}
}

func (s *fakeStore) presenceOf(userID int64) []social.PresenceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]social.PresenceStatus(nil), s.presence[userID]...)
}

func (s *fakeStore) GetFriends(_ context.Context, userID int64) ([]social.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("GetFriends")
	return append([]social.User(nil), s.friends[userID]...), nil
}

func (s *fakeStore) SendFriendRequest(_ context.Context, requesterID int64, email string) (*social.FriendRequestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("SendFriendRequest")
	target, ok := s.users[email]
	if !ok {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if target.ID == requesterID {
		return nil, errs.NewError(errs.ErrSelfFriendRequest)
	}

	s.nextID++
	f := &social.Friendship{
		ID:          s.nextID,
		RequesterID: requesterID,
		AddresseeID: target.ID,
		Status:      social.FriendshipPending,
		CreatedAt:   time.Now(),
		Addressee:   target,
	}
	for _, u := range s.users {
		if u.ID == requesterID {
			f.Requester = u
		}
	}
	s.requests[f.ID] = f
	return &social.FriendRequestResult{Success: true, Message: "Friend request sent successfully", Friendship: f}, nil
}

func (s *fakeStore) RespondToFriendRequest(_ context.Context, userID, requestID int64, action social.FriendAction) (*social.FriendRequestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("RespondToFriendRequest")
	f, ok := s.requests[requestID]
	if !ok || f.AddresseeID != userID || f.Status != social.FriendshipPending {
		return nil, errs.NewError(errs.ErrFriendRequestNotFound)
	}
	f.Status = action.Status()
	return &social.FriendRequestResult{Success: true, Message: "Friend request " + string(action) + "ed successfully", Friendship: f}, nil
}

func (s *fakeStore) PersistMessage(_ context.Context, senderID, receiverID int64, content string) (*social.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("PersistMessage")
	if s.persistErr != nil {
		return nil, s.persistErr
	}
	s.nextID++
	msg := social.Message{
		ID:         s.nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *fakeStore) MarkMessagesRead(_ context.Context, senderID, receiverID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("MarkMessagesRead")
	var n int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) UpsertPresence(_ context.Context, userID int64, status social.PresenceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("UpsertPresence")
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.presence[userID] = append(s.presence[userID], status)
	return nil
}

func (s *fakeStore) CreateNotification(_ context.Context, n social.NewNotification) (*social.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("CreateNotification")
	s.notifications = append(s.notifications, n)
	s.nextID++
	return &social.Notification{ID: s.nextID, UserID: n.UserID, Type: n.Type, Title: n.Title, Content: n.Content}, nil
}

// harness wires a Manager over fakes.
type harness struct {
	m        *Manager
	store    *fakeStore
	verifier *fakeVerifier
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	store := newFakeStore()
	verifier := &fakeVerifier{ids: make(map[string]user.Identity)}
	return &harness{
		m:        NewManager(verifier, store, opts...),
		store:    store,
		verifier: verifier,
	}
}

// connect runs a full handshake for identity and returns the session and its transport.
func (h *harness) connect(t *testing.T, identity user.Identity) (*Session, *fakeConn) {
	t.Helper()

	token := h.verifier.add(identity)
	h.store.addUser(identity)

	s := h.m.NewSession()
	_, err := s.Authenticate(context.Background(), token)
	require.NoError(t, err)

	conn := &fakeConn{}
	conn.onClose = func() { s.Close(context.Background()) }
	require.NoError(t, s.Establish(context.Background(), conn))
	require.Equal(t, StateActive, s.State())

	return s, conn
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"event": event, "data": data})
	require.NoError(t, err)
	return raw
}

func decodeData[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

var (
	alice = user.Identity{UserID: 1, Email: "alice@example.com", DisplayName: "Alice"}
	bob   = user.Identity{UserID: 2, Email: "bob@example.com", DisplayName: "Bob"}
	carol = user.Identity{UserID: 3, Email: "carol@example.com", DisplayName: "Carol"}
)
