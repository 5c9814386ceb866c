package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRoomIsCommutative(t *testing.T) {
	pairs := [][2]int64{{1, 2}, {2, 1}, {7, 7}, {10, 3}, {1 << 40, 5}}

	for _, p := range pairs {
		assert.Equal(t, ChatRoom(p[0], p[1]), ChatRoom(p[1], p[0]))
	}

	assert.Equal(t, RoomID("chat:3_10"), ChatRoom(10, 3))
	assert.Equal(t, RoomID("user:42"), PersonalRoom(42))
	assert.NotEqual(t, ChatRoom(1, 23), ChatRoom(12, 3))
}

func TestRouterJoinRequiresRegistration(t *testing.T) {
	r := NewRegistry()
	router := NewRouter(r)

	err := router.Join("ghost", PersonalRoom(1))
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Zero(t, router.RoomCount())
}

func TestRouterJoinLeaveIdempotent(t *testing.T) {
	r := NewRegistry()
	router := NewRouter(r)
	room := ChatRoom(alice.UserID, bob.UserID)

	_, err := r.Register("c1", &fakeConn{}, alice)
	require.NoError(t, err)

	require.NoError(t, router.Join("c1", room))
	require.NoError(t, router.Join("c1", room))
	assert.Equal(t, []ConnID{"c1"}, router.Members(room))

	router.Leave("c1", room)
	router.Leave("c1", room)
	assert.Empty(t, router.Members(room))
	assert.Zero(t, router.RoomCount(), "empty rooms are forgotten")
}

func TestRouterEmit(t *testing.T) {
	r := NewRegistry()
	router := NewRouter(r)
	room := ChatRoom(alice.UserID, bob.UserID)

	good, broken := &fakeConn{}, &fakeConn{}
	broken.setFail(true)

	_, err := r.Register("good", good, alice)
	require.NoError(t, err)
	_, err = r.Register("broken", broken, bob)
	require.NoError(t, err)
	require.NoError(t, router.Join("good", room))
	require.NoError(t, router.Join("broken", room))

	delivered := router.Emit(room, Event{Name: EventMessageReceived, Data: map[string]int{"id": 1}})
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, good.count(EventMessageReceived))
	assert.Equal(t, []ConnID{"good"}, router.Members(room), "failing member is dropped")
	assert.False(t, router.HasUserIn(room, bob.UserID))
	assert.True(t, router.HasUserIn(room, alice.UserID))

	assert.Zero(t, router.Emit(PersonalRoom(99), Event{Name: EventError}))
}

func TestRouterEmitToConnection(t *testing.T) {
	r := NewRegistry()
	router := NewRouter(r)

	conn := &fakeConn{}
	_, err := r.Register("c1", conn, alice)
	require.NoError(t, err)

	assert.True(t, router.EmitToConnection("c1", Event{Name: EventJoinedChat, Data: ChatRoomPayload{Room: "chat:1_2", FriendID: 2}}))
	assert.False(t, router.EmitToConnection("c2", Event{Name: EventJoinedChat}))

	got := decodeData[ChatRoomPayload](t, conn.events(EventJoinedChat)[0])
	assert.Equal(t, ChatRoomPayload{Room: "chat:1_2", FriendID: 2}, got)
}
