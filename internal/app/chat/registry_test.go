package chat

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub/internal/app/user"
)

// assertConsistent checks that both registry views describe the same connections.
func assertConsistent(t *testing.T, r *Registry) {
	t.Helper()

	r.mu.RLock()
	defer r.mu.RUnlock()

	buckets := 0
	for userID, conns := range r.byUser {
		assert.NotEmpty(t, conns, "user %d has an empty bucket", userID)
		for id := range conns {
			buckets++
			entry, ok := r.byID[id]
			if assert.True(t, ok, "conn %s in bucket but not in byID", id) {
				assert.Equal(t, userID, entry.identity.UserID)
			}
		}
	}
	assert.Equal(t, len(r.byID), buckets, "every connection must sit in exactly one bucket")
}

func TestRegistryOnlineTracksLiveConnections(t *testing.T) {
	r := NewRegistry()

	first, err := r.Register("c1", &fakeConn{}, alice)
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, r.IsOnline(alice.UserID))

	first, err = r.Register("c2", &fakeConn{}, alice)
	require.NoError(t, err)
	assert.False(t, first)
	assert.ElementsMatch(t, []ConnID{"c1", "c2"}, r.ConnectionsFor(alice.UserID))

	assert.False(t, r.Unregister("c1"), "one connection left")
	assert.True(t, r.IsOnline(alice.UserID))

	assert.True(t, r.Unregister("c2"))
	assert.False(t, r.IsOnline(alice.UserID))
	assert.Empty(t, r.ConnectionsFor(alice.UserID))
	assert.Empty(t, r.OnlineUsers())

	assertConsistent(t, r)
}

func TestRegistryUnregisterUnknownIsNoop(t *testing.T) {
	r := NewRegistry()

	assert.NotPanics(t, func() {
		assert.False(t, r.Unregister("never-registered"))
	})

	_, err := r.Register("c1", &fakeConn{}, alice)
	require.NoError(t, err)
	assert.True(t, r.Unregister("c1"))
	assert.False(t, r.Unregister("c1"), "duplicate disconnect")
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("c1", &fakeConn{}, alice)
	require.NoError(t, err)

	_, err = r.Register("c1", &fakeConn{}, bob)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	identity, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Equal(t, alice.UserID, identity.UserID)
	assert.False(t, r.IsOnline(bob.UserID))
	assertConsistent(t, r)
}

func TestRegistryRemoveReturnsJoinedRooms(t *testing.T) {
	r := NewRegistry()
	router := NewRouter(r)

	_, err := r.Register("c1", &fakeConn{}, alice)
	require.NoError(t, err)
	require.NoError(t, router.Join("c1", PersonalRoom(alice.UserID)))
	require.NoError(t, router.Join("c1", ChatRoom(alice.UserID, bob.UserID)))

	removed, last, found := r.Remove("c1")
	assert.True(t, found)
	assert.True(t, last)
	assert.Equal(t, alice, removed.Identity)
	assert.ElementsMatch(t, []RoomID{"user:1", "chat:1_2"}, removed.Rooms)
}

func TestRegistryConcurrentStorm(t *testing.T) {
	r := NewRegistry()

	const (
		workers = 32
		rounds  = 200
		users   = 4
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(int64(w)<<32 | 7))
			var mine []ConnID

			for i := 0; i < rounds; i++ {
				if len(mine) == 0 || rng.Intn(3) > 0 {
					id := ConnID(fmt.Sprintf("w%d-c%d", w, i))
					identity := user.Identity{UserID: int64(rng.Intn(users) + 1)}
					if _, err := r.Register(id, &fakeConn{}, identity); err == nil {
						mine = append(mine, id)
					}
					continue
				}

				k := rng.Intn(len(mine))
				r.Unregister(mine[k])
				mine = append(mine[:k], mine[k+1:]...)

				// stale duplicate signal
				r.Unregister(ConnID(fmt.Sprintf("w%d-gone-%d", w, i)))
			}

			for _, id := range mine {
				r.Unregister(id)
			}
		}(w)
	}

	wg.Wait()

	assertConsistent(t, r)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.OnlineUsers())
}

func TestRegistryConcurrentStormKeepsViewsConsistent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				select {
				case <-stop:
					return
				default:
				}
				id := ConnID(fmt.Sprintf("w%d-%d", w, i))
				_, _ = r.Register(id, &fakeConn{}, user.Identity{UserID: int64(i%3 + 1)})
				if i%2 == 0 {
					r.Unregister(id)
				}
			}
		}(w)
	}

	for i := 0; i < 50; i++ {
		assertConsistent(t, r)
	}
	close(stop)
	wg.Wait()

	assertConsistent(t, r)
	for _, userID := range r.OnlineUsers() {
		assert.True(t, r.IsOnline(userID))
		assert.NotEmpty(t, r.ConnectionsFor(userID))
	}
}
