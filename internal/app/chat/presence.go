package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"socialhub/internal/app/social"
	"socialhub/internal/app/user"
	"socialhub/internal/pkg/logx"
	"socialhub/internal/pkg/metrics"
)

const (
	breakerMaxRequests      = 1
	breakerInterval         = time.Minute
	breakerTimeout          = 30 * time.Second
	breakerFailureThreshold = 5
)

// Presence derives online/offline transitions from registry occupancy, persists them
// and tells online friends.
type Presence struct {
	registry *Registry
	router   *Router
	store    SocialGraph
	breaker  *gobreaker.CircuitBreaker[struct{}]
	locks    *keyedMutex

	mu        sync.Mutex
	published map[int64]social.PresenceStatus

	logger zerolog.Logger
}

// NewPresence returns a Presence engine over the given registry and router.
func NewPresence(registry *Registry, router *Router, store SocialGraph) *Presence {
	logger := logx.WithComponent("presence")

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "presence-store",
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed.")
		},
	})

	return &Presence{
		registry:  registry,
		router:    router,
		store:     store,
		breaker:   breaker,
		locks:     newKeyedMutex(),
		published: make(map[int64]social.PresenceStatus),
		logger:    logger,
	}
}

// Status returns the live status of userID.
func (p *Presence) Status(userID int64) social.PresenceStatus {
	if p.registry.IsOnline(userID) {
		return social.StatusOnline
	}
	return social.StatusOffline
}

// Sync brings the published status of identity in line with the registry.
// Calls for one user are serialised; a call that finds nothing to change returns early,
// so interleaved connect and disconnect edges settle on the registry's final state.
func (p *Presence) Sync(ctx context.Context, identity user.Identity) {
	unlock := p.locks.Lock(identity.UserID)
	defer unlock()

	want := p.Status(identity.UserID)

	p.mu.Lock()
	current, ok := p.published[identity.UserID]
	p.mu.Unlock()
	if !ok {
		current = social.StatusOffline
	}

	if want == current {
		return
	}

	p.persist(ctx, identity.UserID, want)

	p.mu.Lock()
	if want == social.StatusOnline {
		p.published[identity.UserID] = want
	} else {
		delete(p.published, identity.UserID)
	}
	p.mu.Unlock()

	metrics.PresenceTransitions.WithLabelValues(string(want)).Inc()
	p.logger.Info().Int64("user_id", identity.UserID).Str("status", string(want)).Msg("Presence changed.")

	p.fanout(ctx, identity, want)
}

// persist writes status through the breaker. Failures are logged and swallowed.
func (p *Presence) persist(ctx context.Context, userID int64, status social.PresenceStatus) {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.store.UpsertPresence(ctx, userID, status)
	})
	if err != nil {
		metrics.PresencePersistFailures.Inc()
		p.logger.Warn().Err(err).Int64("user_id", userID).Str("status", string(status)).Msg("Failed to persist presence.")
	}
}

func (p *Presence) fanout(ctx context.Context, identity user.Identity, status social.PresenceStatus) {
	friends, err := p.store.GetFriends(ctx, identity.UserID)
	if err != nil {
		p.logger.Warn().Err(err).Int64("user_id", identity.UserID).Msg("Failed to load friends for status fan-out.")
		return
	}

	ev := statusEvent(identity, status)
	for _, friend := range friends {
		if !p.registry.IsOnline(friend.ID) {
			continue
		}
		p.router.Emit(PersonalRoom(friend.ID), ev)
	}
}

// Introduce tells two new friends about each other when both are online.
func (p *Presence) Introduce(a, b user.Identity) {
	if !p.registry.IsOnline(a.UserID) || !p.registry.IsOnline(b.UserID) {
		return
	}
	p.router.Emit(PersonalRoom(a.UserID), statusEvent(b, social.StatusOnline))
	p.router.Emit(PersonalRoom(b.UserID), statusEvent(a, social.StatusOnline))
}

func statusEvent(identity user.Identity, status social.PresenceStatus) Event {
	return Event{
		Name: EventFriendStatusChanged,
		Data: StatusPayload{
			UserID:      identity.UserID,
			Status:      status,
			DisplayName: identity.DisplayName,
			AvatarURL:   identity.AvatarURL,
		},
	}
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*keyedLock)}
}

// Lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
