package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"socialhub/internal/app/social"
	"socialhub/internal/app/user"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/limiter"
	"socialhub/internal/pkg/logx"
)

// CredentialVerifier turns a presented credential into a verified identity.
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (user.Identity, error)
}

// SocialGraph is the slice of the store the realtime core depends on.
// Errors that carry a business code are *errs.CustomError.
type SocialGraph interface {
	GetFriends(ctx context.Context, userID int64) ([]social.User, error)
	SendFriendRequest(ctx context.Context, requesterID int64, email string) (*social.FriendRequestResult, error)
	RespondToFriendRequest(ctx context.Context, userID, requestID int64, action social.FriendAction) (*social.FriendRequestResult, error)
	PersistMessage(ctx context.Context, senderID, receiverID int64, content string) (*social.Message, error)
	MarkMessagesRead(ctx context.Context, senderID, receiverID int64) (int64, error)
	UpsertPresence(ctx context.Context, userID int64, status social.PresenceStatus) error
	CreateNotification(ctx context.Context, n social.NewNotification) (*social.Notification, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithEventLimit caps the inbound event rate of each connection.
// A non-positive perSecond disables the cap.
func WithEventLimit(perSecond float64, burst int) Option {
	return func(m *Manager) {
		m.eventRate = perSecond
		m.eventBurst = burst
	}
}

// Manager owns one instance of every realtime component and hands out sessions.
type Manager struct {
	verifier   CredentialVerifier
	registry   *Registry
	router     *Router
	presence   *Presence
	dispatcher *Dispatcher

	eventRate  float64
	eventBurst int

	// mu orders registrations against Shutdown so active.Add never races active.Wait.
	mu      sync.Mutex
	closing bool
	// active counts established sessions that have not been torn down yet.
	active sync.WaitGroup

	logger zerolog.Logger
}

// NewManager constructs and returns a new Manager instance.
func NewManager(verifier CredentialVerifier, store SocialGraph, opts ...Option) *Manager {
	registry := NewRegistry()
	router := NewRouter(registry)
	presence := NewPresence(registry, router, store)

	m := &Manager{
		verifier:   verifier,
		registry:   registry,
		router:     router,
		presence:   presence,
		dispatcher: NewDispatcher(registry, router, presence, store),
		logger:     logx.WithComponent("manager"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// NewSession starts the lifecycle of a new connection attempt.
func (m *Manager) NewSession() *Session {
	id := ConnID(uuid.NewString())

	var eventLimiter *rate.Limiter
	if m.eventRate > 0 {
		eventLimiter = limiter.NewEventLimiter(m.eventRate, m.eventBurst)
	}

	return &Session{
		id:      id,
		manager: m,
		limiter: eventLimiter,
		state:   StateConnecting,
		logger:  m.logger.With().Str("conn_id", string(id)).Logger(),
	}
}

// register admits a connection into the registry unless shutdown has begun.
// Every successful registration is counted in active.
func (m *Manager) register(id ConnID, conn Conn, identity user.Identity) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closing {
		return false, errs.NewError(errs.ErrSessionClosed)
	}

	first, err := m.registry.Register(id, conn, identity)
	if err != nil {
		return false, err
	}
	m.active.Add(1)
	return first, nil
}

func (m *Manager) Registry() *Registry     { return m.registry }
func (m *Manager) Router() *Router         { return m.router }
func (m *Manager) Presence() *Presence     { return m.presence }
func (m *Manager) Dispatcher() *Dispatcher { return m.dispatcher }

// Shutdown refuses new sessions, closes every live transport and waits until their
// sessions have been torn down or ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	conns := m.registry.transports()
	m.mu.Unlock()

	m.logger.Info().Int("connections", len(conns)).Msg("Shutting down realtime sessions...")

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close transport during shutdown.")
		}
	}

	done := make(chan struct{})
	go func() {
		m.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info().Msg("Manager shutdown complete.")
		return nil
	case <-ctx.Done():
		m.logger.Warn().Int("connections", m.registry.Len()).Msg("Manager shutdown timed out.")
		return ctx.Err()
	}
}
