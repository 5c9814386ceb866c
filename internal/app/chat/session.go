package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"socialhub/internal/app/user"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/metrics"
)

// closeTimeout bounds the store work done while tearing a session down.
const closeTimeout = 5 * time.Second

// State is a step of the connection lifecycle.
type State int

const (
	StateConnecting State = iota
	StateAuthenticated
	StateRegistered
	StateRoomJoined
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateRegistered:
		return "registered"
	case StateRoomJoined:
		return "room_joined"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session drives one connection from handshake to close.
// Events of one session are handled one at a time by its read loop.
type Session struct {
	id      ConnID
	manager *Manager
	limiter *rate.Limiter

	mu         sync.Mutex
	state      State
	registered bool
	identity   user.Identity
	conn       Conn

	logger zerolog.Logger
}

// ID returns the connection id assigned to the session.
func (s *Session) ID() ConnID {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Identity returns the identity resolved at handshake, if any.
func (s *Session) Identity() user.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.identity
}

// Authenticate verifies the credential presented with the connection attempt.
// An empty credential is rejected without consulting the verifier.
func (s *Session) Authenticate(ctx context.Context, credential string) (user.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnecting {
		return user.Identity{}, errs.NewError(errs.ErrSessionClosed)
	}

	if credential == "" {
		s.state = StateClosed
		s.logger.Info().Msg("Connection rejected: no credential.")
		return user.Identity{}, errs.NewError(errs.ErrUnauthorized)
	}

	identity, err := s.manager.verifier.Verify(ctx, credential)
	if err != nil || !identity.Valid() {
		s.state = StateClosed
		s.logger.Warn().AnErr("verify_error", err).Msg("Connection rejected: credential verification failed.")
		return user.Identity{}, errs.NewError(errs.ErrUnauthorized)
	}

	s.identity = identity
	s.state = StateAuthenticated
	s.logger = s.logger.With().Int64("user_id", identity.UserID).Logger()

	return identity, nil
}

// Establish registers the connection, joins its personal room and publishes presence,
// in that order. On failure nothing of the connection stays registered.
func (s *Session) Establish(ctx context.Context, conn Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthenticated {
		return errs.NewError(errs.ErrUnauthorized)
	}

	m := s.manager
	s.conn = conn

	first, err := m.register(s.id, conn, s.identity)
	if err != nil {
		s.state = StateClosed
		return fmt.Errorf("register %s: %w", s.id, err)
	}
	s.registered = true
	s.state = StateRegistered

	if err := m.router.Join(s.id, PersonalRoom(s.identity.UserID)); err != nil {
		s.teardown(ctx)
		return fmt.Errorf("join personal room: %w", err)
	}
	s.state = StateRoomJoined

	if first {
		m.presence.Sync(ctx, s.identity)
	}

	s.state = StateActive
	s.logger.Info().Msg("Session established.")
	return nil
}

// Close ends the session. It is safe to call in any state and more than once.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed && !s.registered {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	s.teardown(ctx)
	s.logger.Info().Msg("Session closed.")
}

// teardown must be called with mu held.
func (s *Session) teardown(ctx context.Context) {
	s.state = StateClosed
	if !s.registered {
		return
	}
	s.registered = false

	m := s.manager
	defer m.active.Done()

	removed, last, _ := m.registry.Remove(s.id)
	for _, room := range removed.Rooms {
		m.router.Leave(s.id, room)
	}
	if last {
		m.presence.Sync(ctx, s.identity)
	}
}

// HandleFrame decodes one raw inbound frame and handles it. Failures are reported to
// this connection only.
func (s *Session) HandleFrame(ctx context.Context, raw []byte) {
	if _, ok := s.manager.registry.Lookup(s.id); !ok {
		metrics.EventsTotal.WithLabelValues(eventLabel(EventNameOf(raw)), metrics.OutcomeRejected).Inc()
		s.replyError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		metrics.EventsTotal.WithLabelValues(eventLabel(EventNameOf(raw)), metrics.OutcomeRejected).Inc()
		s.replyError(errs.NewError(errs.ErrRateLimitExceeded))
		return
	}

	ev, decodeErr := DecodeInbound(raw)
	if decodeErr != nil {
		metrics.EventsTotal.WithLabelValues(eventLabel(EventNameOf(raw)), metrics.OutcomeRejected).Inc()
		s.replyError(decodeErr)
		return
	}

	s.Handle(ctx, ev)
}

// Handle runs a decoded event on behalf of the connection's owner.
func (s *Session) Handle(ctx context.Context, ev Inbound) {
	actor, ok := s.manager.registry.Lookup(s.id)
	if !ok {
		metrics.EventsTotal.WithLabelValues(ev.EventName(), metrics.OutcomeRejected).Inc()
		s.replyError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	err := s.dispatch(ctx, actor, ev)
	if err != nil {
		metrics.EventsTotal.WithLabelValues(ev.EventName(), metrics.OutcomeFailed).Inc()
		s.logger.Debug().Err(err).Str("event", ev.EventName()).Msg("Event failed.")
		s.replyError(errs.FromError(err, errs.ErrUnknown))
		return
	}
	metrics.EventsTotal.WithLabelValues(ev.EventName(), metrics.OutcomeOK).Inc()
}

func (s *Session) dispatch(ctx context.Context, actor user.Identity, ev Inbound) error {
	m := s.manager
	d := m.dispatcher

	switch e := ev.(type) {
	case SendFriendRequest:
		result, err := d.SendFriendRequest(ctx, actor, e.Email)
		if err != nil {
			return err
		}
		s.reply(Event{Name: EventFriendRequestSent, Data: result})

	case RespondFriendRequest:
		result, err := d.RespondFriendRequest(ctx, actor, e.RequestID, e.Action)
		if err != nil {
			return err
		}
		s.reply(Event{Name: EventFriendRequestUpdated, Data: result})

	case JoinChat:
		room := ChatRoom(actor.UserID, e.FriendID)
		if err := m.router.Join(s.id, room); err != nil {
			return errs.NewError(errs.ErrUnauthorized)
		}
		s.reply(Event{Name: EventJoinedChat, Data: ChatRoomPayload{Room: room, FriendID: e.FriendID}})

	case LeaveChat:
		room := ChatRoom(actor.UserID, e.FriendID)
		m.router.Leave(s.id, room)
		s.reply(Event{Name: EventLeftChat, Data: ChatRoomPayload{Room: room, FriendID: e.FriendID}})

	case SendMessage:
		if _, err := d.SendMessage(ctx, actor, e.ReceiverID, e.Content); err != nil {
			return err
		}

	case MarkMessagesRead:
		receipt, err := d.MarkRead(ctx, actor, e.SenderID)
		if err != nil {
			return err
		}
		s.reply(Event{Name: EventMessagesMarkedRead, Data: receipt})

	default:
		return errs.NewError(errs.ErrUnknownEvent)
	}

	return nil
}

func (s *Session) reply(ev Event) {
	s.manager.router.EmitToConnection(s.id, ev)
}

// replyError writes straight to the transport so unregistered connections are answered too.
func (s *Session) replyError(err *errs.CustomError) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return
	}
	s.manager.router.sendTo(conn, s.id, ErrorEvent(err))
}

// eventLabel keeps metric cardinality bounded to known event names.
func eventLabel(name string) string {
	if _, ok := inboundDecoders[name]; ok {
		return name
	}
	return "unknown"
}
