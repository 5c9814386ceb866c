package db

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"socialhub/internal/app/social"
	"socialhub/internal/app/user"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/logx"
	"socialhub/internal/pkg/metrics"
)

// AvatarSigner turns a stored avatar key into a URL clients can fetch.
type AvatarSigner interface {
	SignAvatar(ctx context.Context, key string) string
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Option configures a Store.
type Option func(*Store)

// WithAvatarSigner makes the store return signed avatar URLs instead of raw keys.
func WithAvatarSigner(signer AvatarSigner) Option {
	return func(s *Store) {
		s.avatars = signer
	}
}

// Store is the Postgres implementation of the social graph.
type Store struct {
	pool    *pgxpool.Pool
	avatars AvatarSigner
	logger  zerolog.Logger
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:   pool,
		logger: logx.WithComponent("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const userColumns = `u.id, u.email, u.display_name, COALESCE(u.avatar_url, ''), u.created_at`

const friendshipSelect = `
	SELECT f.id, f.requester_id, f.addressee_id, f.status, f.created_at,
	       r.id, r.email, r.display_name, COALESCE(r.avatar_url, ''), r.created_at,
	       a.id, a.email, a.display_name, COALESCE(a.avatar_url, ''), a.created_at
	FROM friendships f
	JOIN users r ON r.id = f.requester_id
	JOIN users a ON a.id = f.addressee_id`

const messageColumns = `m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const notificationColumns = `id, user_id, type, title, content, related_user_id, related_message_id, is_read, created_at`

func scanUser(row scanner) (social.User, error) {
	var u social.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.CreatedAt)
	return u, err
}

func scanFriendship(row scanner) (social.Friendship, error) {
	var (
		f      social.Friendship
		status string
	)
	err := row.Scan(
		&f.ID, &f.RequesterID, &f.AddresseeID, &status, &f.CreatedAt,
		&f.Requester.ID, &f.Requester.Email, &f.Requester.DisplayName, &f.Requester.AvatarURL, &f.Requester.CreatedAt,
		&f.Addressee.ID, &f.Addressee.Email, &f.Addressee.DisplayName, &f.Addressee.AvatarURL, &f.Addressee.CreatedAt,
	)
	f.Status = social.FriendshipStatus(status)
	return f, err
}

func scanNotification(row scanner) (social.Notification, error) {
	var (
		n   social.Notification
		typ string
	)
	err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Content, &n.RelatedUserID, &n.RelatedMessageID, &n.IsRead, &n.CreatedAt)
	n.Type = social.NotificationType(typ)
	return n, err
}

func (s *Store) signAvatar(ctx context.Context, key string) string {
	if s.avatars == nil || key == "" {
		return key
	}
	return s.avatars.SignAvatar(ctx, key)
}

func (s *Store) signUser(ctx context.Context, u *social.User) {
	u.AvatarURL = s.signAvatar(ctx, u.AvatarURL)
}

func (s *Store) signFriendship(ctx context.Context, f *social.Friendship) {
	s.signUser(ctx, &f.Requester)
	s.signUser(ctx, &f.Addressee)
}

// GetUser loads one account by id.
func (s *Store) GetUser(ctx context.Context, userID int64) (*social.User, error) {
	defer metrics.ObserveStore("get_user", time.Now())

	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1 AND u.is_active`, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	s.signUser(ctx, &u)
	return &u, nil
}

// LoadIdentity resolves the identity attached to a verified token subject.
func (s *Store) LoadIdentity(ctx context.Context, userID int64) (user.Identity, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return user.Identity{}, err
	}
	return u.Identity(), nil
}

// GetFriends returns every user with an accepted friendship with userID.
func (s *Store) GetFriends(ctx context.Context, userID int64) ([]social.User, error) {
	defer metrics.ObserveStore("get_friends", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		WHERE (f.requester_id = $1 OR f.addressee_id = $1) AND f.status = 'accepted'
		ORDER BY u.display_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("get friends of %d: %w", userID, err)
	}

	friends, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (social.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan friends of %d: %w", userID, err)
	}
	for i := range friends {
		s.signUser(ctx, &friends[i])
	}
	return friends, nil
}

// SearchUsers finds active users other than userID whose email or display name contains
// query, annotated with their relationship to userID.
func (s *Store) SearchUsers(ctx context.Context, userID int64, query string, limit int) ([]social.SearchResult, error) {
	defer metrics.ObserveStore("search_users", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`,
		       CASE
		           WHEN f.status = 'accepted' THEN 'friends'
		           WHEN f.status = 'pending' AND f.requester_id = $1 THEN 'requested'
		           WHEN f.status = 'pending' THEN 'incoming'
		           ELSE 'none'
		       END
		FROM users u
		LEFT JOIN friendships f
		       ON (f.requester_id = $1 AND f.addressee_id = u.id) OR (f.requester_id = u.id AND f.addressee_id = $1)
		WHERE u.id <> $1 AND u.is_active AND (u.email ILIKE $2 OR u.display_name ILIKE $2)
		ORDER BY u.display_name
		LIMIT $3`, userID, "%"+likeEscaper.Replace(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search users for %d: %w", userID, err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (social.SearchResult, error) {
		var (
			r        social.SearchResult
			relation string
		)
		err := row.Scan(&r.ID, &r.Email, &r.DisplayName, &r.AvatarURL, &r.CreatedAt, &relation)
		r.Relationship = social.Relationship(relation)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan search results for %d: %w", userID, err)
	}
	for i := range results {
		s.signUser(ctx, &results[i].User)
	}
	return results, nil
}

// SendFriendRequest creates a pending request from requesterID to the account behind
// email and records a friend_request notification for the addressee.
// A previously declined pair is reopened in place.
func (s *Store) SendFriendRequest(ctx context.Context, requesterID int64, email string) (*social.FriendRequestResult, error) {
	defer metrics.ObserveStore("send_friend_request", time.Now())

	var friendship social.Friendship
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		target, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1 AND u.is_active`, email))
		if err != nil {
			if IsNoRows(err) {
				return errs.NewError(errs.ErrUserNotFound)
			}
			return fmt.Errorf("resolve email: %w", err)
		}
		if target.ID == requesterID {
			return errs.NewError(errs.ErrSelfFriendRequest)
		}

		var (
			existingID int64
			status     string
		)
		err = tx.QueryRow(ctx, `
			SELECT id, status FROM friendships
			WHERE (requester_id = $1 AND addressee_id = $2) OR (requester_id = $2 AND addressee_id = $1)
			FOR UPDATE`, requesterID, target.ID).Scan(&existingID, &status)

		var requestID int64
		switch {
		case IsNoRows(err):
			err = tx.QueryRow(ctx, `
				INSERT INTO friendships (requester_id, addressee_id, status)
				VALUES ($1, $2, 'pending')
				RETURNING id`, requesterID, target.ID).Scan(&requestID)
			if err != nil {
				if IsUniqueViolation(err) {
					return errs.NewError(errs.ErrFriendRequestExists)
				}
				return fmt.Errorf("insert friendship: %w", err)
			}
		case err != nil:
			return fmt.Errorf("lookup friendship: %w", err)
		case social.FriendshipStatus(status) == social.FriendshipPending:
			return errs.NewError(errs.ErrFriendRequestExists)
		case social.FriendshipStatus(status) == social.FriendshipAccepted:
			return errs.NewError(errs.ErrAlreadyFriends)
		default:
			requestID = existingID
			_, err = tx.Exec(ctx, `
				UPDATE friendships
				SET requester_id = $2, addressee_id = $3, status = 'pending', created_at = NOW(), updated_at = NOW()
				WHERE id = $1`, existingID, requesterID, target.ID)
			if err != nil {
				return fmt.Errorf("reopen friendship: %w", err)
			}
		}

		_, err = insertNotification(ctx, tx, social.NewNotification{
			UserID:        target.ID,
			Type:          social.NotifyFriendRequest,
			Title:         "New Friend Request",
			Content:       "You have a new friend request",
			RelatedUserID: &requesterID,
		})
		if err != nil {
			return err
		}

		friendship, err = scanFriendship(tx.QueryRow(ctx, friendshipSelect+` WHERE f.id = $1`, requestID))
		if err != nil {
			return fmt.Errorf("load friendship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.signFriendship(ctx, &friendship)
	return &social.FriendRequestResult{
		Success:    true,
		Message:    "Friend request sent successfully",
		Friendship: &friendship,
	}, nil
}

// RespondToFriendRequest settles a pending request addressed to userID.
func (s *Store) RespondToFriendRequest(ctx context.Context, userID, requestID int64, action social.FriendAction) (*social.FriendRequestResult, error) {
	defer metrics.ObserveStore("respond_friend_request", time.Now())

	if !action.Valid() {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	var friendship social.Friendship
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var requesterID int64
		err := tx.QueryRow(ctx, `
			SELECT requester_id FROM friendships
			WHERE id = $1 AND addressee_id = $2 AND status = 'pending'
			FOR UPDATE`, requestID, userID).Scan(&requesterID)
		if err != nil {
			if IsNoRows(err) {
				return errs.NewError(errs.ErrFriendRequestNotFound)
			}
			return fmt.Errorf("lookup friend request: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE friendships SET status = $2, updated_at = NOW() WHERE id = $1`,
			requestID, string(action.Status())); err != nil {
			return fmt.Errorf("update friend request: %w", err)
		}

		if action == social.ActionAccept {
			_, err = insertNotification(ctx, tx, social.NewNotification{
				UserID:        requesterID,
				Type:          social.NotifyFriendAccepted,
				Title:         "Friend Request Accepted",
				Content:       "Your friend request has been accepted",
				RelatedUserID: &userID,
			})
			if err != nil {
				return err
			}
		}

		friendship, err = scanFriendship(tx.QueryRow(ctx, friendshipSelect+` WHERE f.id = $1`, requestID))
		if err != nil {
			return fmt.Errorf("load friendship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.signFriendship(ctx, &friendship)
	return &social.FriendRequestResult{
		Success:    true,
		Message:    fmt.Sprintf("Friend request %sed successfully", action),
		Friendship: &friendship,
	}, nil
}

// PendingRequests lists requests waiting for userID's answer.
func (s *Store) PendingRequests(ctx context.Context, userID int64) ([]social.Friendship, error) {
	defer metrics.ObserveStore("pending_requests", time.Now())
	return s.listFriendships(ctx, friendshipSelect+` WHERE f.addressee_id = $1 AND f.status = 'pending' ORDER BY f.created_at DESC`, userID)
}

// SentRequests lists requests userID sent that are still pending.
func (s *Store) SentRequests(ctx context.Context, userID int64) ([]social.Friendship, error) {
	defer metrics.ObserveStore("sent_requests", time.Now())
	return s.listFriendships(ctx, friendshipSelect+` WHERE f.requester_id = $1 AND f.status = 'pending' ORDER BY f.created_at DESC`, userID)
}

func (s *Store) listFriendships(ctx context.Context, query string, userID int64) ([]social.Friendship, error) {
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships of %d: %w", userID, err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (social.Friendship, error) {
		return scanFriendship(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan friendships of %d: %w", userID, err)
	}
	for i := range list {
		s.signFriendship(ctx, &list[i])
	}
	return list, nil
}

// PersistMessage stores a direct message and returns it with the sender hydrated.
func (s *Store) PersistMessage(ctx context.Context, senderID, receiverID int64, content string) (*social.Message, error) {
	defer metrics.ObserveStore("persist_message", time.Now())

	var (
		msg    social.Message
		avatar string
	)
	err := s.pool.QueryRow(ctx, `
		WITH m AS (
			INSERT INTO direct_messages (sender_id, receiver_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, sender_id, receiver_id, content, is_read, created_at
		)
		SELECT `+messageColumns+`, u.id, u.display_name, COALESCE(u.avatar_url, '')
		FROM m JOIN users u ON u.id = m.sender_id`, senderID, receiverID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.IsRead, &msg.CreatedAt,
			&msg.Sender.ID, &msg.Sender.DisplayName, &avatar)
	if err != nil {
		return nil, fmt.Errorf("persist message %d -> %d: %w", senderID, receiverID, err)
	}

	msg.Sender.AvatarURL = s.signAvatar(ctx, avatar)
	return &msg, nil
}

// ConversationPreviews returns one entry per friend of userID with the latest message
// exchanged and the number of unread messages from that friend, most recent first.
// Friends without messages are ordered by account age.
func (s *Store) ConversationPreviews(ctx context.Context, userID int64) ([]social.ConversationPreview, error) {
	defer metrics.ObserveStore("conversation_previews", time.Now())

	rows, err := s.pool.Query(ctx, `
		WITH friends AS (
			SELECT CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END AS friend_id
			FROM friendships f
			WHERE (f.requester_id = $1 OR f.addressee_id = $1) AND f.status = 'accepted'
		)
		SELECT `+userColumns+`,
		       lm.id, lm.sender_id, lm.receiver_id, lm.content, lm.is_read, lm.created_at,
		       (SELECT COUNT(*) FROM direct_messages d
		        WHERE d.sender_id = u.id AND d.receiver_id = $1 AND NOT d.is_read)
		FROM friends fr
		JOIN users u ON u.id = fr.friend_id
		LEFT JOIN LATERAL (
			SELECT `+messageColumns+`
			FROM direct_messages m
			WHERE ((m.sender_id = $1 AND m.receiver_id = u.id) OR (m.sender_id = u.id AND m.receiver_id = $1))
			  AND NOT m.is_deleted
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON true
		ORDER BY COALESCE(lm.created_at, u.created_at) DESC, u.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("conversation previews of %d: %w", userID, err)
	}

	previews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (social.ConversationPreview, error) {
		var (
			p          social.ConversationPreview
			msgID      *int64
			senderID   *int64
			receiverID *int64
			content    *string
			isRead     *bool
			sentAt     *time.Time
		)
		err := row.Scan(
			&p.Friend.ID, &p.Friend.Email, &p.Friend.DisplayName, &p.Friend.AvatarURL, &p.Friend.CreatedAt,
			&msgID, &senderID, &receiverID, &content, &isRead, &sentAt,
			&p.UnreadCount,
		)
		if err != nil || msgID == nil {
			return p, err
		}
		p.LastMessage = &social.Message{
			ID:         *msgID,
			SenderID:   *senderID,
			ReceiverID: *receiverID,
			Content:    *content,
			IsRead:     *isRead,
			CreatedAt:  *sentAt,
			Sender:     social.UserSummary{ID: *senderID},
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan conversation previews of %d: %w", userID, err)
	}

	for i := range previews {
		p := &previews[i]
		s.signUser(ctx, &p.Friend)
		if p.LastMessage != nil && p.LastMessage.SenderID == p.Friend.ID {
			p.LastMessage.Sender = p.Friend.Summary()
		}
	}
	return previews, nil
}

// ChatHistory returns up to limit non-deleted messages between userID and friendID,
// oldest first.
func (s *Store) ChatHistory(ctx context.Context, userID, friendID int64, limit int) ([]social.Message, error) {
	defer metrics.ObserveStore("chat_history", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`, u.id, u.display_name, COALESCE(u.avatar_url, '')
		FROM direct_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE ((m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1))
		  AND NOT m.is_deleted
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $3`, userID, friendID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat history %d/%d: %w", userID, friendID, err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (social.Message, error) {
		var m social.Message
		err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt,
			&m.Sender.ID, &m.Sender.DisplayName, &m.Sender.AvatarURL)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan chat history %d/%d: %w", userID, friendID, err)
	}

	slices.Reverse(messages)
	for i := range messages {
		messages[i].Sender.AvatarURL = s.signAvatar(ctx, messages[i].Sender.AvatarURL)
	}
	return messages, nil
}

// MarkMessagesRead flags every unread message from senderID to receiverID and
// returns how many changed.
func (s *Store) MarkMessagesRead(ctx context.Context, senderID, receiverID int64) (int64, error) {
	defer metrics.ObserveStore("mark_messages_read", time.Now())

	tag, err := s.pool.Exec(ctx, `
		UPDATE direct_messages SET is_read = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND NOT is_read`, senderID, receiverID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read %d -> %d: %w", senderID, receiverID, err)
	}
	return tag.RowsAffected(), nil
}

// UnreadMessageCount counts unread messages addressed to userID.
func (s *Store) UnreadMessageCount(ctx context.Context, userID int64) (int64, error) {
	defer metrics.ObserveStore("unread_message_count", time.Now())

	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM direct_messages
		WHERE receiver_id = $1 AND NOT is_read AND NOT is_deleted`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("unread count of %d: %w", userID, err)
	}
	return n, nil
}

// UpsertPresence records the status of userID in a single statement.
func (s *Store) UpsertPresence(ctx context.Context, userID int64, status social.PresenceStatus) error {
	defer metrics.ObserveStore("upsert_presence", time.Now())

	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_status (user_id, status, last_seen)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET status = EXCLUDED.status, last_seen = EXCLUDED.last_seen`,
		userID, string(status))
	if err != nil {
		return fmt.Errorf("upsert presence of %d: %w", userID, err)
	}
	return nil
}

// CreateNotification stores a notification for n.UserID.
func (s *Store) CreateNotification(ctx context.Context, n social.NewNotification) (*social.Notification, error) {
	defer metrics.ObserveStore("create_notification", time.Now())
	return insertNotification(ctx, s.pool, n)
}

func insertNotification(ctx context.Context, q querier, n social.NewNotification) (*social.Notification, error) {
	created, err := scanNotification(q.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, title, content, related_user_id, related_message_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+notificationColumns,
		n.UserID, string(n.Type), n.Title, n.Content, n.RelatedUserID, n.RelatedMessageID))
	if err != nil {
		return nil, fmt.Errorf("insert %s notification for %d: %w", n.Type, n.UserID, err)
	}
	return &created, nil
}

// Notifications returns the newest notifications of userID.
func (s *Store) Notifications(ctx context.Context, userID int64, limit int) ([]social.Notification, error) {
	defer metrics.ObserveStore("notifications", time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("notifications of %d: %w", userID, err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (social.Notification, error) {
		return scanNotification(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan notifications of %d: %w", userID, err)
	}
	return list, nil
}

// UnreadNotificationCount counts unread notifications of userID.
func (s *Store) UnreadNotificationCount(ctx context.Context, userID int64) (int64, error) {
	defer metrics.ObserveStore("unread_notification_count", time.Now())

	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("unread notifications of %d: %w", userID, err)
	}
	return n, nil
}

// MarkNotificationRead flags one notification owned by userID as read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	defer metrics.ObserveStore("mark_notification_read", time.Now())

	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", notificationID, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewError(errs.ErrNotificationNotFound)
	}
	return nil
}
