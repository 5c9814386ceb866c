package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"socialhub/internal/app/social"
	"socialhub/internal/app/user"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/logx"
)

// Dispatcher runs the social operations: it writes through the store first and only
// then delivers the result through the router.
type Dispatcher struct {
	registry *Registry
	router   *Router
	presence *Presence
	store    SocialGraph
	logger   zerolog.Logger
}

// NewDispatcher wires a Dispatcher.
func NewDispatcher(registry *Registry, router *Router, presence *Presence, store SocialGraph) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		router:   router,
		presence: presence,
		store:    store,
		logger:   logx.WithComponent("dispatcher"),
	}
}

// SendMessage validates, persists and delivers a direct message.
// The returned error is a *errs.CustomError. Delivery problems never fail the call once
// the message is stored.
func (d *Dispatcher) SendMessage(ctx context.Context, sender user.Identity, receiverID int64, content string) (*social.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.NewError(errs.ErrMessageContentEmpty)
	}
	if utf8.RuneCountInString(content) > MaxContentRunes {
		return nil, errs.NewError(errs.ErrMessageContentTooLong)
	}
	if receiverID <= 0 {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	msg, err := d.store.PersistMessage(ctx, sender.UserID, receiverID, content)
	if err != nil {
		return nil, errs.FromError(err, errs.ErrPersistenceFailure)
	}
	if msg.Sender.ID == 0 {
		msg.Sender = social.SummaryOf(sender)
	}

	room := ChatRoom(sender.UserID, receiverID)
	delivered := d.router.Emit(room, Event{Name: EventMessageReceived, Data: msg})

	if !d.router.HasUserIn(room, receiverID) {
		if d.registry.IsOnline(receiverID) {
			d.router.Emit(PersonalRoom(receiverID), Event{
				Name: EventNewMessageNotification,
				Data: MessageNotificationPayload{Message: *msg, Sender: msg.Sender},
			})
		} else {
			d.recordOfflineMessage(ctx, sender, msg)
		}
	}

	d.logger.Debug().
		Int64("message_id", msg.ID).
		Int64("sender_id", sender.UserID).
		Int64("receiver_id", receiverID).
		Int("room_deliveries", delivered).
		Msg("Message dispatched.")

	return msg, nil
}

func (d *Dispatcher) recordOfflineMessage(ctx context.Context, sender user.Identity, msg *social.Message) {
	senderID, messageID := sender.UserID, msg.ID
	_, err := d.store.CreateNotification(ctx, social.NewNotification{
		UserID:           msg.ReceiverID,
		Type:             social.NotifyNewMessage,
		Title:            "New Message",
		Content:          fmt.Sprintf("%s sent you a message", sender.DisplayName),
		RelatedUserID:    &senderID,
		RelatedMessageID: &messageID,
	})
	if err != nil {
		d.logger.Warn().Err(err).Int64("message_id", msg.ID).Msg("Failed to record offline message notification.")
	}
}

// MarkRead marks every unread message from senderID to reader as read.
func (d *Dispatcher) MarkRead(ctx context.Context, reader user.Identity, senderID int64) (ReadReceiptPayload, error) {
	updated, err := d.store.MarkMessagesRead(ctx, senderID, reader.UserID)
	if err != nil {
		return ReadReceiptPayload{}, errs.FromError(err, errs.ErrPersistenceFailure)
	}
	return ReadReceiptPayload{SenderID: senderID, ReceiverID: reader.UserID, Updated: updated}, nil
}

// SendFriendRequest creates a request from actor to the account registered under email
// and pings the addressee when online.
func (d *Dispatcher) SendFriendRequest(ctx context.Context, actor user.Identity, email string) (*social.FriendRequestResult, error) {
	result, err := d.store.SendFriendRequest(ctx, actor.UserID, strings.TrimSpace(email))
	if err != nil {
		return nil, errs.FromError(err, errs.ErrPersistenceFailure)
	}

	if f := result.Friendship; f != nil && d.registry.IsOnline(f.AddresseeID) {
		requester := social.SummaryOf(actor)
		requester.Email = actor.Email
		d.router.Emit(PersonalRoom(f.AddresseeID), Event{
			Name: EventFriendRequestReceived,
			Data: FriendRequestPayload{ID: f.ID, Requester: requester, CreatedAt: f.CreatedAt},
		})
	}

	return result, nil
}

// RespondFriendRequest answers a pending request addressed to actor and tells the requester.
func (d *Dispatcher) RespondFriendRequest(ctx context.Context, actor user.Identity, requestID int64, action social.FriendAction) (*social.FriendRequestResult, error) {
	if !action.Valid() {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	result, err := d.store.RespondToFriendRequest(ctx, actor.UserID, requestID, action)
	if err != nil {
		return nil, errs.FromError(err, errs.ErrPersistenceFailure)
	}

	f := result.Friendship
	if f == nil {
		return result, nil
	}

	if d.registry.IsOnline(f.RequesterID) {
		d.router.Emit(PersonalRoom(f.RequesterID), Event{
			Name: EventFriendRequestResponded,
			Data: FriendResponsePayload{ID: f.ID, Action: action, User: social.SummaryOf(actor)},
		})
	}

	if action == social.ActionAccept {
		requester := f.Requester.Identity()
		requester.UserID = f.RequesterID
		d.presence.Introduce(actor, requester)
	}

	return result, nil
}
