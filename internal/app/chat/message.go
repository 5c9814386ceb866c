/*
Package chat contains the realtime core: the connection registry, room routing,
presence tracking, message dispatch and the per-connection session lifecycle.

This file defines the wire format. Every frame is {"event": name, "data": payload};
inbound payloads decode into one typed struct per event name and are validated
before they reach a handler.
*/
package chat

import (
	"time"

	"github.com/goccy/go-json"

	"socialhub/internal/app/social"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/req"
)

// Inbound event names.
const (
	EventSendFriendRequest    = "send_friend_request"
	EventRespondFriendRequest = "respond_friend_request"
	EventJoinChat             = "join_chat"
	EventLeaveChat            = "leave_chat"
	EventSendMessage          = "send_message"
	EventMarkMessagesRead     = "mark_messages_read"
)

// Outbound event names.
const (
	EventFriendStatusChanged    = "friend_status_changed"
	EventFriendRequestReceived  = "friend_request_received"
	EventFriendRequestSent      = "friend_request_sent"
	EventFriendRequestResponded = "friend_request_responded"
	EventFriendRequestUpdated   = "friend_request_updated"
	EventJoinedChat             = "joined_chat"
	EventLeftChat               = "left_chat"
	EventMessageReceived        = "message_received"
	EventNewMessageNotification = "new_message_notification"
	EventMessagesMarkedRead     = "messages_marked_read"
	EventError                  = "error"
)

// MaxContentRunes is the longest accepted message body.
const MaxContentRunes = 5000

// Frame is the envelope of every inbound frame.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound event ready to be encoded.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Encode renders the event as a wire frame.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// ErrorEvent builds the error event sent for a failed operation.
func ErrorEvent(err *errs.CustomError) Event {
	return Event{Name: EventError, Data: ErrorPayload{Code: err.Code, Message: err.Message}}
}

// Inbound is implemented by every typed inbound payload.
type Inbound interface {
	EventName() string
}

type SendFriendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RespondFriendRequest struct {
	RequestID int64               `json:"request_id" validate:"gt=0"`
	Action    social.FriendAction `json:"action" validate:"required,oneof=accept decline"`
}

type JoinChat struct {
	FriendID int64 `json:"friend_id" validate:"gt=0"`
}

type LeaveChat struct {
	FriendID int64 `json:"friend_id" validate:"gt=0"`
}

// SendMessage carries a direct message. Content emptiness and length are checked
// by the dispatcher so every transport reports them the same way.
type SendMessage struct {
	ReceiverID int64  `json:"receiver_id" validate:"gt=0"`
	Content    string `json:"content"`
}

type MarkMessagesRead struct {
	SenderID int64 `json:"sender_id" validate:"gt=0"`
}

func (SendFriendRequest) EventName() string    { return EventSendFriendRequest }
func (RespondFriendRequest) EventName() string { return EventRespondFriendRequest }
func (JoinChat) EventName() string             { return EventJoinChat }
func (LeaveChat) EventName() string            { return EventLeaveChat }
func (SendMessage) EventName() string          { return EventSendMessage }
func (MarkMessagesRead) EventName() string     { return EventMarkMessagesRead }

var inboundDecoders = map[string]func(json.RawMessage) (Inbound, error){
	EventSendFriendRequest:    decodeAs[SendFriendRequest],
	EventRespondFriendRequest: decodeAs[RespondFriendRequest],
	EventJoinChat:             decodeAs[JoinChat],
	EventLeaveChat:            decodeAs[LeaveChat],
	EventSendMessage:          decodeAs[SendMessage],
	EventMarkMessagesRead:     decodeAs[MarkMessagesRead],
}

func decodeAs[T Inbound](data json.RawMessage) (Inbound, error) {
	var v T
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if err := req.Validate(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// EventNameOf returns the event name of a raw frame, or "" if it is not decodable.
func EventNameOf(raw []byte) string {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return ""
	}
	return f.Event
}

// DecodeInbound parses and validates a raw inbound frame.
func DecodeInbound(raw []byte) (Inbound, *errs.CustomError) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errs.NewError(errs.ErrInvalidJSONFormat)
	}

	decode, ok := inboundDecoders[f.Event]
	if !ok {
		return nil, errs.NewError(errs.ErrUnknownEvent)
	}

	ev, err := decode(f.Data)
	if err != nil {
		if customErr, ok := errs.As(err); ok {
			return nil, customErr
		}
		return nil, errs.NewError(errs.ErrInvalidParams)
	}
	return ev, nil
}

// ErrorPayload is the data of an error event.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatusPayload is the data of friend_status_changed.
type StatusPayload struct {
	UserID      int64                 `json:"user_id"`
	Status      social.PresenceStatus `json:"status"`
	DisplayName string                `json:"display_name"`
	AvatarURL   string                `json:"avatar_url,omitempty"`
}

// FriendRequestPayload is the data of friend_request_received.
type FriendRequestPayload struct {
	ID        int64              `json:"id"`
	Requester social.UserSummary `json:"requester"`
	CreatedAt time.Time          `json:"created_at"`
}

// FriendResponsePayload is the data of friend_request_responded.
type FriendResponsePayload struct {
	ID     int64               `json:"id"`
	Action social.FriendAction `json:"action"`
	User   social.UserSummary  `json:"user"`
}

// ChatRoomPayload is the data of joined_chat and left_chat.
type ChatRoomPayload struct {
	Room     RoomID `json:"room"`
	FriendID int64  `json:"friend_id"`
}

// MessageNotificationPayload is the data of new_message_notification.
type MessageNotificationPayload struct {
	Message social.Message     `json:"message"`
	Sender  social.UserSummary `json:"sender"`
}

// ReadReceiptPayload is the data of messages_marked_read.
type ReadReceiptPayload struct {
	SenderID   int64 `json:"sender_id"`
	ReceiverID int64 `json:"receiver_id"`
	Updated    int64 `json:"updated"`
}
