/*
Package social defines the records of the social graph: users, friendships,
direct messages, notifications and presence.

The realtime core treats these as values it reads and writes through the store;
only the identifiers needed for routing carry meaning to it.
*/
package social

import (
	"time"

	"socialhub/internal/app/user"
)

// PresenceStatus is the persisted online state of a user.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

// FriendshipStatus is the lifecycle state of a friendship row.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// FriendAction is the answer given to a pending friend request.
type FriendAction string

const (
	ActionAccept  FriendAction = "accept"
	ActionDecline FriendAction = "decline"
)

// Valid reports whether a is one of the known actions.
func (a FriendAction) Valid() bool {
	return a == ActionAccept || a == ActionDecline
}

// Status returns the friendship status the action leads to.
func (a FriendAction) Status() FriendshipStatus {
	if a == ActionAccept {
		return FriendshipAccepted
	}
	return FriendshipDeclined
}

// NotificationType classifies stored notifications.
type NotificationType string

const (
	NotifyFriendRequest  NotificationType = "friend_request"
	NotifyFriendAccepted NotificationType = "friend_accepted"
	NotifyNewMessage     NotificationType = "new_message"
)

// User is an account as stored.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity converts the stored account into a connection identity.
func (u User) Identity() user.Identity {
	return user.Identity{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// Summary returns the display fields shared with other users.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
}

// UserSummary is the public projection of a user embedded in events.
type UserSummary struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Email       string `json:"email,omitempty"`
}

// SummaryOf projects an identity onto the public fields.
func SummaryOf(id user.Identity) UserSummary {
	return UserSummary{ID: id.UserID, DisplayName: id.DisplayName, AvatarURL: id.AvatarURL}
}

// Friendship links a requester and an addressee.
type Friendship struct {
	ID          int64            `json:"id"`
	RequesterID int64            `json:"requester_id"`
	AddresseeID int64            `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Requester   User             `json:"requester"`
	Addressee   User             `json:"addressee"`
}

// FriendRequestResult is the outcome of a friend request mutation.
type FriendRequestResult struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Friendship *Friendship `json:"friendship,omitempty"`
}

// Message is a persisted direct message.
type Message struct {
	ID         int64       `json:"id"`
	SenderID   int64       `json:"sender_id"`
	ReceiverID int64       `json:"receiver_id"`
	Content    string      `json:"content"`
	IsRead     bool        `json:"is_read"`
	CreatedAt  time.Time   `json:"created_at"`
	Sender     UserSummary `json:"sender"`
}

// Notification is a stored, user-visible notice.
type Notification struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	RelatedUserID    *int64           `json:"related_user_id,omitempty"`
	RelatedMessageID *int64           `json:"related_message_id,omitempty"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewNotification carries the fields needed to create a notification.
type NewNotification struct {
	UserID           int64
	Type             NotificationType
	Title            string
	Content          string
	RelatedUserID    *int64
	RelatedMessageID *int64
}

// FriendWithStatus is a friend annotated with their live presence.
type FriendWithStatus struct {
	User
	Status PresenceStatus `json:"status"`
}

// ConversationPreview summarises the direct-message thread with one friend.
// LastMessage is nil when the two have never exchanged a message.
type ConversationPreview struct {
	Friend      User           `json:"friend"`
	Status      PresenceStatus `json:"status"`
	LastMessage *Message       `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

// Relationship describes how a searched user relates to the searcher.
type Relationship string

const (
	RelationNone      Relationship = "none"
	RelationFriends   Relationship = "friends"
	RelationRequested Relationship = "requested"
	RelationIncoming  Relationship = "incoming"
)

// SearchResult is a user found by search, annotated for the searcher.
type SearchResult struct {
	User
	Relationship Relationship   `json:"relationship"`
	Status       PresenceStatus `json:"status"`
}
