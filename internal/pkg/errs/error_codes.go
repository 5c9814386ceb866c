/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally within
the server and in communication with clients, over HTTP and over the realtime socket.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or event payload validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body or socket frame is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrUnknownEvent indicates that a socket frame named an event the server does not handle.
	ErrUnknownEvent = 1008
)

// 2xxx: Social Graph and Messaging Errors
const (
	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageContentEmpty indicates that the message content was empty or whitespace only.
	ErrMessageContentEmpty = 2202

	// ErrUserNotFound indicates that no account matched the requested email or id.
	ErrUserNotFound = 2301

	// ErrSelfFriendRequest indicates that a user tried to befriend themselves.
	ErrSelfFriendRequest = 2302

	// ErrFriendRequestExists indicates that a pending request already links the two users.
	ErrFriendRequestExists = 2303

	// ErrAlreadyFriends indicates that the two users are already friends.
	ErrAlreadyFriends = 2304

	// ErrFriendRequestNotFound indicates an unknown, foreign or already answered friend request.
	ErrFriendRequestNotFound = 2305

	// ErrNotificationNotFound indicates an unknown notification id for the acting user.
	ErrNotificationNotFound = 2401
)

// 3xxx: Session and Security Errors
const (
	// ErrSessionClosed indicates that the connection's session is no longer active.
	ErrSessionClosed = 3004

	// ErrUnauthorized indicates a missing or invalid credential, or a handler called from an unregistered connection.
	ErrUnauthorized = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrPersistenceFailure indicates that the store was unreachable or rejected a write.
	ErrPersistenceFailure = 5001
)
