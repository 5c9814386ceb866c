/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses, socket error events and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnknownEvent:         {Code: ErrUnknownEvent, Message: "Unsupported event."},

	// 2xxx: Social Graph and Messaging Errors
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrMessageContentEmpty:   {Code: ErrMessageContentEmpty, Message: "Message cannot be empty."},
	ErrUserNotFound:          {Code: ErrUserNotFound, Message: "User not found", Status: http.StatusNotFound},
	ErrSelfFriendRequest:     {Code: ErrSelfFriendRequest, Message: "Cannot send friend request to yourself"},
	ErrFriendRequestExists:   {Code: ErrFriendRequestExists, Message: "Friend request already sent", Status: http.StatusConflict},
	ErrAlreadyFriends:        {Code: ErrAlreadyFriends, Message: "Already friends", Status: http.StatusConflict},
	ErrFriendRequestNotFound: {Code: ErrFriendRequestNotFound, Message: "Friend request not found", Status: http.StatusNotFound},
	ErrNotificationNotFound:  {Code: ErrNotificationNotFound, Message: "Notification not found", Status: http.StatusNotFound},

	// 3xxx: Session and Security Errors
	ErrSessionClosed: {Code: ErrSessionClosed, Message: "Your session has ended."},
	ErrUnauthorized:  {Code: ErrUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistenceFailure: {Code: ErrPersistenceFailure, Message: "Could not save your change. Please try again.", Status: http.StatusServiceUnavailable},
}
