package handler

import (
	"net/http"

	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/req"
	"socialhub/internal/pkg/resp"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

type SendMessageInput struct {
	ReceiverID int64  `json:"receiver_id" validate:"gt=0"`
	Content    string `json:"content"`
}

// HandleChatHistory returns the conversation between the caller and a friend, oldest first.
func HandleChatHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		friendID, ok := idParam(r, "friendID")
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		limit, ok := limitParam(r, defaultHistoryLimit, maxHistoryLimit)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Store.ChatHistory(r.Context(), identity.UserID, friendID, limit)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, messages)
	}
}

// HandleSendMessage sends a direct message over HTTP. Delivery follows the same rules
// as the realtime send_message event.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, err := deps.Manager.Dispatcher().SendMessage(r.Context(), identity, input.ReceiverID, input.Content)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, msg)
	}
}

// HandleMarkRead marks every unread message from a sender to the caller as read.
func HandleMarkRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		senderID, ok := idParam(r, "senderID")
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		receipt, err := deps.Manager.Dispatcher().MarkRead(r.Context(), identity, senderID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, receipt)
	}
}

// HandleUnreadMessageCount returns how many messages wait for the caller.
func HandleUnreadMessageCount(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		n, err := deps.Store.UnreadMessageCount(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]int64{"unread_count": n})
	}
}

// HandleConversations lists one preview per friend, with the friend's live status.
func HandleConversations(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		previews, err := deps.Store.ConversationPreviews(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		presence := deps.Manager.Presence()
		for i := range previews {
			previews[i].Status = presence.Status(previews[i].Friend.ID)
		}
		resp.RespondSuccess(w, r, previews)
	}
}
