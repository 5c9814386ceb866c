package handler

import (
	"net/http"

	"socialhub/internal/pkg/resp"
)

// HandleGetUserProfile returns the caller's account together with its unread counters
// and live connection count.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		profile, err := deps.Store.GetUser(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		unreadMessages, err := deps.Store.UnreadMessageCount(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		unreadNotifications, err := deps.Store.UnreadNotificationCount(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":                 profile,
			"status":               deps.Manager.Presence().Status(identity.UserID),
			"connections":          len(deps.Manager.Registry().ConnectionsFor(identity.UserID)),
			"unread_messages":      unreadMessages,
			"unread_notifications": unreadNotifications,
		})
	}
}
