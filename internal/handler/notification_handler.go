package handler

import (
	"net/http"

	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/resp"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// HandleNotifications returns the caller's newest notifications.
func HandleNotifications(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		limit, ok := limitParam(r, defaultNotificationLimit, maxNotificationLimit)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		list, err := deps.Store.Notifications(r.Context(), identity.UserID, limit)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, list)
	}
}

// HandleMarkNotificationRead flags one of the caller's notifications as read.
func HandleMarkNotificationRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		id, ok := idParam(r, "notificationID")
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Store.MarkNotificationRead(r.Context(), identity.UserID, id); err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]int64{"id": id})
	}
}

// HandleUnreadNotificationCount returns how many notifications the caller has not read.
func HandleUnreadNotificationCount(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		n, err := deps.Store.UnreadNotificationCount(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]int64{"unread_count": n})
	}
}
