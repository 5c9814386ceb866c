/*
Package handler provides the HTTP handlers and routing setup for the socialhub server.

This file holds the friend endpoints: listing friends with live presence, user search,
and the request/respond flow, which shares the realtime dispatcher so online users are
told immediately.
*/
package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"socialhub/internal/app/social"
	"socialhub/internal/pkg/req"
	"socialhub/internal/pkg/resp"
)

const (
	minSearchQuery = 2
	searchLimit    = 10
)

type FriendRequestInput struct {
	Email string `json:"email" validate:"required,email"`
}

type RespondFriendRequestInput struct {
	RequestID int64               `json:"request_id" validate:"gt=0"`
	Action    social.FriendAction `json:"action" validate:"required,oneof=accept decline"`
}

// HandleListFriends returns the caller's friends annotated with live presence.
func HandleListFriends(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		friends, err := deps.Store.GetFriends(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		presence := deps.Manager.Presence()
		result := make([]social.FriendWithStatus, 0, len(friends))
		for _, f := range friends {
			result = append(result, social.FriendWithStatus{User: f, Status: presence.Status(f.ID)})
		}

		resp.RespondSuccess(w, r, result)
	}
}

// HandleOnlineFriends returns only the caller's friends that hold a live connection.
func HandleOnlineFriends(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		friends, err := deps.Store.GetFriends(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		registry := deps.Manager.Registry()
		online := make([]social.FriendWithStatus, 0)
		for _, f := range friends {
			if registry.IsOnline(f.ID) {
				online = append(online, social.FriendWithStatus{User: f, Status: social.StatusOnline})
			}
		}

		resp.RespondSuccess(w, r, online)
	}
}

// HandleSearchUsers looks users up by email or display name.
func HandleSearchUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if utf8.RuneCountInString(query) < minSearchQuery {
			resp.RespondSuccess(w, r, []social.SearchResult{})
			return
		}

		results, err := deps.Store.SearchUsers(r.Context(), identity.UserID, query, searchLimit)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		presence := deps.Manager.Presence()
		for i := range results {
			results[i].Status = presence.Status(results[i].ID)
		}

		resp.RespondSuccess(w, r, results)
	}
}

// HandleSendFriendRequest sends a friend request to the account behind an email.
func HandleSendFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		var input FriendRequestInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Manager.Dispatcher().SendFriendRequest(r.Context(), identity, input.Email)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, result)
	}
}

// HandleRespondFriendRequest accepts or declines a request addressed to the caller.
func HandleRespondFriendRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		var input RespondFriendRequestInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Manager.Dispatcher().RespondFriendRequest(r.Context(), identity, input.RequestID, input.Action)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, result)
	}
}

// HandlePendingRequests lists requests waiting for the caller's answer.
func HandlePendingRequests(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		list, err := deps.Store.PendingRequests(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, list)
	}
}

// HandleSentRequests lists the caller's own requests that are still pending.
func HandleSentRequests(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrReject(w, r)
		if !ok {
			return
		}

		list, err := deps.Store.SentRequests(r.Context(), identity.UserID)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, list)
	}
}
