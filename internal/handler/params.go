package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialhub/internal/app/user"
	"socialhub/internal/pkg/auth/jwt"
	"socialhub/internal/pkg/errs"
	"socialhub/internal/pkg/resp"
)

// identityOrReject returns the verified caller, answering 401 when there is none.
func identityOrReject(w http.ResponseWriter, r *http.Request) (user.Identity, bool) {
	identity, ok := jwt.IdentityFromContext(r.Context())
	if !ok {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
	}
	return identity, ok
}

// idParam parses a positive int64 path parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// limitParam reads the limit query parameter, falling back to def when absent.
// Values outside [1, max] are rejected.
func limitParam(r *http.Request, def, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		return 0, false
	}
	return limit, true
}

// respondStoreError answers a failed store call, keeping business codes and hiding
// everything else behind a persistence failure.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	resp.RespondError(w, r, errs.FromError(err, errs.ErrPersistenceFailure))
}
