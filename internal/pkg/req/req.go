/*
Package req provides helper functions for request parsing, data binding and validation.

BindJSON decodes HTTP request bodies; Validate runs go-playground/validator struct tags
and is shared with the realtime event codec so both transports reject the same payloads.
*/
package req

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"socialhub/internal/pkg/errs"
)

// MaxBodySize bounds JSON request bodies.
const MaxBodySize int64 = 64 << 10 // 64 KB

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks dst against its `validate` struct tags.
// It returns ErrInvalidParams on the first failing field.
func Validate(dst any) *errs.CustomError {
	if err := validate.Struct(dst); err != nil {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst,
// then validates it.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return Validate(dst)
}
