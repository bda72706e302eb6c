// Package httputil holds the JSON request and response helpers shared by
// handlers and middleware.
package httputil

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zenscore/zenscore/internal/errors"
	"github.com/zenscore/zenscore/pkg/logger"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorBody is the uniform error payload.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError converts err into {"error": message}. Service errors keep their
// status and client message; anything else is an opaque 500. Server-side
// failures are logged with their cause when log is non-nil.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	se := errors.GetServiceError(err)
	if se == nil {
		se = errors.Internal("", err)
	}
	if log != nil && se.HTTPStatus >= http.StatusInternalServerError {
		entry := log.WithContext(r.Context()).WithError(err).WithField("code", se.Code)
		if len(se.Details) > 0 {
			entry = entry.WithField("details", se.Details)
		}
		entry.Error("request failed")
	}
	WriteJSON(w, se.HTTPStatus, ErrorBody{Error: se.Message})
}

// DecodeJSON reads a single JSON object from the request body into dst.
// Malformed bodies become validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.Is(err, io.EOF):
			return errors.Validation("Request body is required")
		case stderrors.As(err, &syntaxErr), stderrors.Is(err, io.ErrUnexpectedEOF):
			return errors.Validation("Malformed JSON body")
		case stderrors.As(err, &typeErr):
			return errors.Validationf("Invalid value for %s", typeErr.Field)
		case stderrors.As(err, &tooLarge):
			return errors.Validation("Request body too large")
		default:
			return errors.Validation(fmt.Sprintf("Invalid request body: %v", err))
		}
	}
	return nil
}
