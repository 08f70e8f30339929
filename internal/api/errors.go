package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Messages used when the backend gives us nothing better.
const (
	DefaultNetworkMessage = "Network error. Please check your connection and try again."
	DefaultRequestMessage = "Request failed"
)

// FetchError is the single failure type returned for any unsuccessful call.
// Message is what gets shown to the user.
type FetchError struct {
	Status  int // 0 for transport failures
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

// Unauthorized reports whether the backend rejected the bearer token.
func (e *FetchError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// IsUnauthorized reports whether err is a FetchError carrying a 401.
func IsUnauthorized(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Unauthorized()
}

// errorBody covers the error shapes the backend produces.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

// messageFromBody extracts a human-readable message from an error response
// body, falling back to def.
func messageFromBody(body []byte, def string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		for _, m := range []string{eb.Message, eb.Error, eb.Detail} {
			if s := strings.TrimSpace(m); s != "" {
				return s
			}
		}
	}
	if def == "" {
		return DefaultRequestMessage
	}
	return def
}
