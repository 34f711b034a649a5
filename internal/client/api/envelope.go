package api

import (
	"encoding/json"
)

// Pagination is the page envelope the data service attaches to list
// responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the success shape of every call: the `{success, data?,
// message?, error?, pagination?}` record the data service wraps responses
// in. Data is kept raw so callers decode it into their own types without
// the transport layer mutating it.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	ErrMessage string          `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`

	// raw is the whole response body, for the few endpoints (login,
	// profile) that reply with a bare record instead of the envelope.
	raw json.RawMessage
}

// Decode unmarshals the envelope payload into T. It prefers the `data`
// field and falls back to the whole body for bare-record endpoints.
func Decode[T any](e *Envelope) (T, error) {
	var v T
	if e == nil {
		return v, &Error{Kind: KindUnknown, Message: "no response envelope"}
	}
	payload := e.Data
	if len(payload) == 0 {
		payload = e.raw
	}
	if len(payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, &Error{Kind: KindUnknown, Message: "decode response payload: " + err.Error()}
	}
	return v, nil
}
