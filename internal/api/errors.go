package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the client can return.
type ErrorKind string

const (
	// KindAuthRequired means no token was available, so no request was sent.
	KindAuthRequired       ErrorKind = "auth_required"
	// KindUnauthorized means the server rejected the token (401/403).
	KindUnauthorized       ErrorKind = "unauthorized"
	KindHTTP               ErrorKind = "http"
	KindNetwork            ErrorKind = "network"
	KindTimeout            ErrorKind = "timeout"
	KindValidation         ErrorKind = "validation"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindDecode             ErrorKind = "decode"
)

// Error is the single error shape returned by the client.
type Error struct {
	Kind ErrorKind
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Detail is the user-facing message, usually the server's "detail".
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns Detail, falling back to the wrapped error text.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func IsKind(err error, k ErrorKind) bool { return KindOf(err) == k }

// ValidationError builds a client-side validation failure. It never carries a status.
func ValidationError(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

var errNoToken = errors.New("please login first")

// extractDetail pulls a message out of an error body: {"detail": "..."}, FastAPI's
// {"detail": [{"msg": ...}]}, or the raw text.
func extractDetail(body []byte, status int) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("request failed: %d", status)
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return text
	}
	if len(envelope.Detail) == 0 {
		return fmt.Sprintf("request failed: %d", status)
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string        `json:"msg"`
		Loc []interface{} `json:"loc"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(envelope.Detail)
}
