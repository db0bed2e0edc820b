// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a transport failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound is an HTTP 404. For optional sub-resources it means the
	// resource legitimately does not exist.
	KindNotFound
	// KindClient is any other 4xx, typically a business-rule rejection.
	KindClient
	// KindServer is a 5xx.
	KindServer
	// KindNetwork means no HTTP response was received.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownService = errors.New("unknown service")
	ErrNoBaseURL      = errors.New("no base URL configured")
)

// Error is the normalized failure of a Call.
type Error struct {
	Service string
	Method  string
	Path    string
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// Message is the server supplied message, verbatim when one was present.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s %s: %v", e.Service, e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %d %s", e.Service, e.Method, e.Path, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind derives the error kind from the HTTP status only.
func (e *Error) Kind() Kind {
	switch {
	case e.Status == 0:
		return KindNetwork
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status >= 400 && e.Status < 500:
		return KindClient
	case e.Status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind()
	}
	return KindUnknown
}

// IsNotFound reports whether err is an HTTP 404. The message is never
// consulted, so a 500 whose body mentions "not found" is not a 404.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// Message returns the server message carried by err, or err.Error() when err
// is not an *Error or has no message.
func Message(err error) string {
	var te *Error
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// extractMessage pulls a human readable message out of an error body. It
// understands {"message"}, {"error"}, {"title"} and {"errors":[{"message"}]}
// and falls back to the trimmed body, then the status text.
func extractMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		for _, path := range []string{"message", "error", "title", "errors.0.message", "errors.0"} {
			if v := doc.Get(path); v.Exists() && v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) <= 512 { //nolint:mnd
		return msg
	}
	return http.StatusText(status)
}
