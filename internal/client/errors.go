package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var ErrBackend = errors.New("backend error")

// Error is returned for every backend response with a status code of 400 or
// above.
type Error struct {
	Backend    string
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
	}
	return fmt.Sprintf("Request failed with status code %d: %s", e.StatusCode, e.Detail)
}

func (e *Error) Is(target error) bool {
	return target == ErrBackend
}

// Message reduces any error produced while talking to a backend to the
// human readable string stored in the operation table.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout exceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout exceeded"
	}

	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Sprintf("Network Error: %s", urlErr.Err.Error())
	}

	return err.Error()
}

// detail extracts a description from the error bodies of both backends,
// fastapi uses {"detail": string | [{"msg": string}]} and the node backend
// uses {"message": string} or {"error": string}.
func detail(body []byte) string {
	var res struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}

	if err := json.Unmarshal(body, &res); err != nil {
		return ""
	}

	if len(res.Detail) > 0 {
		var s string
		if err := json.Unmarshal(res.Detail, &s); err == nil {
			return s
		}

		var items []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(res.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if field := location(item.Loc); field != "" {
					msgs = append(msgs, fmt.Sprintf("%s: %s", field, item.Msg))
				} else {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}

	if res.Message != "" {
		return res.Message
	}

	return res.Error
}

func location(loc []any) string {
	// fastapi prefixes the location with "body", "query", ...
	if len(loc) < 2 {
		return ""
	}

	parts := make([]string, 0, len(loc)-1)
	for _, l := range loc[1:] {
		parts = append(parts, fmt.Sprint(l))
	}
	return strings.Join(parts, ".")
}
