// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// TransportError is a non-2xx HTTP response from the backend. Message
// is always a single human-readable string: the structured payload's
// "detail" or "message" field when the backend sent one, the status
// line otherwise.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	return e.Message
}

// AuthError is a rejected login attempt: bad credentials, a non-2xx
// auth response, or a role mismatch between the expected role and the
// role the backend returned. Terminal for that attempt — the session
// is left unauthenticated.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// errorPayload mirrors the backend's structured error body. detail is
// either a string or an array of strings depending on the endpoint
// (validation errors arrive as arrays), so it decodes as any.
type errorPayload struct {
	Detail  any    `json:"detail"`
	Message string `json:"message"`
}

// transportError builds a TransportError from a response status and
// body. The extraction order matches what the backend actually emits:
// "detail" (string or array, array elements joined with ", "), then
// "message", then the bare status line.
func transportError(statusCode int, body []byte) *TransportError {
	message := fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		switch detail := payload.Detail.(type) {
		case string:
			if detail != "" {
				message = detail
			}
		case []any:
			var parts []string
			for _, element := range detail {
				parts = append(parts, fmt.Sprint(element))
			}
			if len(parts) > 0 {
				message = strings.Join(parts, ", ")
			}
		}
		if payload.Message != "" {
			message = payload.Message
		}
	}

	return &TransportError{StatusCode: statusCode, Message: message}
}
