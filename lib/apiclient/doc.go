// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package apiclient is the HTTP client for the PMIS backend API.
//
// A [Client] wraps net/http with the three behaviors every call in the
// console needs: the bearer credential is attached as an Authorization
// header when present, request bodies are serialized as JSON, and
// non-2xx responses are normalized into a [*TransportError] carrying a
// single human-readable message (extracted from the backend's
// structured "detail"/"message" payload when available, status line
// otherwise).
//
// The client holds no session state of its own. Credentials are passed
// per call by the owner of the session (lib/session.Store); the client
// never caches or refreshes them.
//
// List endpoints return JSON arrays. The quick project list
// ([Client.ListProjectsLite]) additionally tolerates the wrapped
// {"items": [...]} shape and paginates with skip/limit until a short
// page arrives.
package apiclient
