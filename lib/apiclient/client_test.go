// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, server
}

func TestAttachesBearerCredential(t *testing.T) {
	var seenAuthorization string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuthorization = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}))

	if _, err := client.ProjectActivities(context.Background(), "tok-123", 1); err != nil {
		t.Fatalf("ProjectActivities: %v", err)
	}
	if seenAuthorization != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", seenAuthorization, "Bearer tok-123")
	}
}

func TestOmitsAuthorizationWithoutCredential(t *testing.T) {
	var sawHeader bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		fmt.Fprint(w, `[]`)
	}))

	if _, err := client.ProjectActivities(context.Background(), "", 1); err != nil {
		t.Fatalf("ProjectActivities: %v", err)
	}
	if sawHeader {
		t.Error("Authorization header must be absent when no credential is provided")
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "detail string",
			status:      http.StatusNotFound,
			body:        `{"detail": "projet introuvable"}`,
			wantMessage: "projet introuvable",
		},
		{
			name:        "detail array",
			status:      http.StatusUnprocessableEntity,
			body:        `{"detail": ["champ requis", "valeur invalide"]}`,
			wantMessage: "champ requis, valeur invalide",
		},
		{
			name:        "message field",
			status:      http.StatusBadRequest,
			body:        `{"message": "requête mal formée"}`,
			wantMessage: "requête mal formée",
		},
		{
			name:        "unparseable body falls back to status line",
			status:      http.StatusBadGateway,
			body:        `<html>oops</html>`,
			wantMessage: "502 Bad Gateway",
		},
		{
			name:        "empty structured payload falls back to status line",
			status:      http.StatusInternalServerError,
			body:        `{}`,
			wantMessage: "500 Internal Server Error",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				fmt.Fprint(w, test.body)
			}))

			_, err := client.Project(context.Background(), "tok", 1)
			var transport *TransportError
			if !errors.As(err, &transport) {
				t.Fatalf("err = %v, want *TransportError", err)
			}
			if transport.Message != test.wantMessage {
				t.Errorf("Message = %q, want %q", transport.Message, test.wantMessage)
			}
			if transport.StatusCode != test.status {
				t.Errorf("StatusCode = %d, want %d", transport.StatusCode, test.status)
			}
		})
	}
}

func TestNoContentIsDistinguishableFromJSON(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var out []Activity
	decoded, err := client.getJSON(context.Background(), "/api/v1/whatever", "tok", &out)
	if err != nil {
		t.Fatalf("getJSON: %v", err)
	}
	if decoded {
		t.Error("a 204 response must report decoded=false")
	}
	if out != nil {
		t.Errorf("out = %v, want untouched nil", out)
	}
}

func TestQuickListToleratesWrappedShape(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"idprojet": 4, "code_projet": "PRJ-004"}]}`)
	}))

	projects, err := client.ListProjectsLite(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListProjectsLite: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != 4 || projects[0].Code != "PRJ-004" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestQuickListPaginatesUntilShortPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		var page []ProjectLite
		pageSize := quickListPageSize
		if skip >= quickListPageSize {
			pageSize = 3 // short final page
		}
		for index := 0; index < pageSize; index++ {
			page = append(page, ProjectLite{ID: skip + index + 1, Code: fmt.Sprintf("P%03d", skip+index+1)})
		}
		json.NewEncoder(w).Encode(page)
	}))

	projects, err := client.ListProjectsLite(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListProjectsLite: %v", err)
	}
	if len(projects) != quickListPageSize+3 {
		t.Errorf("len(projects) = %d, want %d", len(projects), quickListPageSize+3)
	}
	if projects[len(projects)-1].ID != quickListPageSize+3 {
		t.Errorf("last ID = %d, want %d", projects[len(projects)-1].ID, quickListPageSize+3)
	}
}

func TestLoginSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["expect_role"] != "admin" {
			t.Errorf("expect_role = %q, want admin", body["expect_role"])
		}
		fmt.Fprint(w, `{"access_token": "tok-xyz", "token_type": "bearer", "username": "amina", "role": "admin"}`)
	}))

	result, err := client.Login(context.Background(), "amina", "secret", RoleAdmin)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken != "tok-xyz" || result.Role != RoleAdmin {
		t.Errorf("result = %+v", result)
	}
}

func TestLoginRoleMismatchIsAuthError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token": "tok-xyz", "token_type": "bearer", "username": "amina", "role": "regular"}`)
	}))

	_, err := client.Login(context.Background(), "amina", "secret", RoleAdmin)
	var auth *AuthError
	if !errors.As(err, &auth) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
}

func TestLoginRejectionIsAuthError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "identifiants invalides"}`)
	}))

	_, err := client.Login(context.Background(), "amina", "wrong", RoleRegular)
	var auth *AuthError
	if !errors.As(err, &auth) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if auth.Message != "identifiants invalides" {
		t.Errorf("Message = %q", auth.Message)
	}
}

func TestDownloadDocument(t *testing.T) {
	payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x01}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/document/9/download" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write(payload)
	}))

	data, err := client.DownloadDocument(context.Background(), "tok", 9)
	if err != nil {
		t.Fatalf("DownloadDocument: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("payload mismatch: got %v", data)
	}
}

func TestDocumentOpenURL(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	want := server.URL + "/api/v1/document/12/open"
	if got := client.DocumentOpenURL(12); got != want {
		t.Errorf("DocumentOpenURL = %q, want %q", got, want)
	}
}
