// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// quickListPageSize is the backend's maximum page size for the
// paginated project list.
const quickListPageSize = 100

// Login exchanges credentials for a bearer token. A non-2xx response
// or a role different from expectedRole is an *AuthError; the caller's
// session is left untouched. Role verification is caller-side policy,
// not a transport concern — the backend happily logs in a user whose
// role differs from the one the login form advertised.
func (c *Client) Login(ctx context.Context, username, password string, expectedRole Role) (*LoginResult, error) {
	requestBody := map[string]string{
		"username":    username,
		"password":    password,
		"expect_role": string(expectedRole),
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/login", "", requestBody, nil)
	if err != nil {
		var transport *TransportError
		if errors.As(err, &transport) {
			return nil, &AuthError{Message: transport.Message}
		}
		return nil, err
	}

	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("apiclient: parsing login response: %w", err)
	}

	if result.Role != expectedRole {
		return nil, &AuthError{
			Message: fmt.Sprintf("le compte %s a le rôle %q, pas %q", result.Username, result.Role, expectedRole),
		}
	}

	c.logger.Info("logged in", "username", result.Username, "role", result.Role)
	return &result, nil
}

// ListProjectsLite returns the quick-list projection of every project.
// The backend caps limit at 100, so the full list is assembled by
// paging with skip until a short page arrives. Each page is either a
// bare JSON array or a wrapped {"items": [...]} object.
func (c *Client) ListProjectsLite(ctx context.Context, token string) ([]ProjectLite, error) {
	var all []ProjectLite
	skip := 0

	for {
		query := url.Values{}
		query.Set("skip", strconv.Itoa(skip))
		query.Set("limit", strconv.Itoa(quickListPageSize))

		body, err := c.do(ctx, http.MethodGet, "/api/v1/projets", token, nil, query)
		if err != nil {
			return nil, err
		}
		if body == nil {
			return all, nil
		}

		page, err := decodeProjectPage(body)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < quickListPageSize {
			return all, nil
		}
		skip += quickListPageSize
	}
}

// decodeProjectPage accepts both page shapes the backend has been seen
// to produce: a bare array, or an object with an "items" array.
func decodeProjectPage(body []byte) ([]ProjectLite, error) {
	var page []ProjectLite
	if err := json.Unmarshal(body, &page); err == nil {
		return page, nil
	}

	var wrapped struct {
		Items []ProjectLite `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("apiclient: parsing project list page: %w", err)
	}
	return wrapped.Items, nil
}

// Project returns the full record for one project.
func (c *Client) Project(ctx context.Context, token string, projectID int) (*Project, error) {
	var project Project
	ok, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/%d", projectID), token, &project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("apiclient: project %d: empty response", projectID)
	}
	return &project, nil
}

// ProjectDepartements lists the departments attached to a project.
func (c *Client) ProjectDepartements(ctx context.Context, token string, projectID int) ([]Department, error) {
	var rows []Department
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/%d/departements", projectID), token, &rows)
	return rows, err
}

// ProjectActivities lists a project's activities.
func (c *Client) ProjectActivities(ctx context.Context, token string, projectID int) ([]Activity, error) {
	var rows []Activity
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/%d/activites", projectID), token, &rows)
	return rows, err
}

// ProjectPersonnelsLite lists a project's personnel in picker form.
// The backend has been observed to return duplicate rows for the same
// idpersonnel; deduplication is the consumer's responsibility.
func (c *Client) ProjectPersonnelsLite(ctx context.Context, token string, projectID int) ([]PersonnelLite, error) {
	var rows []PersonnelLite
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/evenements/%d/personnels", projectID), token, &rows)
	return rows, err
}

// ProjectPersonnels lists a project's personnel with contract detail.
func (c *Client) ProjectPersonnels(ctx context.Context, token string, projectID int) ([]PersonnelRow, error) {
	var rows []PersonnelRow
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/%d/personnels", projectID), token, &rows)
	return rows, err
}

// ProjectCommandesLite lists a project's procurement orders in picker form.
func (c *Client) ProjectCommandesLite(ctx context.Context, token string, projectID int) ([]CommandeLite, error) {
	var rows []CommandeLite
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/evenements/%d/commandes", projectID), token, &rows)
	return rows, err
}

// ProjectCommandes lists a project's procurement orders with amounts.
func (c *Client) ProjectCommandes(ctx context.Context, token string, projectID int) ([]Commande, error) {
	var rows []Commande
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/%d/commandes", projectID), token, &rows)
	return rows, err
}

// ProjectSoumissionnairesLite lists a project's bidders in picker form.
func (c *Client) ProjectSoumissionnairesLite(ctx context.Context, token string, projectID int) ([]SoumissionnaireLite, error) {
	var rows []SoumissionnaireLite
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/evenements/%d/soumissionnaires", projectID), token, &rows)
	return rows, err
}

// ProjectTransactions lists a project's financial transactions. scope
// selects the backend join ("personnel" or "activite"); empty means
// the backend default.
func (c *Client) ProjectTransactions(ctx context.Context, token string, projectID int, scope string) ([]Transaction, error) {
	var query url.Values
	if scope != "" {
		query = url.Values{}
		query.Set("scope", scope)
	}

	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/projets/%d/transactions", projectID), token, nil, query)
	if err != nil || body == nil {
		return nil, err
	}

	var rows []Transaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("apiclient: parsing transactions for project %d: %w", projectID, err)
	}
	return rows, nil
}

// ProjectEvents lists the events attached directly to a project.
func (c *Client) ProjectEvents(ctx context.Context, token string, projectID int) ([]Event, error) {
	var rows []Event
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/%d/evenements", projectID), token, &rows)
	return rows, err
}

// ActivityEvents lists the events attached to an activity.
func (c *Client) ActivityEvents(ctx context.Context, token string, activityID int) ([]Event, error) {
	var rows []Event
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/activites/%d/evenements", activityID), token, &rows)
	return rows, err
}

// PersonnelEvents lists the events attached to a personnel record.
func (c *Client) PersonnelEvents(ctx context.Context, token string, personnelID int) ([]Event, error) {
	var rows []Event
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/personnels/%d/evenements", personnelID), token, &rows)
	return rows, err
}

// CommandeEvents lists the events attached to a procurement order.
func (c *Client) CommandeEvents(ctx context.Context, token string, commandeID int) ([]Event, error) {
	var rows []Event
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/commandes/%d/evenements", commandeID), token, &rows)
	return rows, err
}

// SoumissionnaireEvents lists the events attached to a bidder.
func (c *Client) SoumissionnaireEvents(ctx context.Context, token string, soumissionnaireID int) ([]Event, error) {
	var rows []Event
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/soumissionnaires/%d/evenements", soumissionnaireID), token, &rows)
	return rows, err
}

// TransactionEvents lists the events attached to a transaction.
func (c *Client) TransactionEvents(ctx context.Context, token string, transactionID int) ([]Event, error) {
	var rows []Event
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/transactions/%d/evenements", transactionID), token, &rows)
	return rows, err
}

// ActivityImplantations lists the sites where an activity runs.
func (c *Client) ActivityImplantations(ctx context.Context, token string, activityID int) ([]Implantation, error) {
	var rows []Implantation
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/activites/%d/implantations", activityID), token, &rows)
	return rows, err
}

// ActivitySuivi lists an activity's tracking indicators.
func (c *Client) ActivitySuivi(ctx context.Context, token string, activityID int) ([]SuiviRow, error) {
	var rows []SuiviRow
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/activites/%d/suivi", activityID), token, &rows)
	return rows, err
}

// ActivityResponsables lists an activity's responsible personnel.
func (c *Client) ActivityResponsables(ctx context.Context, token string, activityID int) ([]ResponsableRow, error) {
	var rows []ResponsableRow
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/activites/%d/responsables", activityID), token, &rows)
	return rows, err
}

// ActivityExercices lists an activity's fiscal years.
func (c *Client) ActivityExercices(ctx context.Context, token string, activityID int) ([]Exercice, error) {
	var rows []Exercice
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/activites/%d/exercices", activityID), token, &rows)
	return rows, err
}

// CommandeSoumissionnaires lists the bidders on a procurement order.
func (c *Client) CommandeSoumissionnaires(ctx context.Context, token string, commandeID int) ([]SoumissionnaireRow, error) {
	var rows []SoumissionnaireRow
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/commandes/%d/soumissionnaires", commandeID), token, &rows)
	return rows, err
}

// CommandeTitulaires lists the awarded bidders on a procurement order.
func (c *Client) CommandeTitulaires(ctx context.Context, token string, commandeID int) ([]TitulaireRow, error) {
	var rows []TitulaireRow
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/projets/commandes/%d/titulaires", commandeID), token, &rows)
	return rows, err
}

// EventDocuments lists the documents attached to an event.
func (c *Client) EventDocuments(ctx context.Context, token string, eventID int) ([]Document, error) {
	var rows []Document
	_, err := c.getJSON(ctx, fmt.Sprintf("/api/v1/evenements/%d/documents", eventID), token, &rows)
	return rows, err
}

// DocumentOpenURL builds the streaming URL for direct navigation to a
// document. The open endpoint serves the file inline; it is handed to
// a browsing context, never fetched by this client.
func (c *Client) DocumentOpenURL(documentID int) string {
	return fmt.Sprintf("%s/api/v1/document/%d/open", c.baseURL, documentID)
}

// DownloadDocument fetches a document's binary payload.
func (c *Client) DownloadDocument(ctx context.Context, token string, documentID int) ([]byte, error) {
	path := fmt.Sprintf("/api/v1/document/%d/download", documentID)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: creating request: %w", err)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("apiclient: GET %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
		return nil, transportError(response.StatusCode, body)
	}

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading document %d: %w", documentID, err)
	}
	return payload, nil
}
