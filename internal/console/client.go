package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// TokenSource yields the current session token for outgoing requests. An
// empty result sends the request unauthenticated.
type TokenSource func() string

// Client submits console actions to the signage API and classifies the
// responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewClient builds a client for the given API base URL. A nil httpClient
// falls back to http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
	}
}

// SubmitEvent sends the draft to the matching endpoint: new drafts to
// /event/add, edits to /event/update/{id}, repeating drafts to /recevent/add.
func (c *Client) SubmitEvent(ctx context.Context, draft EventDraft) Outcome {
	if issues := draft.Validate(); issues != nil {
		return Outcome{Kind: KindRejected, Message: joinIssues(issues)}
	}

	if draft.IsRecurring() {
		payload, err := draft.RecurringPayload()
		if err != nil {
			return Outcome{Kind: KindRejected, Message: err.Error()}
		}
		return c.sendJSON(ctx, http.MethodPost, "/recevent/add", payload)
	}

	payload, err := draft.Payload()
	if err != nil {
		return Outcome{Kind: KindRejected, Message: err.Error()}
	}
	if draft.ID != nil {
		return c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/event/update/%d", *draft.ID), payload)
	}
	return c.sendJSON(ctx, http.MethodPost, "/event/add", payload)
}

// DeleteEvent removes a single event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) Outcome {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/event/delete/%d", id), nil, "", classifyDeletion)
}

// DeleteRecurringEvent removes a whole series.
func (c *Client) DeleteRecurringEvent(ctx context.Context, groupID string) Outcome {
	return c.send(ctx, http.MethodDelete, "/recevent/delete/"+groupID, nil, "", classifyDeletion)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Kind: KindRejected, Message: err.Error()}
	}
	return c.send(ctx, method, path, bytes.NewReader(body), "application/json", Classify)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, classify func(int, string) Outcome) Outcome {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return transportFailure(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure(err)
	}
	return classify(resp.StatusCode, string(text))
}

// joinIssues flattens local validation messages the same way the server
// renders its plain text bodies, one message per line.
func joinIssues(issues map[string]string) string {
	fields := make([]string, 0, len(issues))
	for field := range issues {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, issues[field])
	}
	return strings.Join(lines, "\n")
}
