package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vmail/models"
)

// Client is the mail gateway client: the sole point of contact with the
// backend. Every operation obtains a fresh bearer credential, issues one
// request, and returns either a typed result or a typed error. Nothing is
// retried and no error is swallowed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// SendResult is the backend's response to a send operation.
type SendResult struct {
	EmailID   string `json:"emailId"`
	MessageID string `json:"messageId"`
}

// DraftResult is the backend's response to a save-draft operation.
type DraftResult struct {
	EmailID string `json:"emailId"`
	DraftID string `json:"draftId"`
}

// NewClient creates a gateway client for the given backend.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// ListEmails fetches a folder's emails, most recent first.
func (c *Client) ListEmails(ctx context.Context, folder string, limit int) ([]models.EmailRecord, error) {
	if folder == "" {
		folder = models.FolderInbox
	}
	query := url.Values{}
	query.Set("folder", folder)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result struct {
		Emails []models.EmailRecord `json:"emails"`
	}
	if err := c.do(ctx, http.MethodGet, "/emails?"+query.Encode(), nil, &result); err != nil {
		return nil, err
	}

	return result.Emails, nil
}

// GetEmail fetches a single email with its full body and attachments.
func (c *Client) GetEmail(ctx context.Context, id string) (*models.EmailRecord, error) {
	var rec models.EmailRecord
	if err := c.do(ctx, http.MethodGet, "/emails/"+url.PathEscape(id), nil, &rec); err != nil {
		if notFound, ok := err.(*NotFoundError); ok {
			notFound.ID = id
		}
		return nil, err
	}
	return &rec, nil
}

// SendEmail dispatches a message. On success exactly one record exists in
// the sent folder; on a *DeliveryError no record was created.
func (c *Client) SendEmail(ctx context.Context, msg models.OutgoingEmail) (*SendResult, error) {
	var result SendResult
	if err := c.do(ctx, http.MethodPost, "/emails/send", msg, &result); err != nil {
		if srv, ok := err.(*ServerError); ok && srv.Status == http.StatusBadGateway {
			return nil, &DeliveryError{Reason: srv.Message}
		}
		return nil, err
	}
	return &result, nil
}

// SaveDraft persists a draft. With a draftID the stored draft is
// overwritten in place; otherwise a new one is created.
func (c *Client) SaveDraft(ctx context.Context, msg models.OutgoingEmail, draftID string) (*DraftResult, error) {
	body := struct {
		models.OutgoingEmail
		DraftID string `json:"draftId,omitempty"`
	}{OutgoingEmail: msg, DraftID: draftID}

	var result DraftResult
	if err := c.do(ctx, http.MethodPost, "/emails/draft", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteEmail permanently removes an email. A *NotFoundError means it was
// already gone, which callers usually treat as success.
func (c *Client) DeleteEmail(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/emails/"+url.PathEscape(id), nil, nil)
	if notFound, ok := err.(*NotFoundError); ok {
		notFound.ID = id
	}
	return err
}

// MarkAsRead flags an email as read without touching any other field.
func (c *Client) MarkAsRead(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodPut, "/emails/"+url.PathEscape(id)+"/read", nil, nil)
	if notFound, ok := err.(*NotFoundError); ok {
		notFound.ID = id
	}
	return err
}

// MarkAsStarred sets the starred flag without touching any other field.
func (c *Client) MarkAsStarred(ctx context.Context, id string, starred bool) error {
	body := map[string]bool{"starred": starred}
	err := c.do(ctx, http.MethodPut, "/emails/"+url.PathEscape(id)+"/star", body, nil)
	if notFound, ok := err.(*NotFoundError); ok {
		notFound.ID = id
	}
	return err
}

// do runs one authenticated round trip. Failures map to the error
// taxonomy: credential failure is *AuthError, transport failure is
// *NetworkError, and non-2xx responses become *NotFoundError, *AuthError
// or *ServerError depending on status.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return &AuthError{Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func errorFromResponse(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &payload); err != nil || payload.Message == "" {
		payload.Message = strings.TrimSpace(string(data))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Err: fmt.Errorf("%s", payload.Message)}
	case http.StatusNotFound:
		return &NotFoundError{}
	default:
		return &ServerError{Status: resp.StatusCode, Message: payload.Message}
	}
}
