package mailman

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
	"time"

	"github.com/groupmail/groupmail-services/internal/metrics"
)

// Client is a client for the mailing-list server's HTTP API. Every command
// answers with a JSON object listing the errors it hit; a non-empty list
// is a failure.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// Error carries the error strings reported by the mailing-list server.
type Error struct {
	Command string
	Status  int
	Errors  []string
}

func (e *Error) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s failed with status %d", e.Command, e.Status)
	}
	return fmt.Sprintf("%s failed: %s", e.Command, strings.Join(e.Errors, "; "))
}

type commandResponse struct {
	Errors []string `json:"errors"`
}

// NewClient creates a new instance of Client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// NewList creates a list owned by ownerEmail with secret as its admin
// password.
func (c *Client) NewList(ctx context.Context, list, ownerEmail, secret string) error {
	body, _ := json.Marshal(map[string]string{
		"name":     list,
		"owner":    ownerEmail,
		"password": secret,
	})
	return c.command(ctx, "newlist", http.MethodPost, c.BaseURL+"/lists", body)
}

// AddMembers subscribes emails to list.
func (c *Client) AddMembers(ctx context.Context, list string, emails []string) error {
	body, _ := json.Marshal(map[string][]string{"members": emails})
	endpoint := fmt.Sprintf("%s/lists/%s/members", c.BaseURL, url.PathEscape(list))
	return c.command(ctx, "add_members", http.MethodPost, endpoint, body)
}

// RemoveMembers unsubscribes emails from list.
func (c *Client) RemoveMembers(ctx context.Context, list string, emails []string) error {
	body, _ := json.Marshal(map[string][]string{"members": emails})
	endpoint := fmt.Sprintf("%s/lists/%s/remove_members", c.BaseURL, url.PathEscape(list))
	return c.command(ctx, "remove_members", http.MethodPost, endpoint, body)
}

// RmList deletes list and its archives.
func (c *Client) RmList(ctx context.Context, list string) error {
	endpoint := fmt.Sprintf("%s/lists/%s", c.BaseURL, url.PathEscape(list))
	return c.command(ctx, "rmlist", http.MethodDelete, endpoint, nil)
}

func (c *Client) command(ctx context.Context, name, method, endpoint string, body []byte) error {
	respBody, statusCode, err := c.makeRequest(ctx, method, endpoint, body)
	metrics.ObserveMailman(name, strconv.Itoa(statusCode))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	var resp commandResponse
	if len(bytes.TrimSpace(respBody)) > 0 {
		if jsonErr := json.Unmarshal(respBody, &resp); jsonErr != nil && statusCode < 400 {
			return fmt.Errorf("failed to decode %s response: %w", name, jsonErr)
		}
	}

	if statusCode >= 400 || len(resp.Errors) > 0 {
		return &Error{Command: name, Status: statusCode, Errors: resp.Errors}
	}
	return nil
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if c.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return respBody, resp.StatusCode, nil
}
