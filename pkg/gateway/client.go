package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const defaultErrorMessage = "internal server error"

// APIError is the normalized {message, status} shape every gateway failure is
// reduced to. Status is 0 when the request never produced an HTTP response
// (connection refused, timeout, and so on).
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("gateway unreachable: %s", e.Message)
	}
	return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.Status)
}

// Client talks to the remote task gateway. Authenticated calls carry the
// session token as a bearer credential; a 401 on any authenticated call
// fires the unauthorized hook so the session can be torn down. Login and
// register are unauthenticated, so a rejected credential there never clears
// an existing session.
type Client struct {
	baseURL        string
	base           *http.Client
	onUnauthorized func()
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    &http.Client{Timeout: timeout},
	}
}

// SetUnauthorizedHook registers the callback fired when an authenticated
// call comes back 401.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// httpFor returns the client to use for a request: the bearer-injecting
// oauth2 client when a token is present, the bare client otherwise.
func (c *Client) httpFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.base
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	authed.Timeout = c.base.Timeout
	return authed
}

// do performs one round trip and normalizes every failure into *APIError.
// The response body is returned untouched on success.
func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpFor(ctx, token).Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Status: resp.StatusCode}
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		msg := gjson.GetBytes(respBody, "message").String()
		if msg == "" {
			msg = defaultErrorMessage
		}
		return nil, &APIError{Message: msg, Status: resp.StatusCode}
	}

	return respBody, nil
}

func (c *Client) get(ctx context.Context, path, token string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, token, nil)
}

func (c *Client) post(ctx context.Context, path, token string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, token, body)
}

func (c *Client) patch(ctx context.Context, path, token string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, path, token, body)
}

func (c *Client) delete(ctx context.Context, path, token string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, token, nil)
}
