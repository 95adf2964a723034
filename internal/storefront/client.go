// Package storefront is the cookie-authenticated HTTP client for the
// product, cart and purchase endpoints of the storefront backend.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthorized maps HTTP 401; the host application turns it into a
// redirect to login.
var ErrUnauthorized = errors.New("session expired or not logged in")

// APIError is a domain rejection carrying the server-provided message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %s (status %d)", e.Message, e.Status)
}

// Client talks to one storefront backend. The cookie jar holds the ambient
// session issued at login and is shared with the websocket handshake.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL (no trailing slash required).
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// SessionHeader exports the session cookies as a header for the websocket
// handshake, which does not go through the jar.
func (c *Client) SessionHeader() http.Header {
	header := http.Header{}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return header
	}
	pairs := make([]string, 0, 2)
	for _, cookie := range c.http.Jar.Cookies(u) {
		pairs = append(pairs, cookie.String())
	}
	if len(pairs) > 0 {
		header.Set("Cookie", strings.Join(pairs, "; "))
	}
	return header
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		msg := payload.Error
		if msg == "" {
			msg = payload.Message
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
