package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mtlprog/kanban/internal/middleware"
)

var (
	// ErrKeyNotFound is returned by Load when the key has never been saved.
	ErrKeyNotFound = errors.New("key not found")

	// ErrForbidden is returned when the server rejects the API token.
	ErrForbidden = errors.New("api token rejected")
)

// Client talks to a Server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient registers with the server at baseURL and returns a client holding the issued token.
// A nil httpClient means http.DefaultClient.
func NewClient(ctx context.Context, baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}

	token, err := c.do(ctx, http.MethodGet, "/register", nil)
	if err != nil {
		return nil, fmt.Errorf("register with %s: %w", c.baseURL, err)
	}
	c.token = string(token)
	return c, nil
}

// Token returns the API token used for requests.
func (c *Client) Token() string {
	return c.token
}

// Save stores value under key.
func (c *Client) Save(ctx context.Context, key string, value []byte) error {
	if _, err := c.do(ctx, http.MethodPost, c.keyPath("save", key), value); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Load returns the value stored under key.
func (c *Client) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := c.do(ctx, http.MethodGet, c.keyPath("load", key), nil)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return value, nil
}

func (c *Client) keyPath(op, key string) string {
	q := url.Values{middleware.TokenParam: {c.token}}
	return "/" + op + "/" + url.PathEscape(key) + "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return data, nil
	case http.StatusNotFound:
		return nil, ErrKeyNotFound
	case http.StatusForbidden:
		return nil, ErrForbidden
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
}
