// Package wordpress talks to the WordPress REST API using application passwords.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZaguanLabs/wptl"
	"go.uber.org/zap"
)

// Credentials identify a WordPress site and an application password.
type Credentials struct {
	SiteURL     string
	Username    string
	AppPassword string
}

// Normalized returns the credentials with SiteURL ending in "/".
func (c Credentials) Normalized() Credentials {
	if c.SiteURL != "" && !strings.HasSuffix(c.SiteURL, "/") {
		c.SiteURL += "/"
	}
	return c
}

// User is the authenticated account.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Client is a WordPress REST client.
type Client struct {
	creds  Credentials
	http   *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the site in creds.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:  creds.Normalized(),
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SiteURL returns the normalized site URL.
func (c *Client) SiteURL() string {
	return c.creds.SiteURL
}

// Authenticate verifies the credentials against users/me.
func (c *Client) Authenticate(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "authenticate", http.MethodGet, "wp-json/wp/v2/users/me", nil, &user); err != nil {
		return nil, err
	}
	c.logger.Debug("authenticated", zap.String("user", user.Slug))
	return &user, nil
}

// ListPages returns the first hundred pages of the site.
func (c *Client) ListPages(ctx context.Context) ([]*wptl.Page, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, "list pages", http.MethodGet, "wp-json/wp/v2/pages?per_page=100", nil, &raw); err != nil {
		return nil, err
	}

	pages := make([]*wptl.Page, 0, len(raw))
	for _, r := range raw {
		p, err := decodePage(r)
		if err != nil {
			return nil, &wptl.PublishError{Operation: "list pages", Message: "invalid page JSON", Cause: err}
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// GetPage fetches one page in edit context so raw content is available.
func (c *Client) GetPage(ctx context.Context, id int) (*wptl.Page, error) {
	var raw json.RawMessage
	path := "wp-json/wp/v2/pages/" + strconv.Itoa(id) + "?context=edit"
	if err := c.do(ctx, "get page", http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	p, err := decodePage(raw)
	if err != nil {
		return nil, &wptl.PublishError{Operation: "get page", Message: "invalid page JSON", Cause: err}
	}
	return p, nil
}

// CreatePage posts draft. Its metadata bag is sent as is, with the typed
// fields written over it.
func (c *Client) CreatePage(ctx context.Context, draft *wptl.Page) (*wptl.Page, error) {
	body, err := draftPayload(draft)
	if err != nil {
		return nil, &wptl.PublishError{Operation: "create page", Message: "encoding payload", Cause: err}
	}

	var raw json.RawMessage
	if err := c.do(ctx, "create page", http.MethodPost, "wp-json/wp/v2/pages", body, &raw); err != nil {
		return nil, err
	}
	p, err := decodePage(raw)
	if err != nil {
		return nil, &wptl.PublishError{Operation: "create page", Message: "invalid page JSON", Cause: err}
	}
	c.logger.Info("page created", zap.Int("id", p.ID), zap.String("status", p.Status))
	return p, nil
}

// apiError is the error body returned by the REST API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out interface{}) error {
	if _, err := url.ParseRequestURI(c.creds.SiteURL); err != nil {
		return &wptl.PublishError{Operation: op, Message: "invalid site URL", Cause: err}
	}
	endpoint := c.creds.SiteURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &wptl.PublishError{Operation: op, Cause: err}
	}
	req.SetBasicAuth(c.creds.Username, c.creds.AppPassword)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", wptl.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &wptl.PublishError{Operation: op, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &wptl.PublishError{Operation: op, StatusCode: resp.StatusCode, Cause: err}
	}
	c.logger.Debug("wordpress request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		msg := resp.Status
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return &wptl.PublishError{Operation: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &wptl.PublishError{Operation: op, StatusCode: resp.StatusCode, Message: "invalid JSON response", Cause: err}
	}
	return nil
}

var _ wptl.PageStore = (*Client)(nil)
