// Package directory fetches employee records from the remote user directory.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/hr-dashboard/internal/logging"
)

// DefaultBaseURL is the public directory the dashboard reads from.
const DefaultBaseURL = "https://dummyjson.com"

// ErrUnexpectedStatus is returned when the directory answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("directory: unexpected status")

// User mirrors one entry of the directory's users payload.
type User struct {
	ID        int     `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Age       int     `json:"age"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address"`
}

// Address is the postal address of a directory user.
type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type usersResponse struct {
	Users []User `json:"users"`
}

// Client calls the directory's users endpoint.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	logger  *slog.Logger
}

// NewClient returns a client for baseURL. A nil httpClient becomes a client
// with the given timeout; zero disables the timeout.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse directory url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("directory url %q must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: parsed, client: httpClient, logger: logger}, nil
}

func (c *Client) usersURL(limit int) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/users"
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchUsers requests up to limit users. Transport failures, non-2xx statuses
// and undecodable bodies are all returned as errors.
func (c *Client) FetchUsers(ctx context.Context, limit int) (users []User, err error) {
	if c == nil {
		return nil, fmt.Errorf("directory client is nil")
	}

	endpoint := c.usersURL(limit)
	logger := logging.FromContextOr(ctx, c.logger).With("component", "directory", "url", endpoint)
	start := time.Now()
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "directory fetch failed", "error", err, "duration", time.Since(start))
			return
		}
		logger.DebugContext(ctx, "directory fetch completed", "users", len(users), "duration", time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(snippet)))
	}

	var payload usersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode directory response: %w", err)
	}
	if payload.Users == nil {
		return nil, fmt.Errorf("decode directory response: missing users field")
	}
	return payload.Users, nil
}
