package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stellarlinkco/truthwatch/internal/config"
)

const (
	requestTimeout  = 30 * time.Second
	statusPageLimit = 40
)

// StatusError reports a non-2xx response from the feed API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed api status %d: %s", e.Code, e.Body)
}

// Client talks to the Mastodon-style statuses API that Truth Social
// exposes. The account handle is resolved to an account id once and cached.
type Client struct {
	baseURL string
	handle  string
	token   string
	http    *http.Client

	mu        sync.Mutex
	accountID string
}

func NewClient(cfg config.AccountConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultFeedBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		handle:  cfg.Handle,
		token:   cfg.Token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type apiAccount struct {
	ID string `json:"id"`
}

type apiStatus struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
}

func (c *Client) Fetch(ctx context.Context, sinceID string, createdAfter time.Time) ([]Post, error) {
	accountID, err := c.resolveAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve account %s: %w", c.handle, err)
	}

	query := url.Values{"limit": {strconv.Itoa(statusPageLimit)}}
	if sinceID != "" {
		query.Set("since_id", sinceID)
	}
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%s/statuses?%s", c.baseURL, accountID, query.Encode())

	var statuses []apiStatus
	if err := c.get(ctx, endpoint, &statuses); err != nil {
		return nil, fmt.Errorf("fetch statuses: %w", err)
	}

	posts := make([]Post, 0, len(statuses))
	for _, st := range statuses {
		if sinceID == "" && !createdAfter.IsZero() && !st.CreatedAt.After(createdAfter) {
			continue
		}
		posts = append(posts, Post{ID: st.ID, CreatedAt: st.CreatedAt, Content: st.Content})
	}
	return posts, nil
}

func (c *Client) resolveAccount(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accountID != "" {
		return c.accountID, nil
	}

	endpoint := fmt.Sprintf("%s/api/v1/accounts/lookup?acct=%s", c.baseURL, url.QueryEscape(c.handle))
	var account apiAccount
	if err := c.get(ctx, endpoint, &account); err != nil {
		return "", err
	}
	if account.ID == "" {
		return "", fmt.Errorf("account %s not found", c.handle)
	}

	log.Printf("[feed] resolved @%s to account %s", c.handle, account.ID)
	c.accountID = account.ID
	return c.accountID, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
