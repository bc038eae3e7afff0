// Package source holds the HTTP clients for the two upstream feeds a
// reconciliation pass joins: the course roster and the classmate-match
// results. Both authenticate with the caller's stored upstream token.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
)

// TokenProvider resolves the upstream API token for a user.
type TokenProvider interface {
	Token(ctx context.Context, userID string) (string, error)
}

// Client issues authenticated GETs against the upstream LMS API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	logger  *zap.Logger
}

// NewClient constructs an upstream client.
func NewClient(baseURL string, timeout time.Duration, tokens TokenProvider, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// getJSON fetches path with the user's bearer token and decodes the body
// into dest. Non-2xx statuses become errors carrying the upstream status.
func (c *Client) getJSON(ctx context.Context, userID, path string, dest interface{}) error {
	token, err := c.tokens.Token(ctx, userID)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return appErrors.Clone(appErrors.ErrTokenNotSet, "upstream rejected the stored token")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("upstream error response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("upstream %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode upstream response %s: %w", path, err)
	}
	return nil
}
