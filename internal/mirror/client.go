// Package mirror resolves token metadata from the Hedera mirror node
// REST API for tokens missing from the built-in registry.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	retries    int
	userAgent  string
}

func New(baseURL string, timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		retries:    retries,
		userAgent:  "sswap/1.0",
	}
}

// TokenInfo is the subset of /api/v1/tokens/{id} the client needs.
type TokenInfo struct {
	ID       hid.ID
	Symbol   string
	Name     string
	Decimals int
}

type tokenResponse struct {
	TokenID  string `json:"token_id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals string `json:"decimals"`
}

func (c *Client) TokenInfo(ctx context.Context, id hid.ID) (TokenInfo, error) {
	url := fmt.Sprintf("%s/api/v1/tokens/%s", c.baseURL, id)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return TokenInfo{}, swaperr.Wrap(swaperr.CodeRPC, "mirror request cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}
		info, retryable, err := c.fetch(ctx, url)
		if err == nil {
			return info, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return TokenInfo{}, lastErr
}

func (c *Client) fetch(ctx context.Context, url string) (TokenInfo, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return TokenInfo{}, false, swaperr.Wrap(swaperr.CodeInternal, "build mirror request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TokenInfo{}, true, swaperr.Wrap(swaperr.CodeRPC, "mirror node unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return TokenInfo{}, false, swaperr.New(swaperr.CodeUsage, "token not found on mirror node")
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return TokenInfo{}, true, swaperr.New(swaperr.CodeRPC, fmt.Sprintf("mirror node unavailable (status %d)", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return TokenInfo{}, false, swaperr.New(swaperr.CodeRPC, fmt.Sprintf("unexpected mirror node status %d", resp.StatusCode))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return TokenInfo{}, false, swaperr.Wrap(swaperr.CodeRPC, "decode mirror node response", err)
	}
	id, err := hid.ParseID(payload.TokenID)
	if err != nil {
		return TokenInfo{}, false, err
	}
	decimals, err := strconv.Atoi(strings.TrimSpace(payload.Decimals))
	if err != nil || decimals < 0 {
		return TokenInfo{}, false, swaperr.New(swaperr.CodeRPC, "mirror node returned invalid decimals")
	}
	return TokenInfo{ID: id, Symbol: payload.Symbol, Name: payload.Name, Decimals: decimals}, false, nil
}
