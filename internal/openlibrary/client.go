// Package openlibrary is a thin client for the Open Library search API.
package openlibrary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"book-scout/internal/model"
)

const (
	defaultQueryType = "q"
	defaultLimit     = "3"
)

// Client queries the Open Library search endpoint.
type Client struct {
	http    *resty.Client
	url     string
	timeout time.Duration
}

// New creates a Client for the given search URL.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		http:    resty.New(),
		url:     url,
		timeout: timeout,
	}
}

// Search executes the structured query against Open Library. The spec may
// still be incomplete when the model failed to produce required keys twice;
// missing fields fall back to searching everything with the default limit.
// The limit is sent as the "limit" query parameter.
func (c *Client) Search(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	queryType := spec.QueryType
	if queryType == "" {
		queryType = defaultQueryType
	}
	limit := spec.Limit
	if limit == "" {
		limit = defaultLimit
	}

	var result model.SearchResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam(queryType, spec.QueryValue).
		SetQueryParam("limit", limit).
		SetResult(&result).
		Get(c.url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("open library returned status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return &result, nil
}
