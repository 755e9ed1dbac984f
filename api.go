package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Client issues authenticated calls against the Fastidious API. It is pure
// with respect to its (BaseURL, Token) pair: there is no shared credential
// state, so one Client is created per session and calls are safe to run
// concurrently. The client never retries and sets no timeouts of its own; a
// failed or non-2xx response is surfaced to the caller as an error.
type Client struct {
	BaseURL string
	Token   string

	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Fastidious API client for the given base URL and
// bearer token.
func NewClient(baseURL, token string, lg *slog.Logger) *Client {
	if lg == nil {
		lg = slog.Default()
	}
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		httpClient: http.DefaultClient,
		logger:     lg,
	}
}

// apiError is a non-2xx response from the remote service.
type apiError struct {
	Code   int    // HTTP status code
	Status string // status line, e.g. "404 Not Found"
}

func (e *apiError) Error() string {
	return fmt.Sprintf("fastidious api: %s", e.Status)
}

// call performs one HTTP exchange. A non-nil body is serialised as JSON and
// flagged with the JSON content type; every request carries the bearer
// token. When out is non-nil the response body is decoded into it.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.DebugContext(ctx, "fastidious api call", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &apiError{Code: resp.StatusCode, Status: resp.Status}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateItem creates a note or collection.
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*Note, error) {
	var n Note
	if err := c.call(ctx, http.MethodPost, apiItemsPath, req, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// GetItem fetches a single item by id, including its content.
func (c *Client) GetItem(ctx context.Context, id string) (*Note, error) {
	var n Note
	if err := c.call(ctx, http.MethodGet, apiItemsPath+"/"+url.PathEscape(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateItem applies a partial update to an item.
func (c *Client) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Note, error) {
	var n Note
	if err := c.call(ctx, http.MethodPut, apiItemsPath+"/"+url.PathEscape(id), req, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteItem removes an item by id.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, apiItemsPath+"/"+url.PathEscape(id), nil, nil)
}

// ListItems returns items matching the query. The remote endpoint answers
// with a JSON array.
func (c *Client) ListItems(ctx context.Context, q ListItemsQuery) ([]Note, error) {
	v := url.Values{}
	if q.ParentID != "" {
		v.Set("parentId", q.ParentID)
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	path := apiItemsPath
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var items []Note
	if err := c.call(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MoveItem reparents an item. A nil target means a move to the root; the
// request body then carries an explicit null, never an absent key.
func (c *Client) MoveItem(ctx context.Context, id string, targetParentID *string) (*Note, error) {
	var n Note
	path := apiItemsPath + "/" + url.PathEscape(id) + "/move"
	if err := c.call(ctx, http.MethodPost, path, MoveItemRequest{TargetParentID: targetParentID}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
