package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"conform/internal/config"
	"conform/internal/media"
	"conform/internal/services"
)

// Client is the typed HTTP client the CLI uses against conformd.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client from configuration. The server URL must be set.
func NewClient(cfg *config.Config) (*Client, error) {
	url := strings.TrimSpace(cfg.Server.URL)
	if url == "" {
		return nil, services.Wrap(
			services.ErrConfiguration,
			"api",
			"client",
			"server.url is not set; run `conform config set server.url <url>`",
			nil,
		)
	}
	return NewClientURL(url), nil
}

// NewClientURL builds a client against an explicit base URL.
func NewClientURL(url string) *Client {
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Create uploads a record and returns the stored copy with its id.
func (c *Client) Create(ctx context.Context, rec *media.FileRecord) (*media.FileRecord, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created media.FileRecord
	if err := c.do(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Get fetches one record, or nil when the server has no such id.
func (c *Client) Get(ctx context.Context, id int64) (*media.FileRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/files/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "api", "get", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError("get", resp)
	}
	var rec media.FileRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// List returns records ordered by id.
func (c *Client) List(ctx context.Context, offset, limit int) ([]media.FileRecord, error) {
	url := fmt.Sprintf("%s/files/?skip=%d&limit=%d", c.baseURL, offset, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var records []media.FileRecord
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a record, reporting whether the server had it.
func (c *Client) Delete(ctx context.Context, id int64) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/files/%d", c.baseURL, id), nil)
	if err != nil {
		return false, err
	}
	var removed bool
	if err := c.do(req, &removed); err != nil {
		return false, err
	}
	return removed, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "api", strings.ToLower(req.Method), c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(strings.ToLower(req.Method), resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func responseError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(body))
	marker := services.ErrExternalTool
	if resp.StatusCode == http.StatusNotFound {
		marker = services.ErrNotFound
	}
	return services.Wrap(marker, "api", operation, fmt.Sprintf("status %d: %s", resp.StatusCode, detail), nil)
}
