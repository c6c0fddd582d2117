package prodrecord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Record mirrors the remote production record for one video job.
type Record struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Step        string `json:"step,omitempty"`
	VideoPath   string `json:"video_path,omitempty"`
	ExportDir   string `json:"export_dir,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Config captures the production record service connection settings.
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Client talks to the remote production record service. Callers treat every
// operation as best-effort and must not fail a job on its errors.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a production record client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Create registers a new record and returns its remote ID.
func (c *Client) Create(ctx context.Context, record Record) (string, error) {
	var created Record
	if err := c.do(ctx, http.MethodPost, "/v1/records", record, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", errors.New("production record: service returned no id")
	}
	return created.ID, nil
}

// Update replaces the mutable fields of an existing record.
func (c *Client) Update(ctx context.Context, id string, record Record) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("production record: id required")
	}
	return c.do(ctx, http.MethodPatch, "/v1/records/"+id, record, nil)
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return Record{}, errors.New("production record: id required")
	}
	var record Record
	if err := c.do(ctx, http.MethodGet, "/v1/records/"+id, nil, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.cfg.BaseURL == "" {
		return errors.New("production record: base URL required")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("production record: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("production record: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("production record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("production record: http %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("production record: decode response: %w", err)
	}
	return nil
}
