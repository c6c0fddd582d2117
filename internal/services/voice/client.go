package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scenecast/internal/media"
)

const defaultHTTPTimeout = 300 * time.Second

// Config captures the runtime settings for the speech synthesis service.
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// Settings are the per-job narration options.
type Settings struct {
	VoiceID string
	Speed   float64
	Format  string
}

// Client calls an HTTP text-to-speech service one scene at a time, streaming
// per-scene results back through the progress callback.
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

// NewClient constructs a voice client using the supplied configuration.
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

type synthesisRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
	Format  string  `json:"format"`
}

// SynthesizeBatch narrates every scene into outputDir, invoking progress
// after each completed scene. Synthesis stops at the first failure or when
// the context is cancelled.
func (c *Client) SynthesizeBatch(ctx context.Context, scenes []media.Scene, settings Settings, outputDir string, progress func(percent float64, message string)) ([]media.VoiceClip, error) {
	if c.cfg.BaseURL == "" {
		return nil, errors.New("voice synthesize: base URL required")
	}
	if len(scenes) == 0 {
		return nil, errors.New("voice synthesize: scenes required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("voice synthesize: create output dir: %w", err)
	}

	format := strings.TrimSpace(settings.Format)
	if format == "" {
		format = "mp3"
	}

	clips := make([]media.VoiceClip, 0, len(scenes))
	for i, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return clips, err
		}
		clip, err := c.synthesizeScene(ctx, scene, settings, format, outputDir)
		if err != nil {
			return clips, fmt.Errorf("voice synthesize scene %d: %w", scene.Index, err)
		}
		clips = append(clips, clip)
		if progress != nil {
			percent := float64(i+1) / float64(len(scenes)) * 100
			progress(percent, fmt.Sprintf("Narrated scene %d/%d", i+1, len(scenes)))
		}
	}
	return clips, nil
}

func (c *Client) synthesizeScene(ctx context.Context, scene media.Scene, settings Settings, format, outputDir string) (media.VoiceClip, error) {
	payload, err := json.Marshal(synthesisRequest{
		Text:    scene.Text,
		VoiceID: settings.VoiceID,
		Speed:   settings.Speed,
		Format:  format,
	})
	if err != nil {
		return media.VoiceClip{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/synthesize", bytes.NewReader(payload))
	if err != nil {
		return media.VoiceClip{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return media.VoiceClip{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return media.VoiceClip{}, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	filename := filepath.Join(outputDir, fmt.Sprintf("scene_%03d.%s", scene.Index, format))
	file, err := os.Create(filename)
	if err != nil {
		return media.VoiceClip{}, fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		_ = os.Remove(filename)
		return media.VoiceClip{}, fmt.Errorf("write audio file: %w", err)
	}
	if err := file.Close(); err != nil {
		return media.VoiceClip{}, fmt.Errorf("close audio file: %w", err)
	}

	duration, _ := strconv.ParseFloat(resp.Header.Get("X-Duration-Seconds"), 64)
	return media.VoiceClip{SceneIndex: scene.Index, Filename: filename, DurationSec: duration}, nil
}

// HealthCheck verifies the synthesis endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.BaseURL == "" {
		return errors.New("voice health: base URL required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("voice health: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("voice health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("voice health: http %d", resp.StatusCode)
	}
	return nil
}
