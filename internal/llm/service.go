package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "nomora-backend/internal/errors"
)

// Defaults for a local Ollama install
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen3-vl:2b"
	DefaultTimeout = 30 * time.Second
)

// Generator produces free text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL string
	Model   string
}

// Service talks to the Ollama generate API. Its config can be swapped at
// runtime while requests are in flight.
type Service struct {
	mu     sync.RWMutex
	config Config
	client *http.Client
}

func NewService(baseURL, model string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Service{
		client: &http.Client{
			Timeout: timeout,
		},
	}
	s.SetConfig(Config{BaseURL: baseURL, Model: model})
	return s
}

// Config returns the active base URL and model
func (s *Service) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetConfig replaces the base URL and/or model. Empty fields keep their
// current value, or the default when unset.
func (s *Service) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.BaseURL != "" {
		s.config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model != "" {
		s.config.Model = cfg.Model
	}
	if s.config.BaseURL == "" {
		s.config.BaseURL = DefaultBaseURL
	}
	if s.config.Model == "" {
		s.config.Model = DefaultModel
	}
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}

// Generate calls the Ollama API and returns the trimmed response text
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := s.Config()
	reqBody := GenerateRequest{
		Model:  cfg.Model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w: %w", apperrors.ErrModel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API returned status %d: %w", resp.StatusCode, apperrors.ErrModel)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode ollama response: %w: %w", apperrors.ErrModel, err)
	}

	text := strings.TrimSpace(stripThinking(genResp.Response))
	if text == "" {
		return "", fmt.Errorf("empty response from model: %w", apperrors.ErrModel)
	}
	return text, nil
}

// stripThinking drops the first <think>...</think> block some models emit,
// wherever it appears in the text
func stripThinking(s string) string {
	start := strings.Index(s, "<think>")
	end := strings.Index(s, "</think>")
	if start >= 0 && end > start {
		return s[:start] + s[end+len("</think>"):]
	}
	return s
}
