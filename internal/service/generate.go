package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
)

// ErrUpstream marks a failed call to the image generation API.
var ErrUpstream = errors.New("image generation failed")

const generateSteps = 20

// GenerateService proxies text-to-image requests to Cloudflare Workers AI.
// The model invocation itself is an opaque remote call; this service only
// translates the request and converts the binary response into a data URI.
type GenerateService struct {
	client    *http.Client
	baseURL   string
	accountID string
	apiToken  string
	model     string
}

func NewGenerateService(accountID, apiToken, model string, timeout time.Duration) *GenerateService {
	return &GenerateService{
		client:    &http.Client{Timeout: timeout},
		baseURL:   "https://api.cloudflare.com/client/v4",
		accountID: accountID,
		apiToken:  apiToken,
		model:     model,
	}
}

// Configured reports whether upstream credentials are present. Development
// deployments may run without them; the handler turns this into a 503.
func (s *GenerateService) Configured() bool {
	return s.accountID != "" && s.apiToken != ""
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	NumSteps int    `json:"num_steps"`
	Seed     int    `json:"seed"`
}

type upstreamError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

// Generate runs the prompt through the upstream model and returns the result
// as a PNG data URI, ready to render or to pass to the persistence gateway.
func (s *GenerateService) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Prompt:   prompt,
		NumSteps: generateSteps,
		Seed:     rand.IntN(1000),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", s.baseURL, s.accountID, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrUpstream, upstreamMessage(raw, resp.StatusCode))
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty response body", ErrUpstream)
	}

	slog.Info("image generated",
		"model", s.model,
		"bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// upstreamMessage extracts a human-readable message from a Cloudflare error
// body, falling back to the HTTP status.
func upstreamMessage(raw []byte, status int) string {
	var parsed upstreamError
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
			return parsed.Errors[0].Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return fmt.Sprintf("unexpected status %d", status)
}
