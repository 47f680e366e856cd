// Package remote calls an external moderation endpoint speaking the
// {"input": text} -> {"results": [...]} JSON contract.
package remote

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

	"github.com/haukened/commentguard/internal/moderation/domain"
	"github.com/haukened/commentguard/internal/moderation/services/moderator"
)

// DefaultEndpoint is the OpenAI moderation API.
const DefaultEndpoint = "https://api.openai.com/v1/moderations"

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20
)

// Error message constants for consistent error handling
const (
	errAPIKeyRequired  = "moderation API key is required"
	errEncodeFailed    = "encode request failed: %w"
	errRequestFailed   = "build request failed: %w"
	errTransportFailed = "moderation request failed: %w"
	errBadStatus       = "moderation endpoint returned status %d"
	errDecodeFailed    = "decode response failed: %w"
	errNoResults       = "moderation response contained no results"
)

// ErrNoResults is returned when the endpoint answers with an empty results array.
var ErrNoResults = errors.New(errNoResults)

// Client performs moderation calls against one endpoint with one credential.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// Options configures a Client.
type Options struct {
	// required
	APIKey string
	// optional; defaults to DefaultEndpoint and a 10s timeout
	Endpoint string
	Timeout  time.Duration
	// inject for testing
	HTTPClient *http.Client
}

// NewClient returns a Client. The API key is required.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New(errAPIKeyRequired)
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		endpoint: opts.Endpoint,
		apiKey:   opts.APIKey,
		http:     opts.HTTPClient,
	}, nil
}

// Factory returns a moderator.GatewayFactory that shares base's endpoint,
// timeout and HTTP client but binds each gateway to the supplied key.
func Factory(base Options) moderator.GatewayFactory {
	return func(apiKey string) (moderator.ModerationGateway, error) {
		opts := base
		opts.APIKey = apiKey
		return NewClient(opts)
	}
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []domain.RemoteResult `json:"results"`
}

// Moderate sends text and returns the first result. Any non-2xx status,
// transport error or undecodable body is an error.
func (c *Client) Moderate(ctx context.Context, text string) (domain.RemoteResult, error) {
	body, err := json.Marshal(moderationRequest{Input: text})
	if err != nil {
		return domain.RemoteResult{}, fmt.Errorf(errEncodeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.RemoteResult{}, fmt.Errorf(errRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.RemoteResult{}, fmt.Errorf(errTransportFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		return domain.RemoteResult{}, fmt.Errorf(errBadStatus, resp.StatusCode)
	}

	var out moderationResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return domain.RemoteResult{}, fmt.Errorf(errDecodeFailed, err)
	}
	if len(out.Results) == 0 {
		return domain.RemoteResult{}, ErrNoResults
	}
	return out.Results[0], nil
}

var _ moderator.ModerationGateway = (*Client)(nil)
