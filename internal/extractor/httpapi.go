package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gasdoc/internal/config"
)

const (
	defaultHTTPTimeout = 120 * time.Second
	maxErrorBody       = 500
)

// HTTPAPI posts JSON to a provider endpoint and decodes the JSON answer. It is shared by the
// raw-HTTP providers so that status handling and rate limiting stay identical across them.
type HTTPAPI struct {
	Provider string
	Endpoint string
	Header   http.Header
	client   *http.Client
}

// NewHTTPAPI builds an HTTPAPI using the timeout from cfg (two minutes when unset).
func NewHTTPAPI(provider, endpoint string, header http.Header, cfg *config.ExtractorProviderConfig) *HTTPAPI {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return &HTTPAPI{
		Provider: provider,
		Endpoint: endpoint,
		Header:   header,
		client:   &http.Client{Timeout: timeout},
	}
}

// PostJSON sends payload and unmarshals a 200 response body into out. 429 responses become
// a RateLimitError honouring Retry-After; other statuses become a StatusError.
func (a *HTTPAPI) PostJSON(ctx context.Context, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", a.Provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", a.Provider, err)
	}
	req.Header = a.Header.Clone()

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s API: %w", a.Provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", a.Provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{
			Provider:   a.Provider,
			StatusCode: resp.StatusCode,
			Body:       Truncate(string(respBody), maxErrorBody),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			wait := ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			return NewRateLimitError(a.Provider, statusErr, wait)
		}
		return statusErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshaling %s response: %w", a.Provider, err)
	}
	return nil
}

// ModelOrDefault returns the configured model, or fallback when none is set.
func ModelOrDefault(cfg *config.ExtractorProviderConfig, fallback string) string {
	if cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return fallback
}
