package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/gdpdash/internal/httputil"
)

// HTTP downloads the CSV export, retrying rate limits and server errors.
type HTTP struct {
	URL    string
	client *http.Client

	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

func NewHTTP(url string) *HTTP {
	return &HTTP{
		URL:             url,
		client:          httputil.NewClient(),
		InitialInterval: backoff.DefaultInitialInterval,
		MaxElapsedTime:  2 * time.Minute,
	}
}

func (h *HTTP) Scheme() string { return "http" }

func (h *HTTP) String() string { return h.URL }

func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	start := time.Now()

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch %s: %w", h.URL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: status %d", h.URL, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", h.URL, resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = h.InitialInterval
	bo.MaxElapsedTime = h.MaxElapsedTime
	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))
	observe("http", start, err)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}
