// Package hfinference talks to a model server that exposes extractive
// question answering and text-to-text generation over JSON HTTP, such as a
// small FastAPI wrapper around transformers pipelines.
package hfinference

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

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Options struct {
	URL        string
	Timeout    time.Duration
	MaxRetries uint
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// HTTPError is a non-2xx answer from the model server.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("model server returned %d: %s", e.StatusCode, msg)
}

type client struct {
	url        string
	timeout    time.Duration
	maxRetries uint
	httpClient *http.Client
	logger     *zap.Logger
}

func newClient(opts Options) (*client, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, errors.New("model server URL required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &client{url: url, timeout: timeout, maxRetries: opts.MaxRetries, httpClient: hc, logger: logger}, nil
}

// postJSON sends body and decodes the answer into out. Transport errors and
// 5xx/429 answers are retried with exponential backoff; anything else fails
// at once.
func (c *client) postJSON(ctx context.Context, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := backoff.Retry(ctx, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("model server request failed", zap.String("url", c.url), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(data)}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return nil, httpErr
			}
			return nil, backoff.Permanent(httpErr)
		}
		return data, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode model server response: %w", err)
	}
	return nil
}
