// Package clients talks to the collaborator services that own course, staffing
// and notification data. Every failure is reported as an error wrapping
// ErrUnavailable; callers decide whether it aborts an operation or only one item.
package clients

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

	"github.com/noah-isme/ta-hiring-api/pkg/middleware/requestid"
)

// ErrUnavailable marks any failed call to a collaborator service.
var ErrUnavailable = errors.New("remote service unavailable")

// StatusError describes a non-2xx answer from a collaborator.
type StatusError struct {
	Provider   string
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Provider, e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Body)
}

// Unwrap lets callers match StatusError with errors.Is(err, ErrUnavailable).
func (e *StatusError) Unwrap() error { return ErrUnavailable }

// Observer receives one callback per finished remote call.
type Observer interface {
	ObserveRemoteCall(provider, operation string, err error, duration time.Duration)
}

// Options configures a collaborator client.
type Options struct {
	BaseURL     string
	InternalKey string
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Retries applies to GET calls only; writes are attempted once.
	Retries    int
	HTTPClient *http.Client
	Observer   Observer
}

type base struct {
	provider    string
	baseURL     string
	internalKey string
	timeout     time.Duration
	retries     int
	client      *http.Client
	observer    Observer
}

func newBase(provider string, opts Options) base {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return base{
		provider:    provider,
		baseURL:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		internalKey: strings.TrimSpace(opts.InternalKey),
		timeout:     timeout,
		retries:     retries,
		client:      client,
		observer:    opts.Observer,
	}
}

// call performs one logical request, retrying idempotent reads on transport
// errors and 5xx answers. out may be nil.
func (b base) call(ctx context.Context, operation, method, path string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		if b.observer != nil {
			b.observer.ObserveRemoteCall(b.provider, operation, err, time.Since(start))
		}
	}()

	if b.baseURL == "" {
		return fmt.Errorf("%s %s: base url not configured: %w", b.provider, operation, ErrUnavailable)
	}

	var payload []byte
	if in != nil {
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", b.provider, operation, err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += b.retries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%s %s: %v: %w", b.provider, operation, ctx.Err(), ErrUnavailable)
		}
		retry, err := b.attempt(ctx, operation, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return lastErr
}

func (b base) attempt(ctx context.Context, operation, method, path string, payload []byte, out interface{}) (bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, b.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("%s %s: build request: %w", b.provider, operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.internalKey != "" {
		req.Header.Set("X-Internal-Key", b.internalKey)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("%s %s: %v: %w", b.provider, operation, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return true, fmt.Errorf("%s %s: read response: %v: %w", b.provider, operation, err, ErrUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{
			Provider:   b.provider,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
		return resp.StatusCode >= 500, statusErr
	}
	if out == nil || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%s %s: decode response: %v: %w", b.provider, operation, err, ErrUnavailable)
	}
	return false, nil
}
