// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the literature collectors.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/research-digest/pkg/types"
)

// MaxBodyBytes caps how much of a response body Get reads. Tests lower it.
var MaxBodyBytes int64 = 10 << 20

// maxErrorSnippet is how much of a non-200 body is kept in a StatusError.
const maxErrorSnippet = 256

// StatusError reports a response whose status code is not 200 OK.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// NewClient returns an HTTP client whose overall request time is bounded by
// cfg.Timeout. A zero timeout leaves the client unbounded; Get still applies
// its own per-call deadline.
func NewClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// Get issues exactly one GET request and returns the body of a 200 response.
// When timeout is positive the request, including reading the body, must
// finish within it. Get never retries: a 429 or 5xx is returned to the caller
// as a *StatusError.
func Get(ctx context.Context, client *http.Client, rawURL, userAgent string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	if int64(len(body)) > MaxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxBodyBytes)
	}
	return body, nil
}

// IsTimeout reports whether err was caused by a deadline, either the
// context's or the client's.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		cut := maxErrorSnippet
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
