// Package resilience wraps outbound asset fetches so that a transient
// upstream failure does not break page loads.
package resilience

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SubstitutedHeader marks a response that was replaced by an empty 200.
const SubstitutedHeader = "X-Resilience-Substituted"

// Rescue actions reported to the Recorder.
const (
	ActionRetry      = "retry"
	ActionSubstitute = "substitute"
)

// DefaultPrefixes are the request paths that identify asset chunks.
var DefaultPrefixes = []string{"/_next/static/", "/assets/"}

// Recorder counts rescue actions.
type Recorder interface {
	AssetRescue(action string)
}

// Transport is an http.RoundTripper that retries an asset chunk request once
// after a rate limit or transport error, and substitutes an empty 200 when it
// still fails. Requests that are not asset chunks pass through untouched.
type Transport struct {
	Base       http.RoundTripper
	Prefixes   []string
	RetryDelay time.Duration
	Recorder   Recorder
	Logger     *zap.Logger
}

// NewTransport wraps base. A nil base uses http.DefaultTransport and empty
// prefixes fall back to DefaultPrefixes.
func NewTransport(base http.RoundTripper, prefixes []string, retryDelay time.Duration, recorder Recorder, logger *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		Base:       base,
		Prefixes:   prefixes,
		RetryDelay: retryDelay,
		Recorder:   recorder,
		Logger:     logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.eligible(req) {
		return t.Base.RoundTrip(req)
	}

	resp, err := t.Base.RoundTrip(req)
	if shouldRetry(resp, err) {
		discard(resp)
		t.record(ActionRetry)
		t.Logger.Debug("retrying asset request",
			zap.String("path", req.URL.Path), zap.Int("status", statusOf(resp)), zap.Error(err))

		if waitErr := wait(req.Context(), t.RetryDelay); waitErr != nil {
			return nil, waitErr
		}
		resp, err = t.Base.RoundTrip(req)
	}

	if stillFailing(resp, err) {
		t.Logger.Warn("substituting empty asset response",
			zap.String("path", req.URL.Path), zap.Int("status", statusOf(resp)), zap.Error(err))
		discard(resp)
		t.record(ActionSubstitute)
		return substitute(req), nil
	}
	return resp, nil
}

// Eligible reports whether path identifies an asset chunk.
func (t *Transport) Eligible(path string) bool {
	for _, prefix := range t.Prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (t *Transport) eligible(req *http.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}
	return t.Eligible(req.URL.Path)
}

func (t *Transport) record(action string) {
	if t.Recorder != nil {
		t.Recorder.AssetRescue(action)
	}
}

func shouldRetry(resp *http.Response, err error) bool {
	return err != nil || resp.StatusCode == http.StatusTooManyRequests
}

func stillFailing(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode >= 500:
		return true
	}
	return false
}

func substitute(req *http.Request) *http.Response {
	header := make(http.Header)
	header.Set(SubstitutedHeader, "1")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Length", "0")
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          http.NoBody,
		ContentLength: 0,
		Request:       req,
	}
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
