// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/search"
	"github.com/pdiddy/research-digest/pkg/types"
)

type fakeDigester struct {
	state   digest.State
	err     error
	queries []string
}

func (f *fakeDigester) Run(_ context.Context, query string) (digest.State, error) {
	f.queries = append(f.queries, query)
	s := f.state
	s.Query = query
	return s, f.err
}

func newTestServer(t *testing.T, d Digester, origins ...string) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(d, types.ServerConfig{AllowedOrigins: origins}, reg, nil), reg
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSummarize_OK(t *testing.T) {
	d := &fakeDigester{state: digest.State{
		RunID:        "run-1",
		FinalOutput:  "Summary.\n\nSummarized Research Papers:\n- P1",
		RewriteCount: 1,
	}}
	s, _ := newTestServer(t, d)

	rec := post(t, s.Handler(), `{"query": "graph neural networks"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "run-1", rec.Header().Get("X-Run-ID"))

	var resp summarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Summary.\n\nSummarized Research Papers:\n- P1", resp.Summary)
	assert.Equal(t, []string{"graph neural networks"}, d.queries)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues(outcomeOK)))
}

func TestSummarize_RunFailure(t *testing.T) {
	cause := &search.CollectorError{Source: "arxiv", Err: errors.New("connection refused")}
	d := &fakeDigester{
		state: digest.State{RunID: "run-2"},
		err:   &digest.RunError{Step: digest.StepCollectA, Err: cause},
	}
	s, _ := newTestServer(t, d)

	rec := post(t, s.Handler(), `{"query": "q"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "connection refused")

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.Failures.WithLabelValues("collect_a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues(outcomeError)))
}

func TestSummarize_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"query": `, "invalid request body"},
		{"empty query", `{"query": "   "}`, "query is required"},
		{"missing query", `{}`, "query is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDigester{}
			s, _ := newTestServer(t, d)

			rec := post(t, s.Handler(), tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, d.queries, "digester must not run")
		})
	}
}

func TestSummarize_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, &fakeDigester{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summarize", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeDigester{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeDigester{state: digest.State{FinalOutput: "x"}})
	post(t, s.Handler(), `{"query": "q"}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `digest_requests_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "digest_rewrites_bucket")
}

func TestCORS(t *testing.T) {
	t.Run("allow all", func(t *testing.T) {
		s, _ := newTestServer(t, &fakeDigester{state: digest.State{FinalOutput: "x"}})
		req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(`{"query":"q"}`))
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		d := &fakeDigester{}
		s, _ := newTestServer(t, d, "*")
		req := httptest.NewRequest(http.MethodOptions, "/summarize", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Empty(t, d.queries)
	})

	t.Run("restricted origin", func(t *testing.T) {
		s, _ := newTestServer(t, &fakeDigester{state: digest.State{FinalOutput: "x"}}, "https://app.example.org")

		allowed := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(`{"query":"q"}`))
		allowed.Header.Set("Origin", "https://app.example.org")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, allowed)
		assert.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

		other := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(`{"query":"q"}`))
		other.Header.Set("Origin", "https://evil.example.com")
		rec = httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, other)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestListenAndServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	reg := prometheus.NewRegistry()
	s := New(&fakeDigester{}, types.ServerConfig{Addr: addr, ShutdownTimeout: time.Second}, reg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
