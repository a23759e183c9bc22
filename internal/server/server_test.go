package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/observed/internal/demo"
	"github.com/aretw0/observed/internal/logging"
	"github.com/aretw0/observed/internal/server"
	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/identity"
	"github.com/aretw0/observed/pkg/observability"
	"github.com/aretw0/observed/pkg/observable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTarget struct{}

func (failingTarget) Call(arg string) ([]demo.Line, error) {
	return []demo.Line{{Source: "t", Text: arg}}, fmt.Errorf("%w: boom", domain.ErrObserverFailed)
}

func (failingTarget) Observers() []identity.Key { return nil }

// brokenWriter accepts headers but fails every body write, like a client that
// hung up mid-response.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func newScenario(t *testing.T, opts ...observable.Option) *demo.Scenario {
	t.Helper()
	s, err := demo.NewScenario(opts...)
	require.NoError(t, err)
	return s
}

func TestHealth(t *testing.T) {
	handler := server.NewHandler(newScenario(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestObservers(t *testing.T) {
	s := newScenario(t)
	handler := server.NewHandler(s)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/observers", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var views []server.ObserverView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 4)
	assert.Equal(t, []string{"function", "function", "method", "method"},
		[]string{views[0].Kind, views[1].Kind, views[2].Kind, views[3].Kind})
	assert.Equal(t, identity.MethodOf(s.B, "baz").String(), views[3].Key)
}

func TestCall(t *testing.T) {
	handler := server.NewHandler(newScenario(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", strings.NewReader(`{"arg":"banana"}`))
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.CallResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Trace, 5)
	assert.Equal(t, "a called bar with arg: banana", resp.Trace[0].Text)
	assert.Equal(t, "b.baz", resp.Trace[4].Source)
	assert.Empty(t, resp.Error)
}

func TestCall_BadBody(t *testing.T) {
	handler := server.NewHandler(newScenario(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCall_ObserverFailure(t *testing.T) {
	handler := server.NewHandler(failingTarget{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call", strings.NewReader(`{"arg":"x"}`)))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp server.CallResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "boom")
	assert.Len(t, resp.Trace, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.MustNewMetrics(reg)
	handler := server.NewHandler(newScenario(t, observable.WithHooks(m.Hooks())), server.WithMetrics(reg))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call", strings.NewReader(`{"arg":"x"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `observed_dispatches_total{observable="bar"} 2`, "a.bar and its observer b.bar")
	assert.Contains(t, w.Body.String(), `observed_registrations_total{observable="bar",op="add"} 4`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	handler := server.NewHandler(newScenario(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteFailuresAreLogged(t *testing.T) {
	for _, path := range []string{"/healthz", "/observers"} {
		t.Run(path, func(t *testing.T) {
			var buf bytes.Buffer
			handler := server.NewHandler(newScenario(t), server.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug)))

			w := brokenWriter{httptest.NewRecorder()}
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Contains(t, buf.String(), "connection reset")
			assert.Contains(t, buf.String(), "failed to")
		})
	}
}
