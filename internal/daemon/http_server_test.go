package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orangewallet/orange/internal/eventstore"
	"github.com/orangewallet/orange/internal/webhook"
)

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestAdminServerPullEndpoints(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	source := newFakeSource()
	d := New(testConfig(), store, source, nil, nil)
	stop := startDaemon(t, d)
	defer func() { require.NoError(t, stop()) }()

	require.Eventually(t, func() bool { return d.admin.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	base := "http://" + d.admin.Addr()

	// Empty queue: well-defined null sentinel, not an error.
	var empty map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, base+"/v1/event", &empty))
	assert.Contains(t, empty, "event")
	assert.Nil(t, empty["event"])

	// Handled with nothing pending is a usage error, surfaced distinctly.
	var conflict map[string]any
	require.Equal(t, http.StatusConflict, postJSON(t, base+"/v1/event/handled", &conflict))
	assert.Contains(t, conflict["error"], "no pending event")

	source.emit(t, testEvent(t, "poll-me"))
	waitForCounts(t, store, 1, 0)

	// get-event returns the flattened event and is side-effect free.
	for range 2 {
		var flat map[string]any
		require.Equal(t, http.StatusOK, getJSON(t, base+"/v1/event", &flat))
		assert.Equal(t, "payment_received", flat["type"])
		assert.Equal(t, "poll-me", flat["payment_id"])
	}

	var ok map[string]any
	require.Equal(t, http.StatusOK, postJSON(t, base+"/v1/event/handled", &ok))
	assert.Equal(t, true, ok["ok"])
	waitForCounts(t, store, 1, 1)
}

func TestAdminServerHealthAndMetrics(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	source := newFakeSource()
	d := New(testConfig(), store, source, nil, nil)
	stop := startDaemon(t, d)
	defer func() { require.NoError(t, stop()) }()

	require.Eventually(t, func() bool { return d.admin.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	base := "http://" + d.admin.Addr()

	source.emit(t, testEvent(t, "health"))
	waitForCounts(t, store, 1, 0)

	var health map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, base+"/healthz", &health))
	assert.Equal(t, "running", health["status"])
	assert.Equal(t, "pull", health["mode"])
	assert.Equal(t, float64(1), health["pending_events"])

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "orange_daemon_events_appended_total")
	assert.Contains(t, string(body), "orange_daemon_queue_pending_events 1")
}

func TestPushModeDoesNotExposePullEndpoints(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	source := newFakeSource()
	d := New(testConfig(), store, source, nil, []webhook.Target{{URL: hook.URL}})
	stop := startDaemon(t, d)
	defer func() { require.NoError(t, stop()) }()

	require.Eventually(t, func() bool { return d.admin.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://%s/v1/event", d.admin.Addr()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
