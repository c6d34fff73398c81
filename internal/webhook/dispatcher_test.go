package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orangewallet/orange/internal/event"
)

func testEvent(t *testing.T) event.Event {
	t.Helper()
	ev, err := event.New(event.KindPaymentReceived, 1700000000, map[string]any{
		"payment_id":   "pay-1",
		"payment_hash": "abcd",
		"amount_msat":  int64(5000),
	})
	require.NoError(t, err)
	return ev
}

func TestDispatchPostsFlatJSONWithAuth(t *testing.T) {
	var gotAuth, gotContentType atomic.Value
	var gotBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		gotContentType.Store(r.Header.Get("Content-Type"))
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotBody.Store(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(2 * time.Second)
	outcomes := d.Dispatch(t.Context(), testEvent(t), []Target{{URL: srv.URL, Token: "s3cret"}})

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Delivered)
	assert.Equal(t, http.StatusOK, outcomes[0].StatusCode)

	assert.Equal(t, "Bearer s3cret", gotAuth.Load())
	assert.Equal(t, "application/json", gotContentType.Load())

	body := gotBody.Load().(map[string]any)
	assert.Equal(t, "payment_received", body["type"])
	assert.Equal(t, float64(1700000000), body["timestamp"])
	assert.Equal(t, "pay-1", body["payment_id"])
	// Flat object: no nested envelope.
	assert.NotContains(t, body, "payload")
	assert.NotContains(t, body, "event")
}

func TestDispatchOmitsAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDispatcher(2 * time.Second)
	outcomes := d.Dispatch(t.Context(), testEvent(t), []Target{{URL: srv.URL}})

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Delivered)
	assert.Equal(t, "", gotAuth.Load())
}

// A failing target must not affect delivery to the others.
func TestFanOutIndependence(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	ok2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ok2.Close()

	d := NewDispatcher(2 * time.Second)
	targets := []Target{{URL: ok.URL}, {URL: failing.URL}, {URL: ok2.URL}}
	outcomes := d.Dispatch(t.Context(), testEvent(t), targets)

	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Delivered)
	assert.False(t, outcomes[1].Delivered)
	assert.Equal(t, http.StatusInternalServerError, outcomes[1].StatusCode)
	assert.True(t, outcomes[2].Delivered)
}

// Dispatch time is bounded by the slowest target, not the sum of latencies.
func TestDispatchRunsTargetsConcurrently(t *testing.T) {
	const delay = 150 * time.Millisecond
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	}
	var servers []*httptest.Server
	var targets []Target
	for range 4 {
		srv := httptest.NewServer(http.HandlerFunc(slow))
		servers = append(servers, srv)
		targets = append(targets, Target{URL: srv.URL})
	}
	defer func() {
		for _, srv := range servers {
			srv.Close()
		}
	}()

	d := NewDispatcher(2 * time.Second)
	start := time.Now()
	outcomes := d.Dispatch(t.Context(), testEvent(t), targets)
	elapsed := time.Since(start)

	for _, outcome := range outcomes {
		assert.True(t, outcome.Delivered)
	}
	// Sequential delivery would take >= 4*delay.
	assert.Less(t, elapsed, 3*delay)
}

func TestTimeoutCountsAsFailed(t *testing.T) {
	stuck := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels the request context; with unread body data it never would,
		// leaving this handler blocked and srv.Close deadlocked.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer stuck.Close()
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	d := NewDispatcher(100 * time.Millisecond)
	outcomes := d.Dispatch(t.Context(), testEvent(t), []Target{{URL: stuck.URL}, {URL: ok.URL}})

	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Delivered)
	assert.Error(t, outcomes[0].Err)
	assert.True(t, outcomes[1].Delivered)
}

func TestConnectionErrorCountsAsFailed(t *testing.T) {
	d := NewDispatcher(time.Second)
	outcomes := d.Dispatch(t.Context(), testEvent(t), []Target{{URL: "http://127.0.0.1:1/hook"}})

	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Delivered)
	assert.Error(t, outcomes[0].Err)
}
