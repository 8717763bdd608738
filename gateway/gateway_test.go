package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/health"
	"github.com/c360/telemetrix/snapshot"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubSource serves a swappable cached tree plus a marker tree for
// fresh walks.
type stubSource struct {
	latest      atomic.Pointer[snapshot.Tree]
	descriptive atomic.Int64
}

func newStubSource(tree *snapshot.Tree) *stubSource {
	s := &stubSource{}
	s.latest.Store(tree)
	return s
}

func (s *stubSource) Latest() *snapshot.Tree {
	return s.latest.Load()
}

func (s *stubSource) Snapshot(descriptive bool) *snapshot.Tree {
	if descriptive {
		s.descriptive.Add(1)
	}
	tree := snapshot.NewTree()
	tree.SetText("walk", "fresh")
	return tree
}

func startGateway(t *testing.T, source SnapshotSource, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithAddress("127.0.0.1:0")}, opts...)
	server, err := New(source, opts...)
	require.NoError(t, err)
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() {
		_ = server.Stop(2 * time.Second)
		http.DefaultClient.CloseIdleConnections()
	})
	return server
}

func getBody(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestGatewayServesSnapshot(t *testing.T) {
	tree := snapshot.NewTree()
	tree.SetUint("hits", 42)
	tree.SetText("name", "web")
	source := newStubSource(tree)

	server := startGateway(t, source)

	code, body := getBody(t, fmt.Sprintf("http://%s/snapshot", server.Addr()))
	assert.Equal(t, http.StatusOK, code)

	want, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(body))
}

func TestGatewayPrettySnapshot(t *testing.T) {
	tree := snapshot.NewTree()
	tree.SetUint("hits", 7)
	server := startGateway(t, newStubSource(tree))

	code, body := getBody(t, fmt.Sprintf("http://%s/snapshot?pretty=1", server.Addr()))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "\n  ")
	assert.Contains(t, string(body), `"hits"`)
}

func TestGatewayDescriptiveSnapshot(t *testing.T) {
	source := newStubSource(snapshot.NewTree())
	server := startGateway(t, source)

	code, body := getBody(t, fmt.Sprintf("http://%s/snapshot?descriptive=true", server.Addr()))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "fresh")
	assert.Equal(t, int64(1), source.descriptive.Load())
}

func TestGatewayMethodNotAllowed(t *testing.T) {
	server := startGateway(t, newStubSource(snapshot.NewTree()))

	resp, err := http.Post(fmt.Sprintf("http://%s/snapshot", server.Addr()), "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGatewayRateLimitSheds(t *testing.T) {
	server := startGateway(t, newStubSource(snapshot.NewTree()), WithRateLimit(1, 1))

	url := fmt.Sprintf("http://%s/snapshot", server.Addr())
	code, _ := getBody(t, url)
	require.Equal(t, http.StatusOK, code)

	code, body := getBody(t, url)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, string(body), "rate limit exceeded")
}

func TestGatewayHealthzWithoutMonitor(t *testing.T) {
	server := startGateway(t, newStubSource(snapshot.NewTree()))

	code, body := getBody(t, fmt.Sprintf("http://%s/healthz", server.Addr()))
	assert.Equal(t, http.StatusOK, code)

	var status health.Status
	require.NoError(t, json.Unmarshal(body, &status))
	assert.True(t, status.IsHealthy())
}

func TestGatewayHealthzAggregates(t *testing.T) {
	monitor := health.NewMonitor()
	monitor.UpdateHealthy("driver", "cycling")
	server := startGateway(t, newStubSource(snapshot.NewTree()), WithHealthMonitor(monitor))

	url := fmt.Sprintf("http://%s/healthz", server.Addr())
	code, body := getBody(t, url)
	assert.Equal(t, http.StatusOK, code)

	var status health.Status
	require.NoError(t, json.Unmarshal(body, &status))
	assert.True(t, status.IsHealthy())

	// The gateway registers itself alongside the driver.
	gw, ok := monitor.Get("gateway")
	require.True(t, ok)
	assert.True(t, gw.IsHealthy())

	monitor.UpdateUnhealthy("publisher", "connection refused")
	code, body = getBody(t, url)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NoError(t, json.Unmarshal(body, &status))
	assert.True(t, status.IsUnhealthy())
}

func TestGatewayHealthzNeverRateLimited(t *testing.T) {
	server := startGateway(t, newStubSource(snapshot.NewTree()), WithRateLimit(1, 1))

	url := fmt.Sprintf("http://%s/healthz", server.Addr())
	for i := 0; i < 5; i++ {
		code, _ := getBody(t, url)
		require.Equal(t, http.StatusOK, code)
	}
}

func TestGatewayLivePushesSnapshots(t *testing.T) {
	first := snapshot.NewTree()
	first.SetUint("hits", 1)
	source := newStubSource(first)

	server := startGateway(t, source, WithPushInterval(10*time.Millisecond))

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/live", server.Addr()), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(message), `"hits"`)

	second := snapshot.NewTree()
	second.SetUint("hits", 2)
	source.latest.Store(second)

	_, message, err = conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(message, &decoded))
	assert.EqualValues(t, 2, decoded["hits"])
}

func TestGatewayLiveUnchangedTreeNotResent(t *testing.T) {
	tree := snapshot.NewTree()
	tree.SetUint("hits", 9)
	source := newStubSource(tree)

	server := startGateway(t, source, WithPushInterval(5*time.Millisecond))

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/live", server.Addr()), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	// Identical tree pointer means nothing further arrives.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
}

func TestGatewayStopDisconnectsLiveClients(t *testing.T) {
	source := newStubSource(snapshot.NewTree())
	server, err := New(source, WithAddress("127.0.0.1:0"), WithPushInterval(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, server.Start(context.Background()))

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/live", server.Addr()), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, server.Stop(2*time.Second))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func TestGatewayLifecycle(t *testing.T) {
	server, err := New(newStubSource(snapshot.NewTree()), WithAddress("127.0.0.1:0"))
	require.NoError(t, err)

	err = server.Stop(time.Second)
	require.ErrorIs(t, err, errors.ErrNotStarted)
	assert.True(t, errors.IsInvalid(err))

	require.NoError(t, server.Start(context.Background()))

	err = server.Start(context.Background())
	require.ErrorIs(t, err, errors.ErrAlreadyStarted)

	require.NoError(t, server.Stop(2*time.Second))
	require.NoError(t, server.Stop(2*time.Second))

	err = server.Start(context.Background())
	require.ErrorIs(t, err, errors.ErrAlreadyStopped)
}

func TestGatewayNewValidates(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, errors.ErrNilComponent)
	assert.True(t, errors.IsInvalid(err))
}
