package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// readFrame reads one SSE frame (up to the blank line) from r
func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\n" {
			return b.String()
		}
		b.WriteString(line)
	}
}

func startHub(t *testing.T, opts ...Option) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	h := New(zap.NewNop(), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.Run(ctx) }()
	return h, cancel, errc
}

func TestBroadcastReachesClient(t *testing.T) {
	var count atomic.Int64
	h, stop, errc := startHub(t, WithClientCounter(func(n int) { count.Store(int64(n)) }))

	srv := httptest.NewServer(h)
	defer srv.Close()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()

	reqCtx, cancelReq := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, ": connected\n", readFrame(t, r))

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), count.Load())

	h.Broadcast(map[string]string{"type": "post_created"})
	assert.Equal(t, "data: {\"type\":\"post_created\"}\n", readFrame(t, r))

	cancelReq()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	stop()
	require.NoError(t, <-errc)
}

func TestRunDisconnectsClientsOnShutdown(t *testing.T) {
	h, stop, errc := startHub(t)

	srv := httptest.NewServer(h)
	defer srv.Close()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	readFrame(t, r)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	stop()
	require.NoError(t, <-errc)

	// stream ends once the hub stops
	_, err = r.ReadString('\n')
	assert.Error(t, err)

	// new clients are turned away
	late := httptest.NewRecorder()
	h.ServeHTTP(late, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, late.Code)
}

func TestForward(t *testing.T) {
	h, stop, errc := startHub(t)
	defer func() {
		stop()
		<-errc
	}()

	events := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- Forward(context.Background(), h, events) }()

	events <- "hello"
	close(events)
	require.NoError(t, <-done)
}
