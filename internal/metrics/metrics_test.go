package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Load())
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), time.Millisecond)
}

func TestRegistry_ConcurrentInc(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Inc(WebhookReceived)
			reg.Inc(WebhookOutcome("applied"))
		}()
	}
	wg.Wait()

	snap := reg.Snapshot()
	assert.Equal(t, uint64(50), snap["webhook_received"])
	assert.Equal(t, uint64(50), snap["webhook_applied"])
	assert.Equal(t, []string{"webhook_applied", "webhook_received"}, reg.Names())
	assert.Same(t, reg.Counter(WebhookReceived), reg.Counter(WebhookReceived))
}

func TestRegistry_Handler(t *testing.T) {
	reg := NewRegistry()
	reg.Inc(CheckoutCreated)

	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body snapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, uint64(1), body.Counters["checkout_created"])
}
