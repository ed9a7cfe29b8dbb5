package stream_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videosdk-community/session-usage-api/internal/report"
	"github.com/videosdk-community/session-usage-api/internal/stream"
)

// Test that events hit the wire in order and the stream ends on the
// terminal event
func TestRelay_OrderAndTermination(t *testing.T) {
	assert := assert.New(t)

	events := make(chan report.Event, 3)
	events <- report.Event{Kind: report.EventProgress, PagesFetched: 1, RecordCount: 20}
	events <- report.Event{Kind: report.EventProgress, PagesFetched: 2, RecordCount: 35}
	events <- report.Event{Kind: report.EventDone, TotalCount: 35}

	rec := httptest.NewRecorder()
	err := stream.Relay(context.Background(), rec, events)
	require.NoError(t, err)

	body := rec.Body.String()
	first := strings.Index(body, `"pagesFetched":1`)
	second := strings.Index(body, `"pagesFetched":2`)
	done := strings.Index(body, "event:done")

	assert.GreaterOrEqual(first, 0)
	assert.Greater(second, first)
	assert.Greater(done, second)
	assert.Contains(body, "event:progress")
	assert.Contains(body, `"totalCount":35`)
}

// Test that nothing follows a terminal event even if the producer
// misbehaves
func TestRelay_StopsAfterTerminal(t *testing.T) {
	events := make(chan report.Event, 2)
	events <- report.Event{Kind: report.EventError, Message: "upstream gone"}
	events <- report.Event{Kind: report.EventProgress, PagesFetched: 9}

	rec := httptest.NewRecorder()
	err := stream.Relay(context.Background(), rec, events)
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "event:error")
	assert.NotContains(t, body, `"pagesFetched":9`)
}

// Test that a closed producer channel ends the relay cleanly
func TestRelay_ProducerCloses(t *testing.T) {
	events := make(chan report.Event)
	close(events)

	rec := httptest.NewRecorder()
	assert.NoError(t, stream.Relay(context.Background(), rec, events))
}

// Test that a disconnected client surfaces the context error
func TestRelay_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	err := stream.Relay(ctx, rec, make(chan report.Event))
	assert.ErrorIs(t, err, context.Canceled)
}
