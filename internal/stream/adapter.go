// Package stream relays progress events to a client as server-sent
// events, independent of which handler or producer is on either side.
package stream

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-contrib/sse"

	"github.com/videosdk-community/session-usage-api/internal/report"
)

// Writer is the slice of an HTTP response the relay needs.
type Writer interface {
	io.Writer
	http.Flusher
}

// Relay forwards each event to the client the moment it is produced,
// flushing after every write so nothing sits in a buffer. It returns
// once the terminal event is on the wire, the producer closes the
// channel, or the client disconnects — in which case the shared
// context also stops the producer before its next upstream call.
func Relay(ctx context.Context, w Writer, events <-chan report.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := sse.Encode(w, sse.Event{Event: string(ev.Kind), Data: ev}); err != nil {
				return err
			}
			w.Flush()
			if ev.Terminal() {
				return nil
			}
		}
	}
}
