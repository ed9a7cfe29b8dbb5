package report

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/videosdk-community/session-usage-api/pkg/videosdk"
)

// DefaultPageDelay paces consecutive page requests so a full-month
// fetch stays inside the upstream rate budget.
const DefaultPageDelay = 200 * time.Millisecond

// Lister is the slice of the upstream client the driver needs.
type Lister interface {
	ListSessions(ctx context.Context, apiKey string, startMS, endMS int64, cursor string) (*videosdk.Page, error)
}

// Driver retrieves every page of sessions for one calendar month and
// accumulates them into a single ordered collection. One Driver is
// shared by all requests; each run owns its own cursor state and
// accumulator, so no coordination is needed across requests.
type Driver struct {
	client Lister
	policy RetryPolicy

	// PageDelay is the pause between successive page fetches.
	PageDelay time.Duration
}

func NewDriver(client Lister, policy RetryPolicy) *Driver {
	return &Driver{
		client:    client,
		policy:    policy,
		PageDelay: DefaultPageDelay,
	}
}

// Fetch drives the pagination loop to completion, invoking onProgress
// (if non-nil) after every page with updated counts. The returned
// collection preserves upstream order across pages. On failure the
// typed upstream error is returned so synchronous callers can map it to
// a status code. If onProgress returns false the loop stops before the
// next upstream call and no further work happens.
func (d *Driver) Fetch(ctx context.Context, apiKey string, w Window, onProgress func(Event) bool) ([]videosdk.Session, error) {
	runID := uuid.NewString()
	startMS, endMS := w.EpochRange()

	var (
		sessions []videosdk.Session
		cursor   string
		pages    int
		seen     = map[string]bool{}
	)

	for {
		if pages > 0 {
			if err := wait(ctx, d.PageDelay); err != nil {
				return nil, err
			}
		}

		page, err := d.fetchPage(ctx, apiKey, startMS, endMS, cursor)
		if err != nil {
			log.Printf("[REPORT]: run %s failed after %d pages: %v", runID, pages, err)
			return nil, err
		}

		pages++
		sessions = append(sessions, page.Sessions...)

		if onProgress != nil {
			ok := onProgress(Event{
				Kind:         EventProgress,
				Stage:        StageFetch,
				PagesFetched: pages,
				RecordCount:  len(sessions),
			})
			if !ok {
				log.Printf("[REPORT]: run %s abandoned by consumer after %d pages", runID, pages)
				return nil, context.Canceled
			}
		}

		// A missing cursor ends the loop; so does one we have already
		// followed, which guards against an upstream that hands back a
		// stale token and would otherwise loop forever.
		if page.NextCursor == "" || seen[page.NextCursor] {
			break
		}
		seen[page.NextCursor] = true
		cursor = page.NextCursor
	}

	log.Printf("[REPORT]: run %s fetched %d sessions over %d pages", runID, len(sessions), pages)
	return sessions, nil
}

// Run wraps Fetch in a channel-producing goroutine for streaming
// consumers. The channel carries progress events followed by exactly
// one terminal event, then closes. If the consumer disappears
// (cancelled context) the channel closes with no terminal event, since
// there is nobody left to tell.
func (d *Driver) Run(ctx context.Context, apiKey string, w Window) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		sessions, err := d.Fetch(ctx, apiKey, w, func(ev Event) bool {
			return Emit(ctx, out, ev)
		})

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			Emit(ctx, out, Event{Kind: EventError, Stage: StageFetch, Message: err.Error()})
			return
		}
		Emit(ctx, out, Event{
			Kind:       EventDone,
			Stage:      StageFetch,
			TotalCount: len(sessions),
			Records:    sessions,
		})
	}()

	return out
}

// Emit sends ev unless the consumer's context is gone. It reports false
// once there is no consumer, which producers treat as a stop signal.
func Emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// fetchPage performs one upstream call, retrying transient failures
// under the injected policy. Fatal errors are returned untouched on the
// first occurrence.
func (d *Driver) fetchPage(ctx context.Context, apiKey string, startMS, endMS int64, cursor string) (*videosdk.Page, error) {
	delays := d.policy.delays()

	var lastErr error
	for attempt := 0; attempt <= d.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, delays.NextBackOff()); err != nil {
				return nil, err
			}
		}

		page, err := d.client.ListSessions(ctx, apiKey, startMS, endMS, cursor)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}

		lastErr = err
		log.Printf("[REPORT]: transient upstream failure (attempt %d/%d): %v", attempt+1, d.policy.MaxRetries+1, err)
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var rateLimited *videosdk.RateLimitedError
	var unavailable *videosdk.UnavailableError
	return errors.As(err, &rateLimited) || errors.As(err, &unavailable)
}
