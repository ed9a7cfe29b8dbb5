package sessions

import (
	"context"
	"time"

	"github.com/videosdk-community/session-usage-api/internal/export"
	"github.com/videosdk-community/session-usage-api/internal/report"
	"github.com/videosdk-community/session-usage-api/pkg/utils"
	"github.com/videosdk-community/session-usage-api/pkg/videosdk"
)

var service *Service

// Init wires the module's service from configuration. Must run before
// the routes serve traffic.
func Init(cfg *utils.Config) {
	client := videosdk.NewClient(cfg.GetWithDefault("VIDEOSDK_API_URL", videosdk.DefaultBaseURL))

	svc := NewService(client)
	svc.driver.PageDelay = time.Duration(cfg.GetIntWithDefault("FETCH_PAGE_DELAY_MS", 200)) * time.Millisecond

	service = svc
}

// GetService returns the module's shared service instance
func GetService() *Service {
	return service
}

// Service owns the fetch driver shared by the module's handlers. The
// driver itself is stateless across runs; every request gets its own
// accumulator and event stream.
type Service struct {
	driver *report.Driver
}

func NewService(client report.Lister) *Service {
	return &Service{
		driver: report.NewDriver(client, report.DefaultRetryPolicy()),
	}
}

// FetchAll retrieves the full month synchronously
func (s *Service) FetchAll(ctx context.Context, apiKey string, w report.Window) ([]videosdk.Session, error) {
	return s.driver.Fetch(ctx, apiKey, w, nil)
}

// FetchStream retrieves the full month, reporting progress on the
// returned channel
func (s *Service) FetchStream(ctx context.Context, apiKey string, w report.Window) <-chan report.Event {
	return s.driver.Run(ctx, apiKey, w)
}

// ExportStream multiplexes fetch progress and CSV formatting progress
// into one event stream. The terminal done event carries the file
// bytes; the fetch's own done event is replaced by the formatter's.
func (s *Service) ExportStream(ctx context.Context, apiKey string, w report.Window, participantColumns int) <-chan report.Event {
	out := make(chan report.Event)

	go func() {
		defer close(out)

		sessions, err := s.driver.Fetch(ctx, apiKey, w, func(ev report.Event) bool {
			return report.Emit(ctx, out, ev)
		})

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			report.Emit(ctx, out, report.Event{Kind: report.EventError, Stage: report.StageFetch, Message: err.Error()})
			return
		}

		builder := export.NewBuilder()
		builder.ParticipantColumns = participantColumns

		for ev := range builder.Run(ctx, sessions, export.Filename(w)) {
			if !report.Emit(ctx, out, ev) {
				return
			}
		}
	}()

	return out
}
