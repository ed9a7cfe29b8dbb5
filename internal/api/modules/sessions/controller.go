package sessions

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/videosdk-community/session-usage-api/internal/export"
	"github.com/videosdk-community/session-usage-api/internal/report"
	"github.com/videosdk-community/session-usage-api/internal/stream"
	"github.com/videosdk-community/session-usage-api/pkg/sdk"
	"github.com/videosdk-community/session-usage-api/pkg/videosdk"
)

// reportQuery holds the inputs every report endpoint takes. The key is
// forwarded verbatim to the upstream API, never stored.
type reportQuery struct {
	APIKey             string `form:"api_key" binding:"required"`
	Year               int    `form:"year" binding:"required"`
	Month              int    `form:"month" binding:"required"`
	ParticipantColumns int    `form:"participant_columns"`
}

// GetSessions handles GET requests for the aggregated month as JSON
func GetSessions(c *gin.Context) {
	q, window, ok := bindQuery(c)
	if !ok {
		return
	}

	sessions, err := GetService().FetchAll(c.Request.Context(), q.APIKey, window)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(upstreamStatus(err), "Failed to fetch sessions", err).AsGinResponse())
		return
	}

	c.JSON(http.StatusOK, sdk.FetchResult{Count: len(sessions), Sessions: sessions})
}

// StreamSessions handles GET requests for fetch progress as
// server-sent events
func StreamSessions(c *gin.Context) {
	q, window, ok := bindQuery(c)
	if !ok {
		return
	}

	events := GetService().FetchStream(c.Request.Context(), q.APIKey, window)
	relay(c, events)
}

// ExportSessions handles GET requests for the month report as a CSV
// download
func ExportSessions(c *gin.Context) {
	q, window, ok := bindQuery(c)
	if !ok {
		return
	}

	sessions, err := GetService().FetchAll(c.Request.Context(), q.APIKey, window)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(upstreamStatus(err), "Failed to fetch sessions", err).AsGinResponse())
		return
	}

	builder := export.NewBuilder()
	builder.ParticipantColumns = q.ParticipantColumns

	data, err := builder.Build(sessions)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to build report", err).AsGinResponse())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(window)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// StreamExport handles GET requests for fetch and formatting progress
// as server-sent events, ending with the file content
func StreamExport(c *gin.Context) {
	q, window, ok := bindQuery(c)
	if !ok {
		return
	}

	events := GetService().ExportStream(c.Request.Context(), q.APIKey, window, q.ParticipantColumns)
	relay(c, events)
}

// bindQuery parses and validates the report inputs. Validation happens
// here, before any upstream call is possible.
func bindQuery(c *gin.Context) (reportQuery, report.Window, bool) {
	var q reportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse query parameters", err).AsGinResponse())
		return q, report.Window{}, false
	}

	window := report.Window{Year: q.Year, Month: q.Month}
	if err := window.Validate(); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid report window", err).AsGinResponse())
		return q, window, false
	}

	return q, window, true
}

// relay streams events to the client until the terminal event is
// flushed or the client disconnects.
func relay(c *gin.Context, events <-chan report.Event) {
	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	stream.Relay(c.Request.Context(), c.Writer, events)
}

// upstreamStatus maps the upstream error taxonomy onto response codes
// for the synchronous endpoints.
func upstreamStatus(err error) int {
	var authErr *videosdk.AuthError
	var rateErr *videosdk.RateLimitedError
	var downErr *videosdk.UnavailableError
	var badErr *videosdk.MalformedError

	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	case errors.As(err, &downErr):
		return http.StatusBadGateway
	case errors.As(err, &badErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
