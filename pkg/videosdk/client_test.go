package videosdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videosdk-community/session-usage-api/pkg/videosdk"
)

// Test that a listing call sends the expected request and parses a page
func TestListSessions_Success(t *testing.T) {
	assert := assert.New(t)

	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		assert.Equal("/sessions/", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{"id": "s1", "roomId": "r1", "start": "2024-01-02T10:00:00Z", "end": "2024-01-02T11:00:00Z", "status": "completed"},
				{"id": "s2", "roomId": "r2"}
			],
			"pageInfo": {"currentPage": 1, "perPage": 20, "lastPage": 3, "total": 48}
		}`))
	}))
	defer server.Close()

	client := videosdk.NewClient(server.URL)
	page, err := client.ListSessions(context.Background(), "secret-key", 1000, 2000, "")
	require.NoError(t, err)

	assert.Equal("secret-key", gotAuth)
	assert.Contains(gotQuery, "page=1")
	assert.Contains(gotQuery, "perPage=20")
	assert.Contains(gotQuery, "startDate=1000")
	assert.Contains(gotQuery, "endDate=2000")

	require.Len(t, page.Sessions, 2)
	assert.Equal("s1", page.Sessions[0].ID)
	assert.Equal("r1", page.Sessions[0].RoomID)
	assert.Equal("s2", page.Sessions[1].ID)
	assert.Equal("2", page.NextCursor)
}

// Test that a cursor is forwarded as the page number and the last page
// ends the cursor chain
func TestListSessions_LastPage(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("3", r.URL.Query().Get("page"))
		w.Write([]byte(`{"data": [{"id": "s5", "roomId": "r5"}], "pageInfo": {"currentPage": 3, "lastPage": 3}}`))
	}))
	defer server.Close()

	client := videosdk.NewClient(server.URL)
	page, err := client.ListSessions(context.Background(), "key", 0, 1, "3")
	require.NoError(t, err)

	assert.Len(page.Sessions, 1)
	assert.Empty(page.NextCursor)
}

// Test that upstream failures map onto the error taxonomy
func TestListSessions_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "credential rejected",
			status: http.StatusUnauthorized,
			body:   "invalid token",
			check: func(t *testing.T, err error) {
				var authErr *videosdk.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, http.StatusUnauthorized, authErr.Status)
				assert.Contains(t, authErr.Body, "invalid token")
			},
		},
		{
			name:   "throttled",
			status: http.StatusTooManyRequests,
			body:   "slow down",
			check: func(t *testing.T, err error) {
				var rateErr *videosdk.RateLimitedError
				require.ErrorAs(t, err, &rateErr)
			},
		},
		{
			name:   "server fault",
			status: http.StatusBadGateway,
			body:   "bad gateway",
			check: func(t *testing.T, err error) {
				var downErr *videosdk.UnavailableError
				require.ErrorAs(t, err, &downErr)
			},
		},
		{
			name:   "contract mismatch",
			status: http.StatusBadRequest,
			body:   "unknown parameter",
			check: func(t *testing.T, err error) {
				var badErr *videosdk.MalformedError
				require.ErrorAs(t, err, &badErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := videosdk.NewClient(server.URL)
			_, err := client.ListSessions(context.Background(), "key", 0, 1, "")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

// Test that an unparseable body is fatal, not retryable
func TestListSessions_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer server.Close()

	client := videosdk.NewClient(server.URL)
	_, err := client.ListSessions(context.Background(), "key", 0, 1, "")

	var badErr *videosdk.MalformedError
	require.ErrorAs(t, err, &badErr)
}

// Test that a dead upstream surfaces as unavailable
func TestListSessions_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := videosdk.NewClient(server.URL)
	_, err := client.ListSessions(context.Background(), "key", 0, 1, "")

	var downErr *videosdk.UnavailableError
	require.ErrorAs(t, err, &downErr)
	assert.True(t, errors.Unwrap(downErr) != nil)
}
