package videosdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production VideoSDK API root.
	DefaultBaseURL = "https://api.videosdk.live/v2"

	// DefaultPerPage matches the upstream page size the service was
	// tuned against.
	DefaultPerPage = 20
)

// Client wraps calls to the VideoSDK session listing API. One Client is
// shared by every request so the underlying connection pool is reused;
// it holds no per-call state, the credential is passed per call.
type Client struct {
	baseURL    string
	perPage    int
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		perPage:    DefaultPerPage,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListSessions fetches one page of sessions between startMS and endMS
// (epoch milliseconds, inclusive). An empty cursor requests the first
// page; the returned Page carries the cursor for the next one, folding
// the upstream's page-number bookkeeping into an opaque token.
func (c *Client) ListSessions(ctx context.Context, apiKey string, startMS, endMS int64, cursor string) (*Page, error) {
	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return nil, &MalformedError{Body: "invalid pagination cursor: " + cursor}
		}
		page = n
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sessions/", nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(c.perPage))
	q.Set("startDate", strconv.FormatInt(startMS, 10))
	q.Set("endDate", strconv.FormatInt(endMS, 10))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, classifyStatus(resp.StatusCode, string(body))
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &MalformedError{Status: resp.StatusCode, Err: err}
	}

	return &Page{
		Sessions:   out.Data,
		NextCursor: nextCursor(out.PageInfo),
	}, nil
}

// classifyStatus maps a non-200 upstream status onto the error
// taxonomy in one place.
func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status, Body: body}
	case status == http.StatusTooManyRequests:
		return &RateLimitedError{Status: status, Body: body}
	case status >= http.StatusInternalServerError:
		return &UnavailableError{Status: status, Body: body}
	default:
		// Any other status means our request shape and the upstream
		// contract disagree; retrying cannot fix that.
		return &MalformedError{Status: status, Body: body}
	}
}

func nextCursor(info pageInfo) string {
	current := info.CurrentPage
	if current < 1 {
		current = 1
	}
	if current >= info.LastPage {
		return ""
	}
	return strconv.Itoa(current + 1)
}
