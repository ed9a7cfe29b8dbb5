package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client wraps calls to the session usage API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// FetchSessions retrieves the aggregated sessions for one month
func (c *Client) FetchSessions(ctx context.Context, apiKey string, year, month int) (*FetchResult, error) {
	q := reportQuery(apiKey, year, month)

	var out FetchResult
	if err := c.getJSON(ctx, "/api/sessions", q, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// ExportCSV downloads the month's usage report as a CSV file. The
// returned filename comes from the Content-Disposition header.
func (c *Client) ExportCSV(ctx context.Context, apiKey string, year, month, participantColumns int) (filename string, data []byte, err error) {
	q := reportQuery(apiKey, year, month)
	if participantColumns > 0 {
		q.Set("participant_columns", strconv.Itoa(participantColumns))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sessions/export?"+q.Encode(), nil)
	if err != nil {
		return "", nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", nil, fmt.Errorf("[SDK]: export failed: %d: %s", resp.StatusCode, string(b))
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}

	return filename, data, nil
}

func reportQuery(apiKey string, year, month int) url.Values {
	q := url.Values{}
	q.Set("api_key", apiKey)
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	return q
}

// getJSON is a helper to perform JSON requests to the service
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error responses use the envelope; surface its message
		var envelope ApiResponse[any]
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
			return fmt.Errorf("[SDK]: '%s' failed: %d: %s: %s", path, resp.StatusCode, envelope.Message, envelope.Error)
		}
		return fmt.Errorf("[SDK]: '%s' failed: %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
