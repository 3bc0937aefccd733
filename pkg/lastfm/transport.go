package lastfm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// apiError represents the JSON error envelope returned by the Last.fm API.
type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

// call makes a GET request to the Last.fm API and returns the raw JSON body.
//
// It handles:
// - Request construction with proper headers
// - Error envelope detection (Last.fm reports errors in the body)
// - Context cancellation
//
// Failed requests are not retried; callers decide what to show instead.
func (c *Client) call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("method", method)
	query.Set("api_key", c.apiKey)
	query.Set("format", "json")

	c.logDebugf("lastfm: calling %s", method)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Last.fm sends the error envelope with 200, 400 and 404 depending on
	// the method, so check the body before the status code.
	if apiErr, ok := parseAPIError(body); ok {
		c.logDebugf("lastfm: %s failed: %v", method, apiErr)
		return nil, apiErr
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("server error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}

	c.logDebugf("lastfm: %s succeeded", method)
	return body, nil
}

// parseAPIError extracts an error envelope from a response body.
func parseAPIError(body []byte) (*Error, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var envelope apiError
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Code == 0 {
		return nil, false
	}

	return &Error{Code: envelope.Code, Message: envelope.Message}, true
}
