package index

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient is the default Client implementation, talking to the two
// HTTPS GET endpoints described in spec.md §6:
//
//	{BaseURL}/{name}/json
//	{BaseURL}/{name}/{version}/json
//
// NewHTTPClient sets BaseURL to DefaultBaseURL when given an empty one;
// fetch itself uses BaseURL as it is.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

// DefaultBaseURL is the production PyPI JSON API root.
const DefaultBaseURL = "https://pypi.python.org/pypi"

// NewHTTPClient returns an HTTPClient configured with sane defaults. A
// zero-value baseURL selects DefaultBaseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// LatestInfo implements Client.
func (c *HTTPClient) LatestInfo(ctx context.Context, name string) (Document, error) {
	return c.fetch(ctx, name, "", fmt.Sprintf("%s/%s/json", c.BaseURL, name))
}

// ReleaseInfo implements Client.
func (c *HTTPClient) ReleaseInfo(ctx context.Context, name, ver string) (Document, error) {
	return c.fetch(ctx, name, ver, fmt.Sprintf("%s/%s/%s/json", c.BaseURL, name, ver))
}

func (c *HTTPClient) fetch(ctx context.Context, name, ver, url string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, &Error{Kind: Transport, Name: name, Version: ver, Err: err}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return Document{}, &Error{Kind: Transport, Name: name, Version: ver, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return Document{}, &Error{Kind: NotFound, Name: name, Version: ver, Err: fmt.Errorf("status %d", res.StatusCode)}
	}
	if res.StatusCode != http.StatusOK {
		return Document{}, &Error{Kind: Transport, Name: name, Version: ver, Err: fmt.Errorf("status %d", res.StatusCode)}
	}

	var doc Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return Document{}, &Error{Kind: Decode, Name: name, Version: ver, Err: err}
	}
	return doc, nil
}
