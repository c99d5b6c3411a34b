package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/certogo-tech/searchproxy/internal/httpclient"
)

// searchRequest is the wire request body POSTed to /indexes/{index}/search.
type searchRequest struct {
	Q string `json:"q"`
	SearchParams
}

// HTTPClient calls a Meilisearch-compatible backend over HTTP.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient builds a Client against baseURL, authenticating with apiKey
// when non-empty.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpclient.New(timeout),
	}
}

// Search implements Client.
func (c *HTTPClient) Search(ctx context.Context, index, query string, params SearchParams) (SearchResponse, error) {
	var resp SearchResponse
	req := searchRequest{Q: query, SearchParams: params}

	url := c.baseURL + "/indexes/" + index + "/search"
	err := httpclient.DoJSON(ctx, c.authenticatedClient(ctx), http.MethodPost, url, req, &resp)
	if err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}

// authenticatedClient returns the underlying *http.Client. Authentication is
// carried as a bearer token header via a RoundTripper wrapper so every
// request (including retries built on top of this client) is signed
// uniformly.
func (c *HTTPClient) authenticatedClient(_ context.Context) *http.Client {
	if c.apiKey == "" {
		return c.http
	}
	return &http.Client{
		Timeout:   c.http.Timeout,
		Transport: &bearerTransport{apiKey: c.apiKey, base: c.http.Transport},
	}
}

type bearerTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
