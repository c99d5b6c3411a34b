package tokenizer

import (
	"context"
	"net/http"
	"time"

	"github.com/certogo-tech/searchproxy/internal/httpclient"
)

// tokenizeRequest is the wire request body for a remote tokenizer engine.
type tokenizeRequest struct {
	Text   string `json:"text"`
	Engine string `json:"engine,omitempty"`
}

// tokenizeResponse is the wire response body for a remote tokenizer engine.
type tokenizeResponse struct {
	Tokens []string `json:"tokens"`
}

// HTTPClient calls a single remote tokenization engine over HTTP.
type HTTPClient struct {
	engineID string
	baseURL  string
	http     *http.Client
}

// NewHTTPClient builds a Client for the named engine at baseURL.
func NewHTTPClient(engineID, baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		engineID: engineID,
		baseURL:  baseURL,
		http:     httpclient.New(timeout),
	}
}

// EngineID implements Client.
func (c *HTTPClient) EngineID() string {
	return c.engineID
}

// Tokenize implements Client.
func (c *HTTPClient) Tokenize(ctx context.Context, text string) (Result, error) {
	start := time.Now()

	var resp tokenizeResponse
	err := httpclient.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/tokenize",
		tokenizeRequest{Text: text, Engine: c.engineID}, &resp)
	wall := time.Since(start)

	if err != nil {
		return Result{
			EngineID:      c.engineID,
			WallTime:      wall,
			Success:       false,
			FailureReason: err.Error(),
		}, err
	}

	return Result{
		EngineID: c.engineID,
		Tokens:   resp.Tokens,
		WallTime: wall,
		Success:  len(resp.Tokens) > 0,
	}, nil
}
