// Package abstractapi wraps the AbstractAPI phone validation endpoint.
package abstractapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/tracelight/osint-cli/internal/resilience"
)

const defaultBaseURL = "https://phonevalidation.abstractapi.com/v1"

// Client validates phone numbers against AbstractAPI.
type Client interface {
	Validate(ctx context.Context, phone, country string) (*ValidateResponse, error)
}

// ValidateResponse is the response from GET /v1/.
type ValidateResponse struct {
	Phone    string `json:"phone"`
	Valid    bool   `json:"valid"`
	Format   Format `json:"format"`
	Country  Region `json:"country"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Carrier  string `json:"carrier"`
}

// Format holds the number in standard renderings.
type Format struct {
	International string `json:"international"`
	Local         string `json:"local"`
}

// Region identifies the number's country.
type Region struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an AbstractAPI phone validation client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Validate(ctx context.Context, phone, country string) (*ValidateResponse, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("phone", phone)
	if country != "" {
		q.Set("country", country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "abstractapi: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "abstractapi: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "abstractapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("abstractapi", resp, body)
	}

	var result ValidateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "abstractapi: unmarshal response")
	}

	return &result, nil
}
