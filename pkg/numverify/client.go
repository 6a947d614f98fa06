// Package numverify wraps the NumVerify phone validation API.
package numverify

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

const defaultBaseURL = "https://api.apilayer.com/number_verification"

// Client validates phone numbers against the NumVerify API.
type Client interface {
	Validate(ctx context.Context, number, countryCode string) (*ValidateResponse, error)
}

// ValidateResponse is the response from GET /validate.
type ValidateResponse struct {
	Valid               bool   `json:"valid"`
	Number              string `json:"number"`
	LocalFormat         string `json:"local_format"`
	InternationalFormat string `json:"international_format"`
	CountryPrefix       string `json:"country_prefix"`
	CountryCode         string `json:"country_code"`
	CountryName         string `json:"country_name"`
	Location            string `json:"location"`
	Carrier             string `json:"carrier"`
	LineType            string `json:"line_type"`
}

// apiError is NumVerify's embedded error envelope, returned with HTTP 200.
type apiError struct {
	Success bool `json:"success"`
	Error   struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
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

// NewClient creates a NumVerify API client.
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

func (c *httpClient) Validate(ctx context.Context, number, countryCode string) (*ValidateResponse, error) {
	q := url.Values{}
	q.Set("number", number)
	if countryCode != "" {
		q.Set("country_code", countryCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/validate?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "numverify: create request")
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "numverify: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "numverify: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("numverify", resp, body)
	}

	// NumVerify reports quota and key errors inside a 200 body.
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Code != 0 {
		if apiErr.Error.Code == 104 { // monthly quota reached
			return nil, resilience.NewRateLimitedError(
				eris.Errorf("numverify: %s", apiErr.Error.Info), 0)
		}
		return nil, eris.Errorf("numverify: api error %d (%s): %s",
			apiErr.Error.Code, apiErr.Error.Type, apiErr.Error.Info)
	}

	var result ValidateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "numverify: unmarshal response")
	}

	return &result, nil
}
