// Package veriphone wraps the Veriphone verification API.
package veriphone

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

const defaultBaseURL = "https://api.veriphone.io/v2"

// Client verifies phone numbers against the Veriphone API.
type Client interface {
	Verify(ctx context.Context, phone, defaultCountry string) (*VerifyResponse, error)
}

// VerifyResponse is the response from GET /v2/verify.
type VerifyResponse struct {
	Status               string `json:"status"`
	Phone                string `json:"phone"`
	PhoneValid           bool   `json:"phone_valid"`
	PhoneType            string `json:"phone_type"`
	PhoneRegion          string `json:"phone_region"`
	Country              string `json:"country"`
	CountryCode          string `json:"country_code"`
	CountryPrefix        string `json:"country_prefix"`
	InternationalNumber  string `json:"international_number"`
	LocalNumber          string `json:"local_number"`
	E164                 string `json:"e164"`
	Carrier              string `json:"carrier"`
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

// NewClient creates a Veriphone API client.
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

func (c *httpClient) Verify(ctx context.Context, phone, defaultCountry string) (*VerifyResponse, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("phone", phone)
	if defaultCountry != "" {
		q.Set("default_country", defaultCountry)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/verify?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "veriphone: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "veriphone: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "veriphone: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("veriphone", resp, body)
	}

	var result VerifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "veriphone: unmarshal response")
	}

	if result.Status != "success" {
		return nil, eris.Errorf("veriphone: api status %q", result.Status)
	}

	return &result, nil
}
