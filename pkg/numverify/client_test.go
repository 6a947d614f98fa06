package numverify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracelight/osint-cli/internal/resilience"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     string
		wantValid   bool
		wantCarrier string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"valid": true,
				"number": "919876543210",
				"local_format": "09876543210",
				"international_format": "+919876543210",
				"country_prefix": "+91",
				"country_code": "IN",
				"country_name": "India",
				"location": "Maharashtra",
				"carrier": "Bharti Airtel",
				"line_type": "mobile"
			}`,
			wantValid:   true,
			wantCarrier: "Bharti Airtel",
		},
		{
			name:    "embedded api error",
			status:  http.StatusOK,
			body:    `{"success": false, "error": {"code": 101, "type": "invalid_access_key", "info": "invalid key"}}`,
			wantErr: "api error 101",
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error": "oops"}`,
			wantErr: "unexpected status 500",
		},
		{
			name:    "malformed response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/validate", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("apikey"))
				assert.Equal(t, "9876543210", r.URL.Query().Get("number"))
				assert.Equal(t, "IN", r.URL.Query().Get("country_code"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			resp, err := client.Validate(context.Background(), "9876543210", "IN")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantValid, resp.Valid)
			assert.Equal(t, tt.wantCarrier, resp.Carrier)
			assert.Equal(t, "IN", resp.CountryCode)
		})
	}
}

func TestValidate_TransientStatusIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Validate(context.Background(), "9876543210", "IN")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestValidate_RateLimitCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Validate(context.Background(), "9876543210", "")
	require.Error(t, err)

	var rle *resilience.RateLimitedError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, 17*time.Second, rle.RetryAfter)
}

func TestValidate_QuotaExhaustedIsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "error": {"code": 104, "type": "usage_limit_reached", "info": "monthly quota reached"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Validate(context.Background(), "9876543210", "")
	require.Error(t, err)

	var rle *resilience.RateLimitedError
	assert.True(t, errors.As(err, &rle))
}
