package resilience

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// StatusError converts a non-2xx response into the retry layer's error
// vocabulary: 429 becomes a rate-limit error carrying the Retry-After header,
// other transient statuses become TransientError, the rest stay permanent.
func StatusError(service string, resp *http.Response, body []byte) error {
	base := eris.Errorf("%s: unexpected status %d: %s", service, resp.StatusCode, string(body))

	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitedError(base, ParseRetryAfter(resp.Header.Get("Retry-After")))
	}
	if IsTransientHTTPStatus(resp.StatusCode) {
		return NewTransientError(base, resp.StatusCode)
	}
	return base
}

// ParseRetryAfter parses a Retry-After header in either delta-seconds or
// HTTP-date form. Returns zero when absent or unparsable.
func ParseRetryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
