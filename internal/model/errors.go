package model

import (
	"time"
)

// ErrorCode tags a structured error kind.
type ErrorCode string

const (
	CodeInvalidFormat     ErrorCode = "invalid_format"
	CodeUnsupportedRegion ErrorCode = "unsupported_region"
	CodeSourceConnection  ErrorCode = "source_connection_failure"
	CodeRateLimited       ErrorCode = "rate_limit_exceeded"
	CodeTimeout           ErrorCode = "aggregation_timeout"
)

// StructuredError is the base shape of every user-facing failure: a code for
// programmatic handling, a message, and ordered remediation suggestions.
type StructuredError struct {
	Code        ErrorCode `json:"error_code"`
	Message     string    `json:"message"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

func (e *StructuredError) Error() string {
	return e.Message
}

// ToMap converts the error to a plain mapping for display or API responses.
func (e *StructuredError) ToMap() map[string]any {
	m := map[string]any{
		"error_code": string(e.Code),
		"message":    e.Message,
	}
	if len(e.Suggestions) > 0 {
		m["suggestions"] = e.Suggestions
	}
	return m
}

// InvalidFormatError means the identifier failed structural validation
// before any source was dispatched.
type InvalidFormatError struct {
	StructuredError
	Identifier       string   `json:"identifier"`
	AttemptedMethods []string `json:"attempted_methods,omitempty"`
	ExampleFormats   []string `json:"example_formats,omitempty"`
}

// NewInvalidFormatError builds an invalid-format error with country-specific
// example formats attached.
func NewInvalidFormatError(identifier, message string, suggestions, examples []string) *InvalidFormatError {
	return &InvalidFormatError{
		StructuredError: StructuredError{
			Code:        CodeInvalidFormat,
			Message:     message,
			Suggestions: suggestions,
		},
		Identifier:     identifier,
		ExampleFormats: examples,
	}
}

// ToMap includes the format-specific context.
func (e *InvalidFormatError) ToMap() map[string]any {
	m := e.StructuredError.ToMap()
	m["identifier"] = e.Identifier
	if len(e.AttemptedMethods) > 0 {
		m["attempted_methods"] = e.AttemptedMethods
	}
	if len(e.ExampleFormats) > 0 {
		m["example_formats"] = e.ExampleFormats
	}
	return m
}

// UnsupportedRegionError means the requested country is outside the
// supported set.
type UnsupportedRegionError struct {
	StructuredError
	Region    string   `json:"region"`
	Supported []string `json:"supported,omitempty"`
}

// NewUnsupportedRegionError builds an unsupported-region error listing the
// supported regions.
func NewUnsupportedRegionError(region string, supported []string) *UnsupportedRegionError {
	return &UnsupportedRegionError{
		StructuredError: StructuredError{
			Code:    CodeUnsupportedRegion,
			Message: "region " + region + " is not supported",
			Suggestions: []string{
				"pass one of the supported ISO region codes",
				"omit the region to let the toolkit auto-detect it from the number",
			},
		},
		Region:    region,
		Supported: supported,
	}
}

// ToMap includes the region context.
func (e *UnsupportedRegionError) ToMap() map[string]any {
	m := e.StructuredError.ToMap()
	m["region"] = e.Region
	if len(e.Supported) > 0 {
		m["supported"] = e.Supported
	}
	return m
}

// SourceConnectionError means a remote source failed for network or server
// reasons after retries were exhausted (or immediately, when permanent).
type SourceConnectionError struct {
	StructuredError
	Source    Source `json:"source"`
	Transient bool   `json:"transient"`
	Attempts  int    `json:"attempts"`
}

// NewSourceConnectionError wraps a source failure. Transient failures get a
// retry suggestion; permanent ones point at configuration.
func NewSourceConnectionError(source Source, cause error, transient bool, attempts int) *SourceConnectionError {
	suggestions := []string{"check network connectivity"}
	if transient {
		suggestions = append(suggestions, "retry the lookup; the provider appears temporarily unavailable")
	} else {
		suggestions = append(suggestions, "verify the API credential configured for "+string(source))
	}
	msg := string(source) + ": connection failed"
	if cause != nil {
		msg = string(source) + ": " + cause.Error()
	}
	return &SourceConnectionError{
		StructuredError: StructuredError{
			Code:        CodeSourceConnection,
			Message:     msg,
			Suggestions: suggestions,
		},
		Source:    source,
		Transient: transient,
		Attempts:  attempts,
	}
}

// RateLimitError means a provider signaled throttling.
type RateLimitError struct {
	StructuredError
	Source     Source        `json:"source"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// NewRateLimitError builds a rate-limit error carrying the provider's
// retry-after hint when available.
func NewRateLimitError(source Source, retryAfter time.Duration) *RateLimitError {
	suggestion := "reduce lookup frequency for " + string(source)
	if retryAfter > 0 {
		suggestion = "wait " + retryAfter.String() + " before retrying " + string(source)
	}
	return &RateLimitError{
		StructuredError: StructuredError{
			Code:        CodeRateLimited,
			Message:     string(source) + ": rate limit exceeded",
			Suggestions: []string{suggestion},
		},
		Source:     source,
		RetryAfter: retryAfter,
	}
}

// TimeoutError means a source (or the whole aggregation, when a deadline is
// configured) exceeded its deadline. CompletedSources lets the caller decide
// whether partial results are usable.
type TimeoutError struct {
	StructuredError
	Source           Source   `json:"source,omitempty"`
	CompletedSources []Source `json:"completed_sources,omitempty"`
}

// NewTimeoutError builds a timeout error for a source.
func NewTimeoutError(source Source, completed []Source) *TimeoutError {
	return &TimeoutError{
		StructuredError: StructuredError{
			Code:    CodeTimeout,
			Message: string(source) + ": query exceeded its deadline",
			Suggestions: []string{
				"increase the per-source timeout for " + string(source),
				"re-run with the remaining sources only",
			},
		},
		Source:           source,
		CompletedSources: completed,
	}
}

// WarningCode tags an advisory annotation kind.
type WarningCode string

const (
	WarnSuspiciousInput WarningCode = "suspicious_input"
	WarnLowQuality      WarningCode = "low_quality"
)

// Warning is an advisory attached to an otherwise-successful aggregation.
// Callers should surface it but need not block on it.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
