package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidFormatError_ToMap(t *testing.T) {
	e := NewInvalidFormatError("12345", "number too short",
		[]string{"include the full subscriber number"},
		[]string{"+91 98765 43210"},
	)

	assert.Equal(t, "number too short", e.Error())

	m := e.ToMap()
	assert.Equal(t, "invalid_format", m["error_code"])
	assert.Equal(t, "number too short", m["message"])
	assert.Equal(t, "12345", m["identifier"])
	assert.Equal(t, []string{"+91 98765 43210"}, m["example_formats"])

	suggestions, ok := m["suggestions"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, suggestions)
}

func TestUnsupportedRegionError(t *testing.T) {
	e := NewUnsupportedRegionError("ZZ", []string{"IN", "US", "GB"})
	assert.Equal(t, CodeUnsupportedRegion, e.Code)
	assert.Contains(t, e.Message, "ZZ")

	m := e.ToMap()
	assert.Equal(t, "ZZ", m["region"])
	assert.Equal(t, []string{"IN", "US", "GB"}, m["supported"])
}

func TestSourceConnectionError_Suggestions(t *testing.T) {
	transient := NewSourceConnectionError(SourceNumVerify, errors.New("503 service unavailable"), true, 3)
	assert.True(t, transient.Transient)
	assert.Equal(t, 3, transient.Attempts)
	assert.Contains(t, transient.Suggestions[1], "retry")

	permanent := NewSourceConnectionError(SourceNumVerify, errors.New("401 unauthorized"), false, 1)
	assert.False(t, permanent.Transient)
	assert.Contains(t, permanent.Suggestions[1], "credential")
}

func TestRateLimitError_RetryAfterHint(t *testing.T) {
	e := NewRateLimitError(SourceAbstract, 30*time.Second)
	assert.Equal(t, 30*time.Second, e.RetryAfter)
	assert.Contains(t, e.Suggestions[0], "30s")

	e = NewRateLimitError(SourceAbstract, 0)
	assert.Contains(t, e.Suggestions[0], "frequency")
}

func TestTimeoutError_CompletedSources(t *testing.T) {
	e := NewTimeoutError(SourceVeriphone, []Source{SourceLocal, SourceNumVerify})
	assert.Equal(t, CodeTimeout, e.Code)
	assert.Equal(t, []Source{SourceLocal, SourceNumVerify}, e.CompletedSources)
}
