package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeError(t *testing.T) {
	err := NewNetwork("smartstore", "count probe failed", io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "network")
	assert.Contains(t, err.Error(), "smartstore")
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, err.IsRetryable())

	loginErr := NewLogin("gearbox", "post-login marker never appeared", nil)
	assert.False(t, loginErr.IsRetryable())
	assert.Contains(t, loginErr.Error(), "gearbox")
}

func TestPartialResultError(t *testing.T) {
	err := NewPartial("carmall", 14, 2, "pages still empty after 3 rounds")
	assert.Contains(t, err.Error(), "2 of 14")
	assert.Contains(t, err.Error(), "carmall")

	// PartialResultError must be detectable through wrapping
	wrapped := NewStorage("carmall", "aborting write", err)
	var partial *PartialResultError
	assert.True(t, errors.As(wrapped, &partial))
	assert.Equal(t, 14, partial.Expected)
}
