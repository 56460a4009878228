package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport failures reaching a source site
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParse represents HTML parsing errors or load-bearing missing elements
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeLogin represents browser automation login failures
	ErrorTypeLogin ErrorType = "login"
	// ErrorTypePartial represents an exhausted retry budget with results still missing
	ErrorTypePartial ErrorType = "partial"
	// ErrorTypeStorage represents snapshot store failures
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeRateLimit represents a source site refusing further requests
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a site-scraping error
type ScrapeError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Site, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Site, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if re-running the whole scrape may succeed
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypePartial:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, site, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(site, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, site, message, err)
}

// NewParse creates a new parse error
func NewParse(site, message string, err error) *ScrapeError {
	return New(ErrorTypeParse, site, message, err)
}

// NewLogin creates a new login error
func NewLogin(site, message string, err error) *ScrapeError {
	return New(ErrorTypeLogin, site, message, err)
}

// NewStorage creates a new storage error
func NewStorage(site, message string, err error) *ScrapeError {
	return New(ErrorTypeStorage, site, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(site string, duration time.Duration) *ScrapeError {
	return New(ErrorTypeRateLimit, site, fmt.Sprintf("rate limited for %v", duration), nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// PartialResultError is returned when a bounded retry loop gives up with
// part of the expected result set still missing. Callers must not persist
// a snapshot built from a partial result.
type PartialResultError struct {
	Site     string
	Expected int
	Missing  int
	Detail   string
}

// Error implements the error interface
func (e *PartialResultError) Error() string {
	return fmt.Sprintf("[partial] %s: %d of %d units unresolved (%s)", e.Site, e.Missing, e.Expected, e.Detail)
}

// NewPartial creates a new PartialResultError
func NewPartial(site string, expected, missing int, detail string) *PartialResultError {
	return &PartialResultError{Site: site, Expected: expected, Missing: missing, Detail: detail}
}
