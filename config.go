package gridcache

import "time"

// Defaults applied by Config.WithDefaults.
const (
	DefaultPageSize        = 50
	DefaultFreshnessWindow = 45 * time.Second
	DefaultIdleEviction    = 5 * time.Minute
	DefaultFetchTimeout    = 15 * time.Second
	DefaultRetryCount      = 1
	DefaultRetryBackoff    = 500 * time.Millisecond
	DefaultRetryBackoffCap = 10 * time.Second
	DefaultLeadingMargin   = 200
)

// Config holds the tunables of one list session. The zero value is usable:
// every consumer normalizes it through WithDefaults first.
type Config struct {
	// PageSize is the number of items requested per page.
	PageSize int

	// FreshnessWindow is how long a cached entry is served without
	// triggering a background refetch.
	FreshnessWindow time.Duration

	// IdleEviction is how long an unobserved entry is retained before the
	// sweep drops it.
	IdleEviction time.Duration

	// FetchTimeout bounds a single page fetch or mutation call. Expiry
	// surfaces as a TransportError.
	FetchTimeout time.Duration

	// RetryCount is the number of additional attempts after a failed page
	// load, before the failure is surfaced as controller state. Zero means
	// the default; use -1 to disable retries.
	RetryCount int

	// RetryBackoff is the delay before the first retry; it doubles per
	// attempt up to RetryBackoffCap.
	RetryBackoff    time.Duration
	RetryBackoffCap time.Duration

	// LeadingMargin is how far, in display units, ahead of the viewport the
	// sentinel anchor is considered visible. Advisory: the sentinel itself
	// is driven by visibility notifications, not geometry.
	LeadingMargin int
}

// WithDefaults returns a copy of c with every unset field replaced by its
// default.
func (c Config) WithDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.FreshnessWindow <= 0 {
		c.FreshnessWindow = DefaultFreshnessWindow
	}
	if c.IdleEviction <= 0 {
		c.IdleEviction = DefaultIdleEviction
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	switch {
	case c.RetryCount == 0:
		c.RetryCount = DefaultRetryCount
	case c.RetryCount < 0:
		c.RetryCount = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.RetryBackoffCap <= 0 {
		c.RetryBackoffCap = DefaultRetryBackoffCap
	}
	if c.LeadingMargin <= 0 {
		c.LeadingMargin = DefaultLeadingMargin
	}
	return c
}

// Backoff returns the delay before retry attempt n (0-based), doubling from
// RetryBackoff and capped at RetryBackoffCap.
func (c Config) Backoff(attempt int) time.Duration {
	d := c.RetryBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= c.RetryBackoffCap {
			return c.RetryBackoffCap
		}
	}
	if d > c.RetryBackoffCap {
		return c.RetryBackoffCap
	}
	return d
}
