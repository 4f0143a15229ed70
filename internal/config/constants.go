package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout   = 60 * time.Second
	StoreRequestTimeout  = 30 * time.Second
	ShutdownTimeout      = 30 * time.Second
	ObservabilityTimeout = 5 * time.Second
)

// Table store constants
const (
	// DefaultPageSize is the row count requested per range page when walking a
	// full table. The fetch loop treats a short page as the last one.
	DefaultPageSize = 1000
)

// Dashboard view defaults
const (
	// DefaultOverdueAfterDays is the open-call age beyond which a call is listed as overdue.
	DefaultOverdueAfterDays = 7
	// DefaultUrgentDisplayCount caps both urgent lists; the remainder is reported as overflow.
	DefaultUrgentDisplayCount = 5
	// DefaultTrendWindowDays sizes the month-over-month comparison windows.
	DefaultTrendWindowDays = 30
	// DefaultSeriesWindowDays sizes the trailing window for daily/weekly series.
	DefaultSeriesWindowDays = 60
	// DefaultRollupLimit caps the per-technician and per-customer rollups.
	DefaultRollupLimit = 10
	// DefaultRecentLimit caps the recent-activity listing.
	DefaultRecentLimit = 10
	// DefaultResolutionClampDays excludes resolution-time outliers beyond this many days.
	DefaultResolutionClampDays = 365
	// DefaultWarrantyWindowDays is the lookahead for the expiring-warranty count.
	DefaultWarrantyWindowDays = 30
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:;"
)
