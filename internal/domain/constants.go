package domain

import "time"

// Normative defaults. These are compiled defaults that can be overridden via
// configuration where a config key exists.
const (
	// Display defaults
	RefreshInterval    = 1 * time.Second // current-time fields refresh once per second
	DefaultOffsetHours = 9               // zone selector default (UTC+9)
	DefaultLocation    = "Local"

	// Input limits
	MaxInputLength = 64 // longest accepted datetime / FILETIME / Unix text

	// HTTP server timeouts
	HTTPReadTimeout  = 10 * time.Second
	HTTPIdleTimeout  = 60 * time.Second
	HTTPWriteTimeout = 10 * time.Second // default; not applied to the event stream

	// Graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second // total budget
	ShutdownDrainDelay      = 500 * time.Millisecond
	ShutdownHTTPTimeout     = 5 * time.Second
	ShutdownOTELTimeout     = 3 * time.Second
)
