package dynload

import (
	"fmt"
	"strings"
)

// Severity decides what happens when a resource runs out of retries.
type Severity int

const (
	// SeverityWarn logs a warning and settles with an unsuccessful Outcome.
	// It is the zero value.
	SeverityWarn Severity = iota
	// SeverityFatal settles with a *LoadError.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity parses a manifest level. "fatal" maps to SeverityFatal;
// "error", "warn" and the empty string map to SeverityWarn.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error", "warn", "warning":
		return SeverityWarn, nil
	case "fatal":
		return SeverityFatal, nil
	default:
		return SeverityWarn, fmt.Errorf("unknown severity %q", s)
	}
}

// Resource describes a single loadable resource.
type Resource struct {
	// URL identifies the resource. Loads are coalesced and cached by URL.
	URL string
	// Name is the logical name the resource publishes its artifact under.
	Name string
	// Retry is the number of additional attempts after a failed load.
	// Negative values are treated as zero.
	Retry int
	// RetrySet marks Retry as explicit, so a batch default does not replace
	// it even when it is zero.
	RetrySet bool
	// Severity applies once Retry is exhausted.
	Severity Severity
}

// Outcome is the settled result of a load.
type Outcome struct {
	Name    string
	Success bool
}
