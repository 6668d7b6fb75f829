package featureflags

import (
	"os"
	"strings"
)

// Known flags.
const (
	// SummaryCache caches generated summaries keyed by a digest of the input.
	SummaryCache = "summary_cache"
)

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes/on (case-insensitive)
// on every call, so toggling takes effect without a restart.
func Enabled(name string) bool {
	return parse(os.Getenv(EnvName(name)))
}

// EnvName returns the environment variable backing a flag.
func EnvName(name string) string {
	return "FLAG_" + strings.ToUpper(name)
}

func parse(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
