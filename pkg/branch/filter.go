package branch

import (
	"fmt"
	"log/slog"
	"strings"
)

// ShouldSkip reports whether a notification for current must be suppressed.
// With no patterns configured nothing is skipped. When skipping, exactly one
// log line with the reason is written to logger.
func ShouldSkip(logger *slog.Logger, patterns []string, current string) bool {
	if len(patterns) == 0 {
		return false
	}
	if logger == nil {
		logger = slog.Default()
	}
	if current == "" {
		logger.Info("branch name is not available.")
		return true
	}
	for _, pattern := range patterns {
		ok, err := Match(pattern, current)
		if err != nil {
			continue
		}
		if ok {
			return false
		}
	}
	logger.Info(fmt.Sprintf("Current branch %s does not match any of the allowed branches: %s",
		current, strings.Join(patterns, ", ")),
		"branch", current)
	return true
}

// Validate compiles every pattern and returns the first error.
func Validate(patterns []string) error {
	for _, pattern := range patterns {
		if _, err := Compile(pattern); err != nil {
			return err
		}
	}
	return nil
}
