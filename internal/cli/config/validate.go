package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/core"
)

// OutputFormats lists the accepted values for the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json", "sarif", "github"}

// Validate checks if the configuration is valid. Rule IDs are checked later
// against the rule catalog.
func (c *Config) Validate() error {
	var problems []string

	if !contains(OutputFormats, c.OutputFormat) {
		problems = append(problems, fmt.Sprintf("output: unknown format %q (want one of %s)",
			c.OutputFormat, strings.Join(OutputFormats, ", ")))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, "log_level: "+err.Error())
	}
	if c.Concurrency < 0 {
		problems = append(problems, "concurrency: must not be negative")
	}

	if lint := c.Lint; lint != nil {
		if lint.FailOn != "" {
			if _, ok := core.ParseSeverity(lint.FailOn); !ok {
				problems = append(problems, fmt.Sprintf("lint.fail_on: unknown severity %q", lint.FailOn))
			}
		}
		ids := make([]string, 0, len(lint.Severity))
		for id := range lint.Severity {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if _, ok := core.ParseSeverity(lint.Severity[id]); !ok {
				problems = append(problems, fmt.Sprintf("lint.severity.%s: unknown severity %q", id, lint.Severity[id]))
			}
		}
	}

	if c.DocsURL != "" {
		if u, err := url.Parse(c.DocsURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("docs_url: not an absolute URL %q", c.DocsURL))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s\nHint: check %s", strings.Join(problems, "\n  "), ConfigFileNames[0])
	}
	return nil
}

// ParseLogLevel converts a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
