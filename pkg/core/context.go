package core

import (
	"fmt"
	"log/slog"

	"github.com/mywio/release-notifier/pkg/template"
)

// EventContext is what the release tool hands to a lifecycle step: a logger
// and the release data tree (nextRelease, branch, errors, ...). Steps only
// read Data.
type EventContext struct {
	Logger *slog.Logger
	Data   map[string]any
}

// NextRelease is the typed view of Data["nextRelease"].
type NextRelease struct {
	Version string
	GitTag  string
	Name    string
	Notes   string
	Channel string
}

// Log returns the context logger, falling back to slog.Default.
func (c EventContext) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// NextRelease reports the release being published, if any.
func (c EventContext) NextRelease() (NextRelease, bool) {
	raw, ok := template.Lookup(c.Data, "nextRelease")
	if !ok {
		return NextRelease{}, false
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return NextRelease{}, false
	}
	return NextRelease{
		Version: stringField(m, "version"),
		GitTag:  stringField(m, "gitTag"),
		Name:    stringField(m, "name"),
		Notes:   stringField(m, "notes"),
		Channel: stringField(m, "channel"),
	}, true
}

// BranchName returns branch.name, or "" when the release tool did not
// provide one.
func (c EventContext) BranchName() string {
	raw, ok := template.Lookup(c.Data, "branch.name")
	if !ok || raw == nil {
		return ""
	}
	return fmt.Sprint(raw)
}

// ErrorMessages returns the messages of the errors that failed the release.
// Both {"errors": {"errors": [...]}} and {"errors": [...]} are accepted.
func (c EventContext) ErrorMessages() []string {
	raw, ok := template.Lookup(c.Data, "errors")
	if !ok {
		return nil
	}
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		if nested, ok := v["errors"].([]any); ok {
			items = nested
		} else if _, ok := v["message"]; ok {
			items = []any{v}
		}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch e := item.(type) {
		case string:
			out = append(out, e)
		case map[string]any:
			out = append(out, stringField(e, "message"))
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
