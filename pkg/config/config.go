package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WebhookEnvVar supplies the Discord webhook URL when the plugin config has none.
const WebhookEnvVar = "DISCORD_WEBHOOK"

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ConfigMap is a sectioned configuration map keyed by plugin name (or "core").
// Values are YAML-friendly scalars or nested maps/lists.
type ConfigMap map[string]map[string]any

// LoadConfigFile loads a YAML (or JSON) config file from disk.
// Returns an empty map if path is empty, the file does not exist or is empty.
func LoadConfigFile(path string) (ConfigMap, error) {
	if path == "" {
		return ConfigMap{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ConfigMap{}, nil
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML or JSON config text.
func ParseConfig(data []byte) (ConfigMap, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return ConfigMap{}, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return normalizeConfigMap(raw), nil
}

// LoadConfigMapFromEnv builds the sections that can be set from the
// environment. The webhook URL is not part of it: plugins look it up
// through a LookupFunc only when their config has none.
func LoadConfigMapFromEnv(lookup LookupFunc) ConfigMap {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := ConfigMap{}
	if v, ok := lookup("DISCORD_BRANCHES"); ok && strings.TrimSpace(v) != "" {
		cfg["discord"] = map[string]any{"branches": v}
	}
	return cfg
}

// MergeConfigMap merges primary over fallback (primary wins).
func MergeConfigMap(primary, fallback ConfigMap) ConfigMap {
	out := cloneConfigMap(fallback)
	for section, vals := range primary {
		if len(vals) == 0 {
			continue
		}
		merged := map[string]any{}
		if existing, ok := out[section]; ok {
			for k, v := range existing {
				merged[k] = v
			}
		}
		for k, v := range vals {
			merged[k] = v
		}
		out[section] = merged
	}
	return out
}

// StringList reads a list setting given as a YAML list or a comma separated
// string. Commas inside (), [] or {} do not split, so glob patterns such as
// "v+([0-9])?(.{+([0-9]),x}).x" survive. Entries are trimmed and empty ones
// dropped; order and duplicates are kept as configured.
func StringList(v any) []string {
	var items []string
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		items = t
	case []any:
		for _, item := range t {
			items = append(items, toString(item))
		}
	case string:
		items = splitTopLevel(t, ',')
	default:
		items = []string{toString(t)}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// splitTopLevel splits s on sep outside of bracket groups. A backslash
// escapes the next character.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		depth int
		start int
		esc   bool
	)
	for i, r := range s {
		switch {
		case esc:
			esc = false
		case r == '\\':
			esc = true
		case r == '(' || r == '[' || r == '{':
			depth++
		case (r == ')' || r == ']' || r == '}') && depth > 0:
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + len(string(sep))
		}
	}
	return append(parts, s[start:])
}

func cloneConfigMap(src ConfigMap) ConfigMap {
	dst := ConfigMap{}
	for section, vals := range src {
		sectionCopy := map[string]any{}
		for k, v := range vals {
			sectionCopy[k] = v
		}
		dst[section] = sectionCopy
	}
	return dst
}

func normalizeConfigMap(raw map[string]any) ConfigMap {
	out := ConfigMap{}
	for key, value := range raw {
		if m := normalizeStringMap(value); m != nil {
			out[key] = m
		}
	}
	return out
}

func normalizeStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := map[string]any{}
		for k, v := range t {
			out[k] = normalizeValue(v)
		}
		return out
	case map[any]any:
		out := map[string]any{}
		for k, v := range t {
			out[toString(k)] = normalizeValue(v)
		}
		return out
	default:
		return nil
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return normalizeStringMap(t)
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, normalizeValue(item))
		}
		return out
	default:
		return v
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
