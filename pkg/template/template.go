package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedResult is returned when substituted values break the JSON
// text of the template.
var ErrMalformedResult = errors.New("interpolated template is not valid JSON")

var placeholderRe = regexp.MustCompile(`\$\{(.*?)\}`)

// Interpolate replaces every ${dotted.path} placeholder found in the string
// content of tmpl with the value at that path in data. Placeholders that do
// not resolve are kept verbatim. The shape of tmpl is never changed.
func Interpolate(tmpl any, data map[string]any) (any, error) {
	raw, err := marshal(tmpl)
	if err != nil {
		return nil, fmt.Errorf("serialize template: %w", err)
	}

	var substErr error
	replaced := placeholderRe.ReplaceAllFunc(raw, func(match []byte) []byte {
		path := string(match[2 : len(match)-1])
		value, ok := Lookup(data, path)
		if !ok {
			return match
		}
		out, err := spliceValue(value)
		if err != nil {
			if substErr == nil {
				substErr = fmt.Errorf("substitute ${%s}: %w", path, err)
			}
			return match
		}
		return out
	})
	if substErr != nil {
		return nil, substErr
	}

	dec := json.NewDecoder(bytes.NewReader(replaced))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after template", ErrMalformedResult)
	}
	return out, nil
}

// Lookup walks root along a dot separated path. Maps are indexed by key and
// slices by decimal index or "length"; anything else ends the walk
// unresolved.
func Lookup(root any, path string) (any, bool) {
	current := root
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			if key == "length" {
				current = len(node)
				continue
			}
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// spliceValue renders v so it can be placed inside a JSON string literal.
// Objects and arrays become their JSON text as string content, so [1,2]
// splices as "[1,2]" and never breaks the surrounding template.
func spliceValue(v any) ([]byte, error) {
	encoded, err := marshal(v)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
		// Nested structures are embedded as their JSON text.
		encoded, err = marshal(string(encoded))
		if err != nil {
			return nil, err
		}
	}
	if len(encoded) >= 2 && encoded[0] == '"' && encoded[len(encoded)-1] == '"' {
		return encoded[1 : len(encoded)-1], nil
	}
	return encoded, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
