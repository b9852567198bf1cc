package discord

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxDescriptionLength is the longest description Discord accepts.
	MaxDescriptionLength = 4096
	// TruncationSuffix marks a description that lost trailing lines.
	TruncationSuffix = "\n\n... and more!"
)

// TrimText shortens s to at most ceiling characters by dropping whole lines
// from the end and appending TruncationSuffix. A first line that alone
// exceeds the budget is dropped too, leaving just the suffix.
func TrimText(s string, ceiling int) string {
	budget := ceiling - utf8.RuneCountInString(TruncationSuffix)
	length := utf8.RuneCountInString(s)
	if length <= budget {
		return s
	}
	if strings.HasSuffix(s, TruncationSuffix) && length <= ceiling {
		return s
	}

	lines := strings.Split(s, "\n")
	kept := length
	for len(lines) > 0 && kept > budget {
		last := lines[len(lines)-1]
		lines = lines[:len(lines)-1]
		kept -= utf8.RuneCountInString(last)
		if len(lines) > 0 {
			kept-- // the joining newline
		}
	}
	return strings.Join(lines, "\n") + TruncationSuffix
}

// TrimDescription returns msg with its "description" string trimmed to
// ceiling. Other fields are copied untouched and msg itself is not modified.
func TrimDescription(msg map[string]any, ceiling int) map[string]any {
	out, _ := trimDescription(msg, ceiling)
	return out
}

func trimDescription(msg map[string]any, ceiling int) (map[string]any, bool) {
	desc, ok := msg["description"].(string)
	if !ok {
		return msg, false
	}
	trimmed := TrimText(desc, ceiling)
	if trimmed == desc {
		return msg, false
	}
	return withField(msg, "description", trimmed), true
}

// TrimMessage applies the description guard to the top level of a templated
// body and to every object in its "embeds" list.
func TrimMessage(body any, ceiling int) any {
	msg, ok := body.(map[string]any)
	if !ok {
		return body
	}
	msg, _ = trimDescription(msg, ceiling)

	embeds, ok := msg["embeds"].([]any)
	if !ok {
		return msg
	}
	trimmed := make([]any, len(embeds))
	changed := false
	for i, e := range embeds {
		trimmed[i] = e
		if em, ok := e.(map[string]any); ok {
			if t, did := trimDescription(em, ceiling); did {
				trimmed[i] = t
				changed = true
			}
		}
	}
	if !changed {
		return msg
	}
	return withField(msg, "embeds", trimmed)
}

func withField(m map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	out[key] = value
	return out
}

// Trimmed returns a copy of m with every embed description trimmed.
func (m Message) Trimmed(ceiling int) Message {
	out := Message{Content: m.Content, Embeds: make([]Embed, len(m.Embeds))}
	for i, e := range m.Embeds {
		e.Description = TrimText(e.Description, ceiling)
		out.Embeds[i] = e
	}
	return out
}
