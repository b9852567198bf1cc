package discord

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func lines(n int, width int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = strings.Repeat("x", width)
	}
	return strings.Join(out, "\n")
}

func TestTrimText_ShortIsUnchanged(t *testing.T) {
	assert.Equal(t, "", TrimText("", MaxDescriptionLength))
	assert.Equal(t, "Release notes", TrimText("Release notes", MaxDescriptionLength))

	exact := strings.Repeat("a", MaxDescriptionLength-len(TruncationSuffix))
	assert.Equal(t, exact, TrimText(exact, MaxDescriptionLength))
}

func TestTrimText_DropsWholeLines(t *testing.T) {
	// 100 lines of 99 chars plus newlines: 9999 characters.
	in := lines(100, 99)
	out := TrimText(in, MaxDescriptionLength)

	assert.True(t, strings.HasSuffix(out, TruncationSuffix))
	assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxDescriptionLength)

	kept := strings.TrimSuffix(out, TruncationSuffix)
	assert.True(t, strings.HasPrefix(in, kept))
	for _, l := range strings.Split(kept, "\n") {
		assert.Len(t, l, 99)
	}
	// 40 lines take 3999 characters, a 41st would exceed the 4081 budget.
	assert.Len(t, strings.Split(kept, "\n"), 40)
}

func TestTrimText_Idempotent(t *testing.T) {
	for _, in := range []string{lines(100, 99), lines(5000, 1), lines(3, 2000), strings.Repeat("y", 5000)} {
		once := TrimText(in, MaxDescriptionLength)
		assert.Equal(t, once, TrimText(once, MaxDescriptionLength))
	}
}

func TestTrimText_NeverExceedsCeiling(t *testing.T) {
	for _, ceiling := range []int{64, 500, MaxDescriptionLength} {
		for _, in := range []string{lines(100, 99), lines(10, 7), lines(1000, 3), "é" + lines(200, 50)} {
			assert.LessOrEqual(t, utf8.RuneCountInString(TrimText(in, ceiling)), ceiling)
		}
	}
}

func TestTrimText_SingleOversizedLine(t *testing.T) {
	out := TrimText(strings.Repeat("z", 5000), MaxDescriptionLength)
	assert.Equal(t, TruncationSuffix, out)

	// The oversized line is dropped even when it follows short ones.
	out = TrimText("short\n"+strings.Repeat("z", 5000), MaxDescriptionLength)
	assert.Equal(t, "short"+TruncationSuffix, out)
}

func TestTrimText_CountsCharactersNotBytes(t *testing.T) {
	in := strings.Repeat("é", MaxDescriptionLength-len(TruncationSuffix))
	assert.Equal(t, in, TrimText(in, MaxDescriptionLength))
}

func TestTrimDescription(t *testing.T) {
	msg := map[string]any{"title": "t", "description": lines(100, 99), "color": 1}
	out := TrimDescription(msg, MaxDescriptionLength)

	assert.Equal(t, "t", out["title"])
	assert.Equal(t, 1, out["color"])
	assert.True(t, strings.HasSuffix(out["description"].(string), TruncationSuffix))
	// input untouched
	assert.Equal(t, lines(100, 99), msg["description"])

	noDesc := map[string]any{"content": "x"}
	assert.Equal(t, noDesc, TrimDescription(noDesc, MaxDescriptionLength))

	nonString := map[string]any{"description": 42}
	assert.Equal(t, nonString, TrimDescription(nonString, MaxDescriptionLength))
}

func TestTrimMessage_Embeds(t *testing.T) {
	long := lines(100, 99)
	body := map[string]any{
		"content": "c",
		"embeds": []any{
			map[string]any{"description": long},
			map[string]any{"description": map[string]any{"odd": true}},
			"not an object",
		},
	}
	out := TrimMessage(body, MaxDescriptionLength).(map[string]any)
	embeds := out["embeds"].([]any)
	assert.True(t, strings.HasSuffix(embeds[0].(map[string]any)["description"].(string), TruncationSuffix))
	assert.Equal(t, map[string]any{"odd": true}, embeds[1].(map[string]any)["description"])
	assert.Equal(t, "not an object", embeds[2])
	// input untouched
	assert.Equal(t, long, body["embeds"].([]any)[0].(map[string]any)["description"])

	assert.Equal(t, "plain", TrimMessage("plain", MaxDescriptionLength))
	small := map[string]any{"embeds": []any{map[string]any{"description": "ok"}}}
	assert.Equal(t, small, TrimMessage(small, MaxDescriptionLength))
}

func TestMessageTrimmed(t *testing.T) {
	msg := SuccessMessage("1.0.0", lines(100, 99))
	out := msg.Trimmed(MaxDescriptionLength)
	assert.Equal(t, msg.Content, out.Content)
	assert.True(t, strings.HasSuffix(out.Embeds[0].Description, TruncationSuffix))
	assert.Equal(t, lines(100, 99), msg.Embeds[0].Description)
}
