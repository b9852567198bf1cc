package discord

import (
	"bytes"
	"encoding/json"
)

// Embed colors used by the built-in layouts.
const (
	ColorRelease = 7377919
	ColorError   = 15158332
)

// Embed is a rich attachment of a webhook message.
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Message is the webhook body used by the built-in layouts.
type Message struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

// SuccessMessage is the default body posted for a published release.
func SuccessMessage(version, notes string) Message {
	return Message{
		Content: "New Release: " + version,
		Embeds: []Embed{{
			Title:       "What changed?",
			Description: notes,
			Color:       ColorRelease,
		}},
	}
}

// FailureMessage is the default body posted when a release fails, one
// embed per error.
func FailureMessage(errs []string) Message {
	msg := Message{Content: "Release Failed", Embeds: []Embed{}}
	for _, e := range errs {
		msg.Embeds = append(msg.Embeds, Embed{Title: "Error", Description: e, Color: ColorError})
	}
	return msg
}

// Encode renders v as compact JSON without HTML escaping, the form the
// webhook receives.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
