package core

import (
	"encoding/json"
	"log/slog"
	"net/url"
)

const redacted = "REDACTED"

// Secret holds a sensitive value, such as a webhook URL whose path is the
// credential. It never prints, logs or serializes the raw value.
type Secret struct {
	Value string
}

// NewSecret wraps a raw value as a Secret.
func NewSecret(value string) Secret {
	return Secret{Value: value}
}

// Redacted keeps the scheme and host of URL values so operators can tell
// endpoints apart; everything else is replaced.
func (s Secret) Redacted() string {
	if s.Value == "" {
		return ""
	}
	u, err := url.Parse(s.Value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return redacted
	}
	return u.Scheme + "://" + u.Host + "/" + redacted
}

func (s Secret) IsZero() bool { return s.Value == "" }

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Redacted())
}

func (s Secret) String() string {
	return s.Redacted()
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.Redacted())
}
