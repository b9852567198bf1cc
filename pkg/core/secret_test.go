package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretRedaction(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: ""},
		{name: "webhook url", value: "https://discord.com/api/webhooks/123/token", want: "https://discord.com/REDACTED"},
		{name: "plain token", value: "supersecret", want: "REDACTED"},
		{name: "secret reference", value: "gcpsm://projects/p/secrets/s", want: "gcpsm://projects/REDACTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSecret(tt.value)
			assert.Equal(t, tt.want, s.Redacted())
			assert.Equal(t, tt.want, s.String())
			assert.Equal(t, tt.want, fmt.Sprint(s))

			data, err := json.Marshal(s)
			assert.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("%q", tt.want), string(data))
		})
	}
}

func TestSecretLogValue(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	logger.Info("resolved", "webhook", NewSecret("https://discord.com/api/webhooks/123/token"))

	assert.Contains(t, buf.String(), `"webhook":"https://discord.com/REDACTED"`)
	assert.NotContains(t, buf.String(), "token")
	assert.True(t, NewSecret("").IsZero())
}
