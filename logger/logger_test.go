package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "abc", "session_id", "s1", "R2_ACCESS_KEY_SECRET", "x"})

	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "session_id", "s1", "R2_ACCESS_KEY_SECRET", "[REDACTED]"}, out)
}

func TestSanitizeKVs_ShortensDataURI(t *testing.T) {
	img := "data:image/jpeg;base64," + strings.Repeat("A", 200)
	out := sanitizeKVs([]interface{}{"image", img})

	assert.Equal(t, "[data-uri 223 bytes]", out[1])
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"k", 1, "dangling"})
	assert.Len(t, out, 3)
}
