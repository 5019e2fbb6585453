package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "0b894166d3336435c800bea36ff21b29eaa801a52f584c006c49289a0dcf6e2f", SHA256Hex([]byte("hola mundo")))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(nil))
}

func TestHMACSHA256Base64(t *testing.T) {
	const want = "lK/PYiNu93NMKfEgsBA6awVTpQ1pHl3/CAcP1byx6r0="

	got := HMACSHA256Base64([]byte("secret"), []byte(`{"type":"PING"}`))
	assert.Equal(t, want, got)

	tamperedKey := HMACSHA256Base64([]byte("secreT"), []byte(`{"type":"PING"}`))
	tamperedMsg := HMACSHA256Base64([]byte("secret"), []byte(`{"type":"PONG"}`))

	assert.NotEqual(t, want, tamperedKey)
	assert.NotEqual(t, want, tamperedMsg)
	assert.False(t, ConstantTimeEquals(want, tamperedKey))
	assert.False(t, ConstantTimeEquals(want, tamperedMsg))
}

func TestConstantTimeEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "abc", "abc", true},
		{"both empty", "", "", true},
		{"differs in last byte", "abc", "abd", false},
		{"differs in first byte", "xbc", "abc", false},
		{"prefix", "ab", "abc", false},
		{"empty vs non empty", "", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstantTimeEquals(tt.a, tt.b))
		})
	}
}

func TestDeriveTopicSuffix(t *testing.T) {
	suffix := DeriveTopicSuffix("device-demo", "secret-demo")

	assert.Len(t, suffix, TopicSuffixLength)
	assert.True(t, strings.HasPrefix(suffix, "49dbd99f86"), suffix)
	assert.Equal(t, SHA256Hex([]byte("device-demo:secret-demo"))[:10], suffix)
	assert.NotEqual(t, suffix, DeriveTopicSuffix("device-demo", "other"))
}
